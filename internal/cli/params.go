package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/polytree/pkg/pipeline"
	"github.com/matzehuels/polytree/pkg/preset"
	"github.com/matzehuels/polytree/pkg/render/param"
)

// bindParams registers one flag per renderer parameter. A param.Field
// satisfies pflag.Value, so flags write straight into the params struct.
func bindParams(fs *pflag.FlagSet, fields []param.Field) {
	for _, f := range fields {
		fl := fs.VarPF(f, f.Name, "", f.Usage)
		if f.Kind == param.KindToggle {
			fl.NoOptDefVal = "true"
		}
	}
}

// paramFields returns the renderer fields of opts for its kind.
func paramFields(opts *pipeline.Options) []param.Field {
	if opts.Kind == pipeline.KindLicense {
		return opts.License.Fields()
	}
	return opts.Polymer.Fields()
}

// applyPreset applies the preset named by ref to opts. Parameters set
// explicitly on the command line keep their values.
func applyPreset(fs *pflag.FlagSet, opts *pipeline.Options, ref string) error {
	if ref == "" {
		return nil
	}
	p, err := preset.Resolve(ref)
	if err != nil {
		return err
	}

	explicit := map[string]string{}
	fields := paramFields(opts)
	fs.Visit(func(fl *pflag.Flag) {
		if f, ok := param.Lookup(fields, fl.Name); ok {
			explicit[fl.Name] = f.String()
		}
	})

	if err := opts.ApplyPreset(p); err != nil {
		return err
	}
	return param.Apply(paramFields(opts), explicit)
}
