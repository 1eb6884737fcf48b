// Package preset loads named render parameter sets.
//
// A preset file holds one table per preset. Each preset names the kind of
// input it renders, optionally an ignored unit for polymers, and a params
// table decoded on top of the renderer defaults, so a preset only lists the
// values it changes:
//
//	[holiday-wreath]
//	kind = "polymer"
//	ignored = "a"
//
//	[holiday-wreath.params]
//	zoom = 0.64
//	base_color = "#804818"
//
// Files are TOML, or YAML when the name ends in .yaml or .yml. A set of
// built-in presets is embedded in the binary, see [Builtin].
package preset

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/render/licensetree"
	"github.com/matzehuels/polytree/pkg/render/polymer"
)

// Input kinds.
const (
	KindPolymer = "polymer"
	KindLicense = "license"
)

// Preset is a named set of render parameters. Exactly one of Polymer and
// License is set, matching Kind.
type Preset struct {
	Name        string
	Kind        string
	Description string
	Ignored     string

	Polymer *polymer.Params
	License *licensetree.Params
}

// Validate checks the preset's name, ignored unit, and parameters.
func (p Preset) Validate() error {
	if err := errors.ValidatePresetName(p.Name); err != nil {
		return err
	}
	if p.Ignored != "" {
		if err := errors.ValidateSymbol(p.Ignored); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %s", p.Name)
		}
	}
	var err error
	switch {
	case p.Polymer != nil:
		err = p.Polymer.Validate()
	case p.License != nil:
		err = p.License.Validate()
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %s", p.Name)
	}
	return nil
}

// Format is a preset file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file name's extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

//go:embed presets.toml
var builtinData []byte

var builtin = sync.OnceValues(func() ([]Preset, error) {
	return Decode(builtinData, FormatTOML)
})

// Builtin returns the embedded presets sorted by name.
func Builtin() []Preset {
	presets, err := builtin()
	if err != nil {
		panic(fmt.Sprintf("preset: embedded presets: %v", err))
	}
	return presets
}

// Get returns the built-in preset called name.
func Get(name string) (Preset, error) {
	if err := errors.ValidatePresetName(name); err != nil {
		return Preset{}, err
	}
	for _, p := range Builtin() {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.New(errors.ErrCodePresetNotFound, "unknown preset %q", name)
}

// Names returns the names of the built-in presets of kind, or of all
// presets if kind is empty.
func Names(kind string) []string {
	var names []string
	for _, p := range Builtin() {
		if kind == "" || p.Kind == kind {
			names = append(names, p.Name)
		}
	}
	return names
}

// Load reads presets from a file.
func Load(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}
	return Decode(data, FormatFor(path))
}

// Resolve returns the preset called ref. If ref names a file (it contains a
// path separator or a known extension), the file must contain exactly one
// preset; otherwise ref is looked up among the built-in presets.
func Resolve(ref string) (Preset, error) {
	ext := strings.ToLower(filepath.Ext(ref))
	if !strings.ContainsRune(ref, filepath.Separator) && ext != ".toml" && ext != ".yaml" && ext != ".yml" {
		return Get(ref)
	}
	presets, err := Load(ref)
	if err != nil {
		return Preset{}, err
	}
	if len(presets) != 1 {
		return Preset{}, errors.New(errors.ErrCodeInvalidPreset, "%s: expected one preset, found %d", ref, len(presets))
	}
	return presets[0], nil
}

type tomlPreset struct {
	Kind        string         `toml:"kind"`
	Description string         `toml:"description"`
	Ignored     string         `toml:"ignored"`
	Params      toml.Primitive `toml:"params"`
}

type yamlPreset struct {
	Kind        string    `yaml:"kind"`
	Description string    `yaml:"description"`
	Ignored     string    `yaml:"ignored"`
	Params      yaml.Node `yaml:"params"`
}

// Decode parses presets in the given format. Every preset is validated;
// unknown keys are rejected.
func Decode(data []byte, format Format) ([]Preset, error) {
	var presets []Preset
	switch format {
	case FormatTOML:
		var raw map[string]tomlPreset
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "decode toml")
		}
		for name, r := range raw {
			p, err := newPreset(name, r.Kind, r.Description, r.Ignored, func(v any) error {
				if !md.IsDefined(name, "params") {
					return nil
				}
				return md.PrimitiveDecode(r.Params, v)
			})
			if err != nil {
				return nil, err
			}
			presets = append(presets, p)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "unknown key %s", undecoded[0])
		}
	case FormatYAML:
		var raw map[string]yamlPreset
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "decode yaml")
		}
		for name, r := range raw {
			p, err := newPreset(name, r.Kind, r.Description, r.Ignored, func(v any) error {
				if r.Params.Kind == 0 {
					return nil
				}
				dec := r.Params
				return decodeStrictYAML(&dec, v)
			})
			if err != nil {
				return nil, err
			}
			presets = append(presets, p)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidPreset, "unsupported preset format %q", format)
	}

	slices.SortFunc(presets, func(a, b Preset) int { return strings.Compare(a.Name, b.Name) })
	return presets, nil
}

// decodeStrictYAML decodes n into v, rejecting unknown keys.
func decodeStrictYAML(n *yaml.Node, v any) error {
	out, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(out))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func newPreset(name, kind, description, ignored string, decode func(any) error) (Preset, error) {
	p := Preset{Name: name, Kind: kind, Description: description, Ignored: ignored}
	var err error
	switch kind {
	case KindPolymer:
		params := polymer.DefaultParams()
		err = decode(&params)
		p.Polymer = &params
	case KindLicense:
		params := licensetree.DefaultParams()
		err = decode(&params)
		p.License = &params
	default:
		return Preset{}, errors.New(errors.ErrCodeInvalidPreset, "preset %s: unknown kind %q", name, kind)
	}
	if err != nil {
		return Preset{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %s: params", name)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Encode writes p as a TOML preset file that [Load] reads back. All
// parameters are written, not only the ones that differ from the defaults.
func Encode(w io.Writer, p Preset) error {
	type filePreset struct {
		Kind        string `toml:"kind"`
		Description string `toml:"description,omitempty"`
		Ignored     string `toml:"ignored,omitempty"`
		Params      any    `toml:"params"`
	}
	fp := filePreset{Kind: p.Kind, Description: p.Description, Ignored: p.Ignored}
	switch {
	case p.Polymer != nil:
		fp.Params = p.Polymer
	case p.License != nil:
		fp.Params = p.License
	default:
		return errors.New(errors.ErrCodeInvalidPreset, "preset %s has no parameters", p.Name)
	}
	if err := toml.NewEncoder(w).Encode(map[string]filePreset{p.Name: fp}); err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return nil
}
