package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/chain"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/pipeline"
)

// renderFlags holds the command-line flags shared by the polymer and
// license commands. Renderer parameters are bound straight into the
// pipeline options.
type renderFlags struct {
	output  string // output file path, or base path for multiple formats
	formats string // comma-separated output formats
	preset  string // built-in preset name or preset file
	noCache bool   // bypass the on-disk cache

	// Polymer animation: one frame per growing prefix.
	animate    bool
	frameStart int
	frameStep  int
	frameAccel int
}

// register adds the shared flags to cmd.
func (f *renderFlags) register(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: derived from input)")
	fs.StringVarP(&f.formats, "format", "f", "", "output formats: svg,png,pdf,json (comma-separated)")
	fs.StringVarP(&f.preset, "preset", "p", "", "built-in preset name or preset file (.toml, .yaml)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.StringVar(&opts.VizType, "viz", pipeline.DefaultVizType, "visualization: turtle or nodelink")
	fs.BoolVar(&opts.Detailed, "detailed", false, "nodelink: show subtree sizes and values")
	fs.Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	bindParams(fs, paramFields(opts))
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets(opts.Kind))
}

// polymerCommand creates the polymer command, which reduces a polymer and
// draws the reaction tree.
func (c *CLI) polymerCommand() *cobra.Command {
	opts := pipeline.DefaultOptions(pipeline.KindPolymer)
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "polymer [file]",
		Short: "Reduce a polymer and draw its reaction tree",
		Long: `Reduce a polymer and draw its reaction tree.

Adjacent units of the same type and opposite polarity ("aA", "Bb") react and
vanish. Every reaction becomes a branch hanging off the unit that survives
next to it, so the drawing shows the whole history of the reduction.

With no file the bundled sample polymer is used; "-" reads from stdin.`,
		Example: `  # Draw the sample polymer
  polytree polymer

  # Ignore one unit type and write SVG and PNG
  polytree polymer input.txt --ignored c -f svg,png

  # Use a preset, overriding a single parameter
  polytree polymer input.txt --preset classic --zoom 2

  # Write an animation of the reduction growing
  polytree polymer input.txt --animate --frame-step 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &opts, &flags)
		},
	}

	flags.register(cmd, &opts)
	fs := cmd.Flags()
	fs.StringVar(&opts.Ignored, "ignored", "", "unit type that never reacts (e.g. c)")
	fs.BoolVar(&opts.HideRoot, "hide-root", false, "drop the synthetic root node")
	fs.IntVar(&opts.Prefix, "prefix", 0, "reduce only the first N units (0 = all)")
	fs.BoolVar(&flags.animate, "animate", false, "write one numbered frame per growing prefix")
	fs.IntVar(&flags.frameStart, "frame-start", 1, "animation: units in the first frame")
	fs.IntVar(&flags.frameStep, "frame-step", 100, "animation: units added per frame")
	fs.IntVar(&flags.frameAccel, "frame-accel", 0, "animation: growth of the step per frame")

	return cmd
}

// licenseCommand creates the license command, which decodes a license tree
// and draws it.
func (c *CLI) licenseCommand() *cobra.Command {
	opts := pipeline.DefaultOptions(pipeline.KindLicense)
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "license [file]",
		Short: "Decode a license tree and draw it",
		Long: `Decode a license tree and draw it.

The input is a list of integers: each node is a child count, a metadata
count, its children and then its metadata entries.

With no file the bundled sample license is used; "-" reads from stdin.`,
		Example: `  # Draw the sample license with node values
  polytree license --values

  # Draw a license with the pine preset as PNG
  polytree license input.txt --preset pine -f png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &opts, &flags)
		},
	}

	flags.register(cmd, &opts)
	return cmd
}

// runRender executes the pipeline for a render command and writes the
// artifacts.
func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *pipeline.Options, flags *renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts.Formats = parseFormats(flags.formats)
	if err := applyPreset(cmd.Flags(), opts, flags.preset); err != nil {
		return err
	}

	input, name, err := readInput(args, opts.Kind)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	base := outputBase(flags.output, args, opts.Kind)
	if flags.animate {
		return c.runAnimation(ctx, runner, input, *opts, flags, base)
	}

	logger.Debug("rendering", "input", name, "kind", opts.Kind, "viz", opts.VizType, "formats", opts.Formats)

	sp := startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", name))
	result, err := runner.Execute(ctx, input, *opts)
	if err != nil {
		sp.fail("Render failed")
		return err
	}
	sp.stop()

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, base)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", name)
	printStats(opts.Kind, result.Stats, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	if opts.IsTurtle() && len(args) > 0 {
		printNextStep("Tune interactively", fmt.Sprintf("%s tune %s %s", appName, opts.Kind, args[0]))
	}
	return nil
}

// runAnimation renders one frame per prefix length yielded by chain.Frames.
// Frames are written as base-00000.svg, base-00001.svg and so on.
func (c *CLI) runAnimation(ctx context.Context, runner *pipeline.Runner, input []byte,
	opts pipeline.Options, flags *renderFlags, base string) error {
	if opts.Kind != pipeline.KindPolymer {
		return errors.New(errors.ErrCodeInvalidParameter, "--animate only applies to polymers")
	}
	total := len(chain.Parse(input))
	if opts.Prefix > 0 {
		total = min(total, opts.Prefix)
	}

	prog := newProgress(loggerFromContext(ctx))
	sp := startSpinner(ctx, os.Stderr, "Rendering frames...")
	defer sp.stop()

	frame := 0
	for n := range chain.Frames(total, flags.frameStart, flags.frameStep, flags.frameAccel) {
		if n == 0 {
			// A zero prefix means the whole polymer.
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		sp.update(fmt.Sprintf("Rendering frame %d (%d/%d units)...", frame, n, total))
		o := opts
		o.Prefix = n
		artifacts, err := runner.Render(ctx, input, o)
		if err != nil {
			return err
		}
		if _, err := writeArtifacts(artifacts, o.Formats, fmt.Sprintf("%s-%05d", base, frame)); err != nil {
			return err
		}
		frame++
	}
	sp.stop()
	prog.done(fmt.Sprintf("Wrote %d frames", frame))
	printSuccess("Wrote %d frames", frame)
	printDetail("%s-%05d.* to %s-%05d.*", base, 0, base, max(frame-1, 0))
	return nil
}

// writeArtifacts writes each format to base.<format> and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("missing %s output", format)
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
