package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polytree/pkg/pipeline"
	"github.com/matzehuels/polytree/pkg/preset"
	"github.com/matzehuels/polytree/pkg/render/param"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// tuneCommand creates the tune command, an interactive parameter editor
// that re-renders an SVG on every change.
func (c *CLI) tuneCommand() *cobra.Command {
	var output, presetRef string

	cmd := &cobra.Command{
		Use:   "tune polymer|license [file]",
		Short: "Tune render parameters interactively",
		Long: `Tune render parameters interactively.

Each change re-renders the SVG, so keep it open in a browser or image viewer
that reloads on change. Press s to save the current parameters as a preset.`,
		ValidArgs: []string{pipeline.KindPolymer, pipeline.KindLicense},
		Args:      cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if err := pipeline.ValidateKind(kind); err != nil {
				return err
			}
			opts := pipeline.DefaultOptions(kind)
			if err := applyPreset(cmd.Flags(), &opts, presetRef); err != nil {
				return err
			}
			input, _, err := readInput(args[1:], kind)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(false)
			if err != nil {
				return err
			}
			defer runner.Close()

			base := outputBase(output, args[1:], kind)
			m := newTuneModel(cmd.Context(), runner, input, opts, base)
			if _, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("tune: %w", err)
			}
			printFile(base + ".svg")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG (default: derived from input)")
	cmd.Flags().StringVarP(&presetRef, "preset", "p", "", "preset to start from")
	return cmd
}

// =============================================================================
// tuneModel - Interactive parameter editing
// =============================================================================

// renderedMsg reports the outcome of a background render.
type renderedMsg struct {
	err     error
	elapsed time.Duration
}

// savedMsg reports the outcome of saving a preset.
type savedMsg struct {
	path string
	err  error
}

// tuneModel is the bubbletea model for the tune command.
type tuneModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	input  []byte
	base   string

	opts   *pipeline.Options
	fields []param.Field
	cursor int

	status string
	err    error
}

func newTuneModel(ctx context.Context, runner *pipeline.Runner, input []byte, opts pipeline.Options, base string) tuneModel {
	opts.Formats = []string{pipeline.FormatSVG}
	opts.VizType = pipeline.VizTypeTurtle
	o := &opts
	return tuneModel{
		ctx:    ctx,
		runner: runner,
		input:  input,
		base:   base,
		opts:   o,
		fields: paramFields(o),
	}
}

func (m tuneModel) Init() tea.Cmd {
	return m.render()
}

func (m tuneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.fields)-1 {
				m.cursor++
			}
		case "left", "h":
			return m.nudge(-1)
		case "right", "l":
			return m.nudge(1)
		case "shift+left", "H":
			return m.nudge(-10)
		case "shift+right", "L":
			return m.nudge(10)
		case "s":
			return m, m.save()
		}
	case renderedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("rendered %s.svg in %s", m.base, msg.elapsed.Round(time.Millisecond))
		}
	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "saved " + msg.path
		}
	}
	return m, nil
}

// nudge changes the selected field and schedules a render.
func (m tuneModel) nudge(steps int) (tea.Model, tea.Cmd) {
	f := m.fields[m.cursor]
	if f.Kind == param.KindColor {
		return m, nil
	}
	f.Nudge(steps)
	return m, m.render()
}

// render snapshots the options and renders them in the background.
func (m tuneModel) render() tea.Cmd {
	opts := *m.opts
	return func() tea.Msg {
		start := time.Now()
		artifacts, err := m.runner.Render(m.ctx, m.input, opts)
		if err == nil {
			err = os.WriteFile(m.base+".svg", artifacts[pipeline.FormatSVG], 0o644)
		}
		return renderedMsg{err: err, elapsed: time.Since(start)}
	}
}

// save writes the current parameters to base.toml as a preset.
func (m tuneModel) save() tea.Cmd {
	p := tunedPreset(*m.opts)
	path := m.base + ".toml"
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return savedMsg{err: err}
		}
		err = preset.Encode(f, p)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return savedMsg{path: path, err: err}
	}
}

// tunedPreset captures opts as a preset named "tuned".
func tunedPreset(opts pipeline.Options) preset.Preset {
	p := preset.Preset{
		Name:        "tuned",
		Kind:        opts.Kind,
		Description: "Saved by " + appName + " tune",
		Ignored:     opts.Ignored,
	}
	if opts.Kind == pipeline.KindLicense {
		p.License = &opts.License
	} else {
		p.Polymer = &opts.Polymer
	}
	return p
}

func (m tuneModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tune " + m.opts.Kind))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ adjust  shift ×10  s save  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.fields))
	for i, f := range m.fields {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, f.Name, f.String(), f.Usage}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Parameter", "Value", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == m.cursor:
				return listSelectedStyle
			case col == 3:
				return listDimStyle
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	case m.status != "":
		b.WriteString(listDimStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}
