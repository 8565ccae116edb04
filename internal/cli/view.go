package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/asciidiag/asciidiag/pkg/diagram"
	"github.com/asciidiag/asciidiag/pkg/layout"
	"github.com/asciidiag/asciidiag/pkg/pipeline"
)

func (c *CLI) viewCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse a document's diagrams interactively",
		Long: `View opens an interactive browser over the diagram blocks of a
document. Use tab to cycle diagrams, +/- to zoom, 0 to reset zoom and
arrow keys to scroll large renderings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			srcs := diagram.Diagrams(diagram.ScanBlocks(content))
			if len(srcs) == 0 {
				return fmt.Errorf("no diagram blocks found")
			}

			runner := c.newRunner(ctx, noCache)
			defer runner.Close()

			m := newViewModel(ctx, c, runner, srcs)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// zoomStep is the zoom change per keypress.
const zoomStep = 0.25

type renderedMsg struct {
	seq      uint64
	artifact []string
	note     string
	err      error
}

type viewModel struct {
	// ctx is the command context; quitting the viewer cancels any render
	// still waiting on an external tool.
	ctx     context.Context
	cli     *CLI
	session *pipeline.Session
	srcs    []diagram.Source

	selected int
	zoom     float64
	lines    []string
	note     string
	err      error
	loading  bool

	offsetRow int
	offsetCol int
	width     int
	height    int
}

func newViewModel(ctx context.Context, c *CLI, runner *pipeline.Runner, srcs []diagram.Source) viewModel {
	return viewModel{
		ctx:     ctx,
		cli:     c,
		session: pipeline.NewSession(runner),
		srcs:    srcs,
		zoom:    pipeline.DefaultZoom,
		loading: true,
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.render()
}

// render kicks off an asynchronous render of the selected diagram.
func (m viewModel) render() tea.Cmd {
	opts := m.cli.pipelineOptions(m.zoom, false, false)
	opts.Source = m.srcs[m.selected]
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		res, err := session.Render(ctx, opts)
		if err != nil {
			return renderedMsg{err: err}
		}
		return renderedMsg{seq: res.Seq, artifact: res.Artifact.Lines, note: res.Note}
	}
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.session.Cancel()
			return m, tea.Quit

		case "tab", "n", "right":
			m.selected = (m.selected + 1) % len(m.srcs)
			return m.reload()

		case "shift+tab", "p", "left":
			m.selected = (m.selected + len(m.srcs) - 1) % len(m.srcs)
			return m.reload()

		case "+", "=":
			m.zoom = layout.ClampZoom(m.zoom + zoomStep)
			return m.reload()

		case "-", "_":
			m.zoom = layout.ClampZoom(m.zoom - zoomStep)
			return m.reload()

		case "0":
			m.zoom = pipeline.DefaultZoom
			return m.reload()

		case "up", "k":
			if m.offsetRow > 0 {
				m.offsetRow--
			}
		case "down", "j":
			if m.offsetRow < len(m.lines)-1 {
				m.offsetRow++
			}
		case "h":
			if m.offsetCol > 0 {
				m.offsetCol -= 4
			}
		case "l":
			m.offsetCol += 4
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case renderedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, pipeline.ErrSuperseded) {
				return m, nil
			}
			m.err = msg.err
			m.loading = false
			return m, nil
		}
		m.lines = msg.artifact
		m.note = msg.note
		m.err = nil
		m.loading = false
	}

	return m, nil
}

func (m viewModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.offsetRow = 0
	m.offsetCol = 0
	return m, m.render()
}

func (m viewModel) View() string {
	var b strings.Builder

	src := m.srcs[m.selected]
	title := fmt.Sprintf("Diagram %d/%d  %s %s  zoom %.2f",
		m.selected+1, len(m.srcs), src.Dialect, src.Kind, m.zoom)
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render(fmt.Sprintf("%s %v", iconError, m.err)))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(styleDim.Render("rendering..."))
		b.WriteString("\n")
	default:
		b.WriteString(m.viewport())
	}

	if m.note != "" && !m.loading {
		b.WriteString(styleWarning.Render(fmt.Sprintf("%s %s", iconWarning, m.note)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleDim.Render("tab: next  +/-: zoom  0: reset  arrows: scroll  q: quit"))
	return b.String()
}

// viewport clips the artifact to the visible window.
func (m viewModel) viewport() string {
	rows := m.height - 5
	if rows < 1 {
		rows = len(m.lines)
	}
	var b strings.Builder
	for i := m.offsetRow; i < len(m.lines) && i < m.offsetRow+rows; i++ {
		line := m.lines[i]
		if m.offsetCol > 0 {
			r := []rune(line)
			if m.offsetCol < len(r) {
				line = string(r[m.offsetCol:])
			} else {
				line = ""
			}
		}
		if m.width > 0 {
			r := []rune(line)
			if len(r) > m.width {
				line = string(r[:m.width])
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
