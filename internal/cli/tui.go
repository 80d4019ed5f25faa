package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

// Tab styles
var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand creates the tui command, an interactive terminal dashboard.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the dashboard views in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *CLI) runTUI(ctx context.Context) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading dataset...")
	spinner.Start()
	if _, err := runner.Dataset(ctx); err != nil {
		spinner.Stop()
		return err
	}
	spinner.SetMessage("Computing views...")
	vs, ds, err := runner.Views(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	reload := func() ([]*views.View, error) {
		if _, err := runner.Store.Refresh(ctx); err != nil {
			return nil, err
		}
		vs, _, err := runner.Views(ctx)
		return vs, err
	}

	p := tea.NewProgram(newDashboardModel(vs, ds.Source, reload), tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// =============================================================================
// dashboardModel - Interactive view browser
// =============================================================================

type tuiKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Reload, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Reload, k.Help, k.Quit},
	}
}

var tuiKeys = tuiKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab/→", "next view"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab/←", "previous view"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload data"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// viewsLoadedMsg carries the result of a reload.
type viewsLoadedMsg struct {
	views []*views.View
	err   error
}

// dashboardModel is the bubbletea model of the terminal dashboard.
type dashboardModel struct {
	views   []*views.View
	source  string
	active  int
	loading bool
	err     error
	reload  func() ([]*views.View, error)
	help    help.Model
	keys    tuiKeyMap
}

func newDashboardModel(vs []*views.View, source string, reload func() ([]*views.View, error)) dashboardModel {
	return dashboardModel{
		views:  vs,
		source: source,
		reload: reload,
		help:   help.New(),
		keys:   tuiKeys,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			if len(m.views) > 0 {
				m.active = (m.active + 1) % len(m.views)
			}
		case key.Matches(msg, m.keys.Prev):
			if len(m.views) > 0 {
				m.active = (m.active - 1 + len(m.views)) % len(m.views)
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Reload):
			if m.reload != nil && !m.loading {
				m.loading = true
				reload := m.reload
				return m, func() tea.Msg {
					vs, err := reload()
					return viewsLoadedMsg{views: vs, err: err}
				}
			}
		default:
			// 1-5 jump to a view
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(m.views) {
				m.active = int(s[0] - '1')
			}
		}
	case viewsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.views = msg.views
			if m.active >= len(m.views) {
				m.active = 0
			}
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Best Selling Books Dashboard"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.source))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.views))
	for i, v := range m.views {
		label := fmt.Sprintf("%d %s", i+1, v.Label)
		if i == m.active {
			tabs[i] = tabActiveStyle.Render(label)
		} else {
			tabs[i] = tabInactiveStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, StyleDim.Render("  │  ")))
	b.WriteString("\n\n")

	if len(m.views) > 0 {
		v := m.views[m.active]
		b.WriteString(render.RenderText(v, render.SpecFor(v.Name)))
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(StyleDim.Render("Reloading..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(tuiErrorStyle.Render("Reload failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
