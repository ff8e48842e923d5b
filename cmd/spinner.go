package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dorian305/rtls-client/internal/application"
)

type statusFetchedMsg struct {
	status application.Status
	err    error
}

// statusFetchModel spins while the status of a running client is fetched.
type statusFetchModel struct {
	spinner spinner.Model
	addr    string
	fetch   tea.Cmd

	status application.Status
	err    error
	done   bool
}

func newStatusFetchModel(addr string, fetch tea.Cmd) statusFetchModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return statusFetchModel{spinner: s, addr: addr, fetch: fetch}
}

func (m statusFetchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m statusFetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case statusFetchedMsg:
		m.done = true
		m.status = msg.status
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m statusFetchModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s Fetching client status from %s...", m.spinner.View(), m.addr)
}

// fetchStatusWithSpinner shows a spinner on output until fetch returns.
func fetchStatusWithSpinner(
	ctx context.Context,
	output io.Writer,
	addr string,
	fetch func(context.Context) (application.Status, error),
) (application.Status, error) {
	fetchCmd := func() tea.Msg {
		status, err := fetch(ctx)
		return statusFetchedMsg{status: status, err: err}
	}

	p := tea.NewProgram(
		newStatusFetchModel(addr, fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.Status{}, err
	}

	result, ok := finalModel.(statusFetchModel)
	if !ok {
		return application.Status{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.status, result.err
}
