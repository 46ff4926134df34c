package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"syogi/pkg/syogi"
)

func Run(opts Options, logger *zap.Logger) error {
	m, err := NewModel(opts, logger)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// Options configures a TUI session.
type Options struct {
	Handicap syogi.Handicap
	Side     syogi.Side
	TryRule  bool
	Archive  string
}
