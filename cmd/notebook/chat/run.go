package chat

import (
	"context"
	"fmt"

	"notebook/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive program and blocks until it exits. Requests
// still in flight are cancelled on return.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts.Ctx = ctx

	logging.Get(logging.CategoryUI).Info("starting interactive session")
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session: %w", err)
	}
	return nil
}
