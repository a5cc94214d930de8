package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smileynet/addressbook/internal/contactlist"
	"github.com/smileynet/addressbook/internal/logging"
	"github.com/smileynet/addressbook/internal/watch"
)

// ErrNotTTY is returned by Browse when the output is not a terminal.
var ErrNotTTY = errors.New("tui: browse needs a terminal")

// BrowseOptions configures an interactive browsing session.
type BrowseOptions struct {
	Input  io.Reader   // Key input (default: os.Stdin).
	Output io.Writer   // Terminal output (default: os.Stdout).
	Watch  bool        // Reload when the contacts file changes on disk.
	Logger *zap.Logger // Optional.
}

// Browse runs the contact browser over l until the user quits. Changes are
// saved to l's default path on quit. The returned error is the save error,
// if any.
func Browse(ctx context.Context, l *contactlist.List, opts BrowseOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if !IsTTY(opts.Output) {
		return ErrNotTTY
	}

	p := tea.NewProgram(NewModel(l),
		tea.WithContext(ctx),
		tea.WithInput(opts.Input),
		tea.WithOutput(opts.Output),
		tea.WithAltScreen(),
	)

	if opts.Watch {
		w, err := watch.New(l.Path(), func() { p.Send(ReloadMsg{}) }, watch.WithLogger(log))
		if err != nil {
			log.Warn("file watching disabled", zap.Error(err))
		} else if err := w.Start(ctx); err != nil {
			log.Warn("file watching disabled", zap.Error(err))
			w.Stop()
		} else {
			defer w.Stop()
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
