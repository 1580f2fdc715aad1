package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/shared"
	"github.com/desertthunder/podshelf/internal/ui"
)

// TUILogPath receives log output while the terminal UI owns the screen.
const TUILogPath = "./tmp/podshelf-tui.log"

// TUI launches the interactive terminal browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(TUILogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.config.LogLevel())
	r.SetLogger(fileLogger)

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	model := ui.NewModel(ctx, repo)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
