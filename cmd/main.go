package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "podshelf",
		Usage:    "Browse a podcast catalogue and keep playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatal("application error", "error", err)
	}
}
