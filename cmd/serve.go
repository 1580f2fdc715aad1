package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/server"
	"github.com/desertthunder/podshelf/internal/shared"
	"github.com/desertthunder/podshelf/internal/web"
)

// Serve builds the repository and web application, then serves HTTP until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	settings := r.config.Server
	if settings.SessionSecret == shared.DefaultConfig().Server.SessionSecret {
		r.logger.Warn("using the example session secret; set server.session_secret before deploying")
	}

	app, err := web.NewServer(repo, web.Options{
		SessionSecret: settings.SessionSecret,
		LoginRate:     settings.LoginRate,
		LoginBurst:    settings.LoginBurst,
		Logger:        shared.WithLogger(r.logger, "component", "web"),
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	srv := server.NewHTTPServer(settings.Addr(), app)
	if err := server.Serve(ctx, srv, r.logger); err != nil {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}
