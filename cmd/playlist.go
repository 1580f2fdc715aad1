package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/formatter"
	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/tasks"
)

// PlaylistExport writes one user's playlist to --output.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	username := cmd.String("user")
	playlist, err := services.GetUserPlaylist(ctx, repo, username)
	if err != nil {
		return fmt.Errorf("failed to load playlist for %s: %w", username, err)
	}
	podcasts, err := services.PlaylistEpisodePodcasts(ctx, repo, playlist.Episodes())
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(&formatter.PlaylistExport{Playlist: playlist, Podcasts: podcasts}, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("playlist exported", "user", username, "format", format, "path", path)
	return r.writePlain("✓ Exported %s (%s) to %s\n", playlist.Title(), pluralize(playlist.Len(), "episode"), path)
}

// PlaylistExportAll exports several users' playlists concurrently and reports progress as it goes.
func (r *Runner) PlaylistExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	exporter := tasks.NewExporter(repo, r.logger)
	result, err := exporter.BulkExport(ctx, progress, cmd.StringSlice("user"), tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Playlist export")
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %s: %s → %s\n", res.Username, pluralize(res.Episodes, "episode"), res.File)
		} else {
			r.writePlain("✗ %s: %v\n", res.Username, res.Error)
		}
	}
	return r.writePlainln("%d exported, %d failed. Manifest: %s",
		result.SuccessfulExports, result.FailedExports, result.ManifestPath)
}
