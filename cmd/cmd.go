// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/formatter"
	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/tasks"
)

const defaultConfigPath = "config.toml"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// serveCommand runs the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the web application until interrupted",
		Flags:  []cli.Flag{configFlag()},
		Before: r.loadConfig,
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Before: r.loadConfig,
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml populated with the defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// ingestCommand loads the catalogue CSVs into the database
func ingestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Load the podcast and episode CSVs into the database backend",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Remove every record before loading",
			},
		},
		Before: r.loadConfig,
		Action: r.Ingest,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalogue",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "by",
				Usage: "Field to search: title, author, category or language",
				Value: string(services.FilterTitle),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Before: r.loadConfig,
		Action: r.Search,
	}
}

func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show a podcast with its episodes and reviews",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "podcast-id",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Before: r.loadConfig,
		Action: r.Show,
	}
}

// playlistCommand handles playlist exports
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Export a user's playlist to a file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User name whose playlist to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown or text",
						Value:   string(formatter.FormatCSV),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: playlist_{id}.{ext})",
					},
				},
				Before: r.loadConfig,
				Action: r.PlaylistExport,
			},
			{
				Name:  "export-all",
				Usage: "Export several users' playlists concurrently with a manifest",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User name to export; repeat for more users",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown or text",
						Value:   string(formatter.FormatCSV),
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: playlists_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers",
						Value: tasks.DefaultWorkers,
					},
				},
				Before: r.loadConfig,
				Action: r.PlaylistExportAll,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing the catalogue.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse the catalogue in the terminal",
		Flags:   []cli.Flag{configFlag()},
		Before:  r.loadConfig,
		Action:  r.TUI,
	}
}
