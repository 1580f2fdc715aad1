package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/ingest"
	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
)

// CacheTTL is how long the cached repository keeps podcasts and the title index.
const CacheTTL = 5 * time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, ingestCommand, searchCommand, showCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig resolves the --config file, environment overrides included, and applies the log level.
//
// It is the Before hook of every subcommand.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, config.LogLevel())
	r.logger.Debug("configuration loaded", "path", path, "backend", config.Repository.Backend)
	return ctx, nil
}

// openRepository builds the configured backend behind a read cache. The returned func releases it.
func (r *Runner) openRepository(ctx context.Context) (repositories.Repository, func() error, error) {
	switch r.config.Repository.Backend {
	case shared.BackendDatabase:
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

		if err := shared.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Debug("opened database", "path", r.config.Database.Path)
		return repositories.NewCachedRepository(repositories.NewSQLRepository(db), CacheTTL), db.Close, nil

	case shared.BackendMemory:
		return repositories.NewCachedRepository(repositories.NewMemoryRepository(), CacheTTL), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown repository backend %q", shared.ErrInvalidConfig, r.config.Repository.Backend)
}

// populate loads the catalogue CSVs into repo. Unless reset is set, a repository that already
// holds podcasts is left alone and populate reports false.
func (r *Runner) populate(ctx context.Context, repo repositories.Repository, reset bool) (bool, error) {
	if reset {
		r.logger.Info("resetting repository")
		if err := repo.Reset(ctx); err != nil {
			return false, fmt.Errorf("failed to reset repository: %w", err)
		}
	} else {
		n, err := repo.GetNumberOfPodcasts(ctx)
		if err != nil {
			return false, err
		}
		if n > 0 {
			r.logger.Debug("catalogue already loaded", "podcasts", n)
			return false, nil
		}
	}

	data := r.config.Data
	r.logger.Info("loading catalogue", "podcasts", data.PodcastsPath, "episodes", data.EpisodesPath)
	reader, err := ingest.LoadFiles(data.PodcastsPath, data.EpisodesPath, r.logger)
	if err != nil {
		return false, err
	}
	if err := ingest.Populate(ctx, repo, reader); err != nil {
		return false, err
	}
	r.logger.Info("catalogue loaded", "podcasts", len(reader.Podcasts()), "episodes", len(reader.Episodes()))
	return true, nil
}

// repository opens the configured backend and makes sure it holds a catalogue.
func (r *Runner) repository(ctx context.Context) (repositories.Repository, func() error, error) {
	repo, closeRepo, err := r.openRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := r.populate(ctx, repo, false); err != nil {
		closeRepo()
		return nil, nil, err
	}
	return repo, closeRepo, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
