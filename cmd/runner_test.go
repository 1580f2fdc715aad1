package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/shared"
	tu "github.com/desertthunder/podshelf/internal/testing"
)

// writeConfig writes a config.toml pointing at the fixture CSVs and returns its path.
func writeConfig(t *testing.T, backend string, port int) string {
	t.Helper()
	podcasts, episodes := tu.WriteFixtureFiles(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	tu.MustWriteFile(t, path, fmt.Sprintf(`
[repository]
backend = %q

[data]
podcasts_path = %q
episodes_path = %q

[database]
path = %q

[server]
port = %d
session_secret = "test-secret-test-secret-test-sec"

[log]
level = "error"
`, backend, podcasts, episodes, filepath.Join(dir, "podshelf.db"), port))
	return path
}

// run executes args against a fresh command tree and returns what the runner printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Logger: log.New(io.Discard)})
	err := runApp(context.Background(), runner, args...)
	return output.String(), err
}

func runApp(ctx context.Context, runner *Runner, args ...string) error {
	app := &cli.Command{
		Name:      "podshelf",
		Commands:  runner.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(ctx, append([]string{"podshelf"}, args...))
}

// runOutput is run for commands expected to succeed.
func runOutput(t *testing.T, args ...string) string {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output, Logger: log.New(io.Discard)})
	if err := runApp(context.Background(), runner, args...); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return output.String()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.config.Repository.Backend != shared.BackendMemory {
				t.Errorf("expected memory backend, got %s", runner.config.Repository.Backend)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("%d found", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\n3 found\n" {
				t.Errorf("expected '\\n3 found\\n', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}
		want := "serve,setup,ingest,search,show,playlist,tui"
		if got := strings.Join(names, ","); got != want {
			t.Errorf("expected commands %s, got %s", want, got)
		}
	})

	t.Run("pluralize", func(t *testing.T) {
		tests := []struct {
			n    int
			want string
		}{
			{0, "0 podcasts"},
			{1, "1 podcast"},
			{1200, "1,200 podcasts"},
		}
		for _, tt := range tests {
			if got := pluralize(tt.n, "podcast"); got != tt.want {
				t.Errorf("pluralize(%d) = %q, want %q", tt.n, got, tt.want)
			}
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "data"), 0o755); err != nil {
			t.Fatalf("failed to create data dir: %v", err)
		}
		tu.MustWriteFile(t, filepath.Join(dir, "data", "podcasts.csv"), tu.PodcastsCSV)
		tu.MustWriteFile(t, filepath.Join(dir, "data", "episodes.csv"), tu.EpisodesCSV)
		t.Chdir(dir)

		out := runOutput(t, "search", "--config", "absent.toml", "--by", "author", "nobody at all")
		if !strings.Contains(out, "0 podcasts found") {
			t.Errorf("expected an empty search, got %q", out)
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[repository]\nbackend = \"tape\"\n")

		_, err := run(t, "search", "--config", path, "brian")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSearch(t *testing.T) {
	config := writeConfig(t, shared.BackendMemory, 5000)

	t.Run("plain output", func(t *testing.T) {
		out := runOutput(t, "search", "--config", config, "--by", "author", "brian")

		for _, want := range []string{"[1] Brian Denny Radio", "[4] apple orchard hour", "2 podcasts found"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		out := runOutput(t, "search", "--config", config, "--by", "category", "--json", "comedy")

		var results []services.PodcastView
		if err := json.Unmarshal([]byte(out), &results); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		var ids []int
		for _, p := range results {
			ids = append(ids, p.ID)
		}
		if fmt.Sprint(ids) != "[1 3 5]" {
			t.Errorf("expected podcasts [1 3 5], got %v", ids)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := run(t, "search", "--config", config, "--by", "colour", "brian")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("blank query", func(t *testing.T) {
		_, err := run(t, "search", "--config", config, " ")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestShow(t *testing.T) {
	config := writeConfig(t, shared.BackendMemory, 5000)

	t.Run("plain output", func(t *testing.T) {
		out := runOutput(t, "show", "--config", config, "1")

		for _, want := range []string{"Brian Denny Radio", "by Brian Denny", "Episodes (3)", "Ep 0: Trailer", "☆☆☆☆☆ 0.0 (0 reviews)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got %q", want, out)
			}
		}
		if strings.Index(out, "Ep 0: Trailer") > strings.Index(out, "Ep 2: Garage Sale") {
			t.Error("expected episodes in publication order")
		}
	})

	t.Run("json output", func(t *testing.T) {
		out := runOutput(t, "show", "--config", config, "--json", "3")

		var detail podcastDetail
		if err := json.Unmarshal([]byte(out), &detail); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if detail.Podcast.Title != "Zebra Talk" || len(detail.Episodes) != 1 {
			t.Errorf("unexpected detail %+v", detail)
		}
	})

	tests := []struct {
		name string
		arg  string
		want error
	}{
		{"non-numeric id", "abc", shared.ErrInvalidArgument},
		{"unknown podcast", "99", services.ErrNonExistentPodcast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "show", "--config", config, tt.arg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetupConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out := runOutput(t, "setup", "config", "--config", path)
	if !strings.Contains(out, "Configuration written to "+path) {
		t.Errorf("unexpected output %q", out)
	}
	loaded, err := shared.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if loaded.Server.Port != shared.DefaultConfig().Server.Port {
		t.Errorf("expected default port, got %d", loaded.Server.Port)
	}

	if _, err := run(t, "setup", "config", "--config", path); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an existing file, got %v", err)
	}
}

func TestDatabaseCommands(t *testing.T) {
	config := writeConfig(t, shared.BackendDatabase, 5000)

	t.Run("setup database", func(t *testing.T) {
		out := runOutput(t, "setup", "database", "--config", config)
		if !strings.Contains(out, "Database ready") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("ingest loads once", func(t *testing.T) {
		out := runOutput(t, "ingest", "--config", config)
		want := fmt.Sprintf("Loaded %d podcasts and %d episodes", tu.FixturePodcasts, tu.FixtureEpisodes)
		if !strings.Contains(out, want) {
			t.Errorf("expected %q, got %q", want, out)
		}

		if out := runOutput(t, "ingest", "--config", config); !strings.Contains(out, "already loaded") {
			t.Errorf("expected second ingest to be skipped, got %q", out)
		}
		if out := runOutput(t, "ingest", "--config", config, "--reset"); !strings.Contains(out, want) {
			t.Errorf("expected reset ingest to reload, got %q", out)
		}
	})

	t.Run("playlist export", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard)})
		cfg, err := shared.ResolveConfig(config)
		if err != nil {
			t.Fatalf("failed to resolve config: %v", err)
		}
		runner.config = cfg

		ctx := context.Background()
		repo, closeRepo, err := runner.repository(ctx)
		if err != nil {
			t.Fatalf("failed to open repository: %v", err)
		}
		if _, err := services.RegisterUser(ctx, repo, "gmichael", "CarelessWhisper1984"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		playlist, err := services.GetUserPlaylist(ctx, repo, "gmichael")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		for _, id := range []int{1, 4} {
			if _, err := services.AddEpisodeToPlaylist(ctx, repo, playlist, id); err != nil {
				t.Fatalf("failed to add episode %d: %v", id, err)
			}
		}
		closeRepo()

		target := filepath.Join(t.TempDir(), "mine.md")
		out := runOutput(t, "playlist", "export", "--config", config, "--user", "gmichael", "--format", "md", "--output", target)
		if !strings.Contains(out, "gmichael's playlist (2 episodes)") {
			t.Errorf("unexpected output %q", out)
		}
		content := tu.MustReadFile(t, target)
		for _, want := range []string{"Ep 1: Pilot", "Hola"} {
			if !strings.Contains(content, want) {
				t.Errorf("expected export to contain %q", want)
			}
		}

		dir := filepath.Join(t.TempDir(), "all")
		out = runOutput(t, "playlist", "export-all", "--config", config, "--user", "gmichael", "--user", "nobody", "--dir", dir)
		if !strings.Contains(out, "1 exported, 1 failed") {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))

		if _, err := run(t, "playlist", "export", "--config", config, "--user", "nobody"); !errors.Is(err, services.ErrUnknownUser) {
			t.Errorf("expected ErrUnknownUser, got %v", err)
		}
		if _, err := run(t, "playlist", "export", "--config", config, "--user", "gmichael", "--format", "pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("ingest requires the database backend", func(t *testing.T) {
		memory := writeConfig(t, shared.BackendMemory, 5000)
		if _, err := run(t, "ingest", "--config", memory); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	port := freePort(t)
	config := writeConfig(t, shared.BackendMemory, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})
	errs := make(chan error, 1)
	go func() {
		errs <- runApp(ctx, runner, "serve", "--config", config)
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/podcasts", port)
	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "apple orchard hour") {
		t.Error("expected the catalogue page to list the fixture podcasts")
	}

	cancel()
	select {
	case err := <-errs:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
