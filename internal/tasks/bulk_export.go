package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/podshelf/internal/formatter"
	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/shared"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 10
	ManifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: csv)
	OutputDir  string           // Base output directory (default: playlists_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
}

// PlaylistExportResult is the outcome for one user.
type PlaylistExportResult struct {
	Username   string `json:"username"`
	PlaylistID int    `json:"playlist_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Episodes   int    `json:"episodes"`
	File       string `json:"file,omitempty"`
	Success    bool   `json:"success"`
	Error      error  `json:"-"`
}

// BulkExportResult summarises a bulk export. Results are sorted by user name.
type BulkExportResult struct {
	Format            formatter.Format       `json:"format"`
	ExportedAt        time.Time              `json:"exported_at"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

type playlistExportJob struct {
	username string
	export   *formatter.PlaylistExport
}

// manifestEntry adds the error text, which [PlaylistExportResult] keeps as an error value.
type manifestEntry struct {
	PlaylistExportResult
	Error string `json:"error,omitempty"`
}

// BulkExport exports the playlists of the given users concurrently and writes a manifest.
//
// Playlists are loaded in order by a single producer and written by a pool of workers.
// A user that cannot be exported is recorded as a failure and does not stop the others.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	usernames []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	usernames = normalizeUsernames(usernames)
	if len(usernames) == 0 {
		return nil, fmt.Errorf("%w: at least one user is required", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playlists_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, MaxWorkers, len(usernames))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		TotalPlaylists:  len(usernames),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(usernames)),
	}

	jobs := make(chan playlistExportJob, len(usernames))
	results := make(chan PlaylistExportResult, len(usernames))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, username := range usernames {
			if ctx.Err() != nil {
				return
			}

			export, err := e.loadPlaylist(ctx, username)
			if err != nil {
				results <- PlaylistExportResult{
					Username: username,
					Error:    fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			e.sendProgress(prog, ProgressUpdate{
				Phase:   FetchPlaylist,
				Step:    i + 1,
				Total:   len(usernames),
				Message: fmt.Sprintf("Fetched %s (%d episodes)", export.Playlist.Title(), export.Playlist.Len()),
			})
			jobs <- playlistExportJob{username: username, export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		update := ProgressUpdate{Phase: ExportPlaylist, Step: completed, Total: len(usernames), Data: res}
		if res.Success {
			result.SuccessfulExports++
			update.Message = fmt.Sprintf("Exported %s to %s", res.Username, res.File)
		} else {
			result.FailedExports++
			update.Message = fmt.Sprintf("Failed to export %s: %v", res.Username, res.Error)
			e.logger.Warn("playlist export failed", "user", res.Username, "error", res.Error)
		}
		e.sendProgress(prog, update)
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return strings.Compare(a.Username, b.Username)
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, ProgressUpdate{Phase: WriteManifest, Step: 1, Total: 1, Message: "Wrote " + manifestPath})
	return result, nil
}

func (e *Exporter) loadPlaylist(ctx context.Context, username string) (*formatter.PlaylistExport, error) {
	playlist, err := services.GetUserPlaylist(ctx, e.repo, username)
	if err != nil {
		return nil, err
	}
	podcasts, err := services.PlaylistEpisodePodcasts(ctx, e.repo, playlist.Episodes())
	if err != nil {
		return nil, err
	}
	return &formatter.PlaylistExport{Playlist: playlist, Podcasts: podcasts}, nil
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan playlistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSinglePlaylist(job, opts)
	}
}

func (e *Exporter) exportSinglePlaylist(j playlistExportJob, opts BulkExportOpts) PlaylistExportResult {
	playlist := j.export.Playlist
	result := PlaylistExportResult{
		Username:   j.username,
		PlaylistID: playlist.ID(),
		Title:      playlist.Title(),
		Episodes:   playlist.Len(),
	}

	path := filepath.Join(opts.OutputDir, fmt.Sprintf("playlist_%d%s", playlist.ID(), opts.Format.Extension()))
	written, err := formatter.WriteExport(j.export, opts.Format, path)
	if err != nil {
		result.Error = err
		return result
	}
	result.File = written
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	entries := make([]manifestEntry, len(result.Results))
	for i, r := range result.Results {
		entries[i] = manifestEntry{PlaylistExportResult: r}
		if r.Error != nil {
			entries[i].Error = r.Error.Error()
		}
	}

	manifest := struct {
		*BulkExportResult
		Results []manifestEntry `json:"results"`
	}{result, entries}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// normalizeUsernames trims, drops blanks and removes duplicates, keeping first-seen order.
func normalizeUsernames(usernames []string) []string {
	seen := make(map[string]bool, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, u := range usernames {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
