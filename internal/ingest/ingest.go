// Package ingest reads the catalogue CSV files and loads them into a repository.
//
// Podcasts must be read before episodes so that every episode can be attached to its parent.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
)

// UnknownAuthor names the author of podcasts whose author column is empty.
const UnknownAuthor = "Unknown author"

var (
	podcastColumns = []string{"id", "title", "image", "description", "website", "itunes_id", "language", "author", "categories"}
	episodeColumns = []string{"id", "podcast_id", "title", "audio", "audio_length", "description", "pub_date"}
)

// Reader accumulates the entities parsed from the catalogue files.
//
// Authors and categories are deduplicated by name and numbered from 1 in order of first appearance.
type Reader struct {
	logger *log.Logger

	podcasts     []*models.Podcast
	podcastIndex map[int]*models.Podcast
	episodes     []*models.Episode
	episodeIDs   map[int]struct{}

	authors       []*models.Author
	authorsByName map[string]*models.Author

	categories       []*models.Category
	categoriesByName map[string]*models.Category
}

// NewReader creates an empty [Reader]. A nil logger discards skip notices.
func NewReader(logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{
		logger:           logger,
		podcastIndex:     make(map[int]*models.Podcast),
		episodeIDs:       make(map[int]struct{}),
		authorsByName:    make(map[string]*models.Author),
		categoriesByName: make(map[string]*models.Category),
	}
}

func (r *Reader) Podcasts() []*models.Podcast    { return r.podcasts }
func (r *Reader) Episodes() []*models.Episode    { return r.episodes }
func (r *Reader) Authors() []*models.Author      { return r.authors }
func (r *Reader) Categories() []*models.Category { return r.categories }

// row is one CSV record addressed by header name.
type row struct {
	line   int
	fields map[string]string
}

func (rw row) str(col string) string { return rw.fields[col] }

func (rw row) integer(col string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(rw.fields[col]))
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: column %s: %q is not an integer", shared.ErrMalformedCSV, rw.line, col, rw.fields[col])
	}
	return v, nil
}

// readRows parses src with a header row that must contain every column in required.
func readRows(src io.Reader, required []string, fn func(row) error) error {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: missing header", shared.ErrMalformedCSV)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedCSV, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%w: missing column %q", shared.ErrMalformedCSV, col)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedCSV, err)
		}

		fields := make(map[string]string, len(required))
		for _, col := range required {
			if i := index[col]; i < len(record) {
				fields[col] = record[i]
			}
		}
		if err := fn(row{line: line, fields: fields}); err != nil {
			return err
		}
	}
}

// ReadPodcasts parses the podcast file. A repeated podcast id keeps its first row.
func (r *Reader) ReadPodcasts(src io.Reader) error {
	return readRows(src, podcastColumns, func(rw row) error {
		id, err := rw.integer("id")
		if err != nil {
			return err
		}
		if _, seen := r.podcastIndex[id]; seen {
			r.logger.Warn("duplicate podcast skipped", "line", rw.line, "id", id)
			return nil
		}

		details := models.PodcastDetails{
			Image:       rw.str("image"),
			Description: rw.str("description"),
			Website:     rw.str("website"),
			Language:    rw.str("language"),
		}
		if strings.TrimSpace(rw.str("itunes_id")) != "" {
			itunesID, err := rw.integer("itunes_id")
			if err != nil {
				return err
			}
			details.ItunesID = &itunesID
		}

		author, err := r.author(rw.str("author"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rw.line, err)
		}

		podcast, err := models.NewPodcast(id, author, rw.str("title"), details)
		if err != nil {
			return fmt.Errorf("line %d: %w", rw.line, err)
		}
		author.AddPodcast(id)

		for name := range strings.SplitSeq(rw.str("categories"), "|") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			category, err := r.category(name)
			if err != nil {
				return fmt.Errorf("line %d: %w", rw.line, err)
			}
			podcast.AddCategory(category)
		}

		r.podcasts = append(r.podcasts, podcast)
		r.podcastIndex[id] = podcast
		return nil
	})
}

func (r *Reader) author(name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownAuthor
	}
	if a, ok := r.authorsByName[name]; ok {
		return a, nil
	}
	a, err := models.NewAuthor(len(r.authors)+1, name)
	if err != nil {
		return nil, err
	}
	r.authors = append(r.authors, a)
	r.authorsByName[name] = a
	return a, nil
}

func (r *Reader) category(name string) (*models.Category, error) {
	if c, ok := r.categoriesByName[name]; ok {
		return c, nil
	}
	c, err := models.NewCategory(len(r.categories)+1, name)
	if err != nil {
		return nil, err
	}
	r.categories = append(r.categories, c)
	r.categoriesByName[name] = c
	return c, nil
}

// ReadEpisodes parses the episode file, skipping rows whose podcast has not been read.
func (r *Reader) ReadEpisodes(src io.Reader) error {
	return readRows(src, episodeColumns, func(rw row) error {
		podcastID, err := rw.integer("podcast_id")
		if err != nil {
			return err
		}
		podcast, ok := r.podcastIndex[podcastID]
		if !ok {
			r.logger.Debug("orphan episode skipped", "line", rw.line, "podcast_id", podcastID)
			return nil
		}

		id, err := rw.integer("id")
		if err != nil {
			return err
		}
		if _, seen := r.episodeIDs[id]; seen {
			r.logger.Warn("duplicate episode skipped", "line", rw.line, "id", id)
			return nil
		}
		length, err := rw.integer("audio_length")
		if err != nil {
			return err
		}

		episode, err := models.NewEpisode(id, podcastID, rw.str("title"), rw.str("audio"), length, rw.str("description"), rw.str("pub_date"))
		if err != nil {
			return fmt.Errorf("line %d: %w", rw.line, err)
		}

		podcast.AddEpisode(episode)
		r.episodes = append(r.episodes, episode)
		r.episodeIDs[id] = struct{}{}
		return nil
	})
}

// LoadFiles opens and reads both catalogue files, podcasts first.
func LoadFiles(podcastsPath, episodesPath string, logger *log.Logger) (*Reader, error) {
	r := NewReader(logger)
	if err := r.readFile(podcastsPath, r.ReadPodcasts); err != nil {
		return nil, err
	}
	if err := r.readFile(episodesPath, r.ReadEpisodes); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", shared.ErrMissingData, path)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Populate writes authors, categories, podcasts and then episodes into repo.
func Populate(ctx context.Context, repo repositories.Repository, r *Reader) error {
	if err := repo.AddMultipleAuthors(ctx, r.Authors()); err != nil {
		return fmt.Errorf("failed to add authors: %w", err)
	}
	if err := repo.AddMultipleCategories(ctx, r.Categories()); err != nil {
		return fmt.Errorf("failed to add categories: %w", err)
	}
	if err := repo.AddMultiplePodcasts(ctx, r.Podcasts()); err != nil {
		return fmt.Errorf("failed to add podcasts: %w", err)
	}
	if err := repo.AddMultipleEpisodes(ctx, r.Episodes()); err != nil {
		return fmt.Errorf("failed to add episodes: %w", err)
	}
	r.logger.Info("catalogue populated",
		"podcasts", len(r.podcasts), "episodes", len(r.episodes),
		"authors", len(r.authors), "categories", len(r.categories))
	return nil
}
