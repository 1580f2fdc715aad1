package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/podshelf/internal/services"
	"github.com/desertthunder/podshelf/internal/shared"
)

// podcastDetail is the JSON shape printed by show.
type podcastDetail struct {
	Podcast  services.PodcastView   `json:"podcast"`
	Episodes []services.EpisodeView `json:"episodes"`
	Rating   services.Rating        `json:"rating"`
}

// Ingest loads the catalogue CSVs into the database backend.
func (r *Runner) Ingest(ctx context.Context, cmd *cli.Command) error {
	if r.config.Repository.Backend != shared.BackendDatabase {
		return fmt.Errorf("%w: ingest writes to the %q backend, configured backend is %q",
			shared.ErrInvalidConfig, shared.BackendDatabase, r.config.Repository.Backend)
	}

	repo, closeRepo, err := r.openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	loaded, err := r.populate(ctx, repo, cmd.Bool("reset"))
	if err != nil {
		return err
	}
	if !loaded {
		return r.writePlain("Catalogue already loaded; pass --reset to reload it\n")
	}

	podcasts, err := repo.GetNumberOfPodcasts(ctx)
	if err != nil {
		return err
	}
	episodes, err := repo.GetNumberOfEpisodes(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Loaded %s podcasts and %s episodes into %s\n",
		humanize.Comma(int64(podcasts)), humanize.Comma(int64(episodes)), r.config.Database.Path)
}

// Search prints the podcasts matching the query argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}
	filter, ok := services.ParseFilter(cmd.String("by"))
	if !ok {
		return fmt.Errorf("%w: --by must be title, author, category or language, got %q", shared.ErrInvalidFlag, cmd.String("by"))
	}

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	results, err := services.SearchResults(ctx, repo, query, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	r.writePlainHeader(fmt.Sprintf("Podcasts with %s matching %q", filter, query))
	for _, p := range results {
		r.writePlain("[%d] %s\n", p.ID, p.Title)
		r.writePlain("    %s", p.Author)
		if p.Categories != "" {
			r.writePlain(" • %s", p.Categories)
		}
		r.writePlain("\n")
	}
	return r.writePlainln("%s found", pluralize(len(results), "podcast"))
}

// Show prints a podcast with its episodes, rating and reviews.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("podcast-id")
	if arg == "" {
		return fmt.Errorf("%w: a podcast id is required", shared.ErrMissingArgument)
	}
	podcastID, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: podcast id must be a number, got %q", shared.ErrInvalidArgument, arg)
	}

	repo, closeRepo, err := r.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	podcast, err := services.GetPodcastByID(ctx, repo, podcastID)
	if err != nil {
		return err
	}
	episodes, err := services.GetEpisodes(ctx, repo, podcastID)
	if err != nil {
		return err
	}
	rating, err := services.GetAverageRating(ctx, repo, podcastID)
	if err != nil {
		return err
	}

	detail := podcastDetail{Podcast: podcast, Episodes: services.NewEpisodeViews(episodes), Rating: rating}
	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}
	return r.writePodcast(detail)
}

func (r *Runner) writePodcast(d podcastDetail) error {
	p := d.Podcast
	r.writePlainHeader(p.Title)
	r.writePlain("by %s\n", p.Author)
	if p.Categories != "" {
		r.writePlain("Categories: %s\n", p.Categories)
	}
	if p.Language != "" {
		r.writePlain("Language:   %s\n", p.Language)
	}
	if p.Website != "" {
		r.writePlain("Website:    %s\n", p.Website)
	}
	r.writePlain("Rating:     %s %.1f (%s)\n", d.Rating.Stars, d.Rating.Number, pluralize(len(p.Reviews), "review"))
	if p.Description != "" {
		r.writePlainln("%s", p.Description)
	}

	r.writePlainln("Episodes (%d)", len(d.Episodes))
	for _, e := range d.Episodes {
		r.writePlain("  [%d] %s (%s, %s)\n", e.ID, e.Title, e.Duration, e.PubDate)
	}

	if len(p.Reviews) > 0 {
		r.writePlainln("Reviews")
		for _, rv := range p.Reviews {
			r.writePlain("  %s %d/5 %s: %s\n", rv.Username, rv.Rating, rv.Age, rv.Comment)
		}
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
