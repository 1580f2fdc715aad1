package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/desertthunder/podshelf/internal/models"
)

const podcastColumns = `
	p.podcast_id, p.title, p.image_url, p.description, p.language, p.website_url, p.itunes_id,
	a.author_id, a.name
	FROM podcasts p
	LEFT JOIN authors a ON a.author_id = p.author_id`

func (r *SQLRepository) AddAuthor(ctx context.Context, author *models.Author) error {
	return r.AddMultipleAuthors(ctx, []*models.Author{author})
}

func (r *SQLRepository) AddMultipleAuthors(ctx context.Context, authors []*models.Author) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range authors {
			if err := upsertAuthor(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertAuthor(ctx context.Context, q querier, a *models.Author) error {
	if a == nil {
		return fmt.Errorf("%w: nil author", models.ErrInvalid)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO authors (author_id, name) VALUES (?, ?)
		ON CONFLICT(author_id) DO UPDATE SET name = excluded.name
	`, a.ID(), a.Name())
	if err != nil {
		return fmt.Errorf("failed to insert author %d: %w", a.ID(), err)
	}
	return nil
}

func (r *SQLRepository) GetAuthors(ctx context.Context) ([]*models.Author, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT author_id, name FROM authors ORDER BY name, author_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := []*models.Author{}
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		a, err := models.NewAuthor(id, name)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return authors, nil
}

func (r *SQLRepository) GetNumberOfAuthors(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM authors")
}

func (r *SQLRepository) AddCategory(ctx context.Context, category *models.Category) error {
	return r.AddMultipleCategories(ctx, []*models.Category{category})
}

func (r *SQLRepository) AddMultipleCategories(ctx context.Context, categories []*models.Category) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range categories {
			if err := upsertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertCategory(ctx context.Context, q querier, c *models.Category) error {
	if c == nil {
		return fmt.Errorf("%w: nil category", models.ErrInvalid)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (category_id, category_name) VALUES (?, ?)
		ON CONFLICT(category_id) DO UPDATE SET category_name = excluded.category_name
	`, c.ID(), c.Name())
	if err != nil {
		return fmt.Errorf("failed to insert category %d: %w", c.ID(), err)
	}
	return nil
}

func (r *SQLRepository) GetCategories(ctx context.Context) ([]*models.Category, error) {
	return r.queryCategories(ctx, "SELECT category_id, category_name FROM categories ORDER BY category_name, category_id")
}

func (r *SQLRepository) GetCategory(ctx context.Context, name string) (*models.Category, error) {
	var id int
	var stored string
	err := r.db.QueryRowContext(ctx,
		"SELECT category_id, category_name FROM categories WHERE LOWER(category_name) = LOWER(TRIM(?))", name,
	).Scan(&id, &stored)
	if err != nil {
		return nil, notFound(err, "category %q", name)
	}
	return models.NewCategory(id, stored)
}

func (r *SQLRepository) queryCategories(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c, err := models.NewCategory(id, name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// AddPodcast upserts the podcast with its author, categories (in order) and attached episodes.
func (r *SQLRepository) AddPodcast(ctx context.Context, podcast *models.Podcast) error {
	return r.AddMultiplePodcasts(ctx, []*models.Podcast{podcast})
}

func (r *SQLRepository) AddMultiplePodcasts(ctx context.Context, podcasts []*models.Podcast) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range podcasts {
			if err := upsertPodcast(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertPodcast(ctx context.Context, q querier, p *models.Podcast) error {
	if p == nil {
		return fmt.Errorf("%w: nil podcast", models.ErrInvalid)
	}

	var authorID sql.NullInt64
	if a := p.Author(); a != nil {
		if err := upsertAuthor(ctx, q, a); err != nil {
			return err
		}
		authorID = sql.NullInt64{Int64: int64(a.ID()), Valid: true}
	}

	var itunesID sql.NullInt64
	if v, ok := p.ItunesID(); ok {
		itunesID = sql.NullInt64{Int64: int64(v), Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO podcasts (podcast_id, title, image_url, description, language, website_url, author_id, itunes_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(podcast_id) DO UPDATE SET
			title = excluded.title,
			image_url = excluded.image_url,
			description = excluded.description,
			language = excluded.language,
			website_url = excluded.website_url,
			author_id = excluded.author_id,
			itunes_id = excluded.itunes_id
	`, p.ID(), p.Title(), p.Image(), p.Description(), p.Language(), p.Website(), authorID, itunesID)
	if err != nil {
		return fmt.Errorf("failed to insert podcast %d: %w", p.ID(), err)
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM podcast_categories WHERE podcast_id = ?", p.ID()); err != nil {
		return fmt.Errorf("failed to clear categories of podcast %d: %w", p.ID(), err)
	}
	for _, c := range p.Categories() {
		if err := upsertCategory(ctx, q, c); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			"INSERT INTO podcast_categories (podcast_id, category_id) VALUES (?, ?)", p.ID(), c.ID(),
		); err != nil {
			return fmt.Errorf("failed to link category %d to podcast %d: %w", c.ID(), p.ID(), err)
		}
	}

	for _, e := range p.Episodes() {
		if err := upsertEpisode(ctx, q, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) GetPodcast(ctx context.Context, id int) (*models.Podcast, error) {
	podcasts, err := r.queryPodcasts(ctx, "SELECT"+podcastColumns+" WHERE p.podcast_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(podcasts) == 0 {
		return nil, fmt.Errorf("podcast %d: %w", id, ErrNotFound)
	}
	return podcasts[0], nil
}

func (r *SQLRepository) GetPodcasts(ctx context.Context) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx, "SELECT"+podcastColumns+" ORDER BY p.title, p.podcast_id")
}

func (r *SQLRepository) GetPodcastsByID(ctx context.Context) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx, "SELECT"+podcastColumns+" ORDER BY p.podcast_id")
}

func (r *SQLRepository) GetNumberOfPodcasts(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM podcasts")
}

func (r *SQLRepository) GetPodcastTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT title FROM podcasts ORDER BY title, podcast_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query podcast titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan podcast title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return titles, nil
}

// GetPodcastsByAlphabet returns each podcast once, however often its title is asked for.
func (r *SQLRepository) GetPodcastsByAlphabet(ctx context.Context, titles []string) ([]*models.Podcast, error) {
	seen := make(map[string]struct{}, len(titles))
	unique := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			unique = append(unique, t)
		}
	}

	podcasts := []*models.Podcast{}
	for chunk := range slices.Chunk(unique, inClauseLimit) {
		found, err := r.queryPodcasts(ctx,
			"SELECT"+podcastColumns+" WHERE p.title IN ("+placeholders(len(chunk))+") ORDER BY p.title, p.podcast_id",
			stringArgs(chunk)...,
		)
		if err != nil {
			return nil, err
		}
		podcasts = append(podcasts, found...)
	}
	models.SortPodcastsAlphabetically(podcasts)
	return podcasts, nil
}

func (r *SQLRepository) GetRandomPodcasts(ctx context.Context) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx, "SELECT"+podcastColumns+" ORDER BY RANDOM() LIMIT ?", RandomPodcastLimit)
}

func (r *SQLRepository) SearchPodcastsByTitle(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx,
		"SELECT"+podcastColumns+` WHERE LOWER(p.title) LIKE ? ESCAPE '\' ORDER BY p.title, p.podcast_id`,
		likePattern(text))
}

func (r *SQLRepository) SearchPodcastsByAuthor(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx,
		"SELECT"+podcastColumns+` WHERE LOWER(a.name) LIKE ? ESCAPE '\' ORDER BY p.title, p.podcast_id`,
		likePattern(text))
}

func (r *SQLRepository) SearchPodcastsByLanguage(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx,
		"SELECT"+podcastColumns+` WHERE LOWER(p.language) LIKE ? ESCAPE '\' ORDER BY p.title, p.podcast_id`,
		likePattern(text))
}

func (r *SQLRepository) SearchPodcastsByCategory(ctx context.Context, text string) ([]*models.Podcast, error) {
	return r.queryPodcasts(ctx, "SELECT"+podcastColumns+`
		WHERE p.podcast_id IN (
			SELECT pc.podcast_id FROM podcast_categories pc
			JOIN categories c ON c.category_id = pc.category_id
			WHERE LOWER(c.category_name) LIKE ? ESCAPE '\'
		)
		ORDER BY p.title, p.podcast_id`, likePattern(text))
}

// queryPodcasts scans podcast rows (sharing one *Author per author id) and then hydrates them.
func (r *SQLRepository) queryPodcasts(ctx context.Context, query string, args ...any) ([]*models.Podcast, error) {
	podcasts, err := r.scanPodcasts(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.hydratePodcasts(ctx, podcasts); err != nil {
		return nil, err
	}
	return podcasts, nil
}

func (r *SQLRepository) scanPodcasts(ctx context.Context, query string, args ...any) ([]*models.Podcast, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query podcasts: %w", err)
	}
	defer rows.Close()

	authors := make(map[int]*models.Author)
	podcasts := []*models.Podcast{}
	for rows.Next() {
		var id int
		var title, image, description, language, website string
		var itunesID, authorID sql.NullInt64
		var authorName sql.NullString
		if err := rows.Scan(&id, &title, &image, &description, &language, &website, &itunesID, &authorID, &authorName); err != nil {
			return nil, fmt.Errorf("failed to scan podcast: %w", err)
		}

		var author *models.Author
		if authorID.Valid {
			aid := int(authorID.Int64)
			if author = authors[aid]; author == nil {
				if author, err = models.NewAuthor(aid, authorName.String); err != nil {
					return nil, err
				}
				authors[aid] = author
			}
		}

		details := models.PodcastDetails{Image: image, Description: description, Website: website, Language: language}
		if itunesID.Valid {
			v := int(itunesID.Int64)
			details.ItunesID = &v
		}

		p, err := models.NewPodcast(id, author, title, details)
		if err != nil {
			return nil, err
		}
		if author != nil {
			author.AddPodcast(id)
		}
		podcasts = append(podcasts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return podcasts, nil
}

// hydratePodcasts attaches categories, episodes and reviews to already-scanned podcasts.
func (r *SQLRepository) hydratePodcasts(ctx context.Context, podcasts []*models.Podcast) error {
	if len(podcasts) == 0 {
		return nil
	}

	byID := make(map[int]*models.Podcast, len(podcasts))
	ids := make([]int, len(podcasts))
	for i, p := range podcasts {
		byID[p.ID()] = p
		ids[i] = p.ID()
	}

	for chunk := range slices.Chunk(ids, inClauseLimit) {
		in := "(" + placeholders(len(chunk)) + ")"
		args := intArgs(chunk)

		if err := r.attachCategories(ctx, byID, in, args); err != nil {
			return err
		}

		episodes, err := r.queryEpisodes(ctx, "SELECT"+episodeColumns+" WHERE podcast_id IN "+in+" ORDER BY episode_id", args...)
		if err != nil {
			return err
		}
		for _, e := range episodes {
			byID[e.PodcastID()].AddEpisode(e)
		}

		reviews, err := r.queryReviews(ctx, "SELECT"+reviewColumns+" WHERE r.podcast_id IN "+in+" ORDER BY r.review_id", args...)
		if err != nil {
			return err
		}
		for _, rv := range reviews {
			byID[rv.PodcastID()].AddReview(rv)
		}
	}
	return nil
}

func (r *SQLRepository) attachCategories(ctx context.Context, byID map[int]*models.Podcast, in string, args []any) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pc.podcast_id, c.category_id, c.category_name
		FROM podcast_categories pc
		JOIN categories c ON c.category_id = pc.category_id
		WHERE pc.podcast_id IN `+in+`
		ORDER BY pc.id`, args...)
	if err != nil {
		return fmt.Errorf("failed to query podcast categories: %w", err)
	}
	defer rows.Close()

	categories := make(map[int]*models.Category)
	for rows.Next() {
		var podcastID, categoryID int
		var name string
		if err := rows.Scan(&podcastID, &categoryID, &name); err != nil {
			return fmt.Errorf("failed to scan podcast category: %w", err)
		}
		c := categories[categoryID]
		if c == nil {
			if c, err = models.NewCategory(categoryID, name); err != nil {
				return err
			}
			categories[categoryID] = c
		}
		byID[podcastID].AddCategory(c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}
