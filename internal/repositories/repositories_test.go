package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.InMemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// backends returns one fresh instance of every [Repository] implementation.
func backends(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"sql":    NewSQLRepository(setupTestDB(t)),
		"cached": NewCachedRepository(NewSQLRepository(setupTestDB(t)), time.Minute),
	}
}

type catalogue struct {
	authors    []*models.Author
	categories []*models.Category
	podcasts   []*models.Podcast
	episodes   []*models.Episode
}

// newCatalogue builds four podcasts:
//
//	1 "Brian Denny Radio"   Brian Denny  [Comedy]             English  episodes 1, 2
//	2 "Tallin Messages"     Tallin       [Religion]           English  episode 3
//	3 "apple orchard hour"  Brian Denny  [Technology, Comedy] Spanish
//	4 "2 Broke Hosts"       Tallin       [Comedy]             English
func newCatalogue(t *testing.T) *catalogue {
	t.Helper()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	brian, err := models.NewAuthor(1, "Brian Denny")
	must(err)
	tallin, err := models.NewAuthor(2, "Tallin Country Church")
	must(err)

	comedy, err := models.NewCategory(1, "Comedy")
	must(err)
	religion, err := models.NewCategory(2, "Religion & Spirituality")
	must(err)
	tech, err := models.NewCategory(3, "Technology")
	must(err)

	itunes := 538533906
	p1, err := models.NewPodcast(1, brian, "Brian Denny Radio", models.PodcastDetails{
		Image: "http://img/1.jpg", Description: "Garage radio", Website: "http://briandenny.com",
		Language: "English", ItunesID: &itunes,
	})
	must(err)
	p1.AddCategory(comedy)
	p2, err := models.NewPodcast(2, tallin, "Tallin Messages", models.PodcastDetails{Language: "English"})
	must(err)
	p2.AddCategory(religion)
	p3, err := models.NewPodcast(3, brian, "apple orchard hour", models.PodcastDetails{Language: "Spanish"})
	must(err)
	p3.AddCategory(tech)
	p3.AddCategory(comedy)
	p4, err := models.NewPodcast(4, tallin, "2 Broke Hosts", models.PodcastDetails{Language: "English"})
	must(err)
	p4.AddCategory(comedy)

	e1, err := models.NewEpisode(1, 1, "Pilot", "http://audio/1.mp3", 1800, "The first one", "2017-12-01 00:09:47+00")
	must(err)
	e2, err := models.NewEpisode(2, 1, "Trailer", "http://audio/2.mp3", 240, "Before", "2017-11-01 00:00:00+00")
	must(err)
	e3, err := models.NewEpisode(3, 2, "Sunday Message", "http://audio/3.mp3", 3600, "A message", "2018-01-05 10:00:00+00")
	must(err)

	return &catalogue{
		authors:    []*models.Author{brian, tallin},
		categories: []*models.Category{comedy, religion, tech},
		podcasts:   []*models.Podcast{p1, p2, p3, p4},
		episodes:   []*models.Episode{e1, e2, e3},
	}
}

func (c *catalogue) populate(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	if err := repo.AddMultipleAuthors(ctx, c.authors); err != nil {
		t.Fatalf("failed to add authors: %v", err)
	}
	if err := repo.AddMultipleCategories(ctx, c.categories); err != nil {
		t.Fatalf("failed to add categories: %v", err)
	}
	if err := repo.AddMultiplePodcasts(ctx, c.podcasts); err != nil {
		t.Fatalf("failed to add podcasts: %v", err)
	}
	if err := repo.AddMultipleEpisodes(ctx, c.episodes); err != nil {
		t.Fatalf("failed to add episodes: %v", err)
	}
}

func mustUser(t *testing.T, repo Repository, id int, name string) *models.User {
	t.Helper()
	u, err := models.NewUser(id, name, "$2a$10$hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := repo.AddUser(context.Background(), u); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	return u
}

func podcastIDs(podcasts []*models.Podcast) []int {
	ids := make([]int, len(podcasts))
	for i, p := range podcasts {
		ids[i] = p.ID()
	}
	return ids
}

func TestPodcastRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			newCatalogue(t).populate(t, repo)

			t.Run("GetPodcast", func(t *testing.T) {
				p, err := repo.GetPodcast(ctx, 1)
				if err != nil {
					t.Fatalf("failed to get podcast: %v", err)
				}
				if p.Title() != "Brian Denny Radio" || p.AuthorName() != "Brian Denny" {
					t.Errorf("unexpected podcast %v", p)
				}
				if got := p.CategoryNames(" | "); got != "Comedy" {
					t.Errorf("expected categories Comedy, got %q", got)
				}
				if got := len(p.Episodes()); got != 2 {
					t.Errorf("expected 2 episodes, got %d", got)
				}
			})

			t.Run("GetPodcast missing", func(t *testing.T) {
				if _, err := repo.GetPodcast(ctx, 99); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			})

			t.Run("ordering", func(t *testing.T) {
				byTitle, err := repo.GetPodcasts(ctx)
				if err != nil {
					t.Fatalf("failed to get podcasts: %v", err)
				}
				if got, want := podcastIDs(byTitle), []int{4, 1, 2, 3}; !slices.Equal(got, want) {
					t.Errorf("expected title order %v, got %v", want, got)
				}

				byID, err := repo.GetPodcastsByID(ctx)
				if err != nil {
					t.Fatalf("failed to get podcasts: %v", err)
				}
				if got, want := podcastIDs(byID), []int{1, 2, 3, 4}; !slices.Equal(got, want) {
					t.Errorf("expected id order %v, got %v", want, got)
				}
			})

			t.Run("counts", func(t *testing.T) {
				counts := []struct {
					name string
					get  func(context.Context) (int, error)
					want int
				}{
					{"podcasts", repo.GetNumberOfPodcasts, 4},
					{"episodes", repo.GetNumberOfEpisodes, 3},
					{"authors", repo.GetNumberOfAuthors, 2},
				}
				for _, c := range counts {
					got, err := c.get(ctx)
					if err != nil {
						t.Fatalf("%s: count failed: %v", c.name, err)
					}
					if got != c.want {
						t.Errorf("%s: expected %d, got %d", c.name, c.want, got)
					}
				}
			})

			t.Run("GetPodcastsByAlphabet", func(t *testing.T) {
				titles, err := repo.GetPodcastTitles(ctx)
				if err != nil {
					t.Fatalf("failed to get titles: %v", err)
				}
				if len(titles) != 4 {
					t.Fatalf("expected 4 titles, got %v", titles)
				}
				podcasts, err := repo.GetPodcastsByAlphabet(ctx, titles)
				if err != nil {
					t.Fatalf("failed to get podcasts: %v", err)
				}
				if got, want := podcastIDs(podcasts), []int{3, 1, 2, 4}; !slices.Equal(got, want) {
					t.Errorf("expected alphabet order %v, got %v", want, got)
				}

				subset, err := repo.GetPodcastsByAlphabet(ctx, []string{"Tallin Messages"})
				if err != nil {
					t.Fatalf("failed to get podcasts: %v", err)
				}
				if got := podcastIDs(subset); !slices.Equal(got, []int{2}) {
					t.Errorf("expected only podcast 2, got %v", got)
				}

				repeated := append([]string{"Tallin Messages"}, slices.Repeat([]string{"Nothing"}, inClauseLimit)...)
				repeated = append(repeated, "Tallin Messages")
				once, err := repo.GetPodcastsByAlphabet(ctx, repeated)
				if err != nil {
					t.Fatalf("failed to get podcasts: %v", err)
				}
				if got := podcastIDs(once); !slices.Equal(got, []int{2}) {
					t.Errorf("expected podcast 2 once for a repeated title, got %v", got)
				}
			})

			t.Run("GetRandomPodcasts", func(t *testing.T) {
				podcasts, err := repo.GetRandomPodcasts(ctx)
				if err != nil {
					t.Fatalf("failed to get random podcasts: %v", err)
				}
				ids := podcastIDs(podcasts)
				slices.Sort(ids)
				if !slices.Equal(ids, []int{1, 2, 3, 4}) {
					t.Errorf("expected every podcast once, got %v", ids)
				}
			})

			t.Run("search", func(t *testing.T) {
				tests := []struct {
					name   string
					search func(context.Context, string) ([]*models.Podcast, error)
					query  string
					want   []int
				}{
					{"title case-insensitive", repo.SearchPodcastsByTitle, "  BRIAN ", []int{1}},
					{"title no match", repo.SearchPodcastsByTitle, "zzz", nil},
					{"title wildcard is literal", repo.SearchPodcastsByTitle, "%", nil},
					{"author", repo.SearchPodcastsByAuthor, "tallin", []int{4, 2}},
					{"category", repo.SearchPodcastsByCategory, "comedy", []int{4, 1, 3}},
					{"language", repo.SearchPodcastsByLanguage, "span", []int{3}},
				}
				for _, tt := range tests {
					t.Run(tt.name, func(t *testing.T) {
						got, err := tt.search(ctx, tt.query)
						if err != nil {
							t.Fatalf("search failed: %v", err)
						}
						if ids := podcastIDs(got); !slices.Equal(ids, tt.want) && !(len(ids) == 0 && len(tt.want) == 0) {
							t.Errorf("expected %v, got %v", tt.want, ids)
						}
					})
				}
			})

			t.Run("upsert", func(t *testing.T) {
				p, err := models.NewPodcast(2, nil, "Tallin Messages (Archive)", models.PodcastDetails{})
				if err != nil {
					t.Fatalf("failed to build podcast: %v", err)
				}
				if err := repo.AddPodcast(ctx, p); err != nil {
					t.Fatalf("failed to upsert podcast: %v", err)
				}
				got, err := repo.GetPodcast(ctx, 2)
				if err != nil {
					t.Fatalf("failed to get podcast: %v", err)
				}
				if got.Title() != "Tallin Messages (Archive)" {
					t.Errorf("expected updated title, got %q", got.Title())
				}
				if n, _ := repo.GetNumberOfPodcasts(ctx); n != 4 {
					t.Errorf("expected upsert to keep 4 podcasts, got %d", n)
				}
			})
		})
	}
}

func TestCategoryAndAuthorRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			newCatalogue(t).populate(t, repo)

			categories, err := repo.GetCategories(ctx)
			if err != nil {
				t.Fatalf("failed to get categories: %v", err)
			}
			var names []string
			for _, c := range categories {
				names = append(names, c.Name())
			}
			if want := []string{"Comedy", "Religion & Spirituality", "Technology"}; !slices.Equal(names, want) {
				t.Errorf("expected %v, got %v", want, names)
			}

			c, err := repo.GetCategory(ctx, "technology")
			if err != nil || c.ID() != 3 {
				t.Errorf("expected category 3, got %v (%v)", c, err)
			}
			if _, err := repo.GetCategory(ctx, "Jazz"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			authors, err := repo.GetAuthors(ctx)
			if err != nil {
				t.Fatalf("failed to get authors: %v", err)
			}
			if len(authors) != 2 || authors[0].Name() != "Brian Denny" {
				t.Errorf("unexpected authors %v", authors)
			}
		})
	}
}

func TestEpisodeRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := newCatalogue(t)
			cat.populate(t, repo)

			e, err := repo.GetEpisode(ctx, 3)
			if err != nil {
				t.Fatalf("failed to get episode: %v", err)
			}
			if !e.Equal(cat.episodes[2]) || e.PubDate() != cat.episodes[2].PubDate() || e.PodcastID() != 2 {
				t.Errorf("expected %v, got %v", cat.episodes[2], e)
			}

			if _, err := repo.GetEpisode(ctx, 42); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			forPodcast, err := repo.GetEpisodesForPodcast(ctx, 1)
			if err != nil {
				t.Fatalf("failed to get episodes: %v", err)
			}
			if len(forPodcast) != 2 || forPodcast[0].ID() != 1 || forPodcast[1].ID() != 2 {
				t.Errorf("unexpected episodes %v", forPodcast)
			}

			unknown, err := repo.GetEpisodesForPodcast(ctx, 99)
			if err != nil || len(unknown) != 0 {
				t.Errorf("expected no episodes for unknown podcast, got %v (%v)", unknown, err)
			}

			if n, _ := repo.GetNumberOfEpisodesForPodcast(ctx, 1); n != 2 {
				t.Errorf("expected 2 episodes, got %d", n)
			}

			all, err := repo.GetEpisodes(ctx)
			if err != nil {
				t.Fatalf("failed to get episodes: %v", err)
			}
			if len(all) != 3 || all[0].ID() != 1 || all[2].ID() != 3 {
				t.Errorf("expected episodes ordered by id, got %v", all)
			}
		})
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			u := mustUser(t, repo, 7, "shyamli")

			got, err := repo.GetUser(ctx, "shyamli")
			if err != nil {
				t.Fatalf("failed to get user: %v", err)
			}
			if got.ID() != u.ID() || got.PasswordHash() != u.PasswordHash() {
				t.Errorf("expected %v, got %v", u, got)
			}

			byID, err := repo.GetUserByID(ctx, 7)
			if err != nil || byID.Username() != "shyamli" {
				t.Errorf("expected shyamli, got %v (%v)", byID, err)
			}

			if _, err := repo.GetUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if _, err := repo.GetUserByID(ctx, 8); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			dup, _ := models.NewUser(8, "shyamli", "other")
			if err := repo.AddUser(ctx, dup); !errors.Is(err, ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}

			if n, _ := repo.GetNumberOfUsers(ctx); n != 1 {
				t.Errorf("expected 1 user, got %d", n)
			}
		})
	}
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			newCatalogue(t).populate(t, repo)
			writer := mustUser(t, repo, 7, "shyamli")

			for i, rating := range []int{4, 5} {
				rv, err := models.NewReview(i+1, writer, 1, rating, "great show")
				if err != nil {
					t.Fatalf("failed to build review: %v", err)
				}
				if err := repo.AddReview(ctx, rv); err != nil {
					t.Fatalf("failed to add review: %v", err)
				}
			}

			reviews, err := repo.GetReviewsForPodcast(ctx, 1)
			if err != nil {
				t.Fatalf("failed to get reviews: %v", err)
			}
			if len(reviews) != 2 || reviews[0].Writer().Username() != "shyamli" {
				t.Fatalf("unexpected reviews %v", reviews)
			}

			p, err := repo.GetPodcast(ctx, 1)
			if err != nil {
				t.Fatalf("failed to get podcast: %v", err)
			}
			if avg := p.AverageRating(); avg != 4.5 {
				t.Errorf("expected average 4.5, got %v", avg)
			}

			all, _ := repo.GetReviews(ctx)
			if len(all) != 2 {
				t.Errorf("expected 2 reviews, got %d", len(all))
			}

			next, err := models.NewReview(models.UnassignedID, writer, 1, 3, "numbered on store")
			if err != nil {
				t.Fatalf("failed to build review: %v", err)
			}
			if err := repo.AddReview(ctx, next); err != nil {
				t.Fatalf("failed to add unnumbered review: %v", err)
			}
			if next.ID() != 3 {
				t.Errorf("expected the store to number the review 3, got %d", next.ID())
			}
			if all, _ := repo.GetReviews(ctx); len(all) != 3 {
				t.Errorf("expected 3 reviews, got %d", len(all))
			}
		})
	}
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat := newCatalogue(t)
			cat.populate(t, repo)
			owner := mustUser(t, repo, 7, "shyamli")

			if _, err := repo.GetPlaylistByUser(ctx, 7); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound before creation, got %v", err)
			}

			playlist, err := models.NewPlaylist(7, owner, "shyamli's playlist")
			if err != nil {
				t.Fatalf("failed to build playlist: %v", err)
			}
			if err := repo.AddPlaylist(ctx, playlist); err != nil {
				t.Fatalf("failed to add playlist: %v", err)
			}

			playlist.AddEpisode(cat.episodes[2])
			playlist.AddEpisode(cat.episodes[0])
			if err := repo.UpdateUsersPlaylist(ctx, playlist); err != nil {
				t.Fatalf("failed to update playlist: %v", err)
			}

			got, err := repo.GetPlaylistByUser(ctx, 7)
			if err != nil {
				t.Fatalf("failed to get playlist: %v", err)
			}
			if got.Title() != "shyamli's playlist" || got.Owner().ID() != 7 {
				t.Errorf("unexpected playlist %v", got)
			}
			episodes := got.Episodes()
			if len(episodes) != 2 || episodes[0].ID() != 3 || episodes[1].ID() != 1 {
				t.Errorf("expected episodes [3 1] in insertion order, got %v", episodes)
			}

			playlist.RemoveEpisode(cat.episodes[2])
			if err := repo.UpdateUsersPlaylist(ctx, playlist); err != nil {
				t.Fatalf("failed to update playlist: %v", err)
			}
			got, _ = repo.GetPlaylistByUser(ctx, 7)
			if got.Len() != 1 {
				t.Errorf("expected 1 episode after removal, got %d", got.Len())
			}
		})
	}
}

func TestSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			newCatalogue(t).populate(t, repo)
			mustUser(t, repo, 7, "shyamli")

			s, _ := models.NewPodcastSubscription(1, 7, 2)
			for range 2 {
				if err := repo.AddSubscription(ctx, s); err != nil {
					t.Fatalf("failed to subscribe: %v", err)
				}
			}

			subs, err := repo.GetSubscriptionsForUser(ctx, 7)
			if err != nil {
				t.Fatalf("failed to get subscriptions: %v", err)
			}
			if len(subs) != 1 || subs[0].PodcastID() != 2 {
				t.Fatalf("expected one subscription to podcast 2, got %v", subs)
			}

			u, err := repo.GetUser(ctx, "shyamli")
			if err != nil {
				t.Fatalf("failed to get user: %v", err)
			}
			if !u.SubscribedTo(2) {
				t.Error("expected user to be subscribed to podcast 2")
			}

			if err := repo.RemoveSubscription(ctx, s); err != nil {
				t.Fatalf("failed to unsubscribe: %v", err)
			}
			subs, _ = repo.GetSubscriptionsForUser(ctx, 7)
			if len(subs) != 0 {
				t.Errorf("expected no subscriptions, got %v", subs)
			}
		})
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			newCatalogue(t).populate(t, repo)
			mustUser(t, repo, 7, "shyamli")

			if err := repo.Reset(ctx); err != nil {
				t.Fatalf("failed to reset: %v", err)
			}
			if n, _ := repo.GetNumberOfPodcasts(ctx); n != 0 {
				t.Errorf("expected no podcasts, got %d", n)
			}
			if n, _ := repo.GetNumberOfUsers(ctx); n != 0 {
				t.Errorf("expected no users, got %d", n)
			}
			if _, err := repo.GetPodcast(ctx, 1); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after reset, got %v", err)
			}
		})
	}
}
