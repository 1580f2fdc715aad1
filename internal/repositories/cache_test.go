package repositories

import (
	"context"
	"testing"

	"github.com/desertthunder/podshelf/internal/models"
)

func TestCachedRepository(t *testing.T) {
	ctx := context.Background()
	inner := NewSQLRepository(setupTestDB(t))
	repo := NewCachedRepository(inner, 0)
	newCatalogue(t).populate(t, repo)

	t.Run("read through", func(t *testing.T) {
		first, err := repo.GetPodcast(ctx, 1)
		if err != nil {
			t.Fatalf("failed to get podcast: %v", err)
		}
		second, err := repo.GetPodcast(ctx, 1)
		if err != nil {
			t.Fatalf("failed to get podcast: %v", err)
		}
		if first != second {
			t.Error("expected the second read to be served from cache")
		}
		if _, err := repo.GetPodcastTitles(ctx); err != nil {
			t.Fatalf("failed to get titles: %v", err)
		}
		if n := repo.Len(); n != 2 {
			t.Errorf("expected 2 cached entries, got %d", n)
		}
	})

	t.Run("missing podcast not cached", func(t *testing.T) {
		before := repo.Len()
		if _, err := repo.GetPodcast(ctx, 99); err == nil {
			t.Fatal("expected error")
		}
		if repo.Len() != before {
			t.Error("expected misses to be left uncached")
		}
	})

	t.Run("write flushes", func(t *testing.T) {
		writer := mustUser(t, repo, 7, "shyamli")
		rv, _ := models.NewReview(1, writer, 1, 9, "flushed")
		if err := repo.AddReview(ctx, rv); err != nil {
			t.Fatalf("failed to add review: %v", err)
		}
		if n := repo.Len(); n != 0 {
			t.Errorf("expected empty cache after write, got %d", n)
		}

		p, err := repo.GetPodcast(ctx, 1)
		if err != nil {
			t.Fatalf("failed to get podcast: %v", err)
		}
		if len(p.Reviews()) != 1 {
			t.Errorf("expected fresh podcast with 1 review, got %d", len(p.Reviews()))
		}
	})

	t.Run("user writes keep cache", func(t *testing.T) {
		_, _ = repo.GetPodcast(ctx, 2)
		before := repo.Len()
		mustUser(t, repo, 8, "another")
		if repo.Len() != before {
			t.Error("expected user writes to pass through without flushing")
		}
	})
}
