package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
	tu "github.com/desertthunder/podshelf/internal/testing"
)

func readFixture(t *testing.T) *Reader {
	t.Helper()
	r := NewReader(nil)
	podcasts, episodes := tu.FixtureReaders()
	if err := r.ReadPodcasts(podcasts); err != nil {
		t.Fatalf("ReadPodcasts failed: %v", err)
	}
	if err := r.ReadEpisodes(episodes); err != nil {
		t.Fatalf("ReadEpisodes failed: %v", err)
	}
	return r
}

func TestReadPodcasts(t *testing.T) {
	r := readFixture(t)

	t.Run("counts", func(t *testing.T) {
		if got := len(r.Podcasts()); got != tu.FixturePodcasts {
			t.Errorf("expected %d podcasts, got %d", tu.FixturePodcasts, got)
		}
		if got := len(r.Authors()); got != tu.FixtureAuthors {
			t.Errorf("expected %d authors, got %d", tu.FixtureAuthors, got)
		}
		if got := len(r.Categories()); got != tu.FixtureCategories {
			t.Errorf("expected %d categories, got %d", tu.FixtureCategories, got)
		}
	})

	t.Run("authors numbered by first appearance", func(t *testing.T) {
		want := []string{"Brian Denny", "Tallin Country Church", UnknownAuthor}
		for i, a := range r.Authors() {
			if a.ID() != i+1 || a.Name() != want[i] {
				t.Errorf("author %d: expected (%d, %q), got (%d, %q)", i, i+1, want[i], a.ID(), a.Name())
			}
		}
	})

	t.Run("shared author instance", func(t *testing.T) {
		first, fourth := r.Podcasts()[0], r.Podcasts()[3]
		if first.Author() != fourth.Author() {
			t.Error("expected podcasts by the same author to share one Author")
		}
		if ids := first.Author().PodcastIDs(); len(ids) != 2 {
			t.Errorf("expected author credited with 2 podcasts, got %v", ids)
		}
	})

	t.Run("empty author", func(t *testing.T) {
		zebra := r.Podcasts()[2]
		if zebra.AuthorName() != UnknownAuthor {
			t.Errorf("expected %q, got %q", UnknownAuthor, zebra.AuthorName())
		}
		if r.Podcasts()[4].Author() != zebra.Author() {
			t.Error("expected every empty author to resolve to the same Unknown author")
		}
	})

	t.Run("categories trimmed and deduplicated", func(t *testing.T) {
		got := r.Podcasts()[0].CategoryNames(" | ")
		if got != "Comedy | Society & Culture" {
			t.Errorf("unexpected categories %q", got)
		}
		broke := r.Podcasts()[4].Categories()
		if len(broke) != 2 || broke[0].ID() != 1 || broke[1].Name() != "Business" {
			t.Errorf("unexpected categories for podcast 5: %v", broke)
		}
	})

	t.Run("empty itunes id", func(t *testing.T) {
		if _, ok := r.Podcasts()[3].ItunesID(); ok {
			t.Error("expected no itunes id")
		}
		if v, ok := r.Podcasts()[0].ItunesID(); !ok || v != 538533906 {
			t.Errorf("expected itunes id 538533906, got %d (%v)", v, ok)
		}
	})
}

func TestReadEpisodes(t *testing.T) {
	r := readFixture(t)

	if got := len(r.Episodes()); got != tu.FixtureEpisodes {
		t.Fatalf("expected %d episodes, got %d", tu.FixtureEpisodes, got)
	}
	for _, e := range r.Episodes() {
		if e.PodcastID() == 99 {
			t.Errorf("orphan episode %d was not skipped", e.ID())
		}
	}
	if got := len(r.Podcasts()[0].Episodes()); got != 3 {
		t.Errorf("expected 3 episodes on podcast 1, got %d", got)
	}
	if got := len(r.Podcasts()[4].Episodes()); got != 0 {
		t.Errorf("expected no episodes on podcast 5, got %d", got)
	}
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "id,title\n1,A\n"},
		{"bad id", "id,title,image,description,website,itunes_id,language,author,categories\nx,A,,,,,,,\n"},
		{"bad itunes id", "id,title,image,description,website,itunes_id,language,author,categories\n1,A,,,,abc,,,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewReader(nil).ReadPodcasts(strings.NewReader(tt.input))
			if !errors.Is(err, shared.ErrMalformedCSV) {
				t.Errorf("expected ErrMalformedCSV, got %v", err)
			}
		})
	}

	t.Run("error carries line", func(t *testing.T) {
		input := "id,title,image,description,website,itunes_id,language,author,categories\n1,A,,,,,,,\nbad,B,,,,,,,\n"
		err := NewReader(nil).ReadPodcasts(strings.NewReader(input))
		if err == nil || !strings.Contains(err.Error(), "line 3") {
			t.Errorf("expected error on line 3, got %v", err)
		}
	})
}

func TestLoadFiles(t *testing.T) {
	t.Run("reads both files", func(t *testing.T) {
		podcasts, episodes := tu.WriteFixtureFiles(t)
		r, err := LoadFiles(podcasts, episodes, nil)
		if err != nil {
			t.Fatalf("LoadFiles failed: %v", err)
		}
		if len(r.Podcasts()) != tu.FixturePodcasts || len(r.Episodes()) != tu.FixtureEpisodes {
			t.Errorf("unexpected counts: %d podcasts, %d episodes", len(r.Podcasts()), len(r.Episodes()))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.csv")
		if _, err := LoadFiles(missing, missing, nil); !errors.Is(err, shared.ErrMissingData) {
			t.Errorf("expected ErrMissingData, got %v", err)
		}
	})
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryRepository()
	if err := Populate(ctx, repo, readFixture(t)); err != nil {
		t.Fatalf("Populate failed: %v", err)
	}

	checks := []struct {
		name string
		get  func(context.Context) (int, error)
		want int
	}{
		{"podcasts", repo.GetNumberOfPodcasts, tu.FixturePodcasts},
		{"episodes", repo.GetNumberOfEpisodes, tu.FixtureEpisodes},
		{"authors", repo.GetNumberOfAuthors, tu.FixtureAuthors},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.get(ctx)
			if err != nil {
				t.Fatalf("count failed: %v", err)
			}
			if got != c.want {
				t.Errorf("expected %d, got %d", c.want, got)
			}
		})
	}
}
