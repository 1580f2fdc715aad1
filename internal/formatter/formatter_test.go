package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/shared"
	th "github.com/desertthunder/podshelf/internal/testing"
)

func newExport(t *testing.T) *PlaylistExport {
	t.Helper()
	owner, err := models.NewUser(7, "shyamli", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	playlist, err := models.NewPlaylist(7, owner, "shyamli's playlist")
	if err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	podcast, err := models.NewPodcast(1, nil, "Brian Denny Radio", models.PodcastDetails{})
	if err != nil {
		t.Fatalf("failed to create podcast: %v", err)
	}

	first, _ := models.NewEpisode(11, 1, "Pilot, Part One", "http://audio/11.mp3", 1800, "", "2017-12-01 00:09:47+00")
	second, _ := models.NewEpisode(12, 2, "Orphaned", "", 3725, "", "2018-01-01 00:00:00+00")
	playlist.AddEpisode(first)
	playlist.AddEpisode(second)

	return &PlaylistExport{
		Playlist: playlist,
		Podcasts: map[int]*models.Podcast{11: podcast},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(newExport(t))
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines: %s", len(lines), data)
		}
		if lines[0] != "ID,Title,Podcast,Length,Published,Link" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		want := `11,"Pilot, Part One",Brian Denny Radio,1800,2017-12-01 00:09:47+00,http://audio/11.mp3`
		if lines[1] != want {
			t.Errorf("expected row %q, got %q", want, lines[1])
		}
		if !strings.HasPrefix(lines[2], "12,Orphaned,,3725,") {
			t.Errorf("expected empty podcast column for unresolved episode, got %q", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(newExport(t))
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# shyamli's playlist",
			"**Owner**: shyamli",
			"**Episodes**: 2",
			"**Total length**: 1:32:05",
			"1. [Pilot, Part One](http://audio/11.mp3) (Brian Denny Radio) [30:00]",
			"2. Orphaned [1:02:05]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(newExport(t))
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: shyamli's playlist") {
			t.Error("Text missing playlist name")
		}
		if !strings.Contains(output, "1. Brian Denny Radio - Pilot, Part One") {
			t.Errorf("Text missing first episode, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Orphaned\n") {
			t.Errorf("Text missing second episode, got:\n%s", output)
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		export := newExport(t)
		for _, e := range export.Playlist.Episodes() {
			export.Playlist.RemoveEpisode(e)
		}
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "ID,Title,Podcast,Length,Published,Link" {
			t.Errorf("expected header only, got %q", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatCSV},
		{"CSV", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"txt", FormatText},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mine.md")
		written, err := WriteExport(newExport(t), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "# shyamli's playlist") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())
		written, err := WriteExport(newExport(t), FormatText, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "playlist_7.txt" {
			t.Errorf("expected playlist_7.txt, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("write failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.csv")
		if _, err := WriteExport(newExport(t), FormatCSV, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
