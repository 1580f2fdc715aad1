// package formatter exports a user's playlist to CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// Extension is the file extension written for the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	}
	return ".csv"
}

// ContentType is the HTTP media type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// PlaylistExport pairs a playlist with each episode's podcast, keyed by episode id.
type PlaylistExport struct {
	Playlist *models.Playlist
	Podcasts map[int]*models.Podcast
}

func (e *PlaylistExport) podcastTitle(episode *models.Episode) string {
	if p, ok := e.Podcasts[episode.ID()]; ok {
		return p.Title()
	}
	return ""
}

// Export encodes the playlist in the given format.
func Export(export *PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// ExportToCSV converts a playlist to CSV with columns: ID, Title, Podcast, Length, Published, Link
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Podcast", "Length", "Published", "Link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, episode := range export.Playlist.Episodes() {
		record := []string{
			strconv.Itoa(episode.ID()),
			episode.Title(),
			export.podcastTitle(episode),
			strconv.Itoa(episode.Length()),
			episode.PubDate(),
			episode.Link(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown, linking each episode's audio
func ExportToMarkdown(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	episodes := export.Playlist.Episodes()

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Title())
	fmt.Fprintf(&buf, "**Owner**: %s\n", export.Playlist.Owner().Username())
	fmt.Fprintf(&buf, "**Episodes**: %d\n", len(episodes))
	fmt.Fprintf(&buf, "**Total length**: %s\n\n", shared.FormatDuration(totalLength(episodes)))

	buf.WriteString("## Episodes\n\n")
	for i, episode := range episodes {
		podcastPart := ""
		if title := export.podcastTitle(episode); title != "" {
			podcastPart = fmt.Sprintf(" (%s)", title)
		}
		title := episode.Title()
		if episode.Link() != "" {
			title = fmt.Sprintf("[%s](%s)", title, episode.Link())
		}
		fmt.Fprintf(&buf, "%d. %s%s [%s]\n", i+1, title, podcastPart, shared.FormatDuration(episode.Length()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	episodes := export.Playlist.Episodes()

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Title())
	fmt.Fprintf(&buf, "Episodes: %d\n\n", len(episodes))

	for i, episode := range episodes {
		if title := export.podcastTitle(episode); title != "" {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, title, episode.Title())
		} else {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, episode.Title())
		}
	}

	return buf.Bytes(), nil
}

func totalLength(episodes []*models.Episode) int {
	total := 0
	for _, e := range episodes {
		total += e.Length()
	}
	return total
}

// WriteExport writes the playlist to path, defaulting to playlist_{id} plus the format's extension.
func WriteExport(export *PlaylistExport, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("playlist_%d%s", export.Playlist.ID(), format.Extension())
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
