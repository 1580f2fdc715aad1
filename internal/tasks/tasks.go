package tasks

import (
	"github.com/charmbracelet/log"

	"github.com/desertthunder/podshelf/internal/repositories"
	"github.com/desertthunder/podshelf/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase of a bulk operation.
type Phase int

const (
	FetchPlaylist Phase = iota
	ExportPlaylist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case ExportPlaylist:
		return "export_playlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// Exporter writes playlists from a repository to files.
type Exporter struct {
	repo   repositories.Repository
	logger *log.Logger
}

// NewExporter creates an Exporter over repo. A nil logger writes to stderr.
func NewExporter(repo repositories.Repository, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{repo: repo, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
