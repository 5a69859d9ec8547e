package tui

import (
	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FoldersLoadedMsg signals that the drive's top-level folders have been loaded
type FoldersLoadedMsg struct {
	Folders []domain.Folder
}

// PageLoadedMsg signals that a listing page is ready for display
type PageLoadedMsg struct {
	Page domain.Page
}

// PositionSavedMsg signals that the resume position was persisted
type PositionSavedMsg struct{}

// PreviewReadyMsg carries a resolved preview url. Ticket identifies which
// preview request produced it; stale tickets are discarded.
type PreviewReadyMsg struct {
	Ticket uint64
	ItemID string
	URL    string
}

// ExportProgressMsg reports chunk-level export progress
type ExportProgressMsg struct {
	Progress service.ExportProgress
}

// ExportDoneMsg signals that the export pipeline has finished
type ExportDoneMsg struct {
	Results []service.ChunkResult
	Err     error
}

// DeleteDoneMsg signals that the batch delete has finished
type DeleteDoneMsg struct {
	Deleted int
	Err     error
}

// TickMsg is a general tick message for the spinner
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
