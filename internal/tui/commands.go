package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/service"
)

// Command factories for async operations

// LoadFoldersCmd loads the drive's top-level folders
func LoadFoldersCmd(repo domain.DriveRepository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		folders, err := repo.GetFolders(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading folders"}
		}
		return FoldersLoadedMsg{Folders: folders}
	}
}

// LoadPageCmd loads one listing page through the session's page cache
func LoadPageCmd(sess *service.Session, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		page, err := sess.EnsureLoaded(ctx, index)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading page"}
		}
		return PageLoadedMsg{Page: page}
	}
}

// SavePositionCmd persists the resume position after a page change
func SavePositionCmd(sess *service.Session, index int) tea.Cmd {
	return func() tea.Msg {
		if err := sess.SavePosition(index); err != nil {
			return ErrMsg{Err: err, Context: "saving position"}
		}
		return PositionSavedMsg{}
	}
}

// PreviewCmd resolves a preview url for an item. The result only applies
// while the ticket is still the session's latest; a stale resolution is
// dropped on the floor.
func PreviewCmd(sess *service.Session, resolver *service.URLResolver, itemID string, ticket uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		url, err := resolver.Resolve(ctx, itemID, false)
		if !sess.PreviewCurrent(ticket) {
			return nil
		}
		if err != nil {
			if errors.Is(err, domain.ErrNoDownloadURL) {
				// Per-item condition, not an application error
				return StatusMsg{Message: "No preview available for this item", IsError: true}
			}
			return ErrMsg{Err: err, Context: "resolving preview"}
		}
		return PreviewReadyMsg{Ticket: ticket, ItemID: itemID, URL: url}
	}
}

// ExportKeptCmd exports every kept item of the session's folder
func ExportKeptCmd(exporter *service.Exporter, sess *service.Session, progress chan service.ExportProgress) tea.Cmd {
	return func() tea.Msg {
		ids := service.KeptIDs(sess.State())
		return runExport(exporter, sess, ids, progress)
	}
}

// ExportNotDeclinedCmd exports the folder's full universe minus declined items
func ExportNotDeclinedCmd(exporter *service.Exporter, sess *service.Session, progress chan service.ExportProgress) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		ids, err := service.UniverseExcluding(ctx, sess, domain.MarkDecline)
		if err != nil {
			// Completion message, not ErrMsg: the model's export state
			// (running flag, progress channel) tears down on ExportDoneMsg.
			close(progress)
			return ExportDoneMsg{Err: err}
		}
		return runExport(exporter, sess, ids, progress)
	}
}

func runExport(exporter *service.Exporter, sess *service.Session, ids []string, progress chan service.ExportProgress) tea.Msg {
	defer close(progress)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	results, err := exporter.Run(ctx, sess.Folder().Name, ids, sess.ItemNames(), func(p service.ExportProgress) {
		progress <- p
	})
	return ExportDoneMsg{Results: results, Err: err}
}

// WaitForExportProgressCmd delivers the next progress report from a running
// export, re-armed by the Update loop after each message.
func WaitForExportProgressCmd(progress chan service.ExportProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-progress
		if !ok {
			return nil
		}
		return ExportProgressMsg{Progress: p}
	}
}

// DeleteDeclinedCmd deletes every declined item remotely, then clears the
// local marks. Only issued after the user confirmed.
func DeleteDeclinedCmd(sess *service.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := service.DeleteDeclined(ctx, sess)
		return DeleteDoneMsg{Deleted: n, Err: err}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
