package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/service"
	"github.com/sift-cli/sift/internal/store"
)

// stubDrive is a minimal DriveRepository for model-level tests.
type stubDrive struct {
	listErr error
	urlErr  error
}

func (d *stubDrive) GetFolders(ctx context.Context) ([]domain.Folder, error) {
	return nil, nil
}

func (d *stubDrive) ListChildren(ctx context.Context, folderID, cursor string, pageSize int) (*domain.ListResult, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return &domain.ListResult{}, nil
}

func (d *stubDrive) GetThumbnailURL(ctx context.Context, itemID string) (string, error) {
	return "", nil
}

func (d *stubDrive) GetDownloadURL(ctx context.Context, itemID string) (string, error) {
	if d.urlErr != nil {
		return "", d.urlErr
	}
	return "https://example.test/dl", nil
}

func (d *stubDrive) GetItem(ctx context.Context, itemID string) (*domain.Item, string, error) {
	return nil, "", domain.ErrItemNotFound
}

func (d *stubDrive) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	return nil, domain.ErrItemNotFound
}

func (d *stubDrive) DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error) {
	return nil, domain.ErrItemNotFound
}

func (d *stubDrive) DeleteItems(ctx context.Context, ids []string) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(t *testing.T, drive domain.DriveRepository) Model {
	t.Helper()

	st, err := store.NewTriageStateStore("")
	if err != nil {
		t.Fatalf("NewTriageStateStore() error = %v", err)
	}
	resolver := service.NewURLResolver(drive, time.Minute, testLogger())
	exporter := service.NewExporter(drive, resolver, testLogger(), 2, 2, t.TempDir())

	m := NewModel(drive, st, resolver, exporter, testLogger(), 25, false)
	m.Width = 80
	m.Height = 24
	m.Ready = true
	return m
}

func TestExportEnumerationFailureResetsExportState(t *testing.T) {
	drive := &stubDrive{listErr: errors.New("listing failed")}
	m := newTestModel(t, drive)

	model, _ := m.openFolder(domain.Folder{ID: "f1", Name: "Pics"})
	m = model.(Model)

	model, _ = m.startExport(false)
	m = model.(Model)
	if !m.Exporting {
		t.Fatal("expected export to be marked running")
	}

	msg := ExportNotDeclinedCmd(m.Exporter, m.Session, m.exportCh)()
	done, ok := msg.(ExportDoneMsg)
	if !ok {
		t.Fatalf("enumeration failure produced %T, want ExportDoneMsg", msg)
	}
	if done.Err == nil {
		t.Fatal("ExportDoneMsg.Err = nil, want enumeration error")
	}

	model, _ = m.Update(msg)
	m = model.(Model)
	if m.Exporting {
		t.Error("export still marked running after enumeration failure")
	}
	if m.exportCh != nil {
		t.Error("export channel not torn down after enumeration failure")
	}

	// A later export attempt must not be refused as already running
	model, _ = m.startExport(false)
	m = model.(Model)
	if m.StatusMsg == "Export already running" {
		t.Error("later export refused after a failed one")
	}
	if !m.Exporting {
		t.Error("later export did not start")
	}
}

func TestExportProgressAfterCompletionDoesNotRearm(t *testing.T) {
	m := newTestModel(t, &stubDrive{})
	m.exportCh = nil

	model, cmd := m.Update(ExportProgressMsg{Progress: service.ExportProgress{Chunk: 1, Chunks: 2}})
	m = model.(Model)
	if cmd != nil {
		t.Error("progress message after completion re-armed the channel wait")
	}
}

func TestPreviewWithoutDownloadURL(t *testing.T) {
	drive := &stubDrive{urlErr: domain.ErrNoDownloadURL}
	m := newTestModel(t, drive)

	model, _ := m.openFolder(domain.Folder{ID: "f1", Name: "Pics"})
	m = model.(Model)
	m.Loading = true

	ticket := m.Session.NextPreviewTicket()
	msg := PreviewCmd(m.Session, m.Resolver, "item-1", ticket)()

	status, ok := msg.(StatusMsg)
	if !ok {
		t.Fatalf("message = %T, want StatusMsg", msg)
	}
	if !status.IsError {
		t.Error("StatusMsg.IsError = false, want true")
	}

	model, _ = m.Update(msg)
	m = model.(Model)
	if m.Loading {
		t.Error("loading not cleared by status message")
	}
	if m.StatusMsg == "" {
		t.Error("status message not shown")
	}
	if m.State == StatePreview {
		t.Error("preview overlay opened without a url")
	}
}
