package components

import (
	"testing"

	"github.com/sift-cli/sift/internal/domain"
)

func testFolders() []domain.Folder {
	return []domain.Folder{
		{ID: "1", Name: "Camera Roll", ChildCount: 812},
		{ID: "2", Name: "Screenshots", ChildCount: 41},
		{ID: "3", Name: "Vacation 2024", ChildCount: 307},
	}
}

func TestFolderListFilterNarrowsByName(t *testing.T) {
	f := NewFolderList()
	f.SetSize(80, 24)
	f.SetFolders(testFolders())

	f.ToggleFilter()
	f.filterInput.SetValue("cam")
	f.applyFilter()

	if got := f.folderCount(); got != 1 {
		t.Fatalf("folderCount() = %d, want 1", got)
	}
	sel := f.SelectedFolder()
	if sel == nil || sel.Name != "Camera Roll" {
		t.Errorf("SelectedFolder() = %+v, want Camera Roll", sel)
	}
}

func TestFolderListFilterNoMatches(t *testing.T) {
	f := NewFolderList()
	f.SetSize(80, 24)
	f.SetFolders(testFolders())

	f.ToggleFilter()
	f.filterInput.SetValue("zzz")
	f.applyFilter()

	if got := f.folderCount(); got != 0 {
		t.Fatalf("folderCount() = %d, want 0", got)
	}
	if sel := f.SelectedFolder(); sel != nil {
		t.Errorf("SelectedFolder() = %+v, want nil", sel)
	}
}

func TestFolderListClearFilterRestoresAll(t *testing.T) {
	f := NewFolderList()
	f.SetSize(80, 24)
	f.SetFolders(testFolders())

	f.ToggleFilter()
	f.filterInput.SetValue("cam")
	f.applyFilter()
	f.ClearFilter()

	if got := f.folderCount(); got != 3 {
		t.Fatalf("folderCount() = %d, want 3", got)
	}
}
