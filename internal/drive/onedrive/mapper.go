package onedrive

import (
	"time"

	"github.com/sift-cli/sift/internal/domain"
)

// MapItems converts listed drive items to domain items. Subfolders and other
// non-file entries are dropped: the triage grid shows media files only.
func MapItems(items []driveItem) []domain.Item {
	mapped := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.File == nil {
			continue
		}
		mapped = append(mapped, MapItem(it))
	}
	return mapped
}

// MapItem converts a single drive item
func MapItem(it driveItem) domain.Item {
	return domain.Item{
		ID:        it.ID,
		Name:      it.Name,
		IsVideo:   it.Video != nil,
		CreatedAt: parseGraphTime(it.CreatedAt),
	}
}

// MapFolders converts root children to folders, dropping plain files
func MapFolders(items []driveItem) []domain.Folder {
	folders := make([]domain.Folder, 0, len(items))
	for _, it := range items {
		if it.Folder == nil {
			continue
		}
		folders = append(folders, domain.Folder{
			ID:         it.ID,
			Name:       it.Name,
			ChildCount: it.Folder.ChildCount,
		})
	}
	return folders
}

// bestThumbnailURL picks the largest available variant
func bestThumbnailURL(set thumbnailSet) string {
	switch {
	case set.Large.URL != "":
		return set.Large.URL
	case set.Medium.URL != "":
		return set.Medium.URL
	default:
		return set.Small.URL
	}
}

func parseGraphTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
