package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/service"
	"github.com/sift-cli/sift/internal/tui/styles"
)

// FolderList is the folder picker shown at startup: the drive's top-level
// folders with a fuzzy name filter.
type FolderList struct {
	folders []domain.Folder

	cursor     int
	offset     int
	maxVisible int

	width  int
	height int

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int
}

// NewFolderList creates an empty folder picker
func NewFolderList() FolderList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return FolderList{
		filterInput: ti,
	}
}

// SetFolders replaces the folder content
func (f *FolderList) SetFolders(folders []domain.Folder) {
	f.folders = folders
	f.cursor = 0
	f.offset = 0
	f.clearFilter()
}

// SetSize updates the component dimensions
func (f *FolderList) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.recalcMaxVisible()
}

func (f *FolderList) recalcMaxVisible() {
	f.maxVisible = f.height - BorderHeight - ScrollIndicatorLines - BreadcrumbLines
	if f.filterActive {
		f.maxVisible--
	}
	if f.maxVisible < 1 {
		f.maxVisible = 1
	}
}

func (f FolderList) folderCount() int {
	if f.filteredIdx != nil {
		return len(f.filteredIdx)
	}
	return len(f.folders)
}

// SelectedFolder returns the folder under the cursor
func (f FolderList) SelectedFolder() *domain.Folder {
	count := f.folderCount()
	if count == 0 || f.cursor >= count {
		return nil
	}
	idx := f.cursor
	if f.filteredIdx != nil {
		idx = f.filteredIdx[f.cursor]
	}
	return &f.folders[idx]
}

// IsFilterTyping returns true while keystrokes belong to the filter input
func (f FolderList) IsFilterTyping() bool {
	return f.filterActive && f.filterInput.Focused()
}

// IsFiltering returns true when a name filter is active
func (f FolderList) IsFiltering() bool {
	return f.filterActive
}

// ToggleFilter activates the filter input
func (f *FolderList) ToggleFilter() {
	f.filterActive = true
	f.filterInput.Focus()
	f.recalcMaxVisible()
}

// ClearFilter deactivates the filter
func (f *FolderList) ClearFilter() {
	f.clearFilter()
}

func (f *FolderList) clearFilter() {
	f.filterActive = false
	f.filterQuery = ""
	f.filteredIdx = nil
	f.filterInput.SetValue("")
	f.filterInput.Blur()
	f.recalcMaxVisible()
}

func (f *FolderList) applyFilter() {
	query := f.filterInput.Value()
	f.filterQuery = query

	if query == "" {
		f.filteredIdx = nil
		return
	}

	matched := service.FilterFolders(f.folders, query)

	byID := make(map[string]int, len(f.folders))
	for i, folder := range f.folders {
		byID[folder.ID] = i
	}

	f.filteredIdx = make([]int, 0, len(matched))
	for _, folder := range matched {
		f.filteredIdx = append(f.filteredIdx, byID[folder.ID])
	}

	f.cursor = 0
	f.offset = 0
}

func (f *FolderList) ensureVisible() {
	if f.cursor < f.offset {
		f.offset = f.cursor
	}
	if f.cursor >= f.offset+f.maxVisible {
		f.offset = f.cursor - f.maxVisible + 1
	}
}

// Update handles messages
func (f FolderList) Update(msg tea.Msg) (FolderList, tea.Cmd) {
	if f.filterActive && f.filterInput.Focused() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				f.clearFilter()
				return f, nil
			case "enter":
				f.filterInput.Blur()
				return f, nil
			case "backspace":
				if f.filterInput.Value() == "" {
					f.clearFilter()
					return f, nil
				}
			}
		}

		var cmd tea.Cmd
		f.filterInput, cmd = f.filterInput.Update(msg)
		f.applyFilter()
		return f, cmd
	}

	count := f.folderCount()
	if count == 0 {
		return f, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if f.cursor < count-1 {
				f.cursor++
				f.ensureVisible()
			}
		case "k", "up":
			if f.cursor > 0 {
				f.cursor--
				f.ensureVisible()
			}
		case "g":
			f.cursor = 0
			f.offset = 0
		case "G":
			f.cursor = count - 1
			f.ensureVisible()
		}
	}

	return f, nil
}

// View renders the component
func (f FolderList) View() string {
	itemWidth := f.width - BorderWidth - HorizontalPadding - ItemWidthMargin

	title := styles.AccentStyle.Render("Folders")

	count := f.folderCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No folders")
		if f.filterActive && f.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := title + "\n" + " " + "\n" + emptyMsg + "\n" + " "
		return f.framed(content)
	}

	var lines []string

	end := f.offset + f.maxVisible
	if end > count {
		end = count
	}

	for i := f.offset; i < end; i++ {
		idx := i
		if f.filteredIdx != nil {
			idx = f.filteredIdx[i]
		}
		lines = append(lines, f.renderFolder(f.folders[idx], i == f.cursor, itemWidth))
	}

	header := " "
	if f.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := title + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer

	if f.filterActive {
		content += "\n" + f.filterInput.View()
	}

	return f.framed(content)
}

func (f FolderList) framed(content string) string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(f.width - frameW).
		Height(f.height - frameH).
		Render(content)
}

func (f FolderList) renderFolder(folder domain.Folder, selected bool, width int) string {
	name := styles.Truncate(folder.Name, width-12)

	var badge string
	if folder.ChildCount > 0 {
		badge = fmt.Sprintf(" %d items", folder.ChildCount)
	}
	dimGray := styles.DimGray

	parts := []styles.RowPart{
		{Text: name, Foreground: nil},
		{Text: badge, Foreground: &dimGray},
	}

	return styles.RenderListRow(parts, selected, width)
}
