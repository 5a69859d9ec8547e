package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/tui/styles"
)

// Layout constants for the triage grid
const (
	BorderWidth  = 2
	BorderHeight = 2

	HorizontalPadding = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Breadcrumb line at top of content area
	BreadcrumbLines = 1

	ItemWidthMargin = 2
)

// Grid is the triage view for one page of a folder: the page's visible items
// with their marks, vim-style cursor movement and an optional name filter.
type Grid struct {
	items []domain.Item
	state domain.TriageState

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool

	breadcrumb string

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewGrid creates a new triage grid
func NewGrid() Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		filterInput: ti,
		focused:     true,
	}
}

// SetItems replaces the grid content, resetting cursor and filter. The triage
// state supplies the per-item mark indicators.
func (g *Grid) SetItems(items []domain.Item, state domain.TriageState) {
	g.items = items
	g.state = state
	g.cursor = 0
	g.offset = 0
	g.clearFilter()
}

// SetState refreshes the mark indicators without disturbing the cursor
func (g *Grid) SetState(state domain.TriageState) {
	g.state = state
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.recalcMaxVisible()
}

// SetBreadcrumb sets the breadcrumb text shown above the items
func (g *Grid) SetBreadcrumb(crumb string) {
	g.breadcrumb = crumb
}

// SetFocused sets the focus state
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

func (g *Grid) recalcMaxVisible() {
	interiorHeight := g.height - BorderHeight
	g.maxVisible = interiorHeight - ScrollIndicatorLines - BreadcrumbLines
	if g.filterActive {
		g.maxVisible--
	}
	if g.maxVisible < 1 {
		g.maxVisible = 1
	}
}

// Cursor returns the current cursor position
func (g Grid) Cursor() int {
	return g.cursor
}

// SetCursor sets the cursor position, clamped to the item range
func (g *Grid) SetCursor(pos int) {
	max := g.itemCount() - 1
	if max < 0 {
		g.cursor = 0
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > max {
		pos = max
	}
	g.cursor = pos
	g.ensureVisible()
}

func (g Grid) itemCount() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.items)
}

// SelectedItem returns the item under the cursor
func (g Grid) SelectedItem() *domain.Item {
	count := g.itemCount()
	if count == 0 || g.cursor >= count {
		return nil
	}
	idx := g.mapIndex(g.cursor)
	return &g.items[idx]
}

// IsEmpty returns true when the grid has no items to show
func (g Grid) IsEmpty() bool {
	return g.itemCount() == 0
}

func (g *Grid) ensureVisible() {
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+g.maxVisible {
		g.offset = g.cursor - g.maxVisible + 1
	}
}

// ToggleFilter activates the name filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.recalcMaxVisible()
}

// IsFiltering returns true when a name filter is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true while keystrokes belong to the filter input
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (g *Grid) ClearFilter() {
	g.clearFilter()
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.recalcMaxVisible()
}

func (g *Grid) applyFilter() {
	query := g.filterInput.Value()
	g.filterQuery = query

	if query == "" {
		g.filteredIdx = nil
		return
	}

	names := make([]string, len(g.items))
	for i, item := range g.items {
		names[i] = strings.ToLower(item.Name)
	}

	matches := fuzzy.Find(strings.ToLower(query), names)

	g.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		g.filteredIdx[i] = match.Index
	}

	g.cursor = 0
	g.offset = 0
}

func (g Grid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

// Update handles messages
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	// Filter typing mode: keystrokes go to the input
	if g.filterActive && g.filterInput.Focused() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				g.clearFilter()
				return g, nil
			case "enter":
				// Accept filter, blur input to allow navigation
				g.filterInput.Blur()
				return g, nil
			case "backspace":
				if g.filterInput.Value() == "" {
					g.clearFilter()
					return g, nil
				}
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return g, cmd
	}

	// Filter active but blurred: esc clears, / re-enters typing mode
	if g.filterActive {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				g.clearFilter()
				return g, nil
			case "/":
				g.filterInput.Focus()
				return g, nil
			}
		}
	}

	count := g.itemCount()
	if count == 0 {
		return g, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if g.cursor < count-1 {
				g.cursor++
				g.ensureVisible()
			}
		case "k", "up":
			if g.cursor > 0 {
				g.cursor--
				g.ensureVisible()
			}
		case "g":
			g.cursor = 0
			g.offset = 0
		case "G":
			g.cursor = count - 1
			g.ensureVisible()
		case "ctrl+d":
			g.cursor += g.maxVisible / 2
			if g.cursor >= count {
				g.cursor = count - 1
			}
			g.ensureVisible()
		case "ctrl+u":
			g.cursor -= g.maxVisible / 2
			if g.cursor < 0 {
				g.cursor = 0
			}
			g.ensureVisible()
		}
	}

	return g, nil
}

// View renders the component
func (g Grid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	content := g.renderList()

	frameW, frameH := style.GetFrameSize()

	return style.
		Width(g.width - frameW).
		Height(g.height - frameH).
		Render(content)
}

func (g Grid) renderList() string {
	itemWidth := g.width - BorderWidth - HorizontalPadding - ItemWidthMargin

	breadcrumbLine := " "
	if g.breadcrumb != "" {
		crumb := g.breadcrumb
		if len(crumb) > itemWidth {
			crumb = "..." + crumb[len(crumb)-itemWidth+3:]
		}
		breadcrumbLine = styles.AccentStyle.Render(crumb)
	}

	count := g.itemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("Nothing to show")
		if g.filterActive && g.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		return breadcrumbLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
	}

	var lines []string

	end := g.offset + g.maxVisible
	if end > count {
		end = count
	}

	for i := g.offset; i < end; i++ {
		selected := i == g.cursor
		idx := g.mapIndex(i)
		lines = append(lines, g.renderItem(g.items[idx], selected, itemWidth))
	}

	// Always reserve space for scroll indicators to prevent layout shifts
	header := " "
	if g.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := strings.Join(lines, "\n")
	content = breadcrumbLine + "\n" + header + "\n" + content + "\n" + footer

	if g.filterActive {
		content += "\n" + g.renderFilterBar()
	}

	return content
}

// renderItem renders one row: mark indicator, name, video badge, date
func (g Grid) renderItem(item domain.Item, selected bool, width int) string {
	var indicatorChar string
	var indicatorFg lipgloss.Color
	if mark, ok := g.state.MarkOf(item.ID); ok {
		if mark == domain.MarkKeep {
			indicatorChar = styles.KeepChar
			indicatorFg = styles.Green
		} else {
			indicatorChar = styles.DeclineChar
			indicatorFg = styles.Red
		}
	} else if g.state.SoftTouched[item.ID] {
		indicatorChar = styles.SoftChar
		indicatorFg = styles.DimGray
	} else {
		indicatorChar = styles.UnmarkedChar
		indicatorFg = styles.DriveBlue
	}

	name := styles.Truncate(item.Name, width-18)

	var badge string
	if item.IsVideo {
		badge = " " + styles.VideoChar
	}

	var date string
	if !item.CreatedAt.IsZero() {
		date = " " + item.CreatedAt.Format("2006-01-02")
	}
	dimGray := styles.DimGray

	parts := []styles.RowPart{
		{Text: indicatorChar, Foreground: &indicatorFg},
		{Text: " " + name, Foreground: nil},
		{Text: badge, Foreground: &dimGray},
		{Text: date, Foreground: &dimGray},
	}

	return styles.RenderListRow(parts, selected, width)
}

func (g Grid) renderFilterBar() string {
	input := g.filterInput.View()

	countStr := ""
	if g.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.items)))
	}

	return input + countStr
}
