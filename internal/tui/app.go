package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/service"
	"github.com/sift-cli/sift/internal/tui/components"
)

// ApplicationState represents the current screen of the application
type ApplicationState int

const (
	StateFolders ApplicationState = iota
	StateTriage
	StatePreview
	StateConfirmDelete
	StateHelp
)

// Vertical layout: single footer line
const ChromeHeight = 1

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Repo     domain.DriveRepository
	Store    domain.TriageStore
	Resolver *service.URLResolver
	Exporter *service.Exporter
	Logger   *slog.Logger
	PageSize int

	// HideByDefault seeds hide-processed for folders triaged for the
	// first time
	HideByDefault bool

	// Active folder session, nil while on the folder screen
	Session   *service.Session
	Page      domain.Page
	PageIndex int

	// UI components
	FolderList components.FolderList
	Grid       components.Grid
	Keys       KeyMap

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Loading      bool
	SpinnerFrame int

	// Preview overlay
	PreviewName string
	PreviewURL  string

	// Export run in flight
	Exporting      bool
	ExportProgress service.ExportProgress
	exportCh       chan service.ExportProgress

	// Screen to return to when help closes
	helpReturn ApplicationState
}

// NewModel creates a new application model
func NewModel(
	repo domain.DriveRepository,
	store domain.TriageStore,
	resolver *service.URLResolver,
	exporter *service.Exporter,
	logger *slog.Logger,
	pageSize int,
	hideByDefault bool,
) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		State:         StateFolders,
		Repo:          repo,
		Store:         store,
		Resolver:      resolver,
		Exporter:      exporter,
		Logger:        logger,
		PageSize:      pageSize,
		HideByDefault: hideByDefault,
		FolderList:    components.NewFolderList(),
		Grid:          components.NewGrid(),
		Keys:          DefaultKeyMap(),
		Loading:       true,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadFoldersCmd(m.Repo),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case FoldersLoadedMsg:
		m.Loading = false
		m.FolderList.SetFolders(msg.Folders)
		return m, nil

	case PageLoadedMsg:
		m.Loading = false
		m.Page = msg.Page
		m.PageIndex = msg.Page.Index
		m.refreshGrid(true)
		// Persist the resume point now that the user landed here
		return m, SavePositionCmd(m.Session, m.PageIndex)

	case PositionSavedMsg:
		return m, nil

	case PreviewReadyMsg:
		if m.Session == nil || !m.Session.PreviewCurrent(msg.Ticket) {
			// A newer preview superseded this one mid-flight
			return m, nil
		}
		m.Loading = false
		m.PreviewURL = msg.URL
		m.State = StatePreview
		return m, nil

	case ExportProgressMsg:
		m.ExportProgress = msg.Progress
		if m.exportCh == nil {
			// Completion already tore the channel down; nothing to re-arm
			return m, nil
		}
		return m, WaitForExportProgressCmd(m.exportCh)

	case ExportDoneMsg:
		m.Exporting = false
		m.exportCh = nil
		if msg.Err != nil {
			m.StatusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		archives, failures := 0, 0
		for _, r := range msg.Results {
			if r.ArchivePath != "" {
				archives++
			}
			failures += len(r.Failures)
		}
		if failures > 0 {
			m.StatusMsg = fmt.Sprintf("Export finished: %d archives, %d items failed", archives, failures)
		} else {
			m.StatusMsg = fmt.Sprintf("Export finished: %d archives", archives)
		}
		return m, ClearStatusCmd(5 * time.Second)

	case DeleteDoneMsg:
		m.Loading = false
		m.State = StateTriage
		if msg.Err != nil {
			m.StatusMsg = fmt.Sprintf("Delete failed: %v", msg.Err)
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		m.refreshGrid(false)
		m.StatusMsg = fmt.Sprintf("Deleted %d items", msg.Deleted)
		return m, ClearStatusCmd(3 * time.Second)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		m.Loading = false
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.Loading = false
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Forward anything else (cursor blink and friends) to the focused component
	var cmd tea.Cmd
	switch m.State {
	case StateFolders:
		m.FolderList, cmd = m.FolderList.Update(msg)
	case StateTriage:
		m.Grid, cmd = m.Grid.Update(msg)
	}
	return m, cmd
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		switch msg.String() {
		case "esc", "?", "q":
			m.State = m.helpReturn
		}
		return m, nil

	case StatePreview:
		switch msg.String() {
		case "esc", "enter", "q", "o":
			m.State = StateTriage
			m.PreviewURL = ""
			m.PreviewName = ""
		}
		return m, nil

	case StateConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.Loading = true
			m.State = StateTriage
			return m, DeleteDeclinedCmd(m.Session)
		case "n", "N", "esc":
			m.State = StateTriage
		}
		return m, nil

	case StateFolders:
		return m.handleFolderKeys(msg)
	}

	return m.handleTriageKeys(msg)
}

func (m Model) handleFolderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.FolderList.IsFilterTyping() {
		var cmd tea.Cmd
		m.FolderList, cmd = m.FolderList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.helpReturn = StateFolders
		m.State = StateHelp
		return m, nil

	case "/":
		m.FolderList.ToggleFilter()
		return m, nil

	case "esc":
		if m.FolderList.IsFiltering() {
			m.FolderList.ClearFilter()
		}
		return m, nil

	case "enter", "l", "right":
		folder := m.FolderList.SelectedFolder()
		if folder == nil {
			return m, nil
		}
		return m.openFolder(*folder)
	}

	var cmd tea.Cmd
	m.FolderList, cmd = m.FolderList.Update(msg)
	return m, cmd
}

func (m Model) handleTriageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.helpReturn = StateTriage
		m.State = StateHelp
		return m, nil

	case "esc":
		if m.Grid.IsFiltering() {
			m.Grid.ClearFilter()
			return m, nil
		}
		return m.closeFolder()

	case "h", "backspace", "left":
		return m.closeFolder()

	case "/":
		m.Grid.ToggleFilter()
		return m, nil

	case "y":
		return m.markSelected(domain.MarkKeep)

	case "n":
		return m.markSelected(domain.MarkDecline)

	case "u":
		return m.markSelected("")

	case "f":
		state := m.Session.State()
		next := state.FilterMode.Next()
		if err := m.Session.SetFilterMode(next); err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: err, Context: "saving filter mode"} }
		}
		m.refreshGrid(true)
		m.StatusMsg = "Filter: " + string(next)
		return m, ClearStatusCmd(2 * time.Second)

	case "p":
		hide, err := m.Session.ToggleHideProcessed()
		if err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: err, Context: "saving view settings"} }
		}
		m.refreshGrid(true)
		if hide {
			m.StatusMsg = "Hiding processed items"
		} else {
			m.StatusMsg = "Showing processed items"
		}
		return m, ClearStatusCmd(2 * time.Second)

	case "]", "pgdown":
		if m.Page.Terminal() {
			return m, nil
		}
		m.Loading = true
		return m, LoadPageCmd(m.Session, m.PageIndex+1)

	case "[", "pgup":
		if m.PageIndex == 0 {
			return m, nil
		}
		m.Loading = true
		return m, LoadPageCmd(m.Session, m.PageIndex-1)

	case "enter", "o":
		item := m.Grid.SelectedItem()
		if item == nil {
			return m, nil
		}
		m.PreviewName = item.Name
		m.Loading = true
		ticket := m.Session.NextPreviewTicket()
		return m, PreviewCmd(m.Session, m.Resolver, item.ID, ticket)

	case "e":
		return m.startExport(true)

	case "E":
		return m.startExport(false)

	case "D":
		_, declined := m.Session.State().Counts()
		if declined == 0 {
			m.StatusMsg = "Nothing declined"
			return m, ClearStatusCmd(2 * time.Second)
		}
		m.State = StateConfirmDelete
		return m, nil
	}

	// Remaining keys are cursor movement; moving off an item soft-touches it
	before := m.Grid.SelectedItem()
	var cmd tea.Cmd
	m.Grid, cmd = m.Grid.Update(msg)
	after := m.Grid.SelectedItem()

	if before != nil && after != nil && before.ID != after.ID {
		if err := m.Session.SetSoft(before.ID); err != nil {
			m.Logger.Warn("soft-touch failed", "item", before.ID, "error", err)
		}
		m.Grid.SetState(m.Session.State())
	}
	return m, cmd
}

// openFolder starts a triage session and loads the resume page
func (m Model) openFolder(folder domain.Folder) (tea.Model, tea.Cmd) {
	m.Session = service.NewSession(folder, m.Repo, m.Store, m.Logger, m.PageSize)

	// A folder opened for the first time inherits the configured
	// hide-processed default; a folder with any history keeps its own setting.
	if m.HideByDefault {
		state := m.Session.State()
		if !state.HideProcessed && len(state.Marks) == 0 && len(state.SoftTouched) == 0 && state.PageIndex == 0 {
			if _, err := m.Session.ToggleHideProcessed(); err != nil {
				m.Logger.Warn("seeding view settings failed", "folder", folder.ID, "error", err)
			}
		}
	}

	m.PageIndex = m.Session.ResumeIndex()
	m.Page = domain.Page{}
	m.State = StateTriage
	m.Loading = true
	m.updateLayout()
	return m, LoadPageCmd(m.Session, m.PageIndex)
}

// closeFolder returns to the folder screen
func (m Model) closeFolder() (tea.Model, tea.Cmd) {
	m.Session = nil
	m.Page = domain.Page{}
	m.State = StateFolders
	return m, nil
}

// markSelected applies (or with an empty mark clears) a mark on the item
// under the cursor and re-derives the visible set.
func (m Model) markSelected(mark domain.Mark) (tea.Model, tea.Cmd) {
	item := m.Grid.SelectedItem()
	if item == nil {
		return m, nil
	}
	if err := m.Session.SetMark(item.ID, mark); err != nil {
		return m, func() tea.Msg { return ErrMsg{Err: err, Context: "saving mark"} }
	}
	m.refreshGrid(false)
	return m, nil
}

func (m Model) startExport(keptOnly bool) (tea.Model, tea.Cmd) {
	if m.Exporting {
		m.StatusMsg = "Export already running"
		return m, ClearStatusCmd(2 * time.Second)
	}
	if keptOnly {
		kept, _ := m.Session.State().Counts()
		if kept == 0 {
			m.StatusMsg = "Nothing kept"
			return m, ClearStatusCmd(2 * time.Second)
		}
	}

	m.Exporting = true
	m.ExportProgress = service.ExportProgress{}
	m.exportCh = make(chan service.ExportProgress, 1)

	var run tea.Cmd
	if keptOnly {
		run = ExportKeptCmd(m.Exporter, m.Session, m.exportCh)
	} else {
		run = ExportNotDeclinedCmd(m.Exporter, m.Session, m.exportCh)
	}
	return m, tea.Batch(run, WaitForExportProgressCmd(m.exportCh))
}

// refreshGrid re-derives the visible items from the current page and triage
// state. The visible set is always recomputed from scratch, never patched.
func (m *Model) refreshGrid(resetCursor bool) {
	if m.Session == nil {
		return
	}
	state := m.Session.State()
	visible := service.Visible(m.Page, state)

	cursor := m.Grid.Cursor()
	m.Grid.SetItems(visible, state)
	if !resetCursor {
		m.Grid.SetCursor(cursor)
	}
	m.Grid.SetBreadcrumb(m.breadcrumb(state, len(visible)))
}

// breadcrumb builds the triage header line
func (m Model) breadcrumb(state domain.TriageState, visible int) string {
	crumb := m.Session.Folder().Name

	if last := m.Session.LastPageIndex(); last >= 0 {
		crumb += fmt.Sprintf("  page %d/%d", m.PageIndex+1, last+1)
	} else {
		crumb += fmt.Sprintf("  page %d", m.PageIndex+1)
	}

	if total := m.Session.TotalCount(); total >= 0 {
		crumb += fmt.Sprintf("  %d items", total)
	}

	kept, declined := state.Counts()
	crumb += fmt.Sprintf("  %s%d %s%d", "✓", kept, "✗", declined)

	if state.FilterMode != domain.FilterAll {
		crumb += "  [" + string(state.FilterMode) + "]"
	}
	if state.HideProcessed {
		crumb += "  [hide processed]"
	}
	if visible < len(m.Page.Items) {
		crumb += fmt.Sprintf("  (%d/%d shown)", visible, len(m.Page.Items))
	}
	return crumb
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	contentHeight := m.Height - ChromeHeight
	m.FolderList.SetSize(m.Width, contentHeight)
	m.Grid.SetSize(m.Width, contentHeight)
}
