package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/sift-cli/sift/internal/tui/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var content string
	switch m.State {
	case StateFolders:
		content = m.FolderList.View()
	default:
		content = m.Grid.View()
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.renderFooter(),
	)

	if m.State == StatePreview {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderPreview())
	}

	if m.State == StateConfirmDelete {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmDelete())
	}

	return view
}

// renderFooter renders the single-line status footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Exporting:
		frame := spinnerFrames[m.SpinnerFrame%len(spinnerFrames)]
		p := m.ExportProgress
		if p.Chunks > 0 {
			left = styles.SpinnerStyle.Render(frame) + " " +
				fmt.Sprintf("Exporting chunk %d/%d (%d/%d items)", p.Chunk, p.Chunks, p.Done, p.TotalItems)
		} else {
			left = styles.SpinnerStyle.Render(frame) + " Exporting..."
		}
	case m.Loading:
		frame := spinnerFrames[m.SpinnerFrame%len(spinnerFrames)]
		left = styles.SpinnerStyle.Render(frame) + " Loading..."
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	var right string
	if m.State == StateFolders {
		right = styles.DimStyle.Render("enter open • / filter • ? help • q quit")
	} else {
		right = styles.DimStyle.Render("y keep • n decline • ] next page • ? help")
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderPreview renders the preview overlay with the resolved link
func (m Model) renderPreview() string {
	title := styles.ModalTitleStyle.Render(m.PreviewName)

	url := m.PreviewURL
	maxWidth := m.Width - 12
	if maxWidth > 0 && lipgloss.Width(url) > maxWidth {
		url = styles.Truncate(url, maxWidth)
	}

	body := title + "\n" +
		styles.SubtitleStyle.Render(url) + "\n\n" +
		styles.DimStyle.Render("esc close")

	return styles.ModalStyle.Render(body)
}

// renderConfirmDelete renders the destructive confirmation modal
func (m Model) renderConfirmDelete() string {
	_, declined := m.Session.State().Counts()

	title := styles.ModalTitleStyle.Render("Delete declined items")
	body := title + "\n" +
		fmt.Sprintf("Permanently delete %d declined items from the drive?", declined) + "\n\n" +
		styles.HelpKeyStyle.Render("y") + styles.HelpDescStyle.Render(" delete   ") +
		styles.HelpKeyStyle.Render("n/esc") + styles.HelpDescStyle.Render(" cancel")

	return styles.DangerModalStyle.Render(body)
}

// renderHelp renders the full-screen help view
func (m Model) renderHelp() string {
	k := m.Keys

	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage}},
		{"Triage", []key.Binding{k.Keep, k.Decline, k.Unmark}},
		{"View", []key.Binding{k.CycleFilter, k.HideProcessed, k.NameFilter, k.Preview}},
		{"Actions", []key.Binding{k.ExportKept, k.ExportNotDecline, k.DeleteDeclined}},
		{"General", []key.Binding{k.Back, k.Help, k.Quit}},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("sift — keyboard reference"))
	b.WriteString("\n\n")

	for _, section := range sections {
		b.WriteString(styles.AccentStyle.Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s %s\n",
				styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
				styles.HelpDescStyle.Render(h.Desc)))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.DimStyle.Render("esc to close"))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		b.String())
}
