package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BaseModal represents a base modal dialog
type BaseModal struct {
	Title   string
	Content string
	Width   int
	Height  int
	Style   lipgloss.Style
}

// NewBaseModal creates a new base modal
func NewBaseModal(title, content string, width, height int) *BaseModal {
	return &BaseModal{
		Title:   title,
		Content: content,
		Width:   width,
		Height:  height,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center),
	}
}

// Render renders the modal
func (m *BaseModal) Render() string {
	titleStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1).
		Width(m.Width - 2) // Account for border

	title := titleStyle.Render(m.Title)
	content := lipgloss.NewStyle().
		Width(m.Width-2).
		Height(m.Height-4). // Account for title and borders
		Align(lipgloss.Center, lipgloss.Center).
		Render(m.Content)

	body := lipgloss.JoinVertical(lipgloss.Center, title, content)

	return m.Style.Render(body)
}

// showConfirmMsg asks the UI loop to raise a confirmation modal. The
// sender blocks on reply, so the channel must always receive exactly one
// answer.
type showConfirmMsg struct {
	title   string
	message string
	reply   chan bool
}

// ConfirmModal is a yes/no prompt backing the confirm collaborator. The
// answer goes down the reply channel of the operation that asked.
type ConfirmModal struct {
	*BaseModal
	reply    chan bool
	answered bool
}

// NewConfirmModal creates a confirm modal wired to its reply channel.
func NewConfirmModal(title, message string, reply chan bool) *ConfirmModal {
	base := NewBaseModal(title, message+"\n\n[y] Yes   [n/Esc] No", 50, 8)
	return &ConfirmModal{BaseModal: base, reply: reply}
}

// Update handles the keys of the confirm modal. Returns true once the
// modal has answered and should be dismissed.
func (m *ConfirmModal) Update(msg tea.Msg) bool {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	switch keyMsg.String() {
	case "y", "Y", "enter":
		m.answer(true)
		return true
	case "n", "N", "esc", "q":
		m.answer(false)
		return true
	}
	return false
}

func (m *ConfirmModal) answer(yes bool) {
	if m.answered {
		return
	}
	m.answered = true
	m.reply <- yes
}
