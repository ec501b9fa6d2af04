package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalCancelledMsg struct{}

type modelsLoadedMsg struct {
	models []ModelInfo
}

type modelsLoadErrorMsg struct {
	err error
}

type modelChosenMsg struct {
	model ModelInfo
}

type chatChosenMsg struct {
	chatID string
}

// ModelSelectionModal lets the user pick the model for future turns.
type ModelSelectionModal struct {
	*BaseModal
	models       []ModelInfo
	current      string
	selected     int
	scrollOffset int
	maxVisible   int
	loading      bool
	err          error
}

func NewModelSelectionModal(current string) *ModelSelectionModal {
	return &ModelSelectionModal{
		BaseModal:  NewBaseModal("Select Model", "", 60, 18),
		current:    current,
		maxVisible: 10,
		loading:    true,
	}
}

func (m *ModelSelectionModal) SetModels(models []ModelInfo) {
	m.models = models
	m.loading = false
	m.err = nil
	for i, model := range models {
		if model.ID == m.current {
			m.selected = i
			if m.selected >= m.maxVisible {
				m.scrollOffset = m.selected - m.maxVisible + 1
			}
			break
		}
	}
}

func (m *ModelSelectionModal) SetError(err error) {
	m.err = err
	m.loading = false
}

func (m *ModelSelectionModal) Render() string {
	var content strings.Builder

	if m.loading {
		content.WriteString("Loading models...\n")
		m.BaseModal.Content = content.String()
		return m.BaseModal.Render()
	}
	if m.err != nil {
		content.WriteString(fmt.Sprintf("Error loading models: %v\n\n", m.err))
		content.WriteString("Press Esc to close")
		m.BaseModal.Content = content.String()
		return m.BaseModal.Render()
	}
	if len(m.models) == 0 {
		content.WriteString("No models available.\n\nPress Esc to close")
		m.BaseModal.Content = content.String()
		return m.BaseModal.Render()
	}

	instructionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	content.WriteString(instructionStyle.Render("↑/↓: Navigate • Enter: Select • Esc/Q: Cancel"))
	content.WriteString("\n\n")

	start, end := listWindow(len(m.models), m.selected, m.maxVisible, &m.scrollOffset)
	for i := start; i < end; i++ {
		model := m.models[i]
		prefix := "   "
		if i == m.selected {
			prefix = " ▶ "
		}

		label := model.Label()
		if model.ID == m.current {
			label += " (current)"
		}

		lineStyle := lipgloss.NewStyle()
		if i == m.selected {
			lineStyle = lineStyle.Foreground(lipgloss.Color("62")).Bold(true)
		}
		content.WriteString(lineStyle.Render(prefix + label))
		content.WriteString("\n")
	}

	if len(m.models) > m.maxVisible {
		scrollStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
		content.WriteString(scrollStyle.Render(fmt.Sprintf("\n%d-%d of %d models", start+1, end, len(m.models))))
	}

	m.BaseModal.Content = content.String()
	return m.BaseModal.Render()
}

func (m *ModelSelectionModal) Update(msg tea.Msg) (*ModelSelectionModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.loading || m.err != nil || len(m.models) == 0 {
		if keyMsg.String() == "esc" || keyMsg.String() == "q" {
			return m, func() tea.Msg { return modalCancelledMsg{} }
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.models)-1 {
			m.selected++
		}
	case "enter":
		chosen := m.models[m.selected]
		return m, func() tea.Msg { return modelChosenMsg{model: chosen} }
	case "esc", "q":
		return m, func() tea.Msg { return modalCancelledMsg{} }
	}
	return m, nil
}

// ChatSelectionModal lets the user switch to another chat.
type ChatSelectionModal struct {
	*BaseModal
	chats        []ChatSummary
	current      string
	selected     int
	scrollOffset int
	maxVisible   int
}

func NewChatSelectionModal(chats []ChatSummary, current string) *ChatSelectionModal {
	modal := &ChatSelectionModal{
		BaseModal:  NewBaseModal("Switch Chat", "", 60, 18),
		chats:      chats,
		current:    current,
		maxVisible: 10,
	}
	for i, chat := range chats {
		if chat.ID == current {
			modal.selected = i
			if modal.selected >= modal.maxVisible {
				modal.scrollOffset = modal.selected - modal.maxVisible + 1
			}
			break
		}
	}
	return modal
}

func (m *ChatSelectionModal) Render() string {
	var content strings.Builder

	if len(m.chats) == 0 {
		content.WriteString("No chats yet.\n\nPress Esc to close")
		m.BaseModal.Content = content.String()
		return m.BaseModal.Render()
	}

	instructionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	content.WriteString(instructionStyle.Render("↑/↓: Navigate • 1-9: Quick select • Enter: Select • Esc/Q: Cancel"))
	content.WriteString("\n\n")

	start, end := listWindow(len(m.chats), m.selected, m.maxVisible, &m.scrollOffset)
	for i := start; i < end; i++ {
		chat := m.chats[i]
		prefix := fmt.Sprintf(" %d. ", i+1)
		if i == m.selected {
			prefix = fmt.Sprintf("▶%d. ", i+1)
		}

		title := chat.Title
		if title == "" {
			title = "Untitled"
		}
		if chat.ID == m.current {
			title += " (current)"
		}

		lineStyle := lipgloss.NewStyle()
		if i == m.selected {
			lineStyle = lineStyle.Foreground(lipgloss.Color("62")).Bold(true)
		}
		content.WriteString(lineStyle.Render(prefix + title))
		content.WriteString("\n")
	}

	if len(m.chats) > m.maxVisible {
		scrollStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
		content.WriteString(scrollStyle.Render(fmt.Sprintf("\n%d-%d of %d chats", start+1, end, len(m.chats))))
	}

	m.BaseModal.Content = content.String()
	return m.BaseModal.Render()
}

func (m *ChatSelectionModal) Update(msg tea.Msg) (*ChatSelectionModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if len(m.chats) == 0 {
		if keyMsg.String() == "esc" || keyMsg.String() == "q" {
			return m, func() tea.Msg { return modalCancelledMsg{} }
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.chats)-1 {
			m.selected++
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		num := int(keyMsg.String()[0] - '1')
		if num < len(m.chats) {
			chosen := m.chats[num].ID
			return m, func() tea.Msg { return chatChosenMsg{chatID: chosen} }
		}
	case "enter":
		chosen := m.chats[m.selected].ID
		return m, func() tea.Msg { return chatChosenMsg{chatID: chosen} }
	case "esc", "q":
		return m, func() tea.Msg { return modalCancelledMsg{} }
	}
	return m, nil
}

// listWindow clamps the scroll offset around the selection and returns the
// visible [start, end) range.
func listWindow(total, selected, maxVisible int, scrollOffset *int) (int, int) {
	if selected < *scrollOffset {
		*scrollOffset = selected
	}
	if selected >= *scrollOffset+maxVisible {
		*scrollOffset = selected - maxVisible + 1
	}
	start := *scrollOffset
	end := start + maxVisible
	if end > total {
		end = total
	}
	return start, end
}
