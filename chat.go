package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const chatWelcome = "Welcome to Slate! Send a message to start chatting."

// ChatComponent renders the transcript of the active chat
type ChatComponent struct {
	Viewport     viewport.Model
	Messages     []string
	Width        int
	Height       int
	Style        lipgloss.Style
	AutoScroll   bool // Track if auto-scrolling is enabled
	UserScrolled bool // Track if user has manually scrolled
}

// NewChatComponent creates a new chat component
func NewChatComponent(width, height int) ChatComponent {
	vp := viewport.New(width-2, height-2) // Account for borders
	vp.SetContent(chatWelcome)

	return ChatComponent{
		Viewport:     vp,
		Messages:     []string{chatWelcome},
		Width:        width,
		Height:       height,
		AutoScroll:   true,
		UserScrolled: false,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F4DB53")). // Terminal7 chat border
			Background(lipgloss.Color("#11051E")).       // Terminal7 chat background
			Width(width).
			Height(height),
	}
}

// SetWidth updates the width of the chat component
func (c *ChatComponent) SetWidth(width int) {
	c.Width = width
	c.Style = c.Style.Width(width)
	c.Viewport.Width = width - 2
	c.UpdateContent()
}

// SetHeight updates the height of the chat component
func (c *ChatComponent) SetHeight(height int) {
	c.Height = height
	c.Style = c.Style.Height(height)
	c.Viewport.Height = height
	c.UpdateContent()
}

// SetTurns replaces the whole transcript, used when a chat is loaded or
// after an undo.
func (c *ChatComponent) SetTurns(turns []Turn) {
	c.Messages = nil
	if len(turns) == 0 {
		c.Messages = []string{chatWelcome}
	}
	for _, turn := range turns {
		c.Messages = append(c.Messages, formatTurn(turn))
	}
	c.AutoScroll = true
	c.UserScrolled = false
	c.UpdateContent()
}

// AddMessage adds a new message to the chat component. The welcome
// placeholder is dropped once real content arrives.
func (c *ChatComponent) AddMessage(message string) {
	if len(c.Messages) == 1 && c.Messages[0] == chatWelcome {
		c.Messages = c.Messages[:0]
	}
	c.Messages = append(c.Messages, message)
	c.UpdateContent()
	// Reset auto-scroll when new message is added
	c.AutoScroll = true
	c.UserScrolled = false
}

// ReplaceLastMessage swaps the last message, used while a response streams
// in and when it finalizes.
func (c *ChatComponent) ReplaceLastMessage(message string) {
	if len(c.Messages) == 0 {
		c.AddMessage(message)
		return
	}
	c.Messages[len(c.Messages)-1] = message
	c.UpdateContent()
}

// formatTurn renders one turn with its role prefix.
func formatTurn(turn Turn) string {
	display := turn.Display
	if display == "" {
		display = turn.Raw
	}
	if turn.Role == RoleUser {
		return "You: " + display
	}
	return "AI: " + display
}

// UpdateContent updates the viewport content based on the messages
func (c *ChatComponent) UpdateContent() {
	var messageViews []string
	for _, message := range c.Messages {
		var messageStyle lipgloss.Style
		if strings.HasPrefix(message, "You:") {
			messageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F952F9")). // Terminal7 prompt border
				Padding(0, 1)
		} else {
			messageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#01FAFA")). // Terminal7 text color
				Padding(0, 1)
		}
		messageViews = append(messageViews,
			messageStyle.Render(wordwrap.String(message, c.Width)))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, messageViews...)
	c.Viewport.SetContent(content)

	// Only auto-scroll if user hasn't manually scrolled
	if c.AutoScroll && !c.UserScrolled {
		c.Viewport.GotoBottom()
	}
}

// Update handles messages for the chat component
func (c ChatComponent) Update(msg interface{}) (ChatComponent, interface{}) {
	var cmd interface{}
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			c.Viewport.LineUp(1)
			c.UserScrolled = true
		case tea.MouseWheelDown:
			c.Viewport.LineDown(1)
			c.UserScrolled = true
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			c.Viewport.HalfViewUp()
			c.UserScrolled = true
		case "pgdown":
			c.Viewport.HalfViewDown()
			c.UserScrolled = true
		case "home":
			c.Viewport.GotoTop()
			c.UserScrolled = true
		case "end":
			c.Viewport.GotoBottom()
			// If user scrolls to bottom, re-enable auto-scroll
			c.UserScrolled = false
			c.AutoScroll = true
		}
	}
	c.Viewport, cmd = c.Viewport.Update(msg)
	return c, cmd
}

// View renders the chat component
func (c ChatComponent) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left, c.Viewport.View())

	// Adjust height for the header
	c.Style = c.Style.Height(c.Height)
	c.Viewport.Height = c.Height - 3 // Account for border and header

	return c.Style.Render(content)
}
