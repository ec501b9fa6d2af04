package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Command represents a slash command
type Command struct {
	Name        string
	Description string
	Handler     func(*TUIModel, []string) tea.Cmd
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	Commands map[string]Command
	order    []string
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() CommandRegistry {
	registry := CommandRegistry{
		Commands: make(map[string]Command),
	}

	// Register built-in commands
	registry.RegisterCommand("/help", "Show help information", handleHelpCommand)
	registry.RegisterCommand("/new", "Start a new chat", handleNewChatCommand)
	registry.RegisterCommand("/chats", "Switch to another chat", handleChatsCommand)
	registry.RegisterCommand("/models", "Select AI model", handleModelsCommand)
	registry.RegisterCommand("/undo", "Remove the last exchange", handleUndoCommand)
	registry.RegisterCommand("/delete", "Delete the current chat", handleDeleteCommand)
	registry.RegisterCommand("/attach", "Attach a file to the next message", handleAttachCommand)
	registry.RegisterCommand("/export", "Export the chat to a markdown file", handleExportCommand)
	registry.RegisterCommand("/quit", "Quit the application", handleQuitCommand)

	return registry
}

// RegisterCommand registers a new command
func (cr *CommandRegistry) RegisterCommand(name, description string, handler func(*TUIModel, []string) tea.Cmd) {
	if _, exists := cr.Commands[name]; !exists {
		cr.order = append(cr.order, name)
	}
	cr.Commands[name] = Command{
		Name:        name,
		Description: description,
		Handler:     handler,
	}
}

// GetCommand gets a command by name
func (cr CommandRegistry) GetCommand(name string) (Command, bool) {
	cmd, exists := cr.Commands[name]
	return cmd, exists
}

// GetAllCommands returns all registered commands
func (cr CommandRegistry) GetAllCommands() []Command {
	var commands []Command
	for _, name := range cr.order {
		if cmd, ok := cr.Commands[name]; ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// Command handlers

type showHelpMsg struct{}

func handleHelpCommand(model *TUIModel, args []string) tea.Cmd {
	return func() tea.Msg {
		return showHelpMsg{}
	}
}

func handleNewChatCommand(model *TUIModel, args []string) tea.Cmd {
	coordinator := model.coordinator
	return func() tea.Msg {
		if err := coordinator.CreateNewChat(context.Background()); err != nil {
			return errMsg{err: fmt.Errorf("failed to create chat: %w", err)}
		}
		return nil
	}
}

func handleChatsCommand(model *TUIModel, args []string) tea.Cmd {
	model.chatModal = NewChatSelectionModal(model.coordinator.Chats(), model.activeChatID)
	return nil
}

func handleModelsCommand(model *TUIModel, args []string) tea.Cmd {
	model.modelModal = NewModelSelectionModal(model.selectedModel)
	if len(model.models) > 0 {
		model.modelModal.SetModels(model.models)
		return nil
	}
	client := model.client
	return func() tea.Msg {
		models, err := client.ListModels(context.Background())
		if err != nil {
			return modelsLoadErrorMsg{err: err}
		}
		return modelsLoadedMsg{models: models}
	}
}

func handleUndoCommand(model *TUIModel, args []string) tea.Cmd {
	coordinator := model.coordinator
	return func() tea.Msg {
		err := coordinator.UndoLastTurn(context.Background())
		switch {
		case errors.Is(err, ErrChatBusy):
			return errMsg{err: errors.New("cannot undo while a response is streaming")}
		case err != nil:
			return errMsg{err: fmt.Errorf("undo failed: %w", err)}
		}
		return nil
	}
}

func handleDeleteCommand(model *TUIModel, args []string) tea.Cmd {
	coordinator := model.coordinator
	return func() tea.Msg {
		if err := coordinator.DeleteChat(context.Background()); err != nil {
			return errMsg{err: fmt.Errorf("delete failed: %w", err)}
		}
		return nil
	}
}

func handleAttachCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		model.toastManager.AddToast("Usage: /attach <file>", "warning", 4*time.Second)
		return nil
	}
	att, err := LoadAttachment(args[0], model.config.Attachment.MaxSize)
	if err != nil {
		model.toastManager.AddToast(err.Error(), "error", 5*time.Second)
		return nil
	}
	model.attachment = att
	model.toastManager.AddToast(fmt.Sprintf("Attached %s (%d bytes)", att.Name, len(att.Content)), "success", 4*time.Second)
	return nil
}

func handleExportCommand(model *TUIModel, args []string) tea.Cmd {
	turns := model.turns
	title := model.chatTitle
	return func() tea.Msg {
		path, err := exportTranscript(title, turns)
		if err != nil {
			return errMsg{err: fmt.Errorf("export failed: %w", err)}
		}
		return exportDoneMsg{path: path}
	}
}

func handleQuitCommand(model *TUIModel, args []string) tea.Cmd {
	return tea.Quit
}
