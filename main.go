package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

type runCmd struct{}

type versionCmd struct{}

var program *tea.Program

var cli struct {
	Version versionCmd `cmd:"version" help:"Print version information"`
	Prompt  string     `short:"p" help:"Send one message to the active chat and print the reply"`
	Model   string     `short:"m" help:"Model id to use, overriding the saved selection"`
	Run     runCmd     `cmd:"" default:"1" help:"Run the interactive application"`
}

func initLogger(level string) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("failed to get user home directory: %w", err))
	}

	logDir := filepath.Join(homeDir, ".local", "share", "slate")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create log directory %s: %w", logDir, err))
	}

	// Set up lumberjack for log rotation
	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "slate.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, opts)))
}

func (v versionCmd) Run() error {
	fmt.Println("Slate CLI v0.1.0")
	return nil
}

func (r *runCmd) Run() error {
	// Check if we are running in a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Please run it in a terminal emulator.")
		return nil
	}

	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Using defaults due to config load failure: %v\n", err)
		defaults := defaultConfig()
		config = &defaults
	}

	client := NewAPIClient(config.Server.BaseURL, config.Server.Timeout(), config.Server.StreamIdleTimeout())

	stateStore, err := NewStateStore()
	if err != nil {
		slog.Warn("client state unavailable, model selection will not persist", "error", err)
	}

	tuiModel := NewTUIModel(config, client, stateStore)
	program = tea.NewProgram(tuiModel, tea.WithAltScreen(), tea.WithMouseCellMotion())
	tuiModel.Attach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}

type errMsg struct{ err error }

func main() {
	config, cfgErr := LoadConfig()
	if cfgErr != nil {
		defaults := defaultConfig()
		config = &defaults
	}
	initLogger(config.Logging.Level)
	ctx := kong.Parse(&cli)

	if cli.Prompt != "" {
		if err := runOneShot(config, cli.Prompt, cli.Model); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Interactive mode
	if err := ctx.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runOneShot sends one message to the first available chat and streams the
// reply to stdout. No TUI, so the raw reply is printed as it arrives.
func runOneShot(config *Config, prompt, modelOverride string) error {
	client := NewAPIClient(config.Server.BaseURL, config.Server.Timeout(), config.Server.StreamIdleTimeout())
	bg := context.Background()

	model := modelOverride
	if model == "" {
		var persisted string
		if store, err := NewStateStore(); err == nil {
			persisted = store.SelectedModel()
		}
		models, err := client.ListModels(bg)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		model = pickModel(models, persisted, config.Chat.Model)
	}
	if model == "" {
		return fmt.Errorf("no model available, pass one with -m")
	}

	chats, err := client.ListChats(bg)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}
	var chatID string
	if len(chats) > 0 {
		chatID = chats[0].ID
	} else {
		chatID, err = client.CreateChat(bg)
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
	}

	done := make(chan error, 1)
	printed := 0
	notify := func(m any) {
		switch v := m.(type) {
		case streamDeltaMsg:
			raw := v.Entry.Raw()
			fmt.Print(raw[printed:])
			printed = len(raw)
		case streamDoneMsg:
			fmt.Println()
			done <- nil
		case streamFailedMsg:
			raw := v.Entry.Raw()
			fmt.Print(raw[printed:])
			printed = len(raw)
			fmt.Println()
			done <- fmt.Errorf("%s", v.Message)
		}
	}

	mc := NewMessageController(client, nil, notify, func(string, string) {})
	if _, err := mc.SendTurn(bg, chatID, prompt, model, nil); err != nil {
		return err
	}
	// A send that failed before a stream opened still lands here via the
	// failure notification.
	return <-done
}
