package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type exportDoneMsg struct {
	path string
}

// exportTranscript writes the chat transcript to a markdown file and
// returns the filepath.
func exportTranscript(title string, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("no messages to export")
	}

	content := generateTranscriptContent(title, turns)

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("slate-export-%s.md", timestamp)
	path := filepath.Join(os.TempDir(), filename)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// generateTranscriptContent generates the markdown content for the export
func generateTranscriptContent(title string, turns []Turn) string {
	var b strings.Builder

	if title == "" {
		title = "Untitled"
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", title))
	b.WriteString(fmt.Sprintf("**Exported:** %s\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Messages:** %d\n", len(turns)))
	b.WriteString("\n---\n\n")

	for _, turn := range turns {
		switch turn.Role {
		case RoleUser:
			b.WriteString("### User\n\n")
		case RoleAssistant:
			if turn.Model != "" {
				b.WriteString(fmt.Sprintf("### Assistant (%s)\n\n", turn.Model))
			} else {
				b.WriteString("### Assistant\n\n")
			}
		default:
			b.WriteString(fmt.Sprintf("### %s\n\n", turn.Role))
		}
		b.WriteString(turn.Raw)
		b.WriteString("\n\n")
	}

	return b.String()
}

// openInEditor creates a command to open the specified file in the user's preferred editor
func openInEditor(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi" // Fallback to vi
	}
	return exec.Command(editor, path)
}
