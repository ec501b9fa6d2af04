package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yargevad/filepathx"
)

// DefaultAttachmentLimit caps attachment size in bytes.
const DefaultAttachmentLimit = 50000

// PendingAttachment is a staged text file waiting to ride along with the
// next message. At most one is outstanding; sending or /attach with no
// argument clears it.
type PendingAttachment struct {
	Name    string
	Content string
}

// LoadAttachment reads the file at pattern into a PendingAttachment.
// Globs are allowed but must resolve to exactly one file. Files over
// maxSize or containing NUL bytes are rejected before any network use.
func LoadAttachment(pattern string, maxSize int) (*PendingAttachment, error) {
	if maxSize <= 0 {
		maxSize = DefaultAttachmentLimit
	}

	matches, err := filepathx.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("attach: no file matches %q", pattern)
	case 1:
	default:
		return nil, fmt.Errorf("attach: %q matches %d files, need exactly one", pattern, len(matches))
	}

	path := matches[0]
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attach: %s is a directory", path)
	}
	if info.Size() > int64(maxSize) {
		return nil, fmt.Errorf("attach: %s is %d bytes, limit is %d", path, info.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	if bytes.IndexByte(data, 0) != -1 {
		return nil, fmt.Errorf("attach: %s looks binary, only text files are supported", path)
	}

	return &PendingAttachment{
		Name:    filepath.Base(path),
		Content: string(data),
	}, nil
}

// MergeInto wraps the attachment in a delimited block appended after the
// message text. This is what actually goes over the wire.
func (a *PendingAttachment) MergeInto(message string) string {
	block := fmt.Sprintf("--- BEGIN FILE: %s ---\n%s\n--- END FILE ---", a.Name, a.Content)
	if message == "" {
		return block
	}
	return message + "\n\n" + block
}

// Placeholder is the short form shown in the transcript instead of the
// full file body.
func (a *PendingAttachment) Placeholder() string {
	return fmt.Sprintf("[Attached file: %s]", a.Name)
}
