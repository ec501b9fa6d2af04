package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("some notes\n"), 0o644))

	att, err := LoadAttachment(path, 0)
	require.NoError(t, err)
	require.Equal(t, "notes.md", att.Name)
	require.Equal(t, "some notes\n", att.Content)
}

func TestLoadAttachment_Glob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	att, err := LoadAttachment(filepath.Join(dir, "rep*.txt"), 0)
	require.NoError(t, err)
	require.Equal(t, "report.txt", att.Name)
}

func TestLoadAttachment_NoMatch(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadAttachment(filepath.Join(dir, "missing.txt"), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no file matches")
}

func TestLoadAttachment_MultipleMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))

	_, err := LoadAttachment(filepath.Join(dir, "*.txt"), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "need exactly one")
}

func TestLoadAttachment_Directory(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadAttachment(dir, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is a directory")
}

func TestLoadAttachment_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644))

	_, err := LoadAttachment(path, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "limit is 10")
}

func TestLoadAttachment_BinaryRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{'a', 0, 'b'}, 0o644))

	_, err := LoadAttachment(path, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "looks binary")
}

func TestPendingAttachment_MergeInto(t *testing.T) {
	att := &PendingAttachment{Name: "f.txt", Content: "body"}

	merged := att.MergeInto("look at this")
	require.True(t, strings.HasPrefix(merged, "look at this\n\n"))
	require.Contains(t, merged, "--- BEGIN FILE: f.txt ---\nbody\n--- END FILE ---")

	// Attachment-only messages carry just the block
	require.Equal(t, "--- BEGIN FILE: f.txt ---\nbody\n--- END FILE ---", att.MergeInto(""))
}

func TestPendingAttachment_Placeholder(t *testing.T) {
	att := &PendingAttachment{Name: "f.txt", Content: "body"}
	require.Equal(t, "[Attached file: f.txt]", att.Placeholder())
}
