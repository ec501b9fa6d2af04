package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports that the backend no longer knows the chat, usually
// because it was deleted from another client.
var ErrNotFound = errors.New("chat not found")

// APIClient talks to the chat backend. Plain request/response calls share
// one http.Client with a timeout; message streams get a dedicated client
// without one, since a turn can legitimately take minutes.
type APIClient struct {
	baseURL       string
	http          *http.Client
	streamTimeout time.Duration
}

// NewAPIClient creates a client for the backend at baseURL.
func NewAPIClient(baseURL string, timeout, streamTimeout time.Duration) *APIClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: timeout},
		streamTimeout: streamTimeout,
	}
}

// BaseURL returns the backend address the client was built with.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// StreamTimeout is the idle deadline applied between stream reads, zero
// meaning none.
func (c *APIClient) StreamTimeout() time.Duration {
	return c.streamTimeout
}

type modelRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type chatRecord struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

type turnRecord struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// ListModels fetches the models the backend can route to.
func (c *APIClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var records []modelRecord
	if err := c.getJSON(ctx, "/api/models", &records); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	models := make([]ModelInfo, 0, len(records))
	for _, r := range records {
		models = append(models, ModelInfo{ID: r.ID, Name: r.Name})
	}
	return models, nil
}

// ListChats fetches the chat list in backend order.
func (c *APIClient) ListChats(ctx context.Context) ([]ChatSummary, error) {
	var records []chatRecord
	if err := c.getJSON(ctx, "/api/chats", &records); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	chats := make([]ChatSummary, 0, len(records))
	for _, r := range records {
		chats = append(chats, ChatSummary{ID: r.ID.String(), Title: r.Title})
	}
	return chats, nil
}

// CreateChat asks the backend for a fresh empty chat and returns its id.
func (c *APIClient) CreateChat(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chats/new", nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create chat: unexpected status %s", resp.Status)
	}
	var rec chatRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", fmt.Errorf("create chat: decode: %w", err)
	}
	return rec.ID.String(), nil
}

// History fetches the full turn list of one chat. Returns ErrNotFound for
// a chat deleted out from under us.
func (c *APIClient) History(ctx context.Context, chatID string) ([]Turn, error) {
	var records []turnRecord
	if err := c.getJSON(ctx, "/api/chats/"+chatID, &records); err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return turnsFromRecords(records), nil
}

// Undo removes the last exchange server-side and returns the remaining
// turns.
func (c *APIClient) Undo(ctx context.Context, chatID string) ([]Turn, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chats/"+chatID+"/undo", nil)
	if err != nil {
		return nil, fmt.Errorf("undo: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("undo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("undo: unexpected status %s", resp.Status)
	}
	var records []turnRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("undo: decode: %w", err)
	}
	return turnsFromRecords(records), nil
}

// Delete removes a chat. Deleting an already-gone chat is not an error.
func (c *APIClient) Delete(ctx context.Context, chatID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/chats/"+chatID+"/delete", nil)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete chat: unexpected status %s", resp.Status)
	}
	return nil
}

// OpenStream posts a message and hands back the live response stream. The
// caller owns the returned handle and must Close it.
func (c *APIClient) OpenStream(ctx context.Context, chatID, message, model string) (*StreamHandle, error) {
	body, err := json.Marshal(map[string]string{"message": message, "model": model})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chats/"+chatID+"/message", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("send message: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// No client timeout here, the model may stream for a long time.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		cancel()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("send message: unexpected status %s", resp.Status)
	}

	return &StreamHandle{
		ID:     uuid.NewString(),
		ChatID: chatID,
		body:   resp.Body,
		cancel: cancel,
	}, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func turnsFromRecords(records []turnRecord) []Turn {
	turns := make([]Turn, 0, len(records))
	for _, r := range records {
		turns = append(turns, Turn{
			Role:    Role(r.Role),
			Raw:     r.Content,
			Display: r.Content,
			Model:   r.Model,
		})
	}
	return turns
}

// StreamHandle is one open response stream, bound to the chat and entry it
// was opened for. Abandon flips a flag the reader consults before applying
// each event, so late data on a cancelled connection never reaches a
// transcript the user has navigated away from.
type StreamHandle struct {
	ID        string
	ChatID    string
	body      io.ReadCloser
	cancel    context.CancelFunc
	abandoned atomic.Bool
	finished  atomic.Bool
}

// Read pulls the next raw chunk off the wire.
func (h *StreamHandle) Read(p []byte) (int, error) {
	return h.body.Read(p)
}

// Abandon marks the stream dead and tears down the connection. Safe to
// call more than once and from any goroutine.
func (h *StreamHandle) Abandon() {
	if h.abandoned.CompareAndSwap(false, true) {
		slog.Debug("stream abandoned", "chat", h.ChatID, "stream", h.ID)
		h.cancel()
		h.body.Close()
	}
}

// Abandoned reports whether the stream was cancelled.
func (h *StreamHandle) Abandoned() bool {
	return h.abandoned.Load()
}

// Finish marks the stream fully drained. The reader sets it before it
// releases the handle, so a stream that ended while its send was still
// registering is never tracked as live.
func (h *StreamHandle) Finish() {
	h.finished.Store(true)
}

// Finished reports whether the reader has drained the stream.
func (h *StreamHandle) Finished() bool {
	return h.finished.Load()
}

// Close releases the connection without marking the handle abandoned.
// Used on the normal completion path.
func (h *StreamHandle) Close() {
	h.cancel()
	h.body.Close()
}
