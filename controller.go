package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// NotifyFunc delivers a message to the UI loop. In the TUI it wraps
// program.Send; tests pass a collector.
type NotifyFunc func(any)

// notification messages
type turnStartedMsg struct {
	ChatID string
	User   Turn
	Entry  *TranscriptEntry
}
type streamDeltaMsg struct {
	ChatID string
	Entry  *TranscriptEntry
}
type streamDoneMsg struct {
	ChatID string
	Entry  *TranscriptEntry
}
type streamFailedMsg struct {
	ChatID  string
	Entry   *TranscriptEntry
	Message string
}

// validation errors, rejected before any network call
var (
	ErrEmptyMessage = errors.New("nothing to send: message and attachment are both empty")
	ErrNoModel      = errors.New("no model selected")
)

// MessageController sends one turn and owns its response stream from open
// to finalization. It never touches UI state directly: every visible
// change travels through notify, and release tells the owner when the
// stream for a chat is finished.
type MessageController struct {
	client  *APIClient
	fin     *Finalizer
	notify  NotifyFunc
	release func(chatID, streamID string)
}

// NewMessageController wires a controller to its collaborators.
func NewMessageController(client *APIClient, fin *Finalizer, notify NotifyFunc, release func(chatID, streamID string)) *MessageController {
	return &MessageController{
		client:  client,
		fin:     fin,
		notify:  notify,
		release: release,
	}
}

// SendTurn validates and sends one user message, returning the open
// stream handle. Validation failures return an error and touch nothing.
// After validation the user turn and an empty assistant entry are
// announced immediately; transport failures from then on surface as a
// failed assistant turn, not as a returned error.
//
// Blocks until the response stream is open; callers run it off the UI
// loop. The returned handle may be nil when the send failed before a
// stream existed.
func (mc *MessageController) SendTurn(ctx context.Context, chatID, text, model string, attachment *PendingAttachment) (*StreamHandle, error) {
	if text == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}
	if model == "" {
		return nil, ErrNoModel
	}

	wire := text
	display := text
	if attachment != nil {
		wire = attachment.MergeInto(text)
		if display == "" {
			display = attachment.Placeholder()
		} else {
			display += "\n" + attachment.Placeholder()
		}
	}

	entry := NewTranscriptEntry(chatID, model)
	mc.notify(turnStartedMsg{
		ChatID: chatID,
		User:   Turn{Role: RoleUser, Raw: wire, Display: display},
		Entry:  entry,
	})

	handle, err := mc.client.OpenStream(ctx, chatID, wire, model)
	if err != nil {
		slog.Error("failed to open message stream", "chat", chatID, "error", err)
		entry.Fail(err.Error())
		mc.notify(streamFailedMsg{ChatID: chatID, Entry: entry, Message: err.Error()})
		return nil, nil
	}

	slog.Debug("stream opened", "chat", chatID, "stream", handle.ID, "model", model)
	go mc.readLoop(handle, entry)
	return handle, nil
}

// readLoop drains one response stream into its entry. Runs on its own
// goroutine; the abandoned flag is checked before every application so a
// cancelled stream stops changing anything even while data keeps landing.
func (mc *MessageController) readLoop(h *StreamHandle, entry *TranscriptEntry) {
	// Unwinds in reverse order: the finished mark must land before the
	// handle is released.
	defer h.Close()
	defer mc.release(h.ChatID, h.ID)
	defer h.Finish()

	var idleTimer *time.Timer
	if idle := mc.client.StreamTimeout(); idle > 0 {
		idleTimer = time.AfterFunc(idle, func() {
			if h.Abandoned() {
				return
			}
			slog.Warn("stream idle timeout", "chat", h.ChatID, "stream", h.ID)
			entry.Fail("response timed out")
			mc.notify(streamFailedMsg{ChatID: h.ChatID, Entry: entry, Message: "response timed out"})
			h.Abandon()
		})
		defer idleTimer.Stop()
	}

	dec := NewLineDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := h.Read(buf)
		if idleTimer != nil {
			idleTimer.Reset(mc.client.StreamTimeout())
		}
		if n > 0 {
			for _, rec := range dec.Feed(string(buf[:n])) {
				mc.apply(h, entry, rec)
			}
		}
		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			if tail, ok := dec.Flush(); ok {
				slog.Warn("stream ended with unterminated record", "chat", h.ChatID, "tail", tail)
				mc.apply(h, entry, tail)
			}
			if h.Abandoned() {
				return
			}
			entry.Finalize(mc.fin)
			mc.notify(streamDoneMsg{ChatID: h.ChatID, Entry: entry})
			return
		}

		if h.Abandoned() {
			// Cancellation shows up here as a read error, not a failure.
			return
		}
		slog.Error("stream read failed", "chat", h.ChatID, "stream", h.ID, "error", err)
		entry.Fail(err.Error())
		mc.notify(streamFailedMsg{ChatID: h.ChatID, Entry: entry, Message: err.Error()})
		return
	}
}

// apply decodes one record and drives it into the entry, in arrival
// order. A record that fails to decode is annotated and skipped; it never
// aborts the stream.
func (mc *MessageController) apply(h *StreamHandle, entry *TranscriptEntry, rec string) {
	if h.Abandoned() {
		return
	}
	switch ev := parseRecord(rec).(type) {
	case contentDelta:
		entry.AppendDelta(ev.Text)
	case streamFailure:
		slog.Warn("server reported stream error", "chat", h.ChatID, "error", ev.Message)
		entry.AppendNotice(ev.Message)
	case malformedRecord:
		slog.Warn("malformed stream record", "chat", h.ChatID, "record", ev.Raw)
		entry.AppendNotice("received malformed response data")
	}
	mc.notify(streamDeltaMsg{ChatID: h.ChatID, Entry: entry})
}
