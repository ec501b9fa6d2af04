package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrChatBusy rejects mutating operations while a response is still
// streaming for the chat.
var ErrChatBusy = errors.New("a response is still streaming for this chat")

// ConfirmFunc asks the user a yes/no question and blocks for the answer.
// The TUI backs it with a modal; tests pass a plain function.
type ConfirmFunc func(title, message string) bool

// coordinator messages
type chatListMsg struct {
	Chats []ChatSummary
}
type chatLoadedMsg struct {
	ChatID string
	Title  string
	Turns  []Turn
}

// openingStream reserves a chat's stream slot while a send is waiting for
// response headers. cancel aborts the request mid-open.
type openingStream struct {
	cancel context.CancelFunc
}

// SessionCoordinator owns the active chat id and the at-most-one open
// stream per chat. Every mutating operation goes through here, so chat
// switches, undo, and delete stay consistent with whatever is streaming.
// Operations block and are called off the UI loop; the mutex serializes
// them, released only while waiting on the user or on a stream opening so
// the UI loop is never stuck behind the network.
type SessionCoordinator struct {
	mu         sync.Mutex
	client     *APIClient
	controller *MessageController
	confirm    ConfirmFunc
	notify     NotifyFunc

	activeChat string
	chats      []ChatSummary
	handles    map[string]*StreamHandle
	opening    map[string]*openingStream
}

// NewSessionCoordinator builds the coordinator and its controller.
func NewSessionCoordinator(client *APIClient, fin *Finalizer, confirm ConfirmFunc, notify NotifyFunc) *SessionCoordinator {
	sc := &SessionCoordinator{
		client:  client,
		confirm: confirm,
		notify:  notify,
		handles: make(map[string]*StreamHandle),
		opening: make(map[string]*openingStream),
	}
	sc.controller = NewMessageController(client, fin, notify, sc.release)
	return sc
}

// ActiveChat returns the id of the chat currently shown.
func (sc *SessionCoordinator) ActiveChat() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.activeChat
}

// Chats returns the cached chat list.
func (sc *SessionCoordinator) Chats() []ChatSummary {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]ChatSummary, len(sc.chats))
	copy(out, sc.chats)
	return out
}

// Streaming reports whether the active chat has a stream open or opening.
func (sc *SessionCoordinator) Streaming() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.handles[sc.activeChat] != nil || sc.opening[sc.activeChat] != nil
}

// Startup loads the chat list and opens the first chat, creating one when
// the backend has none.
func (sc *SessionCoordinator) Startup(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	chats, err := sc.client.ListChats(ctx)
	if err != nil {
		return err
	}
	sc.chats = chats
	sc.notify(chatListMsg{Chats: chats})

	if len(chats) > 0 {
		return sc.openLocked(ctx, chats[0].ID)
	}
	return sc.createLocked(ctx)
}

// SwitchTo makes chatID the active chat. Any stream open for the
// previously active chat is abandoned first, so nothing it delivers later
// can touch the display. A chat deleted server-side falls back to the
// first remaining chat, or a fresh one.
func (sc *SessionCoordinator) SwitchTo(ctx context.Context, chatID string) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.abandonLocked(sc.activeChat)
	return sc.openLocked(ctx, chatID)
}

// SendTurn sends text (and the staged attachment, if any) to the active
// chat. At most one stream per chat: a second send while one is open or
// still opening is rejected, not queued.
func (sc *SessionCoordinator) SendTurn(ctx context.Context, text, model string, attachment *PendingAttachment) error {
	sc.mu.Lock()
	chatID := sc.activeChat
	if chatID == "" {
		sc.mu.Unlock()
		return errors.New("no active chat")
	}
	if sc.handles[chatID] != nil || sc.opening[chatID] != nil {
		sc.mu.Unlock()
		return ErrChatBusy
	}
	// Reserve the slot, then open without the lock: opening blocks until
	// response headers arrive, and every other operation would queue on
	// the mutex for that whole window.
	openCtx, cancel := context.WithCancel(ctx)
	slot := &openingStream{cancel: cancel}
	sc.opening[chatID] = slot
	sc.mu.Unlock()

	handle, err := sc.controller.SendTurn(openCtx, chatID, text, model, attachment)

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.opening[chatID] != slot {
		// Cancelled while opening. A stream that opened anyway is torn
		// down before anything could consume it.
		if handle != nil {
			handle.Abandon()
		}
		return err
	}
	delete(sc.opening, chatID)
	if err != nil || handle == nil {
		cancel()
		return err
	}
	if handle.Finished() {
		// Drained before the slot could be filled; nothing left to track.
		cancel()
		return nil
	}
	sc.handles[chatID] = handle
	return nil
}

// UndoLastTurn removes the last exchange of the active chat after user
// confirmation. Rejected while a stream is open, checked before the user
// is even asked.
func (sc *SessionCoordinator) UndoLastTurn(ctx context.Context) error {
	sc.mu.Lock()
	chatID := sc.activeChat
	if chatID == "" {
		sc.mu.Unlock()
		return errors.New("no active chat")
	}
	if sc.handles[chatID] != nil || sc.opening[chatID] != nil {
		sc.mu.Unlock()
		return ErrChatBusy
	}
	sc.mu.Unlock()

	if !sc.confirm("Undo last message", "Remove the last exchange from this chat?") {
		return nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// The answer took as long as the user took; re-check before mutating.
	if sc.activeChat != chatID {
		return nil
	}
	if sc.handles[chatID] != nil || sc.opening[chatID] != nil {
		return ErrChatBusy
	}

	turns, err := sc.client.Undo(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return sc.fallbackLocked(ctx)
		}
		return err
	}
	sc.notify(chatLoadedMsg{ChatID: chatID, Title: sc.titleLocked(chatID), Turns: turns})
	return nil
}

// DeleteChat deletes the active chat after confirmation, abandoning its
// stream first, then moves to the first remaining chat or a new one.
func (sc *SessionCoordinator) DeleteChat(ctx context.Context) error {
	sc.mu.Lock()
	chatID := sc.activeChat
	sc.mu.Unlock()
	if chatID == "" {
		return errors.New("no active chat")
	}

	if !sc.confirm("Delete chat", "Delete this chat and its history?") {
		return nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.activeChat != chatID {
		return nil
	}
	sc.abandonLocked(chatID)

	if err := sc.client.Delete(ctx, chatID); err != nil {
		return err
	}
	slog.Info("chat deleted", "chat", chatID)
	sc.activeChat = ""
	return sc.fallbackLocked(ctx)
}

// CreateNewChat opens a fresh empty chat and makes it active.
func (sc *SessionCoordinator) CreateNewChat(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.abandonLocked(sc.activeChat)
	return sc.createLocked(ctx)
}

// CancelActiveStream abandons the active chat's in-flight stream, open or
// still opening. Returns true when a stream was actually cancelled.
func (sc *SessionCoordinator) CancelActiveStream() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.handles[sc.activeChat] == nil && sc.opening[sc.activeChat] == nil {
		return false
	}
	sc.abandonLocked(sc.activeChat)
	return true
}

// RefreshChats re-fetches the chat list, picking up server-side title
// changes after a turn completes.
func (sc *SessionCoordinator) RefreshChats(ctx context.Context) error {
	chats, err := sc.client.ListChats(ctx)
	if err != nil {
		return err
	}
	sc.mu.Lock()
	sc.chats = chats
	sc.mu.Unlock()
	sc.notify(chatListMsg{Chats: chats})
	return nil
}

// release is handed to the controller; it drops the handle bookkeeping
// when a stream finishes. The id check keeps a finished old stream from
// releasing a newer one for the same chat.
func (sc *SessionCoordinator) release(chatID, streamID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if h := sc.handles[chatID]; h != nil && h.ID == streamID {
		delete(sc.handles, chatID)
	}
}

func (sc *SessionCoordinator) abandonLocked(chatID string) {
	if slot := sc.opening[chatID]; slot != nil {
		slot.cancel()
		delete(sc.opening, chatID)
	}
	if h := sc.handles[chatID]; h != nil {
		h.Abandon()
		delete(sc.handles, chatID)
	}
}

// openLocked loads chatID's history and makes it active, falling back
// when the chat no longer exists.
func (sc *SessionCoordinator) openLocked(ctx context.Context, chatID string) error {
	turns, err := sc.client.History(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Warn("chat no longer exists, falling back", "chat", chatID)
			return sc.fallbackLocked(ctx)
		}
		return fmt.Errorf("failed to load chat: %w", err)
	}
	sc.activeChat = chatID
	sc.notify(chatLoadedMsg{ChatID: chatID, Title: sc.titleLocked(chatID), Turns: turns})
	return nil
}

// fallbackLocked re-syncs the chat list and selects the first remaining
// chat, or creates one when none are left.
func (sc *SessionCoordinator) fallbackLocked(ctx context.Context) error {
	chats, err := sc.client.ListChats(ctx)
	if err != nil {
		return err
	}
	sc.chats = chats
	sc.notify(chatListMsg{Chats: chats})

	if len(chats) > 0 {
		return sc.openLocked(ctx, chats[0].ID)
	}
	return sc.createLocked(ctx)
}

func (sc *SessionCoordinator) createLocked(ctx context.Context) error {
	id, err := sc.client.CreateChat(ctx)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	slog.Info("created chat", "chat", id)
	sc.activeChat = id
	sc.chats = append([]ChatSummary{{ID: id, Title: "New Chat"}}, sc.chats...)
	sc.notify(chatListMsg{Chats: sc.chats})
	sc.notify(chatLoadedMsg{ChatID: id, Title: "New Chat", Turns: nil})
	return nil
}

func (sc *SessionCoordinator) titleLocked(chatID string) string {
	for _, chat := range sc.chats {
		if chat.ID == chatID {
			return chat.Title
		}
	}
	return ""
}
