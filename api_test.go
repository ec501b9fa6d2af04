package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAPIClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/models", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode([]map[string]string{
			{"id": "openai/gpt-4o", "name": "GPT-4o"},
			{"id": "local/llama3"},
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "openai/gpt-4o", models[0].ID)
	require.Equal(t, "GPT-4o", models[0].Name)
	require.Empty(t, models[1].Name)
}

func TestAPIClient_ListChats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats", r.URL.Path)
		// Numeric ids arrive as JSON numbers
		io.WriteString(w, `[{"id": 7, "title": "Trip planning"}, {"id": "abc", "title": ""}]`)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	chats, err := client.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, "7", chats[0].ID)
	require.Equal(t, "Trip planning", chats[0].Title)
	require.Equal(t, "abc", chats[1].ID)
}

func TestAPIClient_CreateChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/new", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		io.WriteString(w, `{"id": 42}`)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	id, err := client.CreateChat(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", id)
}

func TestAPIClient_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/7", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]string{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello", "model": "m1"},
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	turns, err := client.History(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, RoleUser, turns[0].Role)
	require.Equal(t, "hi", turns[0].Raw)
	require.Equal(t, RoleAssistant, turns[1].Role)
	require.Equal(t, "m1", turns[1].Model)
}

func TestAPIClient_HistoryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	_, err := client.History(context.Background(), "gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAPIClient_Undo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/7/undo", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode([]map[string]string{
			{"role": "user", "content": "first"},
			{"role": "assistant", "content": "reply"},
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	turns, err := client.Undo(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, turns, 2)
}

func TestAPIClient_UndoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	_, err := client.Undo(context.Background(), "gone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAPIClient_DeleteToleratesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/7/delete", r.URL.Path)
		require.Equal(t, http.MethodDelete, r.Method)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	// Deleting an already-deleted chat is not an error
	require.NoError(t, client.Delete(context.Background(), "7"))
}

func TestAPIClient_OpenStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/7/message", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hi", body["message"])
		require.Equal(t, "m1", body["model"])
		io.WriteString(w, "{\"chunk\":\"a\"}\n{\"chunk\":\"b\"}\n")
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	handle, err := client.OpenStream(context.Background(), "7", "hi", "m1")
	require.NoError(t, err)
	defer handle.Close()

	require.Equal(t, "7", handle.ChatID)
	require.NotEmpty(t, handle.ID)

	data, err := io.ReadAll(handle)
	require.NoError(t, err)
	require.Equal(t, "{\"chunk\":\"a\"}\n{\"chunk\":\"b\"}\n", string(data))
}

func TestAPIClient_OpenStreamNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second, 0)
	_, err := client.OpenStream(context.Background(), "gone", "hi", "m1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStreamHandle_Abandon(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{\"chunk\":\"a\"}\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-blocked:
		}
	}))
	defer server.Close()
	defer close(blocked)

	client := NewAPIClient(server.URL, time.Second, 0)
	handle, err := client.OpenStream(context.Background(), "7", "hi", "m1")
	require.NoError(t, err)

	require.False(t, handle.Abandoned())
	handle.Abandon()
	require.True(t, handle.Abandoned())

	// Abandon is idempotent
	handle.Abandon()
	require.True(t, handle.Abandoned())

	// The connection is torn down, so reads fail instead of blocking
	buf := make([]byte, 64)
	for {
		if _, err := handle.Read(buf); err != nil {
			break
		}
	}
}
