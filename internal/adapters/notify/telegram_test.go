package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestSendPostsToEveryConfiguredChat(t *testing.T) {
	var mu sync.Mutex
	var seenChats []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		seenChats = append(seenChats, req.ChatID)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "test-token", []string{"chat-1", "chat-2"})
	if err := tg.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seenChats) != 2 {
		t.Fatalf("expected 2 chat deliveries, got %d", len(seenChats))
	}
}

func TestSendReturnsFirstErrorButKeepsDeliveringToOtherChats(t *testing.T) {
	var mu sync.Mutex
	var seenChats []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		seenChats = append(seenChats, req.ChatID)
		mu.Unlock()
		if req.ChatID == "bad-chat" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "test-token", []string{"bad-chat", "good-chat"})
	err := tg.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected an error from the rejected chat")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seenChats) != 2 {
		t.Fatalf("expected delivery attempted to both chats, got %d", len(seenChats))
	}
}
