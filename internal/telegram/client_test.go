package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_SendMessage(t *testing.T) {
	var (
		gotPath    string
		gotPayload map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 1}})
	}))
	defer server.Close()

	c := New("123:abc", WithBaseURL(server.URL))
	if err := c.SendMessage(context.Background(), "42", "<b>hi</b>"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload["chat_id"] != "42" {
		t.Errorf("chat_id = %v", gotPayload["chat_id"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", gotPayload["parse_mode"])
	}
	if gotPayload["text"] != "<b>hi</b>" {
		t.Errorf("text = %v", gotPayload["text"])
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  400,
			"description": "Bad Request: chat not found",
		})
	}))
	defer server.Close()

	c := New("t", WithBaseURL(server.URL))
	err := c.SendMessage(context.Background(), "1", "x")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 400 || !strings.Contains(apiErr.Description, "chat not found") {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestClient_GetUpdates(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":5,"from":{"id":7,"first_name":"Ann","last_name":"Lee","username":"ann"},"chat":{"id":7,"type":"private"},"date":1700000000,"text":"BTC long 1 2 3"}},
			{"update_id":11}
		]}`))
	}))
	defer server.Close()

	c := New("t", WithBaseURL(server.URL))
	updates, err := c.GetUpdates(context.Background(), 10, 30*time.Second)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}

	if gotPayload["offset"].(float64) != 10 || gotPayload["timeout"].(float64) != 30 {
		t.Errorf("unexpected payload: %v", gotPayload)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	msg := updates[0].Message
	if msg == nil || msg.From == nil {
		t.Fatal("expected message with sender")
	}
	if msg.From.ID != 7 || msg.From.FullName() != "Ann Lee" || msg.Text != "BTC long 1 2 3" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if updates[1].Message != nil {
		t.Error("second update carries no message")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("t", WithBaseURL(server.URL))
	if _, err := c.GetUpdates(ctx, 0, time.Second); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"short", "hello", 10, []string{"hello"}},
		{"lines", "aaa\nbbb\nccc", 8, []string{"aaa\nbbb\n", "ccc"}},
		{"long line", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"runes", "ééééé", 5, []string{"ééééé"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessage(tt.text, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
