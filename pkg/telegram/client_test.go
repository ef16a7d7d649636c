package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("test-token", 10)
	c.BaseURL = server.URL
	return c
}

func TestSendChunksLongMessages(t *testing.T) {
	var texts []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req sendMessageRequest
		json.Unmarshal(body, &req)
		texts = append(texts, req.Text)
		w.Write([]byte(`{"ok":true}`))
	})

	// 25 chars with a 10-char limit: three messages
	err := c.Send(context.Background(), "42", strings.Repeat("x", 25))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("messages sent = %d, want 3", len(texts))
	}
	if strings.Join(texts, "") != strings.Repeat("x", 25) {
		t.Error("chunks must reassemble the original text")
	}
}

func TestSendShortMessageSingleCall(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ok":true}`))
	})

	if err := c.Send(context.Background(), "42", "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	err := c.Send(context.Background(), "42", "hi")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("err = %v, want the API description", err)
	}
}

func TestDownloadFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/getFile"):
			w.Write([]byte(`{"ok":true,"result":{"file_path":"voice/file_1.oga"}}`))
		case strings.Contains(r.URL.Path, "/file/"):
			if !strings.HasSuffix(r.URL.Path, "voice/file_1.oga") {
				t.Errorf("download path = %s", r.URL.Path)
			}
			w.Write([]byte("audio-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	data, err := c.DownloadFile(context.Background(), "file-id-1")
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestUpdateUserID(t *testing.T) {
	tests := []struct {
		name   string
		update Update
		want   string
	}{
		{"full message", Update{Message: &Message{From: &User{ID: 123}}}, "123"},
		{"no message", Update{}, ""},
		{"no sender", Update{Message: &Message{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.UserID(); got != tt.want {
				t.Errorf("UserID = %q, want %q", got, tt.want)
			}
		})
	}
}
