package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/bus"
)

// echoChat replies to every message with its text in upper case.
type echoChat struct {
	messenger *Messenger

	mu       sync.Mutex
	received []string
}

func (e *echoChat) HandleMessage(ctx context.Context, chatID, text string) error {
	e.mu.Lock()
	e.received = append(e.received, chatID+":"+text)
	e.mu.Unlock()
	_, err := e.messenger.Send(ctx, chatID, strings.ToUpper(text))
	return err
}

func newTestServer(t *testing.T) (*Server, *echoChat) {
	t.Helper()
	b := bus.New()
	t.Cleanup(b.Close)

	messenger, err := NewMessenger(b, 100)
	if err != nil {
		t.Fatalf("NewMessenger failed: %v", err)
	}
	chat := &echoChat{messenger: messenger}
	return NewServer(context.Background(), zerolog.Nop(), chat, messenger, b), chat
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: want %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %q", rr.Body.String())
	}
}

func TestServer_PostMessage(t *testing.T) {
	srv, chat := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/messages", strings.NewReader(`{"text":"naruto episode 3"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status: want %d, got %d", http.StatusAccepted, rr.Code)
	}

	srv.Wait()
	if len(chat.received) != 1 || chat.received[0] != "chat-1:naruto episode 3" {
		t.Errorf("Unexpected received messages %v", chat.received)
	}
}

func TestServer_PostMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"text":`},
		{"missing text", `{}`},
		{"blank text", `{"text":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, chat := newTestServer(t)

			rr := httptest.NewRecorder()
			srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/chats/chat-1/messages", strings.NewReader(tt.body)))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: want %d, got %d", http.StatusBadRequest, rr.Code)
			}
			srv.Wait()
			if len(chat.received) != 0 {
				t.Errorf("Invalid request must not reach the bot, got %v", chat.received)
			}
		})
	}
}

func TestServer_GetMessage(t *testing.T) {
	srv, chat := newTestServer(t)
	id, err := chat.messenger.Send(context.Background(), "chat-1", "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/messages/"+id, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: want %d, got %d", http.StatusOK, rr.Code)
	}
	var msg Message
	if err := json.Unmarshal(rr.Body.Bytes(), &msg); err != nil {
		t.Fatalf("Invalid body: %v", err)
	}
	if msg.ID != id || msg.Text != "hello" {
		t.Errorf("Unexpected message %+v", msg)
	}

	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-2/messages/"+id, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: want %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestServer_Events(t *testing.T) {
	srv, chat := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/chats/chat-1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open event stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		t.Helper()
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("Failed to read event: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	if name, _ := readEvent(); name != "hello" {
		t.Fatalf("Expected hello event, got %q", name)
	}

	// Another chat's messages are not streamed
	if _, err := chat.messenger.Send(ctx, "chat-2", "elsewhere"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	id, err := chat.messenger.Send(ctx, "chat-1", "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := chat.messenger.Edit(ctx, "chat-1", id, "hello, edited"); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	name, data := readEvent()
	if name != EventMessageSent || !strings.Contains(data, `"text":"hello"`) {
		t.Errorf("Unexpected event %s %s", name, data)
	}
	name, data = readEvent()
	if name != EventMessageEdited || !strings.Contains(data, `"text":"hello, edited"`) {
		t.Errorf("Unexpected event %s %s", name, data)
	}
}
