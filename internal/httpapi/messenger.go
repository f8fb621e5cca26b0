package httpapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/bus"
)

const (
	EventMessageSent   = "message.sent"
	EventMessageEdited = "message.edited"
)

// Message is a chat message produced by the bot
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Messenger keeps the most recent bot messages and publishes every send and
// edit on the chat's bus topic. It implements bot.Messenger.
type Messenger struct {
	// mu serialises edits so concurrent read-modify-write cycles on the
	// same message do not lose updates.
	mu       sync.Mutex
	messages *lru.Cache[string, Message]
	bus      *bus.Bus
	now      func() time.Time
}

// NewMessenger creates a messenger retaining up to history messages.
func NewMessenger(b *bus.Bus, history int) (*Messenger, error) {
	if history <= 0 {
		history = 1000
	}
	messages, err := lru.New[string, Message](history)
	if err != nil {
		return nil, err
	}
	return &Messenger{messages: messages, bus: b, now: time.Now}, nil
}

// ChatTopic is the bus topic carrying events for chatID.
func ChatTopic(chatID string) string {
	return "chat:" + chatID
}

func messageKey(chatID, messageID string) string {
	return chatID + "/" + messageID
}

func (m *Messenger) Send(_ context.Context, chatID, text string) (string, error) {
	now := m.now()
	msg := Message{ID: uuid.NewString(), ChatID: chatID, Text: text, CreatedAt: now, UpdatedAt: now}

	m.mu.Lock()
	m.messages.Add(messageKey(chatID, msg.ID), msg)
	m.mu.Unlock()

	return msg.ID, m.publish(EventMessageSent, msg)
}

func (m *Messenger) Edit(_ context.Context, chatID, messageID, text string) error {
	m.mu.Lock()
	msg, ok := m.messages.Get(messageKey(chatID, messageID))
	if !ok {
		m.mu.Unlock()
		return apperrors.NewNotFoundError("message", messageID)
	}
	msg.Text = text
	msg.UpdatedAt = m.now()
	m.messages.Add(messageKey(chatID, messageID), msg)
	m.mu.Unlock()

	return m.publish(EventMessageEdited, msg)
}

// Message returns a retained message.
func (m *Messenger) Message(chatID, messageID string) (Message, bool) {
	return m.messages.Get(messageKey(chatID, messageID))
}

func (m *Messenger) publish(eventType string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	m.bus.Publish(ChatTopic(msg.ChatID), eventType, payload)
	return nil
}
