package bus

import (
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed unexpectedly")
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
	return Event{}
}

func TestBus_PublishToTopicSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	chatA, cancelA := b.Subscribe("chat-a")
	defer cancelA()
	chatB, cancelB := b.Subscribe("chat-b")
	defer cancelB()

	b.Publish("chat-a", "message.sent", []byte(`{"id":"1"}`))

	evt := receive(t, chatA)
	if evt.Topic != "chat-a" || evt.Type != "message.sent" || string(evt.Payload) != `{"id":"1"}` {
		t.Errorf("Unexpected event %+v", evt)
	}

	select {
	case evt := <-chatB:
		t.Errorf("Subscriber of another topic received %+v", evt)
	default:
	}
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := New()
	defer b.Close()

	ch, cancel := b.Subscribe("chat")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish("chat", "message.edited", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	if got := len(ch); got != subscriberBuffer {
		t.Errorf("Expected buffer to hold %d events, got %d", subscriberBuffer, got)
	}
}

func TestBus_CancelAndClose(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe("chat")
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after cancel")
	}

	other, cancelOther := b.Subscribe("chat")
	b.Close()
	if _, ok := <-other; ok {
		t.Error("Expected channel to be closed after Close")
	}
	cancelOther()

	late, _ := b.Subscribe("chat")
	if _, ok := <-late; ok {
		t.Error("Expected subscription after Close to be closed")
	}
	b.Publish("chat", "message.sent", nil)
}
