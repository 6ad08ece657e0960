package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(userID int, topics ...string) *Client {
	all := append([]string{UserTopic(userID)}, topics...)
	return &Client{
		ID:     "test",
		UserID: userID,
		Topics: all,
		Send:   make(chan []byte, 8),
	}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data := <-client.Send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	subscribed := newTestClient(1, "appointments")
	other := newTestClient(2)
	hub.Register(subscribed)
	hub.Register(other)

	hub.Broadcast("appointments", Event{Type: "created", Topic: "appointments", Resource: "appointments", ResourceID: 5})

	ev := receive(t, subscribed)
	if ev.ResourceID != 5 || ev.Type != "created" {
		t.Errorf("event = %+v", ev)
	}
	select {
	case <-other.Send:
		t.Error("unsubscribed client received event")
	default:
	}
}

func TestNotifyTargetsSingleUser(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(1)
	bob := newTestClient(2)
	hub.Register(alice)
	hub.Register(bob)

	hub.Notify(1, Event{Type: "appointment_confirmed", Resource: "appointments", ResourceID: 9})

	ev := receive(t, alice)
	if ev.Topic != UserTopic(1) {
		t.Errorf("topic = %q", ev.Topic)
	}
	select {
	case <-bob.Send:
		t.Error("notification leaked to another user")
	default:
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1)
	hub.Register(client)

	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{"evolutions"}})
	if hub.TopicCount("evolutions") != 1 {
		t.Fatalf("evolutions subscribers = %d", hub.TopicCount("evolutions"))
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Topics: []string{"evolutions"}})
	if hub.TopicCount("evolutions") != 0 {
		t.Errorf("evolutions subscribers after unsubscribe = %d", hub.TopicCount("evolutions"))
	}
}

func TestUserTopicCannotBeDropped(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1)
	hub.Register(client)

	hub.Unsubscribe(client, []string{UserTopic(1)})
	if hub.TopicCount(UserTopic(1)) != 1 {
		t.Error("private user topic was dropped")
	}
}

func TestUnregisterRemovesAllSubscriptions(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1, "appointments")
	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d", hub.ClientCount())
	}
	if hub.TopicCount("appointments") != 0 {
		t.Errorf("appointments subscribers = %d", hub.TopicCount("appointments"))
	}
	// Send channel is closed; a second unregister must not panic.
	hub.Unregister(client)
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1, "appointments")
	client.Send = make(chan []byte) // unbuffered and never drained
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		hub.Broadcast("appointments", Event{Type: "created", Topic: "appointments"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
}
