package relay

import (
	"context"
	"testing"
	"time"

	"github.com/openbridge/relay/bus"
	"github.com/openbridge/relay/types"
)

func TestPushNewMessageUpdatesLogAndOrder(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
		conversation("chat-2", false, handle("+15550002")),
	}}
	c := newTestClient(t, ft, nil, Options{})
	mustConnect(t, c)

	msg := types.Message{ID: 10, GUID: "p1", Text: "hey", ConversationID: "chat-2", HandleID: 2}
	ft.push().OnNewMessage(msg, handle("+15550002"))

	msgs := c.Messages("chat-2")
	if len(msgs) != 1 || msgs[0].GUID != "p1" {
		t.Fatalf("messages = %+v", msgs)
	}

	convs := c.Conversations()
	if convs[0].ID != "chat-2" {
		t.Errorf("conversation order = [%s %s], want chat-2 first", convs[0].ID, convs[1].ID)
	}
	if convs[0].LastMessage == nil || convs[0].LastMessage.GUID != "p1" {
		t.Error("conversation preview not updated")
	}
}

func TestPushNewMessageDeduplicatesByGUID(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
	}}
	c := newTestClient(t, ft, nil, Options{})
	mustConnect(t, c)

	msg := types.Message{ID: 10, GUID: "p1", Text: "hey", ConversationID: "chat-1"}
	ft.push().OnNewMessage(msg, handle("+15550001"))
	msg.Text = "hey (edited)"
	ft.push().OnNewMessage(msg, handle("+15550001"))

	msgs := c.Messages("chat-1")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "hey (edited)" {
		t.Errorf("redelivery did not replace in place: %q", msgs[0].Text)
	}
}

func TestPushNewMessageNotifications(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
		conversation("chat-2", false, handle("+15550002")),
	}}
	fn := &fakeNotifier{authorized: true}
	c := newTestClient(t, ft, fn, Options{Notifications: true})
	mustConnect(t, c)
	if err := c.SelectConversation(context.Background(), "chat-1"); err != nil {
		t.Fatal(err)
	}

	sender := types.Handle{Address: "+15550002", ContactName: "Ana"}

	// Unselected conversation, not from me: notify with the contact name.
	ft.push().OnNewMessage(types.Message{GUID: "p1", Text: "hi", ConversationID: "chat-2"}, sender)
	if fn.numShown() != 1 {
		t.Fatalf("shown = %d, want 1", fn.numShown())
	}
	if got := fn.shown[0].SenderName; got != "Ana" {
		t.Errorf("sender name = %q, want Ana", got)
	}

	// Selected conversation: suppressed.
	ft.push().OnNewMessage(types.Message{GUID: "p2", Text: "hi", ConversationID: "chat-1"}, sender)
	if fn.numShown() != 1 {
		t.Errorf("notification shown for the selected conversation")
	}

	// Own message echoed back: suppressed.
	ft.push().OnNewMessage(types.Message{GUID: "p3", Text: "hi", ConversationID: "chat-2", IsFromMe: true}, types.Handle{})
	if fn.numShown() != 1 {
		t.Errorf("notification shown for own message")
	}
}

func TestPushNewMessageNoNotificationsWhenUnauthorized(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
	}}
	fn := &fakeNotifier{authorized: false}
	c := newTestClient(t, ft, fn, Options{Notifications: true})
	mustConnect(t, c)

	ft.push().OnNewMessage(types.Message{GUID: "p1", Text: "hi", ConversationID: "chat-1"}, handle("+15550001"))
	if fn.numShown() != 0 {
		t.Errorf("notification shown without authorization")
	}
}

func TestPushPinnedChanged(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("a", false, handle("+1")),
		conversation("b", false, handle("+2")),
		conversation("c", false, handle("+3")),
	}}
	c := newTestClient(t, ft, nil, Options{})
	mustConnect(t, c)

	ft.push().OnPinnedChanged([]types.PinnedEntry{
		{ConversationID: "a", Index: 0},
		{ConversationID: "c", Index: 1},
	})

	convs := c.Conversations()
	got := []string{convs[0].ID, convs[1].ID, convs[2].ID}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if !convs[0].Pinned() || !convs[1].Pinned() || convs[2].Pinned() {
		t.Errorf("pin flags wrong: a=%v c=%v b=%v", convs[0].Pinned(), convs[1].Pinned(), convs[2].Pinned())
	}

	// The same set again is idempotent.
	ft.push().OnPinnedChanged([]types.PinnedEntry{
		{ConversationID: "a", Index: 0},
		{ConversationID: "c", Index: 1},
	})
	convs = c.Conversations()
	if convs[0].ID != "a" || convs[1].ID != "c" || convs[2].ID != "b" {
		t.Errorf("order changed on redelivery: %s %s %s", convs[0].ID, convs[1].ID, convs[2].ID)
	}

	// Unpin everything.
	ft.push().OnPinnedChanged(nil)
	for _, conv := range c.Conversations() {
		if conv.Pinned() {
			t.Errorf("conversation %s still pinned after empty pin set", conv.ID)
		}
	}
}

func TestPushPinnedMessageDoesNotReorderPinned(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("a", false, handle("+1")),
		conversation("b", false, handle("+2")),
		conversation("c", false, handle("+3")),
	}}
	c := newTestClient(t, ft, nil, Options{})
	mustConnect(t, c)

	ft.push().OnPinnedChanged([]types.PinnedEntry{{ConversationID: "a", Index: 0}})

	// New activity in a pinned conversation must not move it; activity in
	// an unpinned one moves it to the front of the unpinned section only.
	ft.push().OnNewMessage(types.Message{GUID: "p1", ConversationID: "a"}, handle("+1"))
	ft.push().OnNewMessage(types.Message{GUID: "p2", ConversationID: "c"}, handle("+3"))

	convs := c.Conversations()
	got := []string{convs[0].ID, convs[1].ID, convs[2].ID}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestPushSyncWarnings(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
	}}
	c := newTestClient(t, ft, nil, Options{})
	mustConnect(t, c)

	ft.push().OnSyncWarning("chat-1", "history may be incomplete")
	if text, ok := c.Warning("chat-1"); !ok || text != "history may be incomplete" {
		t.Fatalf("warning = %q, %v", text, ok)
	}

	// Latest warning wins per conversation.
	ft.push().OnSyncWarning("chat-1", "read receipts unavailable")
	if text, _ := c.Warning("chat-1"); text != "read receipts unavailable" {
		t.Errorf("warning = %q, want replacement", text)
	}
	if got := len(c.Warnings()); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}

	ft.push().OnSyncWarningCleared("chat-1")
	if _, ok := c.Warning("chat-1"); ok {
		t.Error("warning survived clear")
	}
}

func TestPushTapbackPassesThrough(t *testing.T) {
	ft := &fakeTransport{}
	b := bus.New()
	c := New(ft, nil, b, nil, nil, Options{})
	c.Start(context.Background())
	t.Cleanup(c.Stop)
	mustConnect(t, c)

	events, cancel := b.Subscribe("tapback.", 4)
	defer cancel()

	ft.push().OnTapback(types.Tapback{MessageGUID: "m1", Kind: "love"})

	select {
	case ev := <-events:
		tb, ok := ev.Payload.(types.Tapback)
		if !ok || tb.MessageGUID != "m1" {
			t.Fatalf("payload = %+v", ev.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tapback event on the bus")
	}
}

func TestPushEventsDroppedAfterDisconnect(t *testing.T) {
	ft := &fakeTransport{convs: []types.Conversation{
		conversation("chat-1", false, handle("+15550001")),
	}}
	fn := &fakeNotifier{authorized: true}
	c := newTestClient(t, ft, fn, Options{Notifications: true})
	mustConnect(t, c)

	stale := ft.push()
	c.Disconnect()

	stale.OnNewMessage(types.Message{GUID: "p1", Text: "late", ConversationID: "chat-1"}, handle("+15550001"))
	stale.OnSyncWarning("chat-1", "late warning")
	stale.OnPinnedChanged([]types.PinnedEntry{{ConversationID: "chat-1", Index: 0}})

	if got := len(c.Messages("chat-1")); got != 0 {
		t.Errorf("stale push message applied: %d messages", got)
	}
	if _, ok := c.Warning("chat-1"); ok {
		t.Error("stale warning applied")
	}
	if got := len(c.Conversations()); got != 0 {
		t.Errorf("stale pin event resurrected conversations: %d", got)
	}
	if fn.numShown() != 0 {
		t.Error("notification shown for stale push event")
	}
}
