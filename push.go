package relay

import (
	"go.uber.org/zap"

	"github.com/openbridge/relay/bus"
	"github.com/openbridge/relay/types"
)

// WarningEvent is the bus payload for warning.set and warning.cleared.
type WarningEvent struct {
	ConversationID string
	Text           string
}

// pushHandler routes real-time bridge events into the stores. It is
// bound to the connection generation current when the stream opened:
// once a disconnect bumps the generation, every event from this stream
// is dropped instead of resurrecting cleared state. The transport
// delivers events one at a time, so each handler call is atomic with
// respect to all other mutations.
type pushHandler struct {
	c   *Client
	gen uint64
}

func (h *pushHandler) OnNewMessage(msg types.Message, sender types.Handle) {
	c := h.c
	var (
		ok     bool
		notify bool
		name   string
	)
	c.do(func() {
		if c.gen != h.gen {
			return
		}
		ok = true
		c.messages.InsertNewest(msg.ConversationID, msg)
		c.conversations.Touch(msg.ConversationID, msg)

		if !msg.IsFromMe && msg.ConversationID != c.selected && c.notifyOK {
			notify = true
			name = sender.Name()
			if name == "" {
				if conv, found := c.conversations.Get(msg.ConversationID); found {
					name = conv.Name()
				}
			}
		}
	})
	if !ok {
		return
	}

	c.bus.Publish(bus.NewEvent(bus.KindMessageReceived, msg))

	if notify && c.notifier != nil {
		if err := c.notifier.ShowNotification(msg, name); err != nil {
			c.logger.Warn("notification failed", zap.String("conversation_id", msg.ConversationID), zap.Error(err))
		}
	}
}

// OnTapback passes the reaction straight through to the UI layer; the
// core keeps no tapback state.
func (h *pushHandler) OnTapback(tb types.Tapback) {
	if !h.current() {
		return
	}
	h.c.bus.Publish(bus.NewEvent(bus.KindTapbackUpdated, tb))
}

func (h *pushHandler) OnSyncWarning(conversationID, text string) {
	c := h.c
	ok := false
	c.do(func() {
		if c.gen != h.gen {
			return
		}
		ok = true
		c.warnings.Set(conversationID, text)
	})
	if !ok {
		return
	}
	c.bus.Publish(bus.NewEvent(bus.KindWarningSet, WarningEvent{ConversationID: conversationID, Text: text}))
}

func (h *pushHandler) OnSyncWarningCleared(conversationID string) {
	c := h.c
	ok := false
	c.do(func() {
		if c.gen != h.gen {
			return
		}
		ok = true
		c.warnings.Clear(conversationID)
	})
	if !ok {
		return
	}
	c.bus.Publish(bus.NewEvent(bus.KindWarningCleared, WarningEvent{ConversationID: conversationID}))
}

func (h *pushHandler) OnPinnedChanged(entries []types.PinnedEntry) {
	c := h.c
	ok := false
	c.do(func() {
		if c.gen != h.gen {
			return
		}
		ok = true
		c.conversations.ApplyPinSet(entries)
	})
	if !ok {
		return
	}
	c.bus.Publish(bus.NewEvent(bus.KindPinsChanged, entries))
}

// current reports whether the handler's stream still belongs to the
// live connection.
func (h *pushHandler) current() bool {
	ok := false
	h.c.do(func() { ok = h.c.gen == h.gen })
	return ok
}
