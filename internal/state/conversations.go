package state

import (
	"sort"

	"github.com/openbridge/relay/types"
)

// ConversationList maintains the pin-aware, recency-ordered conversation
// list. Pinned conversations are always a prefix, sorted ascending by
// pin index; unpinned conversations follow in recency order. Entries are
// replaced wholesale on every mutation so readers only ever see complete
// values.
type ConversationList struct {
	order []types.Conversation
}

// NewConversationList creates an empty list.
func NewConversationList() *ConversationList {
	return &ConversationList{}
}

// SetAll installs the bulk-fetched list. The server's relative order is
// kept for unpinned entries and treated as recency order.
func (l *ConversationList) SetAll(convs []types.Conversation) {
	l.order = make([]types.Conversation, len(convs))
	copy(l.order, convs)
	l.partition()
}

// Touch replaces the conversation's last message and, when the
// conversation is unpinned, moves it to the front of the unpinned
// partition. Pin order is authoritative: pinned entries never move from
// message activity. Unknown ids are ignored.
func (l *ConversationList) Touch(conversationID string, last types.Message) bool {
	i := l.find(conversationID)
	if i < 0 {
		return false
	}
	conv := l.order[i]
	msg := last
	conv.LastMessage = &msg

	if conv.Pinned() {
		l.order[i] = conv
		return true
	}

	l.order = append(l.order[:i], l.order[i+1:]...)
	front := l.pinnedCount()
	l.order = append(l.order, types.Conversation{})
	copy(l.order[front+1:], l.order[front:])
	l.order[front] = conv
	return true
}

// ApplyPinSet replaces the complete pin set: every conversation absent
// from entries loses its pin, every present one gets the given index,
// and the full ordering is re-derived. Ids not currently known are
// ignored — a pin event never creates conversations.
func (l *ConversationList) ApplyPinSet(entries []types.PinnedEntry) {
	indexes := make(map[string]int, len(entries))
	for _, e := range entries {
		indexes[e.ConversationID] = e.Index
	}

	for i, conv := range l.order {
		if idx, ok := indexes[conv.ID]; ok {
			pinned := idx
			conv.PinnedIndex = &pinned
		} else {
			conv.PinnedIndex = nil
		}
		l.order[i] = conv
	}
	l.partition()
}

// Get returns the conversation with the given id.
func (l *ConversationList) Get(conversationID string) (types.Conversation, bool) {
	if i := l.find(conversationID); i >= 0 {
		return l.order[i], true
	}
	return types.Conversation{}, false
}

// All returns a copy of the ordered list.
func (l *ConversationList) All() []types.Conversation {
	out := make([]types.Conversation, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of conversations.
func (l *ConversationList) Len() int {
	return len(l.order)
}

// Clear drops the list.
func (l *ConversationList) Clear() {
	l.order = nil
}

func (l *ConversationList) find(conversationID string) int {
	for i, c := range l.order {
		if c.ID == conversationID {
			return i
		}
	}
	return -1
}

func (l *ConversationList) pinnedCount() int {
	n := 0
	for _, c := range l.order {
		if c.Pinned() {
			n++
		}
	}
	return n
}

// partition re-derives the full ordering: pinned by index ascending,
// then unpinned in their current relative order.
func (l *ConversationList) partition() {
	sort.SliceStable(l.order, func(a, b int) bool {
		ca, cb := l.order[a], l.order[b]
		switch {
		case ca.Pinned() && cb.Pinned():
			return *ca.PinnedIndex < *cb.PinnedIndex
		case ca.Pinned():
			return true
		default:
			return false
		}
	})
}
