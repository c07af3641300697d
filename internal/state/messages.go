// Package state holds the client's synced view: message logs, the
// ordered conversation list, pagination cursors, and sync warnings.
// Nothing here is safe for concurrent use — every store is confined to
// the client's single writer loop.
package state

import "github.com/openbridge/relay/types"

// messageList is one conversation's log, newest first, with a guid index
// so replace-by-key is a lookup instead of a scan.
type messageList struct {
	msgs  []types.Message
	index map[string]int
}

// MessageStore keeps the per-conversation ordered message logs. The guid
// is the merge key: within one conversation it is unique at all times.
type MessageStore struct {
	lists map[string]*messageList
}

// NewMessageStore creates an empty store.
func NewMessageStore() *MessageStore {
	return &MessageStore{lists: make(map[string]*messageList)}
}

func (s *MessageStore) list(conversationID string) *messageList {
	l, ok := s.lists[conversationID]
	if !ok {
		l = &messageList{index: make(map[string]int)}
		s.lists[conversationID] = l
	}
	return l
}

// ReplaceAll stores the first fetched page verbatim, newest first.
func (s *MessageStore) ReplaceAll(conversationID string, msgs []types.Message) {
	l := &messageList{
		msgs:  make([]types.Message, len(msgs)),
		index: make(map[string]int, len(msgs)),
	}
	copy(l.msgs, msgs)
	for i, m := range l.msgs {
		l.index[m.GUID] = i
	}
	s.lists[conversationID] = l
}

// AppendOlder adds an older page to the end of the log, skipping any
// message whose guid is already present. Returns the number of messages
// actually appended.
func (s *MessageStore) AppendOlder(conversationID string, msgs []types.Message) int {
	l := s.list(conversationID)
	appended := 0
	for _, m := range msgs {
		if _, exists := l.index[m.GUID]; exists {
			continue
		}
		l.index[m.GUID] = len(l.msgs)
		l.msgs = append(l.msgs, m)
		appended++
	}
	return appended
}

// InsertNewest puts a message at the front of the log. If a message with
// the same guid already exists it is replaced in place instead, so an
// optimistic placeholder turns into its confirmed copy without moving.
func (s *MessageStore) InsertNewest(conversationID string, msg types.Message) {
	l := s.list(conversationID)
	if i, exists := l.index[msg.GUID]; exists {
		l.msgs[i] = msg
		return
	}
	l.msgs = append([]types.Message{msg}, l.msgs...)
	for g, i := range l.index {
		l.index[g] = i + 1
	}
	l.index[msg.GUID] = 0
}

// ReplaceByGUID substitutes the message stored under guid with repl at
// the same position, rekeying the index to repl's guid. Used when the
// bridge confirms a send under a guid of its own. If repl's guid already
// exists elsewhere in the list (the bridge echoed the message through
// the push stream before the send completion ran), that entry is updated
// and the one under guid is dropped, so the guid stays unique. Returns
// false if guid is not present.
func (s *MessageStore) ReplaceByGUID(conversationID, guid string, repl types.Message) bool {
	l, ok := s.lists[conversationID]
	if !ok {
		return false
	}
	i, exists := l.index[guid]
	if !exists {
		return false
	}
	if j, dup := l.index[repl.GUID]; dup && j != i {
		l.msgs[j] = repl
		l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
		delete(l.index, guid)
		for g, k := range l.index {
			if k > i {
				l.index[g] = k - 1
			}
		}
		return true
	}
	delete(l.index, guid)
	l.msgs[i] = repl
	l.index[repl.GUID] = i
	return true
}

// RemoveByGUID deletes the message stored under guid, closing the gap.
// Returns false if guid is not present.
func (s *MessageStore) RemoveByGUID(conversationID, guid string) bool {
	l, ok := s.lists[conversationID]
	if !ok {
		return false
	}
	i, exists := l.index[guid]
	if !exists {
		return false
	}
	l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
	delete(l.index, guid)
	for g, j := range l.index {
		if j > i {
			l.index[g] = j - 1
		}
	}
	return true
}

// Get returns the message stored under guid.
func (s *MessageStore) Get(conversationID, guid string) (types.Message, bool) {
	l, ok := s.lists[conversationID]
	if !ok {
		return types.Message{}, false
	}
	i, exists := l.index[guid]
	if !exists {
		return types.Message{}, false
	}
	return l.msgs[i], true
}

// Messages returns a copy of the conversation's log, newest first.
func (s *MessageStore) Messages(conversationID string) []types.Message {
	l, ok := s.lists[conversationID]
	if !ok {
		return nil
	}
	out := make([]types.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of messages held for a conversation.
func (s *MessageStore) Len(conversationID string) int {
	l, ok := s.lists[conversationID]
	if !ok {
		return 0
	}
	return len(l.msgs)
}

// Clear drops every conversation's log.
func (s *MessageStore) Clear() {
	s.lists = make(map[string]*messageList)
}
