// Package types holds the value types shared between the bridge contract
// and the client's stores. Values are copied wholesale on mutation so
// consumers never observe a partially updated entity.
package types

import "time"

// Handle identifies a participant on the remote service.
type Handle struct {
	ID          int64
	Address     string
	Service     string
	ContactName string
}

// Name returns the best display name for the handle.
func (h Handle) Name() string {
	if h.ContactName != "" {
		return h.ContactName
	}
	return h.Address
}

// Conversation is a synced conversation. PinnedIndex is non-nil iff the
// conversation is pinned; lower values sort first.
type Conversation struct {
	ID           string
	GUID         string
	DisplayName  string
	Participants []Handle
	LastMessage  *Message
	IsGroup      bool
	PinnedIndex  *int
}

// Pinned reports whether the conversation carries a pin marker.
func (c Conversation) Pinned() bool {
	return c.PinnedIndex != nil
}

// Name returns the display name, falling back to participant names.
func (c Conversation) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if len(c.Participants) > 0 {
		return c.Participants[0].Name()
	}
	return c.ID
}

// Participant returns the handle with the given id, if present.
func (c Conversation) Participant(handleID int64) (Handle, bool) {
	for _, h := range c.Participants {
		if h.ID == handleID {
			return h, true
		}
	}
	return Handle{}, false
}

// Message is a synced message. ID is server-assigned; a negative ID marks
// a locally-created placeholder awaiting confirmation. GUID is always
// present and is the merge key for dedup and optimistic replacement.
type Message struct {
	ID             int64
	GUID           string
	Text           string
	Date           time.Time
	IsFromMe       bool
	HandleID       int64
	ConversationID string

	Attachments          []Attachment
	ReplyToGUID          string
	ThreadOriginatorGUID string
}

// Pending reports whether the message is an unconfirmed local placeholder.
func (m Message) Pending() bool {
	return m.ID < 0
}

// Attachment describes a file attached to a message. Content is fetched
// separately through the bridge.
type Attachment struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Tapback is a lightweight reaction attached to a specific message.
// It is surfaced to the UI as-is; the core keeps no tapback state.
type Tapback struct {
	ConversationID string
	MessageGUID    string
	Kind           string
	Removed        bool
	HandleID       int64
}

// PinnedEntry is one element of a complete pin-set replacement.
type PinnedEntry struct {
	ConversationID string
	Index          int
}

// PageState is the pagination cursor for one conversation. The zero value
// is NOT the implicit default; see DefaultPageState.
type PageState struct {
	Offset    int
	HasMore   bool
	IsLoading bool
}

// DefaultPageState is the implicit state of a conversation that has never
// been fetched: nothing loaded, more assumed available.
func DefaultPageState() PageState {
	return PageState{Offset: 0, HasMore: true, IsLoading: false}
}
