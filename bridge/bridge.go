// Package bridge defines the contracts the client core consumes: the
// Transport that talks to the remote message bridge, the PushHandler the
// transport delivers real-time events to, and the Notifier for local
// notifications. Implementations live outside this module.
package bridge

import (
	"context"

	"github.com/openbridge/relay/types"
)

// Transport performs all network I/O against the remote bridge. The core
// never opens sockets itself; it treats Connect/StopPushStream and every
// fetch as opaque operations that either succeed or fail.
type Transport interface {
	// Connect establishes a session with the bridge.
	Connect(ctx context.Context, endpoint, password string) error

	// FetchConversations returns a page of conversations in the server's
	// recency order, pinned entries carrying their pin index.
	FetchConversations(ctx context.Context, limit, offset int) ([]types.Conversation, error)

	// FetchMessages returns a page of messages for a conversation,
	// newest first, offset counting messages already fetched.
	FetchMessages(ctx context.Context, conversationID string, limit, offset int) ([]types.Message, error)

	// SendMessage delivers text to the given recipient. The returned
	// message is the server's confirmed copy and may be nil when the
	// bridge does not echo it back.
	SendMessage(ctx context.Context, text, recipient, replyToGUID string) (*types.Message, error)

	// FetchAttachment downloads raw attachment content by id.
	FetchAttachment(ctx context.Context, id string) ([]byte, error)

	// MarkConversationAsRead syncs a read receipt for the conversation.
	MarkConversationAsRead(ctx context.Context, conversationID string) error

	// SendTapback adds or removes a reaction on a message.
	SendTapback(ctx context.Context, kind, messageGUID string, remove bool) error

	// StartPushStream opens the real-time event stream. The transport
	// must deliver events one at a time, in arrival order, until
	// StopPushStream is called.
	StartPushStream(h PushHandler) error

	// StopPushStream tears down the push stream. Safe to call when no
	// stream is open.
	StopPushStream()
}

// PushHandler receives real-time events from the transport, one call at a
// time. The handler set is fixed at StartPushStream time.
type PushHandler interface {
	OnNewMessage(msg types.Message, sender types.Handle)
	OnTapback(tb types.Tapback)
	OnSyncWarning(conversationID, text string)
	OnSyncWarningCleared(conversationID string)
	OnPinnedChanged(entries []types.PinnedEntry)
}

// Notifier presents local notifications for inbound messages.
type Notifier interface {
	// RequestAuthorization asks the platform for notification permission.
	RequestAuthorization(ctx context.Context) bool

	// ShowNotification presents a notification for an inbound message.
	ShowNotification(msg types.Message, senderName string) error

	// ClearNotifications removes delivered notifications for a conversation.
	ClearNotifications(conversationID string)
}
