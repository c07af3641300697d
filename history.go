package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openbridge/relay/bridge"
	"github.com/openbridge/relay/status"
)

// LoadOlderMessages fetches the next page of history for a conversation.
// It is a no-op when the history is exhausted or a load is already in
// flight. The first page replaces the log; later pages append after it,
// with already-seen guids skipped.
func (c *Client) LoadOlderMessages(ctx context.Context, conversationID string) error {
	var (
		gen          uint64
		offset       int
		proceed      bool
		notConnected bool
	)
	c.do(func() {
		// Checked inside the loop so it is ordered against a concurrent
		// Disconnect: no in-flight flag can land in a cleared tracker.
		if c.machine.Current() != status.Connected {
			notConnected = true
			return
		}
		proceed = c.pages.BeginLoad(conversationID)
		if proceed {
			offset = c.pages.State(conversationID).Offset
			gen = c.gen
		}
	})
	if notConnected {
		return bridge.ErrNotConnected
	}
	if !proceed {
		return nil
	}

	msgs, err := c.transport.FetchMessages(ctx, conversationID, c.opts.PageSize, offset)
	if err != nil {
		// Full rollback: only the in-flight flag resets, so the
		// remaining-pages guarantee survives the failure.
		c.do(func() {
			if c.gen != gen {
				return
			}
			c.pages.FailLoad(conversationID)
		})
		c.logger.Error("page fetch failed",
			zap.String("conversation_id", conversationID),
			zap.Int("offset", offset),
			zap.Error(err))
		return fmt.Errorf("%w: %v", bridge.ErrRequestFailed, err)
	}

	c.do(func() {
		if c.gen != gen {
			return
		}
		if offset == 0 {
			c.messages.ReplaceAll(conversationID, msgs)
		} else {
			c.messages.AppendOlder(conversationID, msgs)
		}
		c.pages.CompleteLoad(conversationID, len(msgs), c.opts.PageSize)
	})
	return nil
}

// SelectConversation points the client at a conversation: notifications
// for it are cleared, its first page is loaded if nothing has been
// fetched yet, and a read receipt is synced to the bridge.
func (c *Client) SelectConversation(ctx context.Context, conversationID string) error {
	var (
		known        bool
		fresh        bool
		notConnected bool
	)
	c.do(func() {
		if c.machine.Current() != status.Connected {
			notConnected = true
			return
		}
		_, known = c.conversations.Get(conversationID)
		if !known {
			return
		}
		c.selected = conversationID
		st := c.pages.State(conversationID)
		fresh = st.Offset == 0 && st.HasMore && !st.IsLoading
	})
	if notConnected {
		return bridge.ErrNotConnected
	}
	if !known {
		return fmt.Errorf("unknown conversation %q", conversationID)
	}

	if c.notifier != nil {
		c.notifier.ClearNotifications(conversationID)
	}

	if fresh {
		if err := c.LoadOlderMessages(ctx, conversationID); err != nil {
			c.logger.Warn("initial page load failed", zap.String("conversation_id", conversationID), zap.Error(err))
		}
	}

	if err := c.transport.MarkConversationAsRead(ctx, conversationID); err != nil {
		// A persistent read-receipt problem reaches us as a push sync
		// warning; a one-off failure is only logged.
		c.logger.Warn("mark as read failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return nil
}
