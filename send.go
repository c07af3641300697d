package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openbridge/relay/bridge"
	"github.com/openbridge/relay/bus"
	"github.com/openbridge/relay/status"
	"github.com/openbridge/relay/types"
)

// SendText sends a message optimistically: a placeholder appears at the
// front of the conversation's log immediately, then is reconciled with
// the bridge's confirmation or rolled back on failure. The rolled-back
// error is also kept in the last-send-error slot until cleared.
func (c *Client) SendText(ctx context.Context, conversationID, text, replyToGUID string) error {
	var (
		gen         uint64
		recipient   string
		placeholder types.Message
		resolveErr  error
	)
	c.do(func() {
		// Checked inside the loop so it is ordered against a concurrent
		// Disconnect: no placeholder can land in freshly cleared stores.
		if c.machine.Current() != status.Connected {
			resolveErr = bridge.ErrNotConnected
			return
		}
		conv, ok := c.conversations.Get(conversationID)
		if !ok {
			resolveErr = fmt.Errorf("%w: unknown conversation %q", bridge.ErrInvalidRecipient, conversationID)
			return
		}
		recipient, resolveErr = resolveRecipient(conv)
		if resolveErr != nil {
			return
		}

		gen = c.gen
		c.nextLocalID--
		placeholder = types.Message{
			ID:             c.nextLocalID,
			GUID:           uuid.New().String(),
			Text:           text,
			Date:           time.Now(),
			IsFromMe:       true,
			ConversationID: conversationID,
			ReplyToGUID:    replyToGUID,
		}
		c.messages.InsertNewest(conversationID, placeholder)
	})
	if resolveErr != nil {
		return resolveErr
	}

	confirmed, err := c.transport.SendMessage(ctx, text, recipient, replyToGUID)
	if err != nil {
		sendErr := fmt.Errorf("%w: %v", bridge.ErrSendFailed, err)
		applied := false
		c.do(func() {
			if c.gen != gen {
				return
			}
			applied = true
			c.messages.RemoveByGUID(conversationID, placeholder.GUID)
			c.lastSendErr = sendErr
		})
		c.logger.Error("send failed",
			zap.String("conversation_id", conversationID),
			zap.String("recipient", recipient),
			zap.Error(err))
		if applied {
			c.bus.Publish(bus.NewEvent(bus.KindMessageSendFailed, placeholder))
		}
		return sendErr
	}

	final := placeholder
	applied := false
	c.do(func() {
		if c.gen != gen {
			return
		}
		applied = true
		if confirmed != nil {
			final = *confirmed
			if confirmed.GUID == placeholder.GUID {
				// The bridge preserved our guid: in-place replacement.
				c.messages.InsertNewest(conversationID, final)
			} else if !c.messages.ReplaceByGUID(conversationID, placeholder.GUID, final) {
				// Placeholder already gone (should not happen); fall back
				// to a plain insert so the confirmed message is not lost.
				c.messages.InsertNewest(conversationID, final)
			}
		}
		c.conversations.Touch(conversationID, final)
	})
	if applied {
		c.bus.Publish(bus.NewEvent(bus.KindMessageSent, final))
	}
	return nil
}

// resolveRecipient picks the wire destination for a conversation. A 1:1
// conversation addresses its single participant directly; anything with
// a group flag or multiple participants addresses the conversation id
// and lets the bridge resolve fan-out.
func resolveRecipient(conv types.Conversation) (string, error) {
	if len(conv.Participants) == 1 && !conv.IsGroup {
		return conv.Participants[0].Address, nil
	}
	if conv.IsGroup || len(conv.Participants) > 1 {
		return conv.ID, nil
	}
	return "", fmt.Errorf("%w: conversation %q has no participants and no group id", bridge.ErrInvalidRecipient, conv.ID)
}

// SendTapback adds or removes a reaction on a message. The core keeps no
// tapback state; the bridge echoes the change back as a push event.
func (c *Client) SendTapback(ctx context.Context, kind, messageGUID string, remove bool) error {
	if c.machine.Current() != status.Connected {
		return bridge.ErrNotConnected
	}
	if err := c.transport.SendTapback(ctx, kind, messageGUID, remove); err != nil {
		c.logger.Error("tapback failed", zap.String("message_guid", messageGUID), zap.Error(err))
		return fmt.Errorf("%w: %v", bridge.ErrTapbackFailed, err)
	}
	return nil
}

// FetchAttachment returns attachment content, serving from the local
// cache when possible and caching bridge fetches for next time.
func (c *Client) FetchAttachment(ctx context.Context, id string) ([]byte, error) {
	if c.cache != nil {
		data, hit, err := c.cache.Get(id)
		if err != nil {
			c.logger.Warn("attachment cache read failed", zap.String("attachment_id", id), zap.Error(err))
		} else if hit {
			return data, nil
		}
	}

	if c.machine.Current() != status.Connected {
		return nil, bridge.ErrNotConnected
	}
	data, err := c.transport.FetchAttachment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", bridge.ErrAttachmentNotFound, id, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(id, data); err != nil {
			c.logger.Warn("attachment cache write failed", zap.String("attachment_id", id), zap.Error(err))
		}
	}
	return data, nil
}
