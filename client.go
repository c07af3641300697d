// Package relay keeps a local view of conversations and messages in sync
// with a remote message bridge. It reconciles paginated history fetches,
// optimistic local sends, and real-time push events into one ordered,
// deduplicated data set. All bridge I/O goes through the bridge.Transport
// supplied by the embedding application.
package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openbridge/relay/attachments"
	"github.com/openbridge/relay/bridge"
	"github.com/openbridge/relay/bus"
	"github.com/openbridge/relay/config"
	"github.com/openbridge/relay/internal/state"
	"github.com/openbridge/relay/status"
	"github.com/openbridge/relay/types"
)

// Options configures a Client. Endpoint and Password are remembered for
// Reconnect.
type Options struct {
	Endpoint          string
	Password          string
	PageSize          int
	ConversationLimit int
	Notifications     bool
}

// Client is the sync core. Every piece of mutable state is confined to a
// single run loop goroutine: public methods enqueue closures on that loop
// and wait, so fetch completions, push events, and user actions apply in
// one total order. Network calls themselves run on the caller's
// goroutine; only their completions re-enter the loop, and each
// completion re-checks the connection generation so a stale response
// arriving after a disconnect cannot resurrect cleared state.
type Client struct {
	transport bridge.Transport
	notifier  bridge.Notifier
	bus       *bus.Bus
	machine   *status.Machine
	cache     *attachments.Cache
	logger    *zap.Logger
	opts      Options

	ops    chan func()
	runCtx context.Context
	cancel context.CancelFunc

	// Confined to the run loop.
	gen           uint64
	conversations *state.ConversationList
	messages      *state.MessageStore
	pages         *state.PaginationTracker
	warnings      *state.Warnings
	selected      string
	lastSendErr   error
	nextLocalID   int64
	notifyOK      bool
}

// New creates a client. The cache may be nil to disable attachment
// caching; the logger may be nil. Start must be called before any other
// method.
func New(transport bridge.Transport, notifier bridge.Notifier, b *bus.Bus, cache *attachments.Cache, logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = config.DefaultPageSize
	}
	if opts.ConversationLimit <= 0 {
		opts.ConversationLimit = config.DefaultConversationLimit
	}
	return &Client{
		transport:     transport,
		notifier:      notifier,
		bus:           b,
		machine:       status.NewMachine(b),
		cache:         cache,
		logger:        logger,
		opts:          opts,
		ops:           make(chan func()),
		conversations: state.NewConversationList(),
		messages:      state.NewMessageStore(),
		pages:         state.NewPaginationTracker(),
		warnings:      state.NewWarnings(),
	}
}

// Start launches the run loop and requests notification authorization.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.runCtx = ctx
	go c.run(ctx)

	if c.opts.Notifications && c.notifier != nil {
		ok := c.notifier.RequestAuthorization(ctx)
		c.do(func() { c.notifyOK = ok })
	}
}

// Stop terminates the run loop. The client cannot be restarted.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) run(ctx context.Context) {
	for {
		select {
		case fn := <-c.ops:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// do runs fn on the loop and waits for it. Returns false when the loop
// has stopped and fn may not have run.
func (c *Client) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case c.ops <- func() { fn(); close(done) }:
	case <-c.runCtx.Done():
		return false
	}
	select {
	case <-done:
		return true
	case <-c.runCtx.Done():
		return false
	}
}

// Connect establishes a session: transition to connecting, dial the
// bridge, then on success fetch the initial conversation list and open
// the push stream. A failed dial aborts the whole sequence and returns
// the client to disconnected with nothing retained.
func (c *Client) Connect(ctx context.Context) error {
	var gen uint64
	started := false
	c.do(func() {
		if err := c.machine.Transition(status.Connecting); err != nil {
			return
		}
		c.gen++
		gen = c.gen
		started = true
	})
	if !started {
		// Already connecting or connected.
		return nil
	}

	if err := c.transport.Connect(ctx, c.opts.Endpoint, c.opts.Password); err != nil {
		c.do(func() {
			if c.gen != gen {
				return
			}
			_ = c.machine.Transition(status.Disconnected)
		})
		c.logger.Error("bridge connect failed", zap.String("endpoint", c.opts.Endpoint), zap.Error(err))
		return fmt.Errorf("%w: %v", bridge.ErrConnectionFailed, err)
	}

	c.do(func() {
		if c.gen != gen {
			return
		}
		_ = c.machine.Transition(status.Connected)
	})
	c.logger.Info("bridge connected", zap.String("endpoint", c.opts.Endpoint))

	// Initial conversation fetch. A failure here is logged and leaves
	// the (empty) list untouched; the session stays up.
	convs, err := c.transport.FetchConversations(ctx, c.opts.ConversationLimit, 0)
	if err != nil {
		c.logger.Error("initial conversation fetch failed", zap.Error(err))
	} else {
		c.do(func() {
			if c.gen != gen {
				return
			}
			c.conversations.SetAll(convs)
		})
		c.logger.Info("conversations loaded", zap.Int("count", len(convs)))
	}

	// The push handler is bound to this connection's generation; events
	// from a stream that outlives a disconnect are dropped.
	if err := c.transport.StartPushStream(&pushHandler{c: c, gen: gen}); err != nil {
		c.logger.Error("push stream start failed", zap.Error(err))
	}

	return nil
}

// Disconnect tears down the transport, clears every synced store and the
// selected-conversation pointer, and transitions to disconnected. The
// attachment cache is immutable content and is deliberately kept.
func (c *Client) Disconnect() {
	c.transport.StopPushStream()
	c.do(func() {
		c.gen++
		c.conversations.Clear()
		c.messages.Clear()
		c.pages.Reset()
		c.warnings.ClearAll()
		c.selected = ""
		c.lastSendErr = nil
		if c.machine.Current() != status.Disconnected {
			_ = c.machine.Transition(status.Disconnected)
		}
	})
	c.logger.Info("disconnected")
}

// Reconnect is a disconnect followed by a connect with the remembered
// endpoint and credentials.
func (c *Client) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Connect(ctx)
}

// State returns the current connection state.
func (c *Client) State() status.State {
	return c.machine.Current()
}

// Conversations returns the ordered conversation list: pinned first by
// pin index, then unpinned by recency.
func (c *Client) Conversations() []types.Conversation {
	var out []types.Conversation
	c.do(func() { out = c.conversations.All() })
	return out
}

// Messages returns a conversation's log, newest first.
func (c *Client) Messages(conversationID string) []types.Message {
	var out []types.Message
	c.do(func() { out = c.messages.Messages(conversationID) })
	return out
}

// PageState returns a conversation's pagination cursor.
func (c *Client) PageState(conversationID string) types.PageState {
	var out types.PageState
	c.do(func() { out = c.pages.State(conversationID) })
	return out
}

// Warning returns the advisory message for a conversation, if any.
func (c *Client) Warning(conversationID string) (string, bool) {
	var (
		text string
		ok   bool
	)
	c.do(func() { text, ok = c.warnings.Get(conversationID) })
	return text, ok
}

// Warnings returns all advisory messages keyed by conversation id.
func (c *Client) Warnings() map[string]string {
	var out map[string]string
	c.do(func() { out = c.warnings.All() })
	return out
}

// SelectedConversation returns the selected conversation id, or "".
func (c *Client) SelectedConversation() string {
	var out string
	c.do(func() { out = c.selected })
	return out
}

// LastSendError returns the most recent send failure, or nil.
func (c *Client) LastSendError() error {
	var out error
	c.do(func() { out = c.lastSendErr })
	return out
}

// ClearSendError clears the last send failure.
func (c *Client) ClearSendError() {
	c.do(func() { c.lastSendErr = nil })
}
