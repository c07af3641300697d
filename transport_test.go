package relay

import (
	"context"
	"sync"

	"github.com/openbridge/relay/bridge"
	"github.com/openbridge/relay/types"
)

type sendCall struct {
	Text        string
	Recipient   string
	ReplyToGUID string
}

type fetchCall struct {
	ConversationID string
	Limit          int
	Offset         int
}

// fakeTransport records calls and returns configurable results.
type fakeTransport struct {
	mu sync.Mutex

	connectErr error
	convs      []types.Conversation
	convsErr   error

	// fetchFunc, when set, overrides the default empty-page response.
	fetchFunc func(conversationID string, limit, offset int) ([]types.Message, error)

	// sendFunc, when set, overrides sendResult/sendErr.
	sendFunc   func(text, recipient, replyToGUID string) (*types.Message, error)
	sendResult *types.Message
	sendErr    error

	attachData map[string][]byte
	attachErr  error

	tapbackErr error

	connectCalls   int
	convFetchCalls int
	fetchCalls     []fetchCall
	sendCalls      []sendCall
	attachCalls    []string
	markReadCalls  []string
	tapbackCalls   []string
	streamStarts   int
	streamStops    int

	handler bridge.PushHandler
}

func (f *fakeTransport) Connect(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	return f.connectErr
}

func (f *fakeTransport) FetchConversations(_ context.Context, _, _ int) ([]types.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convFetchCalls++
	if f.convsErr != nil {
		return nil, f.convsErr
	}
	return f.convs, nil
}

func (f *fakeTransport) FetchMessages(_ context.Context, conversationID string, limit, offset int) ([]types.Message, error) {
	f.mu.Lock()
	f.fetchCalls = append(f.fetchCalls, fetchCall{ConversationID: conversationID, Limit: limit, Offset: offset})
	fn := f.fetchFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(conversationID, limit, offset)
	}
	return nil, nil
}

func (f *fakeTransport) SendMessage(_ context.Context, text, recipient, replyToGUID string) (*types.Message, error) {
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, sendCall{Text: text, Recipient: recipient, ReplyToGUID: replyToGUID})
	fn := f.sendFunc
	result, err := f.sendResult, f.sendErr
	f.mu.Unlock()
	if fn != nil {
		return fn(text, recipient, replyToGUID)
	}
	return result, err
}

func (f *fakeTransport) FetchAttachment(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachCalls = append(f.attachCalls, id)
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	return f.attachData[id], nil
}

func (f *fakeTransport) MarkConversationAsRead(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls = append(f.markReadCalls, conversationID)
	return nil
}

func (f *fakeTransport) SendTapback(_ context.Context, kind, messageGUID string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tapbackCalls = append(f.tapbackCalls, kind+":"+messageGUID)
	return f.tapbackErr
}

func (f *fakeTransport) StartPushStream(h bridge.PushHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamStarts++
	f.handler = h
	return nil
}

func (f *fakeTransport) StopPushStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamStops++
}

// push returns the handler captured at stream start, for injecting
// events as the bridge would.
func (f *fakeTransport) push() bridge.PushHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler
}

func (f *fakeTransport) numFetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetchCalls)
}

func (f *fakeTransport) numSendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendCalls)
}

type shownNotification struct {
	Msg        types.Message
	SenderName string
}

// fakeNotifier records notification activity.
type fakeNotifier struct {
	mu sync.Mutex

	authorized bool
	shown      []shownNotification
	cleared    []string
}

func (f *fakeNotifier) RequestAuthorization(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorized
}

func (f *fakeNotifier) ShowNotification(msg types.Message, senderName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shownNotification{Msg: msg, SenderName: senderName})
	return nil
}

func (f *fakeNotifier) ClearNotifications(conversationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, conversationID)
}

func (f *fakeNotifier) numShown() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}
