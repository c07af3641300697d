package state

import "github.com/openbridge/relay/types"

// PaginationTracker keeps per-conversation history cursors. A conversation
// without an entry behaves as the implicit default: nothing fetched yet,
// more assumed available.
type PaginationTracker struct {
	pages map[string]types.PageState
}

// NewPaginationTracker creates an empty tracker.
func NewPaginationTracker() *PaginationTracker {
	return &PaginationTracker{pages: make(map[string]types.PageState)}
}

// State returns the cursor for a conversation, defaulted if absent.
func (t *PaginationTracker) State(conversationID string) types.PageState {
	if st, ok := t.pages[conversationID]; ok {
		return st
	}
	return types.DefaultPageState()
}

// BeginLoad marks a page fetch in flight. Returns false when the fetch
// must not happen: no more history, or a load is already running.
func (t *PaginationTracker) BeginLoad(conversationID string) bool {
	st := t.State(conversationID)
	if !st.HasMore || st.IsLoading {
		return false
	}
	st.IsLoading = true
	t.pages[conversationID] = st
	return true
}

// CompleteLoad applies a finished page fetch. The offset advances by the
// fetched count — it tracks the server-side cursor, not the local list
// length, so overlapping pages do not shift it. A short page means the
// history is exhausted.
func (t *PaginationTracker) CompleteLoad(conversationID string, fetched, pageSize int) {
	st := t.State(conversationID)
	st.Offset += fetched
	st.HasMore = fetched == pageSize
	st.IsLoading = false
	t.pages[conversationID] = st
}

// FailLoad rolls back an in-flight fetch. Offset and HasMore stay
// untouched so the remaining-pages guarantee is preserved.
func (t *PaginationTracker) FailLoad(conversationID string) {
	st := t.State(conversationID)
	st.IsLoading = false
	t.pages[conversationID] = st
}

// Reset drops every cursor.
func (t *PaginationTracker) Reset() {
	t.pages = make(map[string]types.PageState)
}
