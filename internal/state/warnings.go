package state

// Warnings maps a conversation id to an advisory message, e.g. "read
// receipt could not sync". Last write wins; there is no merge logic.
type Warnings struct {
	m map[string]string
}

// NewWarnings creates an empty warning set.
func NewWarnings() *Warnings {
	return &Warnings{m: make(map[string]string)}
}

// Set records or overwrites the warning for a conversation.
func (w *Warnings) Set(conversationID, text string) {
	w.m[conversationID] = text
}

// Clear removes the warning for a conversation.
func (w *Warnings) Clear(conversationID string) {
	delete(w.m, conversationID)
}

// ClearAll removes every warning.
func (w *Warnings) ClearAll() {
	w.m = make(map[string]string)
}

// Get returns the warning for a conversation, if any.
func (w *Warnings) Get(conversationID string) (string, bool) {
	text, ok := w.m[conversationID]
	return text, ok
}

// All returns a copy of the warning map.
func (w *Warnings) All() map[string]string {
	out := make(map[string]string, len(w.m))
	for k, v := range w.m {
		out[k] = v
	}
	return out
}
