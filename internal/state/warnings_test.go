package state

import "testing"

func TestWarningsSetGetClear(t *testing.T) {
	w := NewWarnings()

	w.Set("chat-1", "read receipt could not sync")
	if text, ok := w.Get("chat-1"); !ok || text != "read receipt could not sync" {
		t.Errorf("Get = %q, %v", text, ok)
	}

	// Last write wins.
	w.Set("chat-1", "still out of sync")
	if text, _ := w.Get("chat-1"); text != "still out of sync" {
		t.Errorf("Get after overwrite = %q", text)
	}

	w.Clear("chat-1")
	if _, ok := w.Get("chat-1"); ok {
		t.Error("warning still present after Clear")
	}
}

func TestWarningsClearAll(t *testing.T) {
	w := NewWarnings()
	w.Set("chat-1", "a")
	w.Set("chat-2", "b")

	w.ClearAll()

	if len(w.All()) != 0 {
		t.Errorf("All() = %v, want empty", w.All())
	}
}

func TestWarningsAllReturnsCopy(t *testing.T) {
	w := NewWarnings()
	w.Set("chat-1", "a")

	all := w.All()
	all["chat-1"] = "mutated"

	if text, _ := w.Get("chat-1"); text != "a" {
		t.Errorf("internal map mutated through All(): %q", text)
	}
}
