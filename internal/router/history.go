package router

import "sync"

// History is the console's navigation stack
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory creates a history positioned at start
func NewHistory(start string) *History {
	return &History{entries: []string{Clean(start)}}
}

// Push appends p as the new current entry
func (h *History) Push(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Clean(p))
}

// Replace swaps the current entry for p, so going back skips it
func (h *History) Replace(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		h.entries = []string{Clean(p)}
		return
	}
	h.entries[len(h.entries)-1] = Clean(p)
}

// Back drops the current entry and returns the previous one. It reports
// false when there is nowhere to go back to.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return "", false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Current returns the current entry
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns a copy of the stack, oldest first
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
