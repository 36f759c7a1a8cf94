package dialogue

import (
	"github.com/cloudwego/eino/schema"
)

// History is the ordered item list visible to one role. When max is set the
// oldest items after the leading instructions are compacted away.
type History struct {
	items []Item
	max   int
}

func NewHistory(max int, seed ...Item) *History {
	h := &History{max: max}
	h.Append(seed...)
	return h
}

func (h *History) Append(items ...Item) {
	h.items = append(h.items, items...)
	h.compact()
}

func (h *History) Len() int {
	return len(h.items)
}

func (h *History) Items() []Item {
	out := make([]Item, len(h.items))
	copy(out, h.items)
	return out
}

// Conversation returns a copy without instruction items.
func (h *History) Conversation() []Item {
	out := make([]Item, 0, len(h.items))
	for _, it := range h.items {
		if it.Kind == KindInstructions {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (h *History) Messages() []*schema.Message {
	msgs := make([]*schema.Message, 0, len(h.items))
	for _, it := range h.items {
		msgs = append(msgs, it.Message())
	}
	return msgs
}

// CarryOver pulls at most n trailing non-instruction items from src that are
// not already present, appending them in their original order. It returns
// how many were added.
func (h *History) CarryOver(src *History, n int) int {
	if src == nil || n <= 0 {
		return 0
	}
	window := Tail(src.Conversation(), n)

	seen := make(map[string]struct{}, len(h.items))
	for _, it := range h.items {
		seen[it.ID] = struct{}{}
	}

	added := make([]Item, 0, len(window))
	for _, it := range window {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		added = append(added, it)
	}
	h.Append(added...)
	return len(added)
}

// Tail returns the last n items. Tool results at the head of the window whose
// call fell outside it are dropped.
func Tail(items []Item, n int) []Item {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	start := len(items) - n
	if start < 0 {
		start = 0
	}
	window := items[start:]
	for len(window) > 0 && window[0].Kind == KindToolResult {
		window = window[1:]
	}
	out := make([]Item, len(window))
	copy(out, window)
	return out
}

func (h *History) compact() {
	if h.max <= 0 || len(h.items) <= h.max {
		return
	}
	keep := 0
	if h.items[0].Kind == KindInstructions {
		keep = 1
	}
	for len(h.items) > h.max && len(h.items) > keep+1 {
		h.items = append(h.items[:keep], h.items[keep+1:]...)
		for len(h.items) > keep+1 && h.items[keep].Kind == KindToolResult {
			h.items = append(h.items[:keep], h.items[keep+1:]...)
		}
	}
}
