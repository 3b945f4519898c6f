package navcursor

import "github.com/snarg/mqtt-inspect/internal/idgen"

// MessageCursor tracks which entry of a currently-displayed message list is
// selected, with wrap-around Advance/Retreat. The list itself is supplied
// fresh on every SetMessages call (typically the current topic's
// BufferedEntry ids) rather than owned — the cursor only ever indexes it.
type MessageCursor struct {
	ids          []idgen.ID
	currentIndex int
}

// NewMessageCursor creates a cursor over ids, selecting the first entry if
// any exist.
func NewMessageCursor(ids []idgen.ID) *MessageCursor {
	c := &MessageCursor{}
	c.SetMessages(ids)
	return c
}

// SetMessages replaces the underlying list. Selection resets to the first
// entry, or -1 if the new list is empty.
func (c *MessageCursor) SetMessages(ids []idgen.ID) {
	c.ids = make([]idgen.ID, len(ids))
	copy(c.ids, ids)
	if len(c.ids) == 0 {
		c.currentIndex = -1
	} else {
		c.currentIndex = 0
	}
}

// Current returns the selected message id, or false if the list is empty.
func (c *MessageCursor) Current() (idgen.ID, bool) {
	if c.currentIndex < 0 {
		return idgen.ID{}, false
	}
	return c.ids[c.currentIndex], true
}

// CurrentIndex returns the zero-based selected index, or -1 if empty.
func (c *MessageCursor) CurrentIndex() int { return c.currentIndex }

// Advance moves to the next message, wrapping past the end.
func (c *MessageCursor) Advance() {
	if len(c.ids) == 0 {
		return
	}
	c.currentIndex = (c.currentIndex + 1) % len(c.ids)
}

// Retreat moves to the previous message, wrapping before the start.
func (c *MessageCursor) Retreat() {
	if len(c.ids) == 0 {
		return
	}
	c.currentIndex = (c.currentIndex - 1 + len(c.ids)) % len(c.ids)
}
