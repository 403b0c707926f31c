package tags

import "strings"

// Frame is one key/value entry of a comment block.
type Frame struct {
	Key   string
	Value string
}

// FrameStore is the ordered multi-map the codec reads from and writes into.
// Keys compare case-insensitively and may repeat.
type FrameStore interface {
	Frames() []Frame
	Values(key string) []string
	// Replace swaps every frame whose key matches one of keys for one frame
	// per value. An empty values slice removes the frames.
	Replace(keys []string, values []string)
}

// Comments is an in-memory FrameStore. It keeps the vendor string of the
// block it was read from so a rewrite does not change it.
type Comments struct {
	Vendor string
	frames []Frame
}

// NewComments builds a store holding frames in the given order.
func NewComments(vendor string, frames ...Frame) *Comments {
	return &Comments{Vendor: vendor, frames: append([]Frame(nil), frames...)}
}

// ParseCommentLines builds a store from raw "KEY=value" lines. Lines without
// a separator are kept as a key with an empty value.
func ParseCommentLines(vendor string, lines []string) *Comments {
	c := &Comments{Vendor: vendor, frames: make([]Frame, 0, len(lines))}
	for _, line := range lines {
		key, value, _ := strings.Cut(line, "=")
		c.frames = append(c.frames, Frame{Key: key, Value: value})
	}
	return c
}

// Lines renders the store back to "KEY=value" lines.
func (c *Comments) Lines() []string {
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Key + "=" + f.Value
	}
	return out
}

// Frames returns a copy of the frames in order.
func (c *Comments) Frames() []Frame {
	return append([]Frame(nil), c.frames...)
}

// Len is the number of frames.
func (c *Comments) Len() int {
	return len(c.frames)
}

// Values returns every value stored under key, in order.
func (c *Comments) Values(key string) []string {
	var out []string
	for _, f := range c.frames {
		if strings.EqualFold(f.Key, key) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Append adds a frame at the end without touching existing ones.
func (c *Comments) Append(key, value string) {
	c.frames = append(c.frames, Frame{Key: key, Value: value})
}

// Replace implements FrameStore. The new frames take the position of the
// first matching frame and keep its key spelling; with no match they are
// appended under keys[0].
func (c *Comments) Replace(keys []string, values []string) {
	if len(keys) == 0 {
		return
	}
	matches := func(k string) bool {
		for _, want := range keys {
			if strings.EqualFold(k, want) {
				return true
			}
		}
		return false
	}

	out := make([]Frame, 0, len(c.frames)+len(values))
	inserted := false
	for _, f := range c.frames {
		if !matches(f.Key) {
			out = append(out, f)
			continue
		}
		if !inserted {
			for _, v := range values {
				out = append(out, Frame{Key: f.Key, Value: v})
			}
			inserted = true
		}
	}
	if !inserted {
		for _, v := range values {
			out = append(out, Frame{Key: keys[0], Value: v})
		}
	}
	c.frames = out
}
