package stdio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Channel frames JSON messages as newline-terminated lines over a pair of
// streams. Reads use a bufio.Reader so a single line is not bounded by a
// scanner token limit. Writes are serialized.
type Channel struct {
	r *bufio.Reader

	mu sync.Mutex
	w  io.Writer
}

type flusher interface{ Flush() error }

// NewChannel wraps r and w. Either may be nil for a one-directional channel.
func NewChannel(r io.Reader, w io.Writer) *Channel {
	c := &Channel{w: w}
	if r != nil {
		c.r = bufio.NewReader(r)
	}
	return c
}

// ReadLine returns the next line including its trailing newline. A final line
// without a newline is returned as-is; the following call reports io.EOF.
func (c *Channel) ReadLine() ([]byte, error) {
	if c.r == nil {
		return nil, io.EOF
	}
	line, err := c.r.ReadBytes('\n')
	if errors.Is(err, io.EOF) && len(line) > 0 {
		return line, nil
	}
	return line, err
}

// WriteMessage encodes v as one line and flushes the writer when it
// supports it.
func (c *Channel) WriteMessage(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	b = append(b, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return errors.New("channel has no writer")
	}
	if _, err := c.w.Write(b); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if f, ok := c.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush message: %w", err)
		}
	}
	return nil
}
