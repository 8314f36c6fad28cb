package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ggoodman/mcp-stdio-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-go/stdio"
)

// Correlator reads a server's output line by line and picks out the
// response to one outstanding request. Anything else on the stream (startup
// notices, debug echoes, stray prints, responses to other ids) is skipped.
type Correlator struct {
	ch       *stdio.Channel
	maxNoise int
	l        *slog.Logger
}

// CorrelatorOption configures a Correlator.
type CorrelatorOption func(*Correlator)

// WithNoiseLimit fails Await once more than n lines have been discarded.
// Zero, the default, means unlimited.
func WithNoiseLimit(n int) CorrelatorOption {
	return func(c *Correlator) {
		if n > 0 {
			c.maxNoise = n
		}
	}
}

// WithCorrelatorLogger sets the logger for discarded lines.
func WithCorrelatorLogger(l *slog.Logger) CorrelatorOption {
	return func(c *Correlator) {
		if l != nil {
			c.l = l
		}
	}
}

// NewCorrelator reads from r.
func NewCorrelator(r io.Reader, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{ch: stdio.NewChannel(r, nil), l: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type responseLine struct {
	JSONRPCVersion string             `json:"jsonrpc"`
	ID             *jsonrpc.RequestID `json:"id"`
	Result         json.RawMessage    `json:"result"`
	Error          *jsonrpc.Error     `json:"error"`
}

// Await blocks until the response with the given id is read. It never times
// out; it returns ErrStreamClosed when the stream ends first and a
// *NoiseLimitError when the noise limit is exceeded.
func (c *Correlator) Await(id int64) (*jsonrpc.Response, error) {
	discarded := 0
	for {
		line, err := c.ch.ReadLine()
		if len(line) > 0 {
			if resp, ok := match(line, id); ok {
				return resp, nil
			}
			discarded++
			c.l.Debug("discarding unrelated line", slog.Int64("awaiting", id), slog.String("line", truncate(line, 256)))
			if c.maxNoise > 0 && discarded > c.maxNoise {
				return nil, &NoiseLimitError{ID: id, Discarded: discarded}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("awaiting id %d: %w", id, ErrStreamClosed)
			}
			return nil, fmt.Errorf("awaiting id %d: %w: %v", id, ErrStreamClosed, err)
		}
	}
}

func match(line []byte, id int64) (*jsonrpc.Response, bool) {
	var msg responseLine
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, false
	}
	if msg.JSONRPCVersion != jsonrpc.ProtocolVersion {
		return nil, false
	}
	if got, ok := msg.ID.Int64(); !ok || got != id {
		return nil, false
	}
	if msg.Result == nil && msg.Error == nil {
		return nil, false
	}
	return &jsonrpc.Response{
		JSONRPCVersion: msg.JSONRPCVersion,
		ID:             msg.ID,
		Result:         msg.Result,
		Error:          msg.Error,
	}, true
}

func truncate(b []byte, n int) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
