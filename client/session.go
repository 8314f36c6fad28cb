package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ggoodman/mcp-stdio-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-go/internal/logctx"
	"github.com/ggoodman/mcp-stdio-go/mcp"
	"github.com/ggoodman/mcp-stdio-go/stdio"
)

// Request ids used within a session. Every session carries exactly one call.
const (
	initializeID int64 = 0
	callID       int64 = 1
	shutdownID   int64 = 2
)

// Client calls a server executable. Each Call spawns a fresh process,
// performs the initialize handshake, issues one request and tears the process
// down again; nothing is reused between calls. A Client holds only
// configuration and is safe for concurrent use.
type Client struct {
	path     string
	args     []string
	env      []string
	dir      string
	l        *slog.Logger
	maxNoise int

	shutdownGrace time.Duration
	waitDelay     time.Duration
}

const (
	defaultShutdownGrace = 500 * time.Millisecond
	defaultWaitDelay     = 2 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for session diagnostics and the server's
// stderr.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// WithEnv sets the environment of spawned servers. By default they inherit
// the caller's environment.
func WithEnv(env []string) Option {
	return func(c *Client) { c.env = env }
}

// WithDir sets the working directory of spawned servers.
func WithDir(dir string) Option {
	return func(c *Client) { c.dir = dir }
}

// WithMaxNoise bounds how many unrelated lines are skipped while awaiting a
// response. Zero means unlimited.
func WithMaxNoise(n int) Option {
	return func(c *Client) { c.maxNoise = n }
}

// WithShutdownGrace sets how long a server may take to exit on its own after
// shutdown is sent and its stdin is closed. It is killed afterwards. Zero
// kills it right away.
func WithShutdownGrace(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.shutdownGrace = d
		}
	}
}

// WithWaitDelay bounds how long reaping waits for the server's stderr to
// close once the process has exited. Descendants that inherited stderr can
// otherwise hold it open indefinitely.
func WithWaitDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.waitDelay = d
		}
	}
}

// New returns a Client for the server executable at path.
func New(path string, args []string, opts ...Option) *Client {
	c := &Client{
		path: path,
		args: append([]string(nil), args...),
		l:    slog.Default(),

		shutdownGrace: defaultShutdownGrace,
		waitDelay:     defaultWaitDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call runs one session and returns the raw result of method. params is
// omitted from the request when nil.
//
// No timeout is applied to the exchange. Cancelling ctx kills the server, which surfaces as
// an error wrapping both ctx.Err() and ErrStreamClosed. An error response
// from the server is returned as a *RemoteError.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req, err := jsonrpc.NewRequest(jsonrpc.NewRequestID(callID), method, params)
	if err != nil {
		return nil, err
	}

	ctx = logctx.WithSessionData(ctx, &logctx.SessionData{SessionID: uuid.NewString(), Server: c.path})

	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Env = c.env
	cmd.Dir = c.dir
	stderr := newLineLogger(ctx, c.l)
	cmd.Stderr = stderr
	cmd.WaitDelay = c.waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Path: c.path, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Path: c.path, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: c.path, Err: err}
	}
	c.l.DebugContext(ctx, "server started", slog.Int("pid", cmd.Process.Pid), slog.String("method", method))

	out := stdio.NewChannel(nil, stdin)
	defer c.cleanup(ctx, cmd, out, stdin, stderr)

	corr := NewCorrelator(stdout, WithNoiseLimit(c.maxNoise), WithCorrelatorLogger(c.l))

	// Any answer to initialize completes the handshake, including an error.
	initReq, _ := jsonrpc.NewRequest(jsonrpc.NewRequestID(initializeID), string(mcp.InitializeMethod), nil)
	initResp, err := c.roundTrip(ctx, out, corr, initReq)
	if err != nil {
		return nil, err
	}
	if initResp.Error != nil {
		c.l.DebugContext(ctx, "initialize answered with an error",
			slog.Int("code", int(initResp.Error.Code)),
			slog.String("message", initResp.Error.Message))
	}

	resp, err := c.roundTrip(ctx, out, corr, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, newRemoteError(req.Method, resp.Error)
	}
	return resp.Result, nil
}

func (c *Client) roundTrip(ctx context.Context, out *stdio.Channel, corr *Correlator, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	id, _ := req.ID.Int64()
	if err := out.WriteMessage(req); err != nil {
		return nil, c.transportError(ctx, fmt.Errorf("send %s: %w: %v", req.Method, ErrStreamClosed, err))
	}
	resp, err := corr.Await(id)
	if err != nil {
		return nil, c.transportError(ctx, fmt.Errorf("%s: %w", req.Method, err))
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// cleanup sends a best-effort shutdown and closes stdin, gives the server
// the grace period to exit, then kills and reaps it. Failures are logged and
// never returned.
func (c *Client) cleanup(ctx context.Context, cmd *exec.Cmd, out *stdio.Channel, stdin io.Closer, stderr *lineLogger) {
	shutdown, _ := jsonrpc.NewRequest(jsonrpc.NewRequestID(shutdownID), string(mcp.ShutdownMethod), nil)
	if err := out.WriteMessage(shutdown); err != nil {
		c.l.DebugContext(ctx, "shutdown not delivered", slog.String("err", err.Error()))
	}
	if err := stdin.Close(); err != nil {
		c.l.DebugContext(ctx, "closing server stdin", slog.String("err", err.Error()))
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	var err error
	select {
	case err = <-exited:
	case <-time.After(c.shutdownGrace):
		if kerr := cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			c.l.DebugContext(ctx, "killing server", slog.String("err", kerr.Error()))
		}
		err = <-exited
	}
	if err != nil {
		c.l.DebugContext(ctx, "server exited", slog.String("err", err.Error()))
	}
	stderr.Flush()
}

// lineLogger forwards a child's stderr to a logger one line at a time.
type lineLogger struct {
	ctx context.Context
	l   *slog.Logger

	mu  sync.Mutex
	buf []byte
}

const maxStderrLine = 64 * 1024

func newLineLogger(ctx context.Context, l *slog.Logger) *lineLogger {
	return &lineLogger{ctx: ctx, l: l}
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxStderrLine {
		w.emit(w.buf)
		w.buf = nil
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *lineLogger) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineLogger) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}
	w.l.DebugContext(w.ctx, "server stderr", slog.String("line", string(line)))
}
