package stdio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/mcp-stdio-go/internal/jsonrpc"
	"github.com/ggoodman/mcp-stdio-go/internal/logctx"
	"github.com/ggoodman/mcp-stdio-go/mcp"
	"github.com/ggoodman/mcp-stdio-go/mcpservice"
)

// BannerPlacement selects where a startup banner is written.
type BannerPlacement int

const (
	// BannerNone suppresses the banner.
	BannerNone BannerPlacement = iota
	// BannerProtocol writes {"notice":"..."} on the protocol stream.
	BannerProtocol
	// BannerDiagnostic writes the text as a plain line on the diagnostic
	// stream (stderr by default).
	BannerDiagnostic
)

// ErrAlreadyServed is returned by a second call to Serve.
var ErrAlreadyServed = errors.New("stdio: Serve called more than once")

// Handler is a single-connection stdio transport that reads one JSON-RPC
// request per line from an io.Reader and writes one response per line to an
// io.Writer. By default, it uses os.Stdin and os.Stdout.
//
// The handler owns the lifecycle methods initialize and shutdown and
// delegates every other method to the mcpservice.Server.
type Handler struct {
	srv *mcpservice.Server

	r    io.Reader
	w    io.Writer
	diag io.Writer
	l    *slog.Logger

	userProvider    UserProvider
	debugEcho       bool
	bannerPlacement BannerPlacement
	bannerText      string

	lifecycle Lifecycle
	served    atomic.Bool
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv *mcpservice.Server, opts ...Option) *Handler {
	h := &Handler{
		srv:          srv,
		r:            os.Stdin,
		w:            os.Stdout,
		diag:         os.Stderr,
		l:            slog.Default(),
		userProvider: OSUserProvider{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns the current lifecycle state.
func (h *Handler) State() State { return h.lifecycle.State() }

// Serve runs the read loop until the input ends, the context is cancelled or
// the output breaks. It is safe to call at most once per Handler.
//
// Exactly one request is in flight at a time: a line is read, parsed,
// dispatched and answered before the next line is read. A line that is not a
// JSON object is answered with a parse error and serving continues. Blank
// lines are ignored.
//
// When the reader implements io.Closer it is closed once ctx is done so that
// a blocked read returns.
func (h *Handler) Serve(ctx context.Context) error {
	if !h.served.CompareAndSwap(false, true) {
		return ErrAlreadyServed
	}

	ch := NewChannel(h.r, h.w)

	done := make(chan struct{})
	var wg sync.WaitGroup
	defer func() {
		close(done)
		wg.Wait()
	}()
	if c, ok := h.r.(io.Closer); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				_ = c.Close()
			case <-done:
			}
		}()
	}

	info := h.srv.Info()
	if uid, err := h.userProvider.CurrentUserID(); err != nil {
		h.l.DebugContext(ctx, "stdio peer identity unavailable", slog.String("err", err.Error()))
		h.l.InfoContext(ctx, "stdio serving", slog.String("server", info.Name), slog.String("version", info.Version))
	} else {
		h.l.InfoContext(ctx, "stdio serving", slog.String("server", info.Name), slog.String("version", info.Version), slog.String("user", uid))
	}

	if err := h.writeBanner(ch); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := ch.ReadLine()
		if len(bytes.TrimSpace(line)) > 0 {
			if err := h.handleLine(ctx, ch, line); err != nil {
				return err
			}
		}
		if readErr == nil {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(readErr, io.EOF) {
			h.lifecycle.Terminate()
			h.l.DebugContext(ctx, "stdio input closed")
			return nil
		}
		return fmt.Errorf("stdio read: %w", readErr)
	}
}

func (h *Handler) writeBanner(ch *Channel) error {
	if h.bannerText == "" {
		return nil
	}
	switch h.bannerPlacement {
	case BannerProtocol:
		return ch.WriteMessage(mcp.Notice{Notice: h.bannerText})
	case BannerDiagnostic:
		// Best-effort: a broken stderr must not stop serving.
		_, _ = fmt.Fprintln(h.diag, h.bannerText)
	}
	return nil
}

// handleLine serves one non-blank line. It only returns write errors.
func (h *Handler) handleLine(ctx context.Context, ch *Channel, line []byte) error {
	req, err := jsonrpc.ParseRequest(line)
	if err != nil {
		h.l.DebugContext(ctx, "malformed line", slog.String("err", err.Error()))
		return ch.WriteMessage(jsonrpc.NewParseErrorResponse())
	}

	canonical, aliased := h.srv.Resolve(req.Method)
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		ID:         req.ID.String(),
		Method:     req.Method,
		Normalized: canonical,
	})

	if h.debugEcho {
		if err := ch.WriteMessage(mcp.DebugEcho{Debug: mcp.DebugInfo{Received: req.Method, Normalized: canonical}}); err != nil {
			return err
		}
	}

	var out mcpservice.Outcome
	switch mcp.Method(canonical) {
	case mcp.InitializeMethod:
		out = mcpservice.Success(h.srv.Initialize())
		if h.lifecycle.MarkReady() {
			h.l.DebugContext(ctx, "stdio ready")
		}
	case mcp.ShutdownMethod:
		out = mcpservice.Success(mcp.ShutdownResult{OK: true})
		if prev := h.lifecycle.Terminate(); prev != StateTerminated {
			h.l.DebugContext(ctx, "stdio shutdown requested", slog.String("from", prev.String()))
		}
	default:
		out = h.srv.Dispatch(ctx, req.Method, req.Params)
	}

	h.l.DebugContext(ctx, "handled request",
		slog.Bool("aliased", aliased),
		slog.String("outcome", out.Kind.String()),
	)
	if out.Kind == mcpservice.OutcomeApplicationError {
		h.l.InfoContext(ctx, "request failed", slog.String("err", out.Message))
	}

	return ch.WriteMessage(responseFor(req.ID, out))
}

// responseFor translates a dispatch outcome into its wire response.
func responseFor(id *jsonrpc.RequestID, out mcpservice.Outcome) *jsonrpc.Response {
	switch out.Kind {
	case mcpservice.OutcomeOK:
		resp, err := jsonrpc.NewResultResponse(id, out.Result)
		if err != nil {
			return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeApplicationError, err.Error())
		}
		return resp
	case mcpservice.OutcomeMethodNotFound:
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeMethodNotFound, out.Message)
	default:
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeApplicationError, out.Message)
	}
}
