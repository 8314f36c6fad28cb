// Package logctx decorates slog records with request-scoped attributes
// carried in a context.Context.
package logctx

import (
	"context"
	"log/slog"
)

// Handler wraps an slog.Handler and appends the rpc, session and tool
// groups found in the record's context.
type Handler struct {
	slog.Handler
}

// New wraps h.
func New(h slog.Handler) Handler { return Handler{Handler: h} }

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if msg, ok := ctx.Value(rpcMsg{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("id", msg.ID),
			slog.String("method", msg.Method),
			slog.String("normalized", msg.Normalized),
		))
	}

	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		r.AddAttrs(slog.Group("sess",
			slog.String("id", sd.SessionID),
			slog.String("server", sd.Server),
		))
	}

	if td, ok := ctx.Value(toolCallDataKey{}).(*ToolCallData); ok {
		r.AddAttrs(slog.Group("tool",
			slog.String("name", td.ToolName),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type rpcMsg struct{}

// RPCMessage identifies the request being served. Method is the spelling
// the peer sent; Normalized is the name after alias resolution.
type RPCMessage struct {
	ID         string
	Method     string
	Normalized string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsg{}, msg)
}

type sessionDataKey struct{}

// SessionData identifies one client session (one spawned server process).
type SessionData struct {
	SessionID string
	Server    string
}

func WithSessionData(ctx context.Context, data *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, data)
}

type toolCallDataKey struct{}

type ToolCallData struct {
	ToolName string
}

func WithToolCallData(ctx context.Context, data *ToolCallData) context.Context {
	return context.WithValue(ctx, toolCallDataKey{}, data)
}
