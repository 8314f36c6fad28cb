package stdio

import (
	"io"
	"log/slog"
)

// Option customizes a Handler.
type Option func(*Handler)

// WithIO sets the reader and writer for the handler.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
		if w != nil {
			h.w = w
		}
	}
}

// WithDiagnostics overrides the stream used for plain-text diagnostics such
// as a BannerDiagnostic banner. Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(h *Handler) {
		if w != nil {
			h.diag = w
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.l = l
		}
	}
}

// WithUserProvider overrides the user provider used to identify the peer.
func WithUserProvider(up UserProvider) Option {
	return func(h *Handler) {
		if up != nil {
			h.userProvider = up
		}
	}
}

// WithDebugEcho enables a {"debug":{...}} line before every response
// recording the received and normalized method names.
func WithDebugEcho(enabled bool) Option {
	return func(h *Handler) { h.debugEcho = enabled }
}

// WithBanner writes text once before the first read, at the given placement.
// An empty text or BannerNone disables the banner.
func WithBanner(placement BannerPlacement, text string) Option {
	return func(h *Handler) {
		h.bannerPlacement = placement
		h.bannerText = text
	}
}
