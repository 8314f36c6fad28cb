package mcpservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// FSResources is a ResourceStore over the top level of a directory. Only
// regular files are listed; subdirectories and symlinks are skipped.
//
// It can wrap either an OS directory (required for Watch, and defends against
// symlink escape) or an arbitrary fs.FS such as embed.FS.
type FSResources struct {
	fsys   fs.FS
	osRoot string // absolute, symlink-evaluated root on disk (if set)
	logger *slog.Logger

	// listing cache, only populated while Watch is running
	mu       sync.Mutex
	watching bool
	gen      uint64 // bumped on every invalidation
	cached   []mcp.Resource

	notifier ChangeNotifier
}

var _ ResourceStore = (*FSResources)(nil)

// FSOption configures FSResources.
type FSOption func(*FSResources)

// WithOSDir sets the root to an OS directory. Symlinks in the root path are
// resolved and reads are constrained to the resolved root. A missing root
// lists as empty.
func WithOSDir(root string) FSOption {
	return func(r *FSResources) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			root = resolved
		}
		r.osRoot = root
		r.fsys = os.DirFS(root)
	}
}

// WithFS provides a generic fs.FS (e.g., embed.FS).
func WithFS(f fs.FS) FSOption { return func(r *FSResources) { r.fsys = f; r.osRoot = "" } }

// WithFSLogger sets the logger used by the directory watcher.
func WithFSLogger(l *slog.Logger) FSOption {
	return func(r *FSResources) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewFSResources constructs a filesystem-backed resource store.
func NewFSResources(opts ...FSOption) *FSResources {
	r := &FSResources{logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Root returns the resolved OS directory, or "" for a generic fs.FS.
func (r *FSResources) Root() string { return r.osRoot }

// ListResources implements ResourceStore.
func (r *FSResources) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	r.mu.Lock()
	if r.cached != nil {
		out := append([]mcp.Resource(nil), r.cached...)
		r.mu.Unlock()
		return out, nil
	}
	gen := r.gen
	r.mu.Unlock()

	items, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.watching && r.gen == gen {
		r.cached = append([]mcp.Resource{}, items...)
	}
	r.mu.Unlock()
	return items, nil
}

// StatResource implements ResourceStore.
func (r *FSResources) StatResource(_ context.Context, name string) (mcp.Resource, error) {
	info, err := r.stat(name)
	if err != nil {
		return mcp.Resource{}, err
	}
	return DescribeResource(name, info.Size()), nil
}

// ReadResource implements ResourceStore.
func (r *FSResources) ReadResource(_ context.Context, name string) (string, error) {
	if _, err := r.stat(name); err != nil {
		return "", err
	}
	var (
		data []byte
		err  error
	)
	if r.osRoot != "" {
		data, err = os.ReadFile(filepath.Join(r.osRoot, name))
	} else {
		data, err = fs.ReadFile(r.fsys, name)
	}
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("resource is not valid UTF-8 text: %s", name)
	}
	return string(data), nil
}

// stat resolves name to a regular file within the root, or a NotFoundError.
func (r *FSResources) stat(name string) (fs.FileInfo, error) {
	notFound := &NotFoundError{Type: "resource", Name: name}
	if r.fsys == nil || !ValidResourceName(name) {
		return nil, notFound
	}

	if r.osRoot != "" {
		abs := filepath.Join(r.osRoot, name)
		info, err := os.Lstat(abs)
		if err != nil || !info.Mode().IsRegular() {
			return nil, notFound
		}
		return info, nil
	}

	info, err := fs.Stat(r.fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return nil, notFound
	}
	return info, nil
}

func (r *FSResources) scan(ctx context.Context) ([]mcp.Resource, error) {
	if r.fsys == nil {
		return nil, errors.New("no filesystem configured")
	}
	entries, err := fs.ReadDir(r.fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []mcp.Resource{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	// fs.ReadDir returns entries sorted by filename.
	out := make([]mcp.Resource, 0, len(entries))
	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ValidResourceName(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue // best-effort listing
		}
		out = append(out, DescribeResource(d.Name(), info.Size()))
	}
	return out, nil
}

// Subscriber returns a channel that ticks whenever Watch observes a change
// in the directory.
func (r *FSResources) Subscriber() <-chan struct{} { return r.notifier.Subscriber() }

// Watch starts an fsnotify watcher on the OS root. While it runs, listings
// are cached and the cache is dropped on every create, remove, rename or
// write event. It returns once the watcher is registered; the watcher stops
// when ctx is done.
func (r *FSResources) Watch(ctx context.Context) error {
	if r.osRoot == "" {
		return errors.New("watch requires an OS directory root")
	}
	r.mu.Lock()
	if r.watching {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify unavailable: %w", err)
	}
	if err := w.Add(r.osRoot); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", r.osRoot, err)
	}

	r.mu.Lock()
	r.watching = true
	r.cached = nil
	r.mu.Unlock()

	go r.runWatcher(ctx, w)
	return nil
}

func (r *FSResources) runWatcher(ctx context.Context, w *fsnotify.Watcher) {
	defer func() {
		// Best-effort watcher close; no actionable error handling path.
		_ = w.Close()
		r.mu.Lock()
		r.watching = false
		r.cached = nil
		r.mu.Unlock()
		r.notifier.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Dir(ev.Name) != strings.TrimRight(r.osRoot, string(os.PathSeparator)) {
				continue
			}
			r.mu.Lock()
			r.cached = nil
			r.gen++
			r.mu.Unlock()
			r.logger.Debug("resource directory changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			_ = r.notifier.Notify(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.logger.Debug("fsnotify error", slog.String("err", err.Error()))
		}
	}
}
