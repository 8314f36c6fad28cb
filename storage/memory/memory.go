// Package memory provides an in-memory resource store, useful for tests and
// for serving a snapshot that was loaded once at startup.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/ggoodman/mcp-stdio-go/mcp"
	"github.com/ggoodman/mcp-stdio-go/mcpservice"
)

// Store implements mcpservice.ResourceStore over a map.
type Store struct {
	mu   sync.RWMutex
	docs map[string]string
}

var _ mcpservice.ResourceStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{docs: make(map[string]string)}
}

// ListResources returns every document, sorted by name.
func (s *Store) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]mcp.Resource, 0, len(names))
	for _, name := range names {
		out = append(out, mcpservice.DescribeResource(name, int64(len(s.docs[name]))))
	}
	return out, nil
}

// StatResource returns the metadata of one document.
func (s *Store) StatResource(_ context.Context, name string) (mcp.Resource, error) {
	s.mu.RLock()
	content, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return mcp.Resource{}, &mcpservice.NotFoundError{Type: "resource", Name: name}
	}
	return mcpservice.DescribeResource(name, int64(len(content))), nil
}

// ReadResource returns the text of one document.
func (s *Store) ReadResource(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	content, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return "", &mcpservice.NotFoundError{Type: "resource", Name: name}
	}
	return content, nil
}

// Put stores or replaces a document. Content must be valid UTF-8.
func (s *Store) Put(_ context.Context, name, content string) error {
	if !mcpservice.ValidResourceName(name) {
		return fmt.Errorf("invalid resource name %q", name)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("resource is not valid UTF-8 text: %s", name)
	}
	s.mu.Lock()
	s.docs[name] = content
	s.mu.Unlock()
	return nil
}

// Delete removes a document. Deleting an absent document is not an error.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.docs, name)
	s.mu.Unlock()
	return nil
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
