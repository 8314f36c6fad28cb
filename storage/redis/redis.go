// Package redis provides a Redis-backed resource store. Documents live in a
// single hash (field = resource name, value = UTF-8 text) so that a fleet of
// resources servers can share one catalogue.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/ggoodman/mcp-stdio-go/mcp"
	"github.com/ggoodman/mcp-stdio-go/mcpservice"
	"github.com/redis/go-redis/v9"
)

// Config contains configuration options for the Redis store.
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client

	// Key is the hash holding the documents.
	// Default: "mcp:resources"
	Key string
}

// Store implements mcpservice.ResourceStore over a Redis hash.
type Store struct {
	client *redis.Client
	key    string
}

var _ mcpservice.ResourceStore = (*Store)(nil)

// New creates a new Redis-backed store.
func New(config Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.Key == "" {
		config.Key = "mcp:resources"
	}
	return &Store{client: config.Client, key: config.Key}, nil
}

// Key returns the name of the backing hash.
func (s *Store) Key() string { return s.key }

// ListResources returns every document in the hash, sorted by name. Fields
// whose names could not be addressed by resources.read are skipped.
func (s *Store) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.key, err)
	}
	names := make([]string, 0, len(all))
	for name := range all {
		if mcpservice.ValidResourceName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]mcp.Resource, 0, len(names))
	for _, name := range names {
		out = append(out, mcpservice.DescribeResource(name, int64(len(all[name]))))
	}
	return out, nil
}

// StatResource returns the metadata of one document without fetching it.
func (s *Store) StatResource(ctx context.Context, name string) (mcp.Resource, error) {
	if !mcpservice.ValidResourceName(name) {
		return mcp.Resource{}, notFound(name)
	}
	pipe := s.client.Pipeline()
	exists := pipe.HExists(ctx, s.key, name)
	size := pipe.HStrLen(ctx, s.key, name)
	if _, err := pipe.Exec(ctx); err != nil {
		return mcp.Resource{}, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if !exists.Val() {
		return mcp.Resource{}, notFound(name)
	}
	return mcpservice.DescribeResource(name, size.Val()), nil
}

// ReadResource returns the text of one document.
func (s *Store) ReadResource(ctx context.Context, name string) (string, error) {
	if !mcpservice.ValidResourceName(name) {
		return "", notFound(name)
	}
	val, err := s.client.HGet(ctx, s.key, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", notFound(name)
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return val, nil
}

// Put stores or replaces a document. Content must be valid UTF-8.
func (s *Store) Put(ctx context.Context, name, content string) error {
	if !mcpservice.ValidResourceName(name) {
		return fmt.Errorf("invalid resource name %q", name)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("resource is not valid UTF-8 text: %s", name)
	}
	if err := s.client.HSet(ctx, s.key, name, content).Err(); err != nil {
		return fmt.Errorf("failed to put %s: %w", name, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent document is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.HDel(ctx, s.key, name).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func notFound(name string) error {
	return &mcpservice.NotFoundError{Type: "resource", Name: name}
}
