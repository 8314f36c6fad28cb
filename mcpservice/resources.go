package mcpservice

import (
	"context"
	"path"
	"strings"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// ResourceStore is a flat namespace of named text documents. Implementations
// return a *NotFoundError for names they do not hold.
type ResourceStore interface {
	// ListResources returns every document, sorted by name.
	ListResources(ctx context.Context) ([]mcp.Resource, error)
	// StatResource returns the metadata of one document.
	StatResource(ctx context.Context, name string) (mcp.Resource, error)
	// ReadResource returns the full text of one document.
	ReadResource(ctx context.Context, name string) (string, error)
}

// ResourcesContainer exposes a ResourceStore as the resources.list /
// resources.read / resources.get method group.
type ResourcesContainer struct {
	store ResourceStore
}

var _ CapabilityProvider = (*ResourcesContainer)(nil)

// NewResourcesContainer wraps store.
func NewResourcesContainer(store ResourceStore) *ResourcesContainer {
	return &ResourcesContainer{store: store}
}

// Capabilities implements CapabilityProvider.
func (rc *ResourcesContainer) Capabilities() mcp.CapabilityDescriptor {
	return describe("resources",
		"list", "List available resource documents",
		"read", "Read a resource by name",
		"get", "Get metadata for a single resource by name",
	)
}

// Methods implements CapabilityProvider.
func (rc *ResourcesContainer) Methods() []MethodEntry {
	return []MethodEntry{
		{
			Name: string(mcp.ResourcesListMethod),
			Handler: Static(func(ctx context.Context) (any, error) {
				items, err := rc.store.ListResources(ctx)
				if err != nil {
					return nil, err
				}
				if items == nil {
					items = []mcp.Resource{}
				}
				return items, nil
			}),
		},
		{
			Name: string(mcp.ResourcesReadMethod),
			Handler: NewHandler(requireName, func(ctx context.Context, req mcp.NamedRequest) (any, error) {
				content, err := rc.store.ReadResource(ctx, req.Name)
				if err != nil {
					return nil, err
				}
				return mcp.ReadResourceResult{Name: req.Name, Content: content}, nil
			}),
		},
		{
			Name: string(mcp.ResourcesGetMethod),
			Handler: NewHandler(requireName, func(ctx context.Context, req mcp.NamedRequest) (any, error) {
				return rc.store.StatResource(ctx, req.Name)
			}),
		},
	}
}

func requireName(req mcp.NamedRequest) error {
	if req.Name == "" {
		return MissingParam("name")
	}
	return nil
}

// DescribeResource builds the metadata advertised for a document.
func DescribeResource(name string, size int64) mcp.Resource {
	return mcp.Resource{
		Name:        name,
		Mime:        MimeForName(name),
		Size:        size,
		Description: "Resource file " + name,
	}
}

// MimeForName returns text/markdown for .md documents and text/plain for
// everything else.
func MimeForName(name string) string {
	if strings.EqualFold(path.Ext(name), ".md") {
		return "text/markdown"
	}
	return "text/plain"
}

// ValidResourceName reports whether name is a single flat path element.
// Names with separators, parent references or NUL bytes never resolve.
func ValidResourceName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
