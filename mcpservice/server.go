package mcpservice

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// CapabilityProvider contributes a method group to a Server: the methods it
// registers and the descriptor advertised for them.
type CapabilityProvider interface {
	Capabilities() mcp.CapabilityDescriptor
	Methods() []MethodEntry
}

// ServerOption configures NewServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	info            mcp.ImplementationInfo
	protocolVersion string
	providers       []CapabilityProvider
	extra           []MethodEntry
	extraCaps       mcp.CapabilityDescriptor
	aliases         map[string]string
	capListMethod   string
}

// Server holds the immutable dispatch tables of one server process: the
// method registry, the alias table and the capability descriptor. It is
// built once at startup and handed to the stdio loop by reference.
type Server struct {
	info            mcp.ImplementationInfo
	protocolVersion string
	caps            mcp.CapabilityDescriptor
	registry        *Registry
	aliases         *AliasTable
}

// NewServer builds a Server using functional options. It fails when the
// registry or alias table is inconsistent: duplicate methods, reserved
// names, chained aliases, aliases that shadow a canonical name or aliases
// that point at nothing.
func NewServer(opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{
		info:          mcp.ImplementationInfo{Name: "mcp-stdio-server", Version: "0.1.0"},
		capListMethod: string(mcp.CapabilityListMethod),
		extraCaps:     mcp.CapabilityDescriptor{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	caps := mcp.CapabilityDescriptor{}
	var entries []MethodEntry
	for _, p := range cfg.providers {
		caps.Merge(p.Capabilities())
		entries = append(entries, p.Methods()...)
	}
	caps.Merge(cfg.extraCaps)
	entries = append(entries, cfg.extra...)
	if cfg.capListMethod != "" {
		snapshot := cloneDescriptor(caps)
		entries = append(entries, MethodEntry{
			Name:    cfg.capListMethod,
			Handler: Static(func(context.Context) (any, error) { return cloneDescriptor(snapshot), nil }),
		})
	}

	registry, err := NewRegistry(entries...)
	if err != nil {
		return nil, err
	}
	aliases, err := NewAliasTable(cfg.aliases)
	if err != nil {
		return nil, err
	}
	for alias, target := range aliases.Aliases() {
		if _, ok := registry.Lookup(alias); ok {
			return nil, fmt.Errorf("alias %q shadows a registered method", alias)
		}
		if _, ok := registry.Lookup(target); !ok && !mcp.IsReserved(target) {
			return nil, fmt.Errorf("alias %q targets unknown method %q", alias, target)
		}
	}

	return &Server{
		info:            cfg.info,
		protocolVersion: cfg.protocolVersion,
		caps:            caps,
		registry:        registry,
		aliases:         aliases,
	}, nil
}

// WithServerInfo sets the name and version returned by initialize.
func WithServerInfo(info mcp.ImplementationInfo) ServerOption {
	return func(c *serverConfig) { c.info = info }
}

// WithProtocolVersion sets the optional protocolVersion returned by initialize.
func WithProtocolVersion(version string) ServerOption {
	return func(c *serverConfig) { c.protocolVersion = version }
}

// WithCapability registers a method group such as a ToolsContainer.
func WithCapability(p CapabilityProvider) ServerOption {
	return func(c *serverConfig) {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
}

// WithMethod registers a single extra method and, when desc is non-empty,
// advertises it under the group/op pair derived from its dotted name.
func WithMethod(name string, h Handler, desc string) ServerOption {
	return func(c *serverConfig) {
		c.extra = append(c.extra, MethodEntry{Name: name, Handler: h})
		if desc == "" {
			return
		}
		group, op := splitMethod(name)
		if c.extraCaps[group] == nil {
			c.extraCaps[group] = map[string]mcp.MethodDescription{}
		}
		c.extraCaps[group][op] = mcp.MethodDescription{Description: desc}
	}
}

// WithAliases adds alternate spellings. Later calls extend earlier ones.
func WithAliases(aliases map[string]string) ServerOption {
	return func(c *serverConfig) {
		if c.aliases == nil {
			c.aliases = make(map[string]string, len(aliases))
		}
		for k, v := range aliases {
			c.aliases[k] = v
		}
	}
}

// WithCapabilityListMethod sets the canonical name of the built-in capability
// listing method. An empty name disables it so a custom handler can be
// registered with WithMethod.
func WithCapabilityListMethod(name mcp.Method) ServerOption {
	return func(c *serverConfig) { c.capListMethod = string(name) }
}

// Info returns the server identity.
func (s *Server) Info() mcp.ImplementationInfo { return s.info }

// Initialize returns the static descriptor served for initialize.
func (s *Server) Initialize() mcp.InitializeResult {
	return mcp.InitializeResult{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: s.protocolVersion,
		Capabilities:    s.Capabilities(),
	}
}

// Capabilities returns a copy of the capability descriptor.
func (s *Server) Capabilities() mcp.CapabilityDescriptor { return cloneDescriptor(s.caps) }

// Methods returns the canonical names known to the registry, sorted.
func (s *Server) Methods() []string { return s.registry.Methods() }

// Resolve applies the alias table to method.
func (s *Server) Resolve(method string) (canonical string, aliased bool) {
	return s.aliases.Resolve(method)
}

// Dispatch resolves method through the alias table, looks it up in the
// registry and runs the handler. Handler errors and panics are folded into
// an application error outcome; an unknown method reports the spelling the
// caller sent.
func (s *Server) Dispatch(ctx context.Context, method string, params json.RawMessage) Outcome {
	canonical, _ := s.aliases.Resolve(method)
	h, ok := s.registry.Lookup(canonical)
	if !ok {
		return MethodNotFound(method)
	}
	res, err := invoke(ctx, h, params)
	if err != nil {
		return ApplicationError(err)
	}
	return Success(res)
}

func invoke(ctx context.Context, h Handler, params json.RawMessage) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("internal handler failure: %v", r)
		}
	}()
	if err := h.Validate(params); err != nil {
		return nil, err
	}
	return h.Execute(ctx, params)
}

func cloneDescriptor(d mcp.CapabilityDescriptor) mcp.CapabilityDescriptor {
	out := make(mcp.CapabilityDescriptor, len(d))
	for group, ops := range d {
		cp := make(map[string]mcp.MethodDescription, len(ops))
		for op, desc := range ops {
			cp[op] = desc
		}
		out[group] = cp
	}
	return out
}

func splitMethod(name string) (group, op string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' || name[i] == '/' {
			return name[:i], name[i+1:]
		}
	}
	return name, "call"
}

// describe builds a descriptor group from op -> description pairs.
func describe(group string, ops ...string) mcp.CapabilityDescriptor {
	m := make(map[string]mcp.MethodDescription, len(ops)/2)
	for i := 0; i+1 < len(ops); i += 2 {
		m[ops[i]] = mcp.MethodDescription{Description: ops[i+1]}
	}
	return mcp.CapabilityDescriptor{group: m}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
