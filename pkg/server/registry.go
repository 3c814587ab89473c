package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Group names one of the three handler groups.
type Group string

const (
	GroupTools     Group = "tools"
	GroupResources Group = "resources"
	GroupPrompts   Group = "prompts"
)

// ErrInvalidHandler is returned when a handler does not implement the
// capability of the group it is registered in.
var ErrInvalidHandler = errors.New("handler does not implement group capability")

// Registry maps (group, name) to a handler.
//
// Registering a name that is already bound replaces the handler and keeps
// its listing position. There is no removal. All methods are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[Group]*handlerSet
}

type handlerSet struct {
	order    []string
	handlers map[string]interface{}
}

// Entry is a registered handler and its name.
type Entry struct {
	Name    string
	Handler interface{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: map[Group]*handlerSet{
			GroupTools:     {handlers: make(map[string]interface{})},
			GroupResources: {handlers: make(map[string]interface{})},
			GroupPrompts:   {handlers: make(map[string]interface{})},
		},
	}
}

// Register binds handler to name in group. For resources the name is a URI
// or URI prefix.
func (r *Registry) Register(group Group, name string, handler interface{}) error {
	if err := checkCapability(group, handler); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.groups[group]
	if _, exists := set.handlers[name]; !exists {
		set.order = append(set.order, name)
	}
	set.handlers[name] = handler
	return nil
}

// RegisterTool binds a tool handler. A nil handler is ignored.
func (r *Registry) RegisterTool(name string, handler ToolHandler) {
	_ = r.Register(GroupTools, name, handler)
}

// RegisterResource binds a resource handler to a URI or URI prefix.
func (r *Registry) RegisterResource(uri string, handler ResourceHandler) {
	_ = r.Register(GroupResources, uri, handler)
}

// RegisterPrompt binds a prompt handler.
func (r *Registry) RegisterPrompt(name string, handler PromptHandler) {
	_ = r.Register(GroupPrompts, name, handler)
}

func checkCapability(group Group, handler interface{}) error {
	var ok bool
	switch group {
	case GroupTools:
		_, ok = handler.(ToolHandler)
	case GroupResources:
		_, ok = handler.(ResourceHandler)
	case GroupPrompts:
		_, ok = handler.(PromptHandler)
	default:
		return fmt.Errorf("unknown handler group %q", group)
	}
	if !ok || handler == nil {
		return fmt.Errorf("%w: %s %T", ErrInvalidHandler, group, handler)
	}
	return nil
}

// Lookup returns the handler bound to name in group.
func (r *Registry) Lookup(group Group, name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.groups[group]
	if !ok {
		return nil, false
	}
	h, ok := set.handlers[name]
	return h, ok
}

// Tool returns the tool handler bound to name.
func (r *Registry) Tool(name string) (ToolHandler, bool) {
	h, ok := r.Lookup(GroupTools, name)
	if !ok {
		return nil, false
	}
	return h.(ToolHandler), true
}

// Prompt returns the prompt handler bound to name.
func (r *Registry) Prompt(name string) (PromptHandler, bool) {
	h, ok := r.Lookup(GroupPrompts, name)
	if !ok {
		return nil, false
	}
	return h.(PromptHandler), true
}

// Resource returns the resource handler for uri: the one registered under
// uri itself, otherwise the one registered under the longest prefix of uri.
func (r *Registry) Resource(uri string) (ResourceHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.groups[GroupResources]
	if h, ok := set.handlers[uri]; ok {
		return h.(ResourceHandler), true
	}

	best := ""
	for _, key := range set.order {
		if len(key) > len(best) && strings.HasPrefix(uri, key) {
			best = key
		}
	}
	if best == "" {
		return nil, false
	}
	return set.handlers[best].(ResourceHandler), true
}

// Names returns the names bound in group in first registration order.
func (r *Registry) Names(group Group) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.groups[group]
	if !ok {
		return nil
	}
	return append([]string(nil), set.order...)
}

// Entries returns a snapshot of group in first registration order.
func (r *Registry) Entries(group Group) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.groups[group]
	if !ok {
		return nil
	}
	entries := make([]Entry, 0, len(set.order))
	for _, name := range set.order {
		entries = append(entries, Entry{Name: name, Handler: set.handlers[name]})
	}
	return entries
}
