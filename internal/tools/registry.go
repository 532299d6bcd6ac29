package tools

import (
	"fmt"
	"sort"

	"github.com/firebase/genkit/go/genkit"
)

// Registry is an immutable name→tool map. Lookups are total: the
// missing arm is an explicit second return, never a nil dereference.
// Safe for concurrent use (no mutable state after construction).
type Registry struct {
	tools map[string]*Tool
	names []string
}

// NewRegistry builds a registry from the given tools. Duplicate names
// are a construction error.
func NewRegistry(ts ...*Tool) (*Registry, error) {
	tools := make(map[string]*Tool, len(ts))
	for _, t := range ts {
		if t == nil {
			return nil, fmt.Errorf("nil tool")
		}
		if _, ok := tools[t.Name()]; ok {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		tools[t.Name()] = t
	}

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Registry{tools: tools, names: names}, nil
}

// Tool looks up a tool by name.
func (r *Registry) Tool(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Register defines every tool in genkit so the model sees their
// schemas. Execution still flows through Execute via the
// orchestrator's dispatch.
func (r *Registry) Register(g *genkit.Genkit) error {
	if g == nil {
		return fmt.Errorf("genkit instance is required")
	}
	for _, name := range r.names {
		r.tools[name].define(g)
	}
	return nil
}
