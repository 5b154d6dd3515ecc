package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Tool is one operation callable over MCP. Execute receives the raw JSON
// arguments and returns a JSON-encodable result.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(input json.RawMessage) (any, error)
}

// AnnotatedTool adds the optional MCP title and behaviour hints.
type AnnotatedTool interface {
	Tool
	Title() string
	Annotations() map[string]bool
}

type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return errors.New("tool has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byKey[name]; dup {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.byKey[name] = t
	return nil
}

// MustRegister panics on a duplicate; registration happens at startup.
func (r *Registry) MustRegister(ts ...Tool) {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byKey[name]
	return t, ok
}

// Execute runs the named tool. Unknown tools and invalid input come back as
// *ToolError; other failures are wrapped in an execution error.
func (r *Registry) Execute(name string, input json.RawMessage) (any, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, NewToolNotFoundError(name)
	}
	if len(input) == 0 || string(input) == "null" {
		input = json.RawMessage("{}")
	}

	result, err := t.Execute(input)
	if err == nil {
		return result, nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return nil, te
	}
	return nil, NewToolExecutionError(name, err)
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.byKey))
	for _, name := range slices.Sorted(maps.Keys(r.byKey)) {
		out = append(out, r.byKey[name])
	}
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byKey))
}
