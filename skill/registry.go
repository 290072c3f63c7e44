package skill

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pixelswarm/swarm/swarmerr"
)

// Registry is a mapping from skill name to skill handle. It is
// read-mostly: registration is expected to happen during agent
// construction, so Get takes no lock beyond what sync.RWMutex costs.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
	schema map[string]*jsonschema.Schema // compiled input_schema, by name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]Skill),
		schema: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a skill under its own Name(); a second registration
// under the same name overwrites the first (last-writer-wins, per
// spec.md §4.2). The skill's input_schema is compiled eagerly so a bad
// schema fails at registration time, not on first use.
func (r *Registry) Register(s Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	compiled, err := compileSchema(name, s.InputSchema())
	if err != nil {
		return fmt.Errorf("skill %q: compile input_schema: %w", name, err)
	}
	r.skills[name] = s
	r.schema[name] = compiled
	return nil
}

// Get looks up a skill by name.
func (r *Registry) Get(name string) (Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	if !ok {
		return nil, &swarmerr.SkillNotFoundError{Name: name}
	}
	return s, nil
}

// Validate checks args against the named skill's compiled input_schema.
// Unknown skill names are not this method's concern — callers resolve
// the skill with Get first.
func (r *Registry) Validate(name string, args any) error {
	r.mu.RLock()
	compiled := r.schema[name]
	r.mu.RUnlock()
	if compiled == nil {
		return nil
	}
	if err := compiled.Validate(args); err != nil {
		return fmt.Errorf("%w: %v", swarmerr.ErrSkillInvalidArgs, err)
	}
	return nil
}

// AsTools materializes every registered skill's Descriptor, for inclusion
// in an LLM request's tool list.
func (r *Registry) AsTools() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, DescriptorOf(s))
	}
	return out
}

// List returns the registered skill names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.skills))
	for name := range r.skills {
		out = append(out, name)
	}
	return out
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	url := "skill://" + name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}
