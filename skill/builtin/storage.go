package builtin

import (
	"context"
	"sync"

	"github.com/pixelswarm/swarm/skill"
)

// Store is the external key/value collaborator storage-backed skills
// depend on (spec.md §1 names the storage backend as out-of-core). Its
// in-memory implementation below generalizes the original Rust
// pixelcore-storage::Storage (an RwLock<HashMap<...>>) — a reference
// implementation, not a production backend.
type Store interface {
	Get(key string) (value any, ok bool)
	Set(key string, value any)
}

// MemStore is a process-local, concurrency-safe Store.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]any)}
}

func (s *MemStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// StorageGet reads a value from the key-value store. A missing key
// yields a null value, not an error — matching the original Rust
// builtin's "not found -> value: null" behavior.
type StorageGet struct {
	Store Store
}

func (StorageGet) Name() string        { return "storage_get" }
func (StorageGet) Description() string { return "Get a value from the key-value store." }

func (StorageGet) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{"type": "string", "description": "The key to retrieve."},
		},
		"required": []any{"key"},
	}
}

func (s StorageGet) Execute(_ context.Context, input skill.Input) (skill.Output, error) {
	args, _ := input.Args.(map[string]any)
	key, ok := args["key"].(string)
	if !ok {
		return errInput("key"), nil
	}
	value, _ := s.Store.Get(key)
	return skill.Ok(map[string]any{"value": value}), nil
}

var _ skill.Skill = StorageGet{}

// StorageSet writes a value into the key-value store.
type StorageSet struct {
	Store Store
}

func (StorageSet) Name() string        { return "storage_set" }
func (StorageSet) Description() string { return "Set a value in the key-value store." }

func (StorageSet) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key":   map[string]any{"type": "string", "description": "The key to set."},
			"value": map[string]any{"description": "The value to store."},
		},
		"required": []any{"key", "value"},
	}
}

func (s StorageSet) Execute(_ context.Context, input skill.Input) (skill.Output, error) {
	args, _ := input.Args.(map[string]any)
	key, ok := args["key"].(string)
	if !ok {
		return errInput("key"), nil
	}
	value, ok := args["value"]
	if !ok {
		return errInput("value"), nil
	}
	s.Store.Set(key, value)
	return skill.Ok(map[string]any{"ok": true}), nil
}

var _ skill.Skill = StorageSet{}
