package skill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSkill struct {
	name   string
	schema map[string]any
}

func (s stubSkill) Name() string                 { return s.name }
func (s stubSkill) Description() string          { return "stub" }
func (s stubSkill) InputSchema() map[string]any  { return s.schema }
func (s stubSkill) Execute(context.Context, Input) (Output, error) {
	return Ok(nil), nil
}

func TestRegistry_RegisterLastWriterWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubSkill{name: "x", schema: map[string]any{}}))
	require.NoError(t, r.Register(stubSkill{name: "x", schema: map[string]any{}}))
	assert.Len(t, r.List(), 1)
}

func TestRegistry_GetUnknownFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	assert.Error(t, err)
}

func TestRegistry_ValidateRejectsMissingRequiredField(t *testing.T) {
	r := NewRegistry()
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
		"required":   []any{"name"},
	}
	require.NoError(t, r.Register(stubSkill{name: "greet", schema: schema}))

	err := r.Validate("greet", map[string]any{})
	assert.Error(t, err)

	err = r.Validate("greet", map[string]any{"name": "x"})
	assert.NoError(t, err)
}

func TestRegistry_AsToolsMaterializesDescriptors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubSkill{name: "a", schema: map[string]any{}}))
	require.NoError(t, r.Register(stubSkill{name: "b", schema: map[string]any{}}))

	tools := r.AsTools()
	names := map[string]bool{}
	for _, d := range tools {
		names[d.Name] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}
