// Package skill defines the callable-tool abstraction agents expose to
// the LLM: a Skill's Descriptor is sent to the provider as a tool spec,
// and its Execute method is invoked by the turn loop when the model
// requests it (spec.md §3, §4.2).
package skill

import (
	"context"
	"fmt"
)

// Descriptor is the tool-spec shape sent to an LLM request.
type Descriptor struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON-schema object
}

// Input is what the turn loop hands a skill for one invocation.
type Input struct {
	Name string
	Args any // structured JSON — typically map[string]any
}

// Output is what a skill returns.
type Output struct {
	Success bool
	Result  any
	Error   string
}

// Ok constructs a successful Output.
func Ok(result any) Output { return Output{Success: true, Result: result} }

// Err constructs a failed Output carrying a human-readable reason. A
// skill returning Err is not a Go error — the turn loop synthesizes a
// textual tool result from it and keeps the conversation going
// (spec.md §4.3 step f, §7).
func Err(format string, args ...any) Output {
	return Output{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Skill is a single callable capability. Execute is expected to be
// idempotent only when the skill's own semantics say so — the core
// imposes no idempotence requirement.
type Skill interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, input Input) (Output, error)
}

// DescriptorOf builds a skill's Descriptor from its interface methods.
func DescriptorOf(s Skill) Descriptor {
	return Descriptor{
		Name:        s.Name(),
		Description: s.Description(),
		InputSchema: s.InputSchema(),
	}
}
