// Package builtin provides reference Skill implementations: echo, fetch,
// storage get/set and delegate. The core treats these as external
// collaborators (spec.md §1) — they exist here so the turn loop and
// swarm router have something concrete to exercise in tests.
package builtin

import (
	"context"

	"github.com/pixelswarm/swarm/skill"
)

// Echo returns its "message" argument unchanged.
type Echo struct{}

func (Echo) Name() string        { return "echo" }
func (Echo) Description() string { return "Echo back the input message unchanged." }

func (Echo) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The message to echo back.",
			},
		},
		"required": []any{"message"},
	}
}

func (Echo) Execute(_ context.Context, input skill.Input) (skill.Output, error) {
	args, _ := input.Args.(map[string]any)
	msg, ok := args["message"].(string)
	if !ok {
		return skill.Err("missing 'message'"), nil
	}
	return skill.Ok(map[string]any{"message": msg}), nil
}

var _ skill.Skill = Echo{}

// errInput formats a missing-argument failure consistently across builtins.
func errInput(field string) skill.Output {
	return skill.Err("missing '%s'", field)
}
