package builtin

import (
	"context"

	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/skill"
	"github.com/pixelswarm/swarm/swarmerr"
)

// Router is the narrow view of the swarm a Delegate skill needs: route a
// message to another agent and get its reply back. swarm.Coordinator
// satisfies this by duck typing — builtin does not import swarm, so
// Delegate can be registered into any agent's registry without the
// skill packages ever depending on the swarm package.
type Router interface {
	Route(ctx context.Context, target message.AgentID, msg message.Message) (message.Message, error)
}

// Delegate hands a message to another agent via the swarm and returns
// that agent's reply text. Delegating to one's own agent id is a user
// error (the turn loop would deadlock on its own per-agent lock) and is
// rejected before ever reaching the router.
type Delegate struct {
	Self   message.AgentID
	Router Router
}

func (Delegate) Name() string { return "delegate" }
func (Delegate) Description() string {
	return "Delegate a message to another agent in the swarm and return its reply."
}

func (Delegate) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_id": map[string]any{"type": "string", "description": "The target agent's id."},
			"message":  map[string]any{"type": "string", "description": "The message to send."},
		},
		"required": []any{"agent_id", "message"},
	}
}

func (d Delegate) Execute(ctx context.Context, input skill.Input) (skill.Output, error) {
	args, _ := input.Args.(map[string]any)
	idStr, ok := args["agent_id"].(string)
	if !ok {
		return errInput("agent_id"), nil
	}
	text, ok := args["message"].(string)
	if !ok {
		return errInput("message"), nil
	}

	target, err := message.ParseAgentID(idStr)
	if err != nil {
		return skill.Err("invalid agent_id: %v", err), nil
	}
	if target == d.Self {
		return skill.Err("%v", swarmerr.ErrSelfDelegation), nil
	}

	reply, err := d.Router.Route(ctx, target, message.UserMessage(text))
	if err != nil {
		return skill.Err("delegate to %s: %v", idStr, err), nil
	}
	return skill.Ok(map[string]any{"response": reply.Text()}), nil
}

var _ skill.Skill = Delegate{}
