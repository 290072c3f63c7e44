package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/skill"
)

func TestEcho_ReturnsMessageUnchanged(t *testing.T) {
	out, err := Echo{}.Execute(context.Background(), skill.Input{Args: map[string]any{"message": "hi"}})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, map[string]any{"message": "hi"}, out.Result)
}

func TestEcho_MissingMessageIsFailureNotError(t *testing.T) {
	out, err := Echo{}.Execute(context.Background(), skill.Input{Args: map[string]any{}})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestStorage_GetMissingKeyReturnsNullValueNotError(t *testing.T) {
	store := NewMemStore()
	out, err := StorageGet{Store: store}.Execute(context.Background(), skill.Input{Args: map[string]any{"key": "missing"}})
	require.NoError(t, err)
	assert.True(t, out.Success)
	result := out.Result.(map[string]any)
	assert.Nil(t, result["value"])
}

func TestStorage_SetThenGetRoundTrips(t *testing.T) {
	store := NewMemStore()
	setOut, err := StorageSet{Store: store}.Execute(context.Background(), skill.Input{Args: map[string]any{"key": "k", "value": "v"}})
	require.NoError(t, err)
	assert.True(t, setOut.Success)

	getOut, err := StorageGet{Store: store}.Execute(context.Background(), skill.Input{Args: map[string]any{"key": "k"}})
	require.NoError(t, err)
	result := getOut.Result.(map[string]any)
	assert.Equal(t, "v", result["value"])
}

type fakeRouter struct {
	replyText string
	err       error
	lastTo    message.AgentID
}

func (r *fakeRouter) Route(_ context.Context, to message.AgentID, _ message.Message) (message.Message, error) {
	r.lastTo = to
	if r.err != nil {
		return message.Message{}, r.err
	}
	return message.NewMessage(message.RoleAssistant, r.replyText), nil
}

func TestDelegate_RoutesToTargetAgent(t *testing.T) {
	self := message.NewAgentID()
	target := message.NewAgentID()
	router := &fakeRouter{replyText: "pong"}
	d := Delegate{Self: self, Router: router}

	out, err := d.Execute(context.Background(), skill.Input{Args: map[string]any{
		"agent_id": target.String(),
		"message":  "ping",
	}})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, target, router.lastTo)
	result := out.Result.(map[string]any)
	assert.Equal(t, "pong", result["response"])
}

func TestDelegate_RejectsSelfDelegation(t *testing.T) {
	self := message.NewAgentID()
	router := &fakeRouter{}
	d := Delegate{Self: self, Router: router}

	out, err := d.Execute(context.Background(), skill.Input{Args: map[string]any{
		"agent_id": self.String(),
		"message":  "ping",
	}})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "delegate to itself")
}

func TestFetch_RejectsNonHTTPScheme(t *testing.T) {
	out, err := Fetch{}.Execute(context.Background(), skill.Input{Args: map[string]any{"url": "ftp://x"}})
	require.NoError(t, err)
	assert.False(t, out.Success)
}
