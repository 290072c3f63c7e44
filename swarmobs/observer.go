// Package swarmobs provides the logging seam every other package calls
// through instead of logging directly, generalizing the teacher's
// observer.LoggerObserver (itself backed by the standard library's
// log.Logger, not a structured-logging framework) to this module's own
// event shapes: provider calls, skill invocations, and flow transitions.
package swarmobs

import (
	"io"
	"log"

	"github.com/pixelswarm/swarm/message"
)

// Observer receives lifecycle notifications from the turn loop and the
// flow monitor. Implementations must not block —
// callers invoke these synchronously on their own hot path.
type Observer interface {
	OnProviderCall(agentID message.AgentID, model string, round int)
	OnProviderResult(agentID message.AgentID, round int, err error)
	OnSkillCall(agentID message.AgentID, skillName, toolUseID string)
	OnSkillResult(agentID message.AgentID, skillName, toolUseID string, failed bool)
	OnFlowTransition(agentID message.AgentID, from, to string)
	OnEventLag(dropped int)
	OnError(err error)
}

// LoggerObserver is an Observer backed by a stdlib log.Logger.
type LoggerObserver struct {
	logger *log.Logger
}

// NewLoggerObserver constructs a LoggerObserver writing to out. A nil
// out discards everything, matching the teacher's NewLoggerObserver.
func NewLoggerObserver(out io.Writer) *LoggerObserver {
	if out == nil {
		out = io.Discard
	}
	return &LoggerObserver{logger: log.New(out, "swarm ", log.LstdFlags|log.Lmicroseconds)}
}

func (o *LoggerObserver) OnProviderCall(agentID message.AgentID, model string, round int) {
	o.logger.Printf("provider call agent=%s model=%s round=%d", agentID, model, round)
}

func (o *LoggerObserver) OnProviderResult(agentID message.AgentID, round int, err error) {
	if err != nil {
		o.logger.Printf("provider error agent=%s round=%d err=%v", agentID, round, err)
		return
	}
	o.logger.Printf("provider ok agent=%s round=%d", agentID, round)
}

func (o *LoggerObserver) OnSkillCall(agentID message.AgentID, skillName, toolUseID string) {
	o.logger.Printf("skill call agent=%s skill=%s tool_use_id=%s", agentID, skillName, toolUseID)
}

func (o *LoggerObserver) OnSkillResult(agentID message.AgentID, skillName, toolUseID string, failed bool) {
	if failed {
		o.logger.Printf("skill failed agent=%s skill=%s tool_use_id=%s", agentID, skillName, toolUseID)
		return
	}
	o.logger.Printf("skill ok agent=%s skill=%s tool_use_id=%s", agentID, skillName, toolUseID)
}

func (o *LoggerObserver) OnFlowTransition(agentID message.AgentID, from, to string) {
	o.logger.Printf("flow transition agent=%s from=%s to=%s", agentID, from, to)
}

func (o *LoggerObserver) OnEventLag(dropped int) {
	if dropped > 0 {
		o.logger.Printf("event bus lag dropped=%d", dropped)
	}
}

func (o *LoggerObserver) OnError(err error) {
	if err == nil {
		return
	}
	o.logger.Printf("error %v", err)
}

var _ Observer = (*LoggerObserver)(nil)

// NopObserver discards every notification; the default when a caller
// supplies none.
type NopObserver struct{}

func (NopObserver) OnProviderCall(message.AgentID, string, int)            {}
func (NopObserver) OnProviderResult(message.AgentID, int, error)           {}
func (NopObserver) OnSkillCall(message.AgentID, string, string)            {}
func (NopObserver) OnSkillResult(message.AgentID, string, string, bool)    {}
func (NopObserver) OnFlowTransition(message.AgentID, string, string)       {}
func (NopObserver) OnEventLag(int)                                        {}
func (NopObserver) OnError(error)                                         {}

var _ Observer = NopObserver{}
