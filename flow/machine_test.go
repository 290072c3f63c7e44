package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevel_ValueAndFromValueRoundTrip(t *testing.T) {
	assert.Equal(t, LevelLow, LevelFromValue(0.1))
	assert.Equal(t, LevelMedium, LevelFromValue(0.4))
	assert.Equal(t, LevelHigh, LevelFromValue(0.7))
	assert.Equal(t, LevelPeak, LevelFromValue(0.95))
	assert.Equal(t, 0.25, LevelLow.Value())
	assert.Equal(t, 1.0, LevelPeak.Value())
}

func TestMachine_StartsIdle(t *testing.T) {
	m := NewMachine(DefaultConfig())
	assert.Equal(t, StateIdle, m.State().Kind)
}

func TestMachine_NoTaskActivityStaysIdle(t *testing.T) {
	m := NewMachine(DefaultConfig())
	m.updateState()
	assert.Equal(t, StateIdle, m.State().Kind)
}

func TestMachine_SetIdleResetsMetricsAndState(t *testing.T) {
	m := NewMachine(DefaultConfig())
	m.TaskStarted()
	m.TaskCompleted()
	m.SetIdle()
	assert.Equal(t, StateIdle, m.State().Kind)
	assert.Equal(t, uint32(0), m.Metrics().TasksCompleted)
}

func TestMachine_ResponseStabilityDefaultsUnstableBelowTwoSamples(t *testing.T) {
	m := NewMachine(DefaultConfig())
	assert.Equal(t, 1.0, m.Metrics().ResponseStability())
	m.TaskStarted()
	m.TaskCompleted()
	assert.Equal(t, 1.0, m.Metrics().ResponseStability(), "still under two samples")
}

func TestMachine_TaskSwitchCountedWhenPriorTaskStillCurrent(t *testing.T) {
	m := NewMachine(DefaultConfig())
	m.TaskStarted()
	m.TaskStarted() // switch: previous task never completed
	assert.Equal(t, uint32(1), m.Metrics().TaskSwitches)
}

func TestMachine_WorkingClassificationWhenCompletionRateHighEnough(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMachine(cfg)

	// Fabricate enough completed tasks against a short elapsed window by
	// manipulating the metrics directly isn't exposed; instead drive the
	// machine through enough synchronous completions that completion_rate
	// (tasks / elapsed-minutes) clears WorkingMinRate given a tiny elapsed
	// window. We simulate this by calling TaskCompleted many times right
	// after construction, relying on the sub-second elapsed window giving
	// a deliberately large per-minute extrapolation once >= 0.1s has passed.
	time.Sleep(150 * time.Millisecond)
	for i := 0; i < 3; i++ {
		m.TaskStarted()
		m.TaskCompleted()
	}
	assert.NotEqual(t, State{Kind: StateIdle}, m.State())
}

func TestMachine_FlowScoreInUnitInterval(t *testing.T) {
	m := NewMachine(DefaultConfig())
	time.Sleep(150 * time.Millisecond)
	m.TaskStarted()
	m.TaskCompleted()
	score := m.FlowScore()
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}
