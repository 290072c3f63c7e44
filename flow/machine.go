package flow

import "time"

// Config holds the thresholds update_state compares metrics against.
// All fields are overridable at construction; DefaultConfig gives the
// values spec.md §4.7 names.
type Config struct {
	WorkingMinRate       float64
	DeepFlowMinRate      float64
	HyperfocusMinRate    float64
	MaxErrorRate         float64
	MaxInstability       float64
	MaxSwitchFrequency   float64
	MetricsResetInterval time.Duration
}

// DefaultConfig returns the spec's default thresholds.
func DefaultConfig() Config {
	return Config{
		WorkingMinRate:       1,
		DeepFlowMinRate:      3,
		HyperfocusMinRate:    5,
		MaxErrorRate:         0.1,
		MaxInstability:       0.3,
		MaxSwitchFrequency:   5,
		MetricsResetInterval: 5 * time.Minute,
	}
}

// Machine tracks one agent's flow state, deriving it from Metrics on
// every task_started/task_completed/task_failed/set_idle input.
type Machine struct {
	state     State
	metrics   *Metrics
	config    Config
	lastReset time.Time
}

// NewMachine constructs a Machine starting Idle, with a fresh window.
func NewMachine(config Config) *Machine {
	return &Machine{
		state:     State{Kind: StateIdle},
		metrics:   NewMetrics(),
		config:    config,
		lastReset: time.Now(),
	}
}

// State returns the machine's current classification.
func (m *Machine) State() State { return m.state }

// Metrics returns the machine's live metrics (read-only use expected).
func (m *Machine) Metrics() *Metrics { return m.metrics }

// TaskStarted records a task beginning and re-derives state.
func (m *Machine) TaskStarted() {
	m.metrics.TaskStarted()
	m.updateState()
}

// TaskCompleted records a task finishing successfully and re-derives state.
func (m *Machine) TaskCompleted() {
	m.metrics.TaskCompleted()
	m.updateState()
}

// TaskFailed records a task finishing unsuccessfully and re-derives state.
func (m *Machine) TaskFailed() {
	m.metrics.TaskFailed()
	m.updateState()
}

// SetIdle unconditionally resets metrics and transitions to Idle.
func (m *Machine) SetIdle() {
	m.state = State{Kind: StateIdle}
	m.metrics.Reset()
	m.lastReset = time.Now()
}

// FlowScore computes the composite [0,1] score spec.md §4.7 defines.
func (m *Machine) FlowScore() float64 {
	completionRate := m.metrics.CompletionRate()
	errorRate := m.metrics.ErrorRate()
	stability := 1 - min1(m.metrics.ResponseStability())
	switchFreq := m.metrics.SwitchFrequency()

	rateScore := min1(completionRate / 10)
	errorPenalty := 1 - min1(errorRate/m.config.MaxErrorRate)
	stabilityScore := stability
	switchPenalty := 1 - min1(switchFreq/m.config.MaxSwitchFrequency)

	return 0.4*rateScore + 0.2*errorPenalty + 0.2*stabilityScore + 0.2*switchPenalty
}

func min1(x float64) float64 {
	if x > 1 {
		return 1
	}
	return x
}

// updateState implements the §4.7 classification cascade, evaluated in
// order with the first match winning. It resets the metrics window
// first when the reset interval has elapsed.
func (m *Machine) updateState() {
	if time.Since(m.lastReset) >= m.config.MetricsResetInterval {
		m.metrics.Reset()
		m.lastReset = time.Now()
	}

	completionRate := m.metrics.CompletionRate()
	errorRate := m.metrics.ErrorRate()
	flowScore := m.FlowScore()

	if !m.metrics.HasCurrentTask() && m.metrics.TasksCompleted == 0 && m.metrics.TasksFailed == 0 {
		m.state = State{Kind: StateIdle}
		return
	}

	switch {
	case completionRate >= m.config.HyperfocusMinRate && errorRate <= m.config.MaxErrorRate/2 && flowScore >= 0.9:
		m.state = State{Kind: StateHyperfocus}
	case completionRate >= m.config.DeepFlowMinRate && errorRate <= m.config.MaxErrorRate && flowScore >= 0.7:
		m.state = State{Kind: StateDeepFlow}
	case completionRate >= m.config.WorkingMinRate:
		m.state = State{Kind: StateWorking, Level: LevelFromValue(flowScore)}
	default:
		m.state = State{Kind: StateIdle}
	}
}
