// Package core models per-core state: the static allocation the
// partitioner produces (utilization, remaining capacity, threshold
// criticality, shutdownability) and the runtime fields the scheduler
// loop mutates (status, wakeup time, current/preempted job, slack,
// idle time, and its local run queue).
package core

import (
	"github.com/akankshac-073/mcsim/internal/job"
	"github.com/akankshac-073/mcsim/internal/runqueue"
	"github.com/akankshac-073/mcsim/internal/task"
)

// Type distinguishes cores the partitioner may power down from those
// holding LPD tasks, which must stay up.
type Type int

const (
	Shutdownable Type = iota
	NonShutdownable
)

func (t Type) String() string {
	if t == NonShutdownable {
		return "NON_SHUTDOWNABLE"
	}
	return "SHUTDOWNABLE"
}

// Status is a core's runtime power state.
type Status int

const (
	Active Status = iota
	Shutdown
)

func (s Status) String() string {
	if s == Shutdown {
		return "SHUTDOWN"
	}
	return "ACTIVE"
}

// CurrentJob is a tagged Idle | Running(*job.Job) variant standing in for
// the source's IDLE_TASK_NO = 0 sentinel.
type CurrentJob struct {
	j *job.Job
}

// Idle is the zero value of CurrentJob.
func Idle() CurrentJob { return CurrentJob{} }

// Running wraps j as the currently dispatched job.
func Running(j *job.Job) CurrentJob { return CurrentJob{j: j} }

// Job returns the dispatched job, if any.
func (c CurrentJob) Job() (*job.Job, bool) {
	if c.j == nil {
		return nil, false
	}
	return c.j, true
}

// WakeTime is a tagged Never | At(time) variant standing in for the
// source's convention of reading an untouched wakeup_time as irrelevant.
type WakeTime struct {
	never bool
	at    float64
}

// Never reports a core has no scheduled wakeup.
func Never() WakeTime { return WakeTime{never: true} }

// At schedules a wakeup at t.
func At(t float64) WakeTime { return WakeTime{at: t} }

// Time returns the scheduled wakeup instant, if any.
func (w WakeTime) Time() (float64, bool) {
	if w.never {
		return 0, false
	}
	return w.at, true
}

// Core is one partitioned processor.
type Core struct {
	// Static, set by the partitioner.
	CoreNo               int
	Utilization          float64
	RemainingCapacity    float64
	ThresholdCriticality int
	Type                 Type
	Tasks                []*task.Task // tasks statically allocated to this core

	// Runtime, mutated by the scheduler loop.
	Status             Status
	WakeTime           WakeTime
	OperatingFrequency float64
	CoreCriticality    int
	SlackAvailable     [task.MaxLevels]float64
	IdleTime           float64
	CurrExeJob         CurrentJob
	PreemptedJob       *job.Job
	RunQueue           *runqueue.Queue
}

// New returns a freshly allocated, ACTIVE core.
func New(coreNo int) *Core {
	return &Core{
		CoreNo:             coreNo,
		Type:               Shutdownable,
		Status:             Active,
		WakeTime:           Never(),
		OperatingFrequency: 1.0,
		CurrExeJob:         Idle(),
		RunQueue:           runqueue.New(),
	}
}

// AcceptAbove is the minimum job criticality this core currently admits,
// given the system's current criticality level (spec's
// accept_above_criticality_level).
func (c *Core) AcceptAbove(currentLevel int) int {
	return job.AcceptAbove(currentLevel, c.ThresholdCriticality)
}
