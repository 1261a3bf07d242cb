package sched

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/execgen"
	"github.com/akankshac-073/mcsim/internal/job"
	"github.com/akankshac-073/mcsim/internal/report"
	"github.com/akankshac-073/mcsim/internal/task"
)

// TestRunSingleEDFTaskNeverEscalates is spec §8 scenario 1: one
// schedulable LO task on one core, drawing exactly its budget every
// release, never crosses its WCET budget, so the system stays at
// level 1 for the whole run.
func TestRunSingleEDFTaskNeverEscalates(t *testing.T) {
	tsk := task.New(1, 0, 10, 10, 1, []float64{3}, 1)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{tsk}

	s := New([]*core.Core{c}, []*task.Task{tsk}, 1, 30, 0.01, 10, execgen.New(1, 1.0), nil)
	s.Run()

	assert.Equal(t, 1, s.CurrentLevel)
	assert.GreaterOrEqual(t, s.TimeCount, s.Hyperperiod)
}

// TestRunTwoLevelPureEDFBothTasksServed is spec §8 scenario 2: two
// LO-criticality tasks whose combined utilization fits one core under
// pure EDF; both keep being released and served at their own WCET
// budget, so the system never escalates.
func TestRunTwoLevelPureEDFBothTasksServed(t *testing.T) {
	t1 := task.New(1, 0, 10, 10, 1, []float64{2}, 2)
	t2 := task.New(2, 0, 5, 5, 1, []float64{1}, 2)
	c := core.New(1)
	c.ThresholdCriticality = 2
	c.Tasks = []*task.Task{t1, t2}

	s := New([]*core.Core{c}, []*task.Task{t1, t2}, 2, 20, 0.01, 10, execgen.New(2, 1.0), nil)
	var trace bytes.Buffer
	s.Report = report.New(&trace)
	s.Run()

	assert.Equal(t, 1, s.CurrentLevel)
	assert.Contains(t, trace.String(), "Task 1 Job 0")
	assert.Contains(t, trace.String(), "Task 2 Job 0")
}

// TestRunEscalatesWhenHITaskExceedsLOBudget is spec §8 scenario 4: a
// HI-criticality task whose actual execution routinely exceeds its
// level-1 WCET budget forces the system from level 1 to level 2.
func TestRunEscalatesWhenHITaskExceedsLOBudget(t *testing.T) {
	tsk := task.New(1, 0, 20, 20, 2, []float64{2, 8}, 2)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{tsk}

	// floor 0.9 of the job's own (level-2) budget of 8 draws at least
	// 7.2, comfortably past the level-1 decision budget of 2.
	s := New([]*core.Core{c}, []*task.Task{tsk}, 2, 20, 0.01, 10, execgen.New(3, 0.9), nil)
	s.Run()

	assert.Equal(t, 2, s.CurrentLevel)
}

// TestEvaluateShutdownPowersDownCoreWithDistantArrival is spec §8
// scenario 5: a core whose only owned task's next release lies far
// beyond the shutdown threshold is powered down immediately, woken at
// that release.
func TestEvaluateShutdownPowersDownCoreWithDistantArrival(t *testing.T) {
	tsk := task.New(1, 0, 100, 100, 1, []float64{3}, 1)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{tsk}

	s := New([]*core.Core{c}, []*task.Task{tsk}, 1, 30, 0.01, 10, execgen.New(4, 1.0), nil)
	s.TimeCount = s.computePoints(-s.Granularity)
	s.evaluateShutdown()

	assert.Equal(t, core.Shutdown, c.Status)
	wake, ok := c.WakeTime.Time()
	require.True(t, ok)
	assert.Equal(t, 100.0, wake)
}

// TestScheduleDiscardedReadmitsJobWithAmpleSlack is spec §8 scenario
// 6: a job discarded because the system escalated past its own
// criticality is opportunistically re-admitted once slack analysis
// shows the core can absorb it without risking a future deadline.
func TestScheduleDiscardedReadmitsJobWithAmpleSlack(t *testing.T) {
	tsk := task.New(1, 0, 10, 10, 1, []float64{3}, 2)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{tsk}

	s := New([]*core.Core{c}, []*task.Task{tsk}, 2, 100, 0.01, 10, execgen.New(5, 1.0), nil)
	s.CurrentLevel = 2
	s.TimeCount = s.computePoints(-s.Granularity)
	require.Equal(t, 0.0, s.TimeCount)

	s.arrivals()
	require.Equal(t, 1, s.Discarded.Queue(1).Len())
	require.Equal(t, 0, c.RunQueue.Len())

	s.scheduleDiscarded()
	assert.Equal(t, 0, s.Discarded.Queue(1).Len())
	assert.Equal(t, 1, c.RunQueue.Len())
}

// TestDispatchPicksSmallestSchedDeadline is P3: among several queued
// jobs, dispatch always pops the one with the earliest deadline.
func TestDispatchPicksSmallestSchedDeadline(t *testing.T) {
	t1 := task.New(1, 0, 10, 10, 1, []float64{2}, 1)
	t2 := task.New(2, 0, 10, 10, 1, []float64{2}, 1)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{t1, t2}

	s := New([]*core.Core{c}, []*task.Task{t1, t2}, 1, 50, 0.01, 10, execgen.New(6, 1.0), nil)

	far := job.New(t1, 0, 1, 0, 1, 1)
	far.SchedDeadline = 9
	near := job.New(t2, 0, 1, 0, 1, 1)
	near.SchedDeadline = 4
	c.RunQueue.Insert(*far)
	c.RunQueue.Insert(*near)

	s.dispatch()
	dispatched, ok := c.CurrExeJob.Job()
	require.True(t, ok)
	assert.Equal(t, 2, dispatched.ID.TaskNo)
}

// TestEscalateIsMonotonic is P4: CurrentLevel never decreases once the
// run has started.
func TestEscalateIsMonotonic(t *testing.T) {
	tsk := task.New(1, 0, 20, 20, 2, []float64{2, 8}, 2)
	c := core.New(1)
	c.ThresholdCriticality = 1
	c.Tasks = []*task.Task{tsk}

	s := New([]*core.Core{c}, []*task.Task{tsk}, 2, 20, 0.01, 10, execgen.New(7, 0.9), nil)

	last := s.CurrentLevel
	s.TimeCount = s.computePoints(-s.Granularity)
	for s.TimeCount < s.Hyperperiod {
		s.preempt()
		s.arrivals()
		s.evaluateShutdown()
		if s.CurrentLevel > 1 {
			s.scheduleDiscarded()
		}
		s.escalate()
		require.GreaterOrEqual(t, s.CurrentLevel, last)
		last = s.CurrentLevel
		s.wakeCores()
		s.dispatch()
		s.advance()
	}
}
