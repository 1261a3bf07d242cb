package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akankshac-073/mcsim/internal/task"
)

func TestNextArrivalFirstRelease(t *testing.T) {
	tsk := task.New(1, 0, 10, 10, 1, []float64{3}, 5)
	assert.Equal(t, 0.0, NextArrival(tsk, -0.01, 0.01))
}

func TestNextArrivalSubsequentRelease(t *testing.T) {
	tsk := task.New(1, 0, 10, 10, 1, []float64{3}, 5)
	assert.Equal(t, 10.0, NextArrival(tsk, 0.01, 0.01))
	assert.Equal(t, 20.0, NextArrival(tsk, 15, 0.01))
}

func TestComputeNoRunningJobYieldsArrival(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 10, 10, 1, []float64{3}, 5)}
	pt := Compute(owned, CoreState{Active: true}, 1, -0.01, 0.01, 100)
	assert.Equal(t, 0.0, pt.Time)
	assert.True(t, pt.Mask.Has(JobArrival))
}

func TestComputeTerminationBeforeArrival(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 10, 10, 1, []float64{3}, 5)}
	running := RunningJob{Present: true, ExecutionTime: 2, JobCriticality: 1}
	running.WCETBudget[0] = 3
	pt := Compute(owned, CoreState{Active: true, Running: running}, 1, 0, 0.01, 100)
	assert.Equal(t, 2.0, pt.Time)
	assert.True(t, pt.Mask.Has(JobTermination))
	assert.False(t, pt.Mask.Has(JobArrival))
}

func TestComputeMergesCoincidentEvents(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 5, 5, 1, []float64{3}, 5)}
	running := RunningJob{Present: true, ExecutionTime: 5, JobCriticality: 1}
	running.WCETBudget[0] = 10
	// Next arrival at t=5; job terminates at now(0)+5=5 too.
	pt := Compute(owned, CoreState{Active: true, Running: running}, 1, 0, 0.01, 100)
	assert.Equal(t, 5.0, pt.Time)
	assert.True(t, pt.Mask.Has(JobArrival))
	assert.True(t, pt.Mask.Has(JobTermination))
}

func TestComputeWCETExceededAboveCurrentLevel(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 100, 100, 2, []float64{3, 5}, 5)}
	running := RunningJob{Present: true, ExecutionTime: 10, JobCriticality: 2}
	running.WCETBudget[0] = 3 // level-1 budget smaller than remaining execution
	pt := Compute(owned, CoreState{Active: true, Running: running}, 1, 0, 0.01, 1000)
	assert.Equal(t, 3.0, pt.Time)
	assert.True(t, pt.Mask.Has(JobWCETExceeded))
}

func TestComputeOverrunAtOwnCriticality(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 100, 100, 1, []float64{3}, 5)}
	running := RunningJob{Present: true, ExecutionTime: 10, JobCriticality: 1}
	running.WCETBudget[0] = 3
	pt := Compute(owned, CoreState{Active: true, Running: running}, 1, 0, 0.01, 1000)
	assert.Equal(t, 3.0, pt.Time)
	assert.True(t, pt.Mask.Has(JobOverrun))
}

func TestComputeShutdownCoreYieldsWakeup(t *testing.T) {
	owned := []*task.Task{task.New(1, 0, 10, 10, 1, []float64{3}, 5)}
	pt := Compute(owned, CoreState{Active: false, WakeupTime: 5}, 1, 0, 0.01, 100)
	assert.Equal(t, 5.0, pt.Time)
	assert.True(t, pt.Mask.Has(WakeupCore))
}
