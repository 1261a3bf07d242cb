package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/task"
)

func TestSortedTasksListsEachTask(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	tasks := []*task.Task{task.New(1, 0, 10, 10, 2, []float64{2, 4}, 2)}
	r.SortedTasks(tasks)
	out := buf.String()
	assert.Contains(t, out, "Task 1")
	assert.Contains(t, out, "Criticality: 2")
}

func TestAllocationsListsCoreSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	c := core.New(1)
	c.Utilization = 0.5
	c.RemainingCapacity = 0.5
	c.ThresholdCriticality = 2
	tsk := task.New(1, 0, 10, 10, 1, []float64{2}, 2)
	c.Tasks = []*task.Task{tsk}

	r.Allocations([]*core.Core{c})
	out := buf.String()
	assert.Contains(t, out, "Core 1: 1 tasks allocated")
	assert.Contains(t, out, "Task ids: 1")
}

func TestScheduleFormatsIdleAndDispatchedEntries(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Schedule(0, 1, []ScheduleEntry{
		{CoreNo: 1, Idle: true},
		{CoreNo: 2, TaskNo: 3, JobNo: 0},
	})
	out := buf.String()
	assert.Contains(t, out, "Time: 0.0000 to 1.0000")
	assert.Contains(t, out, "IDLE task")
	assert.Contains(t, out, "Task 3 Job 0")
}

func TestSuperhyperperiod(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Superhyperperiod(100)
	assert.Contains(t, buf.String(), "Superhyperperiod: 100.00")
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Failure("taskset infeasible")
	assert.Contains(t, buf.String(), "error: taskset infeasible")
}
