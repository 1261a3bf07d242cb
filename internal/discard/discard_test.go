package discard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/job"
)

func mkDiscarded(taskNo int, deadline float64, criticality int, wcet0, wcet1 float64) job.Job {
	j := job.Job{
		ID:             job.ID{TaskNo: taskNo, JobNo: 0},
		SchedDeadline:  deadline,
		JobCriticality: criticality,
	}
	j.WCETBudget[0] = wcet0
	j.WCETBudget[1] = wcet1
	return j
}

func TestDiscardFilesByJobCriticality(t *testing.T) {
	tbl := NewTable(3)
	tbl.Discard(mkDiscarded(1, 10, 1, 2, 2))
	tbl.Discard(mkDiscarded(2, 10, 2, 3, 3))

	assert.Equal(t, 1, tbl.Queue(1).Len())
	assert.Equal(t, 1, tbl.Queue(2).Len())
}

func TestPurgeExpiredDropsJobsThatCannotCompleteAtNewLevel(t *testing.T) {
	tbl := NewTable(3)
	// deadline 10, wcet_budget[currentLevel-1]=8 -> 10-8=2 >= now(0), survives.
	tbl.Discard(mkDiscarded(1, 10, 1, 2, 8))
	// deadline 10, wcet_budget[currentLevel-1]=12 -> 10-12=-2 < now(0), purged.
	tbl.Discard(mkDiscarded(2, 10, 1, 2, 12))

	tbl.PurgeExpired(2, 0)

	jobs := tbl.Queue(1).All()
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].ID.TaskNo)
}

func TestScheduleAdmitsDiscardedJobWhenSlackHolds(t *testing.T) {
	tbl := NewTable(2)
	tbl.Discard(mkDiscarded(1, 50, 1, 2, 3))

	c := core.New(0)
	c.ThresholdCriticality = 1

	tbl.Schedule(c, 2, 2, 100, 0, 0.01)

	assert.Equal(t, 0, tbl.Queue(1).Len())
	assert.Equal(t, 1, c.RunQueue.Len())
}

func TestScheduleDropsDiscardedJobWhenNoSlack(t *testing.T) {
	tbl := NewTable(2)
	// own-level budget (wcet0) dwarfs the slack the near window can ever
	// offer, so admit must reject it regardless of the actual figure;
	// the small currentLevel budget (wcet1) keeps it past PurgeExpired.
	tbl.Discard(mkDiscarded(1, 1.0, 1, 1000, 0.001))

	c := core.New(0)
	c.ThresholdCriticality = 1

	tbl.Schedule(c, 2, 2, 100, 0, 0.01)

	assert.Equal(t, 0, tbl.Queue(1).Len())
	assert.Equal(t, 0, c.RunQueue.Len())
}
