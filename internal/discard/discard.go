// Package discard implements the discarded-job opportunistic scheduler
// (spec §4.8): jobs dropped when the system escalated past their own
// criticality are retained per-level and, while the system is still
// running above level 1, re-admitted into a core's run queue whenever
// every criticality level from current up to the highest has enough
// slack to absorb them without risking a future deadline.
package discard

import (
	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/job"
	"github.com/akankshac-073/mcsim/internal/runqueue"
	"github.com/akankshac-073/mcsim/internal/slack"
	"github.com/akankshac-073/mcsim/internal/task"
)

// Table holds the global, per-criticality-level discarded-job queues:
// level k in [1, maxLevels-1] holds jobs whose job_criticality = k,
// discarded when the system climbed above k (invariant I4).
type Table struct {
	queues    []*runqueue.Queue // index level-1, for level in [1, maxLevels-1]
	maxLevels int
}

// NewTable allocates the per-level discarded queues.
func NewTable(maxLevels int) *Table {
	t := &Table{queues: make([]*runqueue.Queue, maxLevels-1), maxLevels: maxLevels}
	for i := range t.queues {
		t.queues[i] = runqueue.New()
	}
	return t
}

// Queue returns the discarded queue for the given criticality level.
func (t *Table) Queue(level int) *runqueue.Queue {
	return t.queues[level-1]
}

// Discard files j into its criticality level's queue.
func (t *Table) Discard(j job.Job) {
	t.Queue(j.JobCriticality).Insert(j)
}

// PurgeExpired removes, from every discarded queue below currentLevel,
// jobs that can no longer complete: sched_deadline - wcet_budget[current
// level] < now (spec §4.8 step 1; §7 "deadline miss in discarded queue:
// silently dropped").
func (t *Table) PurgeExpired(currentLevel int, now float64) {
	for level := 1; level < currentLevel; level++ {
		q := t.Queue(level)
		for _, j := range q.All() {
			if j.SchedDeadline-j.WCETBudget[currentLevel-1] < now {
				q.Delete(j.ID)
			}
		}
	}
}

// Schedule runs the opportunistic admission pass for one core: starting
// from the highest-criticality non-empty discarded queue below
// currentLevel, pop the earliest-deadline job and admit it into c's run
// queue if slack holds at every level from currentLevel up to
// maxLevels; otherwise the job is dropped. It then continues through
// that queue, and falls back to progressively lower-criticality queues
// once a queue empties.
//
// The original source indexes task_ptr by the discarded-queue level
// index when anticipating competing higher-criticality arrivals instead
// of by the task index (spec §9 open question); this implementation
// uses the task directly, which is what the spec requires.
func (t *Table) Schedule(c *core.Core, currentLevel, maxLevels int, hyperperiod, now, granularity float64) {
	t.PurgeExpired(currentLevel, now)

	level := currentLevel - 1
	for level >= 1 {
		q := t.Queue(level)
		if q.Len() == 0 {
			level--
			continue
		}

		for q.Len() > 0 {
			discarded, ok := q.PopHead()
			if !ok {
				break
			}
			if admit(c, discarded, level, currentLevel, maxLevels, hyperperiod, now, granularity) {
				discarded.AllocatedCore = c.CoreNo
				c.RunQueue.Insert(discarded)
			}
		}
		level--
	}
}

func admit(c *core.Core, discarded job.Job, discardedLevel, currentLevel, maxLevels int, hyperperiod, now, granularity float64) bool {
	for level := currentLevel; level <= maxLevels; level++ {
		in := slack.Input{
			RunQueue:             c.RunQueue,
			OwnedTasks:           c.Tasks,
			ThresholdCriticality: c.ThresholdCriticality,
			CurrentSystemLevel:   currentLevel,
			MaxLevels:            maxLevels,
			LatestArrival:        discarded.SchedDeadline,
			Now:                  now,
			Hyperperiod:          hyperperiod,
			Granularity:          granularity,
		}
		slackAvail := slack.ComputeLevel(in, level)
		slackAvail -= competingDemand(c.Tasks, discardedLevel, currentLevel, level, expectedCompletion(c, discarded, level, now), now, granularity)

		if slackAvail < discarded.WCETBudget[discarded.JobCriticality-1] {
			return false
		}
	}
	return true
}

// expectedCompletion sums wcet_budget[level-1] over the core's queued
// jobs whose deadline does not exceed the discarded job's, starting
// from now (spec §4.8 step 2, second bullet).
func expectedCompletion(c *core.Core, discarded job.Job, level int, now float64) float64 {
	completion := now
	for _, j := range c.RunQueue.All() {
		if j.SchedDeadline > discarded.SchedDeadline {
			break
		}
		completion += j.WCETBudget[level-1]
	}
	return completion
}

// competingDemand subtracts the WCET, at level, of every task owned by
// the core whose criticality lies strictly between discardedLevel and
// currentLevel and whose next release precedes expectedCompletion - jobs
// that would contend for the same window before the candidate discarded
// job could finish.
func competingDemand(owned []*task.Task, discardedLevel, currentLevel, level int, expectedCompletion, now, granularity float64) float64 {
	var demand float64
	for _, t := range owned {
		if t.Criticality <= discardedLevel || t.Criticality >= currentLevel {
			continue
		}
		if nextArrival(t, now, granularity) < expectedCompletion {
			demand += t.WCETAt(level)
		}
	}
	return demand
}

func nextArrival(t *task.Task, now, granularity float64) float64 {
	instance := 0
	if now+granularity-t.Phase > 0 {
		q := (now + granularity - t.Phase) / t.Period
		instance = int(q)
		if float64(instance) < q {
			instance++
		}
	}
	return t.Phase + float64(instance)*t.Period
}
