// Package slack implements dynamic procrastination: the maximum interval
// a core may stay shut down, or reserve ahead of a discarded job's
// deadline, without jeopardizing any future deadline at any criticality
// level from the current one up to the highest defined (spec §4.7).
//
// The original source's tail-to-head queue walk re-reads a node's `prev`
// pointer after deleting that same node - a textbook use-after-free
// (spec §9 open question). Rather than mutate a linked list while
// walking it, Compute snapshots the dummy queue into a slice first and
// folds over the snapshot in reverse; the snapshot is discarded when the
// call returns, so there is nothing left to dangle.
package slack

import (
	"github.com/akankshac-073/mcsim/internal/job"
	"github.com/akankshac-073/mcsim/internal/runqueue"
	"github.com/akankshac-073/mcsim/internal/task"
)

// Input bundles the per-call parameters Compute needs for one core.
type Input struct {
	RunQueue             *runqueue.Queue // the core's live run queue (read-only)
	OwnedTasks           []*task.Task
	ThresholdCriticality int
	CurrentSystemLevel   int // the real system current_level at analysis time
	MaxLevels            int
	LatestArrival        float64 // usually a discarded/anticipated job's deadline
	Now                  float64
	Hyperperiod          float64
	Granularity          float64
}

// Compute returns slack available at every criticality level in
// [input.CurrentSystemLevel, input.MaxLevels], keyed by level (1-based);
// entries below CurrentSystemLevel are left zero.
func Compute(in Input) [task.MaxLevels]float64 {
	var out [task.MaxLevels]float64
	for level := in.CurrentSystemLevel; level <= in.MaxLevels; level++ {
		out[level-1] = computeLevel(in, level)
	}
	return out
}

// ComputeLevel computes slack for a single criticality level, for
// callers (the discarded-job scheduler) that only need one level at a
// time.
func ComputeLevel(in Input, level int) float64 {
	return computeLevel(in, level)
}

// ComputeOptimal returns the slack available at level if every future
// arrival up to the hyperperiod is reserved for - a diagnostic upper
// bound the original source prints alongside the real figure but never
// acts on. Kept here as an informational value, not as an admission
// input; neither the scheduler loop nor internal/report calls it.
func ComputeOptimal(in Input, level int) float64 {
	accept := job.AcceptAbove(level, in.ThresholdCriticality)

	dummy := runqueue.New()
	for _, j := range in.RunQueue.All() {
		if j.JobCriticality >= accept {
			dummy.Insert(j)
		}
	}
	anticipate(dummy, in.OwnedTasks, accept, in.ThresholdCriticality, in.CurrentSystemLevel, in.Now, in.Hyperperiod, in.Granularity)

	return foldSlack(dummy.All(), in.LatestArrival, in.Hyperperiod, in.Now, level)
}

func computeLevel(in Input, level int) float64 {
	accept := job.AcceptAbove(level, in.ThresholdCriticality)

	dummy := runqueue.New()
	for _, j := range in.RunQueue.All() {
		if j.JobCriticality >= accept {
			dummy.Insert(j)
		}
	}

	anticipate(dummy, in.OwnedTasks, accept, in.ThresholdCriticality, in.CurrentSystemLevel, in.Now, in.LatestArrival, in.Granularity)

	maxDeadline, ok := dummy.TailDeadline()
	if !ok {
		maxDeadline = in.Hyperperiod
	}
	if maxDeadline > in.Hyperperiod {
		maxDeadline = in.Hyperperiod
	}

	seed := in.LatestArrival - in.Granularity
	anticipate(dummy, in.OwnedTasks, accept, in.ThresholdCriticality, in.CurrentSystemLevel, seed, maxDeadline, in.Granularity)

	return foldSlack(dummy.All(), in.LatestArrival, maxDeadline, in.Now, level)
}

// anticipate appends anticipated job releases, starting from
// get_next_job_arrival(seedTime), strictly before maxArrival, to dummy
// in EDF order - spec's add_anticipated_arrivals.
func anticipate(dummy *runqueue.Queue, tasks []*task.Task, accept, threshold, currentSystemLevel int, seedTime, maxArrival, granularity float64) {
	for _, t := range tasks {
		if t.Criticality < accept {
			continue
		}
		arrival := nextArrival(t, seedTime, granularity)
		for arrival < maxArrival {
			instance := int((arrival - t.Phase) / t.Period)
			j := job.New(t, instance, 0, arrival, threshold, currentSystemLevel)
			dummy.Insert(*j)
			arrival += t.Period
		}
	}
}

func nextArrival(t *task.Task, now, granularity float64) float64 {
	instance := 0
	if now+granularity-t.Phase > 0 {
		instance = ceilDiv(now+granularity-t.Phase, t.Period)
	}
	return t.Phase + float64(instance)*t.Period
}

func ceilDiv(a, b float64) int {
	q := a / b
	i := int(q)
	if float64(i) < q {
		i++
	}
	return i
}

// foldSlack walks the dummy-queue snapshot from tail to head, computing
// latest_start_time and window_time_consumed per spec §4.7 steps 5-6.
func foldSlack(jobs []job.Job, latestArrival, maxDeadline, now float64, level int) float64 {
	latestStart := maxDeadline
	windowConsumed := 0.0

	for i := len(jobs) - 1; i >= 0; i-- {
		j := jobs[i]
		switch {
		case j.SchedDeadline > maxDeadline:
			latestStart -= (maxDeadline - j.ArrivalTime) * j.WCETBudget[level-1] / (j.SchedDeadline - j.ArrivalTime)

		case j.SchedDeadline > latestArrival && j.SchedDeadline <= maxDeadline:
			if latestStart > j.SchedDeadline {
				latestStart = j.SchedDeadline
			}
			if j.ArrivalTime > now {
				latestStart -= j.WCETBudget[level-1]
			} else {
				latestStart -= j.ExecutionTime
			}

		case j.SchedDeadline <= latestArrival:
			if j.ArrivalTime > now {
				windowConsumed += j.WCETBudget[level-1]
			} else {
				windowConsumed += j.ExecutionTime
			}
		}
	}

	if latestStart >= latestArrival {
		return (latestArrival - now) - windowConsumed
	}
	return (latestStart - now) - windowConsumed
}
