// Package decision computes, for one core, the next scheduling decision
// point: the soonest time at which something interesting happens (a job
// arrival, the running job's termination, a WCET-budget overrun at the
// current or a higher criticality, or a core wakeup) and which of those
// event kinds apply (spec §4.5). Ties between event kinds at the same
// instant are merged into one bitmask, matching invariant "identical
// decision times are merged into a single event mask" (spec §5).
package decision

import (
	"math"

	"github.com/akankshac-073/mcsim/internal/task"
)

// EventMask is a bitfield of decision-point event kinds.
type EventMask uint8

const (
	JobArrival EventMask = 1 << iota
	JobTermination
	JobWCETExceeded
	JobOverrun
	WakeupCore
)

func (m EventMask) Has(e EventMask) bool { return m&e != 0 }

// Point is a core's next decision: when, and why.
type Point struct {
	Time float64
	Mask EventMask
}

// RunningJob describes the job (if any) currently dispatched on a core,
// as decision.Compute needs to see it.
type RunningJob struct {
	Present        bool
	ExecutionTime  float64
	WCETBudget     [task.MaxLevels]float64
	JobCriticality int
}

// CoreState is the minimal view of a core that Compute needs.
type CoreState struct {
	Active     bool // true: ACTIVE, false: SHUTDOWN
	Running    RunningJob
	WakeupTime float64
}

// NextArrival returns the next release instant of t at or after now +
// granularity (spec's get_next_job_arrival).
func NextArrival(t *task.Task, now, granularity float64) float64 {
	var instance int
	if now+granularity-t.Phase > 0 {
		instance = int(math.Ceil((now + granularity - t.Phase) / t.Period))
	}
	return t.Phase + float64(instance)*t.Period
}

// Compute determines the next decision point for one core.
//
// owned is the set of tasks allocated to this core; currentLevel is the
// system-wide criticality level; hyperperiod bounds the result when no
// event exists before the schedule horizon.
func Compute(owned []*task.Task, cs CoreState, currentLevel int, now, granularity, hyperperiod float64) Point {
	minArrival := hyperperiod
	for _, t := range owned {
		if a := NextArrival(t, now, granularity); a < minArrival {
			minArrival = a
		}
	}
	pt := Point{Time: minArrival, Mask: JobArrival}

	if cs.Active {
		if cs.Running.Present {
			budget := cs.Running.WCETBudget[currentLevel-1]
			if cs.Running.ExecutionTime <= budget {
				termination := now + cs.Running.ExecutionTime
				switch {
				case pt.Time > termination:
					pt = Point{Time: termination, Mask: JobTermination}
				case pt.Time == termination:
					pt.Mask |= JobTermination
				}
			} else {
				changeAt := now + budget
				event := JobOverrun
				if cs.Running.JobCriticality > currentLevel {
					event = JobWCETExceeded
				}
				switch {
				case pt.Time > changeAt:
					pt = Point{Time: changeAt, Mask: event}
				case pt.Time == changeAt:
					pt.Mask |= event
				}
			}
		}
	} else {
		switch {
		case pt.Time > cs.WakeupTime:
			pt = Point{Time: cs.WakeupTime, Mask: WakeupCore}
		case pt.Time == cs.WakeupTime:
			pt.Mask |= WakeupCore
		}
	}

	return pt
}
