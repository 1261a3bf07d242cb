// Package edfvd implements the EDF-VD admission check (spec §4.2): given
// a candidate union of tasks bound to one core, find a threshold
// criticality t and a virtual-deadline shortening factor x that makes the
// bin schedulable at every mode, or report infeasibility.
package edfvd

import (
	"math"

	"github.com/akankshac-073/mcsim/internal/task"
)

// Result carries the admission outcome for a candidate core.
type Result struct {
	Threshold int     // t in {1..L_max}; meaningless if !OK
	X         float64 // chosen virtual-deadline factor; 1.0 when OK && Threshold == L_max (pure EDF)
	OK        bool
}

// Admit runs the algorithm of spec §4.2 over tasks (the union of a core's
// already-allocated set and the candidate task under consideration) and,
// on success, writes VirtualDeadline into every task in the slice.
func Admit(tasks []*task.Task, maxLevels int) Result {
	if task.SumOwnUtilization(tasks, 1, maxLevels) <= 1 {
		for _, t := range tasks {
			t.VirtualDeadline = t.Deadline()
		}
		return Result{Threshold: maxLevels, X: 1.0, OK: true}
	}

	for t := maxLevels - 1; t >= 1; t-- {
		uOwnLow := task.SumOwnUtilization(tasks, 1, t)
		if !(uOwnLow < 1) {
			continue
		}

		uAtT := task.SumUtilization(tasks, t, t+1, maxLevels)
		xLB := uAtT / (1 - uOwnLow)

		uOwnHigh := task.SumOwnUtilization(tasks, t+1, maxLevels)
		var xUB float64
		if uOwnLow == 0 {
			// No LO-criticality tasks at or below t: nothing constrains x
			// from above. Degrade to the documented fallback of treating
			// the upper bound as unconstrained (§7 arithmetic edge cases).
			xUB = math.Inf(1)
		} else {
			xUB = (1 - uOwnHigh) / uOwnLow
		}

		if xLB <= xUB {
			x := (xLB + xUB) / 2
			if math.IsInf(x, 1) {
				// xUB was unconstrained; any x >= xLB is admissible, pick xLB.
				x = xLB
			}
			for _, tsk := range tasks {
				if tsk.Criticality > t {
					tsk.VirtualDeadline = x * tsk.Deadline()
				} else {
					tsk.VirtualDeadline = tsk.Deadline()
				}
			}
			return Result{Threshold: t, X: x, OK: true}
		}
	}

	return Result{OK: false}
}
