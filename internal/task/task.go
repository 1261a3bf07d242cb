// Package task holds the periodic-task model: immutable-after-admission
// task records, per-level utilization derivation, the sort order EDF-VD
// admission depends on, and the low-period (LPD) classification the
// partitioner uses to decide packing order.
package task

import (
	"sort"
	"strconv"
)

// MaxLevels bounds the per-task WCET/utilization arrays. Spec default is
// 5 (MAX_LEVELS); callers that need a different ceiling pass it explicitly
// to the functions below rather than changing this constant, since the
// inline array is sized once at compile time per the fixed-capacity
// re-architecture note.
const MaxLevels = 5

// unassignedCore is the sentinel backing Allocation's zero-ish value; it
// never escapes the package's public API.
const unassignedCore = -1

// Allocation is a tagged Unassigned | OnCore(id) variant standing in for
// the source's NOT_ALLOCATED = -73 sentinel.
type Allocation struct {
	core int
}

// Unassigned is the zero value of Allocation.
func Unassigned() Allocation { return Allocation{core: unassignedCore} }

// OnCore returns an Allocation bound to the given core index.
func OnCore(id int) Allocation { return Allocation{core: id} }

// CoreID reports the bound core index, if any.
func (a Allocation) CoreID() (int, bool) {
	if a.core == unassignedCore {
		return 0, false
	}
	return a.core, true
}

func (a Allocation) String() string {
	if id, ok := a.CoreID(); ok {
		return "core " + strconv.Itoa(id)
	}
	return "unassigned"
}

// Task is a periodic task record. WCET and Utilization are indexed by
// level - 1 (level 1 is lowest criticality) up to Criticality - 1;
// beyond that the utilization/WCET value is held fixed at the task's own
// criticality level, per spec's utilization derivation.
type Task struct {
	TaskNo      int
	Phase       float64
	Period      float64 // release interval; utilization's denominator
	RelDeadline float64 // relative deadline, independent of period
	Criticality int
	WCET        [MaxLevels]float64

	utilization [MaxLevels]float64

	Allocation      Allocation
	VirtualDeadline float64
}

// New constructs a Task and derives its per-level utilization array.
// wcet must have exactly criticality entries, level 1 first.
func New(taskNo int, phase, period, deadline float64, criticality int, wcet []float64, maxLevels int) *Task {
	t := &Task{
		TaskNo:          taskNo,
		Phase:           phase,
		Period:          period,
		RelDeadline:     deadline,
		Criticality:     criticality,
		Allocation:      Unassigned(),
		VirtualDeadline: deadline,
	}
	for i := 0; i < criticality && i < MaxLevels; i++ {
		t.WCET[i] = wcet[i]
	}
	t.deriveUtilization(maxLevels)
	return t
}

// deriveUtilization fills Utilization[0:maxLevels): wcet[k]/period for
// k < criticality, and wcet[criticality-1]/period beyond that.
func (t *Task) deriveUtilization(maxLevels int) {
	for k := 0; k < maxLevels && k < MaxLevels; k++ {
		if k < t.Criticality {
			t.utilization[k] = t.WCET[k] / t.Period
		} else {
			t.utilization[k] = t.WCET[t.Criticality-1] / t.Period
		}
	}
}

// Utilization returns the task's utilization at 1-based level k.
func (t *Task) Utilization(k int) float64 {
	if k < 1 || k > MaxLevels {
		return 0
	}
	return t.utilization[k-1]
}

// WCETAt returns the task's WCET at 1-based level, held fixed at the
// task's own-criticality WCET beyond that level.
func (t *Task) WCETAt(level int) float64 {
	if level <= t.Criticality {
		return t.WCET[level-1]
	}
	return t.WCET[t.Criticality-1]
}

// OwnUtilization returns the task's utilization at its own criticality.
func (t *Task) OwnUtilization() float64 {
	return t.Utilization(t.Criticality)
}

// Deadline returns the task's relative deadline.
func (t *Task) Deadline() float64 {
	return t.RelDeadline
}

// IsLPD classifies a task as Low-Period: 2*(period - wcet[0]) < threshold.
func (t *Task) IsLPD(threshold float64) bool {
	return 2*(t.Period-t.WCET[0]) < threshold
}

// Sort orders tasks by (criticality descending, own-utilization
// descending), the order EDF-VD admission and the partitioner both
// require. The original C source achieves this with an in-place
// quicksort (tasks.c); sort.SliceStable is the idiomatic Go rendition
// of the same two-key ordering and keeps tasks with equal keys in
// their input order, so the partitioner's iteration is deterministic.
func Sort(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Criticality != b.Criticality {
			return a.Criticality > b.Criticality
		}
		return a.OwnUtilization() > b.OwnUtilization()
	})
}

// SumUtilization sums utilization[k] (1-based) over tasks whose
// criticality lies in [lo, hi].
func SumUtilization(tasks []*Task, k, lo, hi int) float64 {
	var sum float64
	for _, t := range tasks {
		if t.Criticality >= lo && t.Criticality <= hi {
			sum += t.Utilization(k)
		}
	}
	return sum
}

// SumOwnUtilization sums each task's own-criticality utilization over
// tasks whose criticality lies in [lo, hi]. This is U_own(lo..hi) in the
// EDF-VD admission algorithm.
func SumOwnUtilization(tasks []*Task, lo, hi int) float64 {
	var sum float64
	for _, t := range tasks {
		if t.Criticality >= lo && t.Criticality <= hi {
			sum += t.OwnUtilization()
		}
	}
	return sum
}
