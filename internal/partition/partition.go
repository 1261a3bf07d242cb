// Package partition implements the offline WFD/FFD hybrid bin-packing
// allocator (spec §4.3): tasks are sorted by criticality then own
// utilization, low-period tasks are packed first onto a minimum-sized
// pool of non-shutdownable cores, and the remaining tasks are packed
// afterward, each phase choosing worst-fit or first-fit bin selection
// according to how much of the phase's utilization sits at HI
// criticality.
package partition

import (
	"fmt"
	"math"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/edfvd"
	"github.com/akankshac-073/mcsim/internal/task"
)

// hiProportionSplit is the HI-criticality utilization proportion at or
// below which a phase uses WFD for HI tasks and FFD for LO tasks,
// instead of FFD alone for everything.
const hiProportionSplit = 0.40

// TasksetInfo summarizes a taskset's utilization split by criticality
// band and by low-period (LPD) membership, the input the partitioner
// uses to pick its bin-packing scheme for each phase.
type TasksetInfo struct {
	HiCritUtil    float64
	LoCritUtil    float64
	LPDHiCritUtil float64
	LPDLoCritUtil float64
}

// analyzeTaskset sums each task's own-criticality utilization into the
// HI or LO band (task.Criticality compared against hiThreshold) and,
// within that band, into the LPD subtotal when the task is low-period.
func analyzeTaskset(tasks []*task.Task, hiThreshold int, lpdThreshold float64) TasksetInfo {
	var info TasksetInfo
	for _, t := range tasks {
		own := t.OwnUtilization()
		if t.Criticality > hiThreshold {
			info.HiCritUtil += own
			if t.IsLPD(lpdThreshold) {
				info.LPDHiCritUtil += own
			}
		} else {
			info.LoCritUtil += own
			if t.IsLPD(lpdThreshold) {
				info.LPDLoCritUtil += own
			}
		}
	}
	return info
}

// Allocate partitions tasks across cores under the MC feasibility
// condition, opening cores as needed starting from minCores and
// failing once it would need more than maxCores. tasks is sorted
// in place by task.Sort as a side effect. On success it returns the
// cores actually opened, in core-number order.
func Allocate(tasks []*task.Task, minCores, maxCores, maxCriticality int, lpdThreshold float64) ([]*core.Core, error) {
	task.Sort(tasks)

	hiThreshold := maxCriticality/2 + maxCriticality%2
	info := analyzeTaskset(tasks, hiThreshold, lpdThreshold)

	cores := initializeCores(maxCores, maxCriticality)
	numCores := 0

	lpdTotal := info.LPDHiCritUtil + info.LPDLoCritUtil
	if lpdTotal > 0 {
		minLPDCores := int(math.Ceil(lpdTotal))
		wfdThreshold := maxCriticality
		if info.LPDHiCritUtil > 0 && info.LPDHiCritUtil/lpdTotal <= hiProportionSplit {
			wfdThreshold = hiThreshold
		}

		numCores = minLPDCores
		var err error
		numCores, err = allocatePass(tasks, cores, numCores, maxCores, maxCriticality, wfdThreshold, true,
			func(t *task.Task) bool { return t.IsLPD(lpdThreshold) })
		if err != nil {
			return nil, err
		}
	}

	wfdThreshold := maxCriticality
	remainingTotal := info.HiCritUtil + info.LoCritUtil
	if info.HiCritUtil > 0 && info.HiCritUtil/remainingTotal <= hiProportionSplit {
		wfdThreshold = hiThreshold
	}

	if numCores < minCores {
		numCores = minCores
	}

	numCores, err := allocatePass(tasks, cores, numCores, maxCores, maxCriticality, wfdThreshold, false,
		func(t *task.Task) bool { _, allocated := t.Allocation.CoreID(); return !allocated })
	if err != nil {
		return nil, err
	}

	return cores[:numCores], nil
}

// initializeCores pre-allocates maxCores Core values, each starting
// with full remaining capacity, SHUTDOWNABLE, and a threshold
// criticality one past the highest defined level (meaning: not yet
// constrained by any allocation).
func initializeCores(maxCores, maxCriticality int) []*core.Core {
	cores := make([]*core.Core, maxCores)
	for i := range cores {
		c := core.New(i + 1)
		c.RemainingCapacity = 1.0
		c.ThresholdCriticality = maxCriticality + 1
		cores[i] = c
	}
	return cores
}

// allocatePass walks tasks in sorted order, allocating every task for
// which filter returns true. When the task's criticality has dropped
// relative to the previous task in the full sorted order, it first
// resets every opened core's remaining capacity to account for the new
// (lower) criticality level, per the MC feasibility condition.
// markNonShutdownable marks newly- and already-fitting cores
// NON_SHUTDOWNABLE, which only the LPD phase does.
func allocatePass(tasks []*task.Task, cores []*core.Core, numCores, maxCores, maxCriticality, wfdThreshold int, markNonShutdownable bool, filter func(*task.Task) bool) (int, error) {
	for i, t := range tasks {
		if !filter(t) {
			continue
		}
		if i != 0 && tasks[i-1].Criticality > t.Criticality {
			resetCoreCapacities(cores[:numCores], tasks, t.Criticality, i)
		}

		var idx int
		if t.Criticality > wfdThreshold {
			idx = worstFitCoreIdx(cores[:numCores], t, maxCriticality)
		} else {
			idx = firstFitCoreIdx(cores[:numCores], t, maxCriticality)
		}

		if idx >= 0 && idx < numCores {
			allocateTaskToCore(cores[idx], t)
			if markNonShutdownable {
				cores[idx].Type = core.NonShutdownable
			}
			continue
		}

		numCores++
		if numCores > maxCores {
			return numCores, fmt.Errorf("partition: taskset needs more than %d cores", maxCores)
		}
		c := cores[numCores-1]
		c.RemainingCapacity = 1.0
		c.ThresholdCriticality = maxCriticality
		allocateTaskToCore(c, t)
		if markNonShutdownable {
			c.Type = core.NonShutdownable
		}
	}
	return numCores, nil
}

// resetCoreCapacities restores every opened core's remaining capacity
// to 1.0 and subtracts, for every task already allocated to that core
// among tasks[:idx], its utilization at the new criticality level -
// re-establishing the MC feasibility invariant as the allocator
// crosses from one criticality band to the next lower one.
func resetCoreCapacities(cores []*core.Core, tasks []*task.Task, criticality, idx int) {
	for _, c := range cores {
		c.RemainingCapacity = 1.0
		for k := 0; k < idx; k++ {
			if coreID, ok := tasks[k].Allocation.CoreID(); ok && coreID == c.CoreNo {
				c.RemainingCapacity -= tasks[k].Utilization(criticality)
			}
		}
	}
}

// worstFitCoreIdx returns the index, among cores, of the fitting core
// that would be left with the most remaining capacity after
// accommodating t - or -1 if none fits. A core whose utilization would
// cross 1.0 is only accepted if the EDF-VD check still admits the
// resulting bin at a threshold strictly below maxCriticality.
func worstFitCoreIdx(cores []*core.Core, t *task.Task, maxCriticality int) int {
	best := -1
	bestRemaining := -1.0
	util := t.OwnUtilization()

	for j, c := range cores {
		if c.RemainingCapacity < util || c.RemainingCapacity-util <= bestRemaining {
			continue
		}
		if util+c.Utilization > 1.0 {
			if fits, threshold := recheckEDFVD(c, t, maxCriticality); fits {
				c.ThresholdCriticality = threshold
				best = j
				bestRemaining = c.RemainingCapacity - util
			}
		} else {
			c.ThresholdCriticality = maxCriticality
			best = j
			bestRemaining = c.RemainingCapacity - util
		}
	}
	return best
}

// firstFitCoreIdx returns the index of the first core, among cores,
// able to accommodate t - either without crossing 1.0 utilization or,
// when it would cross, because the EDF-VD recheck still admits the
// bin - or -1 if none fits.
func firstFitCoreIdx(cores []*core.Core, t *task.Task, maxCriticality int) int {
	found := -1
	util := t.OwnUtilization()

	for j, c := range cores {
		if c.RemainingCapacity < util {
			continue
		}
		if util+c.Utilization > 1.0 {
			if fits, threshold := recheckEDFVD(c, t, maxCriticality); fits {
				c.ThresholdCriticality = threshold
				found = j
				break
			}
			continue
		}
		c.ThresholdCriticality = maxCriticality
		found = j
		break
	}
	return found
}

// recheckEDFVD re-runs EDF-VD admission over c's already-allocated
// tasks plus candidate t, reporting whether the bin stays admissible
// at a threshold strictly below maxCriticality (a threshold of
// maxCriticality means pure EDF already covers it, which the caller
// would not have needed to recheck for in the first place).
func recheckEDFVD(c *core.Core, t *task.Task, maxCriticality int) (bool, int) {
	candidate := make([]*task.Task, 0, len(c.Tasks)+1)
	candidate = append(candidate, c.Tasks...)
	candidate = append(candidate, t)

	res := edfvd.Admit(candidate, maxCriticality)
	if res.OK && res.Threshold > 0 && res.Threshold < maxCriticality {
		return true, res.Threshold
	}
	return false, 0
}

// allocateTaskToCore binds t to c: updates c's remaining capacity and
// total utilization, appends t to c's task list, and records the
// binding on t itself.
func allocateTaskToCore(c *core.Core, t *task.Task) {
	util := t.OwnUtilization()
	c.RemainingCapacity -= util
	c.Utilization += util
	c.Tasks = append(c.Tasks, t)
	t.Allocation = task.OnCore(c.CoreNo)
}
