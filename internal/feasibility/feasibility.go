// Package feasibility computes the MCS minimum-core bound and the
// task set's hyperperiod (the "superhyperperiod" in the original source's
// terminology - the LCM across the entire task array, as opposed to any
// one core's local hyperperiod).
package feasibility

import (
	"math"

	"github.com/akankshac-073/mcsim/internal/task"
	"github.com/akankshac-073/mcsim/internal/xmath"
)

// MinCores returns the minimum number of cores required to satisfy the
// MCS feasibility condition: ceil(max_k sum_i utilization_i[k]).
func MinCores(tasks []*task.Task, maxLevels int) int {
	maxSum := 0.0
	for k := 1; k <= maxLevels; k++ {
		sum := task.SumUtilization(tasks, k, 1, maxLevels)
		if sum > maxSum {
			maxSum = sum
		}
	}
	return int(math.Ceil(maxSum))
}

// Hyperperiod returns the LCM of every task's period. Superhyperperiod is
// an alias kept for parity with driver.c's calculate_superhyperperiod,
// which computes the same quantity over the whole task array before
// partitioning.
func Hyperperiod(tasks []*task.Task) int64 {
	if len(tasks) == 0 {
		return 0
	}
	hp := int64(tasks[0].Period)
	for _, t := range tasks[1:] {
		hp = xmath.LCM(hp, int64(t.Period))
	}
	return hp
}

// Superhyperperiod is Hyperperiod under the original source's name.
func Superhyperperiod(tasks []*task.Task) int64 {
	return Hyperperiod(tasks)
}
