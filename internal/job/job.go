// Package job instantiates and models individual job releases of a task:
// per-release WCET budgets, arrival/scheduling deadlines, and remaining
// execution time.
package job

import "github.com/akankshac-073/mcsim/internal/task"

// Status is a job's queue residency state.
type Status int

const (
	Ready Status = iota
	Preempted
)

func (s Status) String() string {
	if s == Preempted {
		return "PREEMPTED"
	}
	return "READY"
}

// ID identifies a job release by its owning task and instance number.
type ID struct {
	TaskNo int
	JobNo  int
}

// Job is one release instance of a Task.
type Job struct {
	ID             ID
	AllocatedCore  int
	ArrivalTime    float64
	SchedDeadline  float64
	ExecutionTime  float64 // remaining actual execution time
	WCETBudget     [task.MaxLevels]float64
	JobCriticality int
	Status         Status
}

// New creates the job release of t at arrivalTime (spec §4.6 step 2 /
// §3 Job). coreThreshold is the allocating core's threshold criticality;
// currentLevel is the system criticality level at the moment of release,
// which determines whether the scheduling deadline is virtual or actual
// (invariant I1).
func New(t *task.Task, jobNo int, coreNo int, arrivalTime float64, coreThreshold, currentLevel int) *Job {
	j := &Job{
		ID:             ID{TaskNo: t.TaskNo, JobNo: jobNo},
		AllocatedCore:  coreNo,
		ArrivalTime:    arrivalTime,
		ExecutionTime:  0,
		JobCriticality: t.Criticality,
		Status:         Ready,
	}
	for i := 0; i < task.MaxLevels; i++ {
		if i < t.Criticality {
			j.WCETBudget[i] = t.WCET[i]
		} else {
			j.WCETBudget[i] = t.WCET[t.Criticality-1]
		}
	}
	if currentLevel <= coreThreshold {
		j.SchedDeadline = arrivalTime + t.VirtualDeadline
	} else {
		j.SchedDeadline = arrivalTime + t.Deadline()
	}
	return j
}

// Clone returns a shallow copy, used when preempting a running job back
// into its run queue (spec §4.6 step 1).
func (j *Job) Clone() *Job {
	c := *j
	return &c
}

// AcceptAbove implements spec's accept_above(L, t): the minimum job
// criticality accepted onto a core whose threshold is t when the system
// is at level L.
func AcceptAbove(level, threshold int) int {
	if level <= threshold {
		return level
	}
	return threshold + 1
}
