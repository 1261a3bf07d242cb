// Package sched orchestrates the discrete-event runtime loop (spec
// §4.6): one iteration per advancement to the next global decision
// point, running preemption, arrivals, shutdown evaluation, the
// discarded-job opportunistic scheduler, criticality escalation, core
// wakeup, dispatch and advance, in that fixed order, until the clock
// reaches the hyperperiod.
package sched

import (
	"math"
	"strconv"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/decision"
	"github.com/akankshac-073/mcsim/internal/discard"
	"github.com/akankshac-073/mcsim/internal/dvfs"
	"github.com/akankshac-073/mcsim/internal/execgen"
	"github.com/akankshac-073/mcsim/internal/job"
	"github.com/akankshac-073/mcsim/internal/metrics"
	"github.com/akankshac-073/mcsim/internal/report"
	"github.com/akankshac-073/mcsim/internal/runqueue"
	"github.com/akankshac-073/mcsim/internal/slack"
	"github.com/akankshac-073/mcsim/internal/task"
)

const arrivalEpsilon = 1e-6

// Scheduler owns the system-wide criticality level and every piece of
// mutable runtime state the loop touches: per-core state lives in
// Cores, global discarded-job queues in Discarded, and cross-core
// arrivals destined for a SHUTDOWN core in Pending.
type Scheduler struct {
	Cores     []*core.Core
	Tasks     []*task.Task
	tasksByNo map[int]*task.Task

	CurrentLevel      int
	MaxLevels         int
	Hyperperiod       float64
	Granularity       float64
	ShutdownThreshold float64

	Discarded *discard.Table
	Pending   []job.Job

	TimeCount float64
	points    []decision.Point

	Exec     *execgen.Generator
	DVFS     *dvfs.Controller
	Report   *report.Writer     // nil-safe: Run skips trace output if nil
	Metrics  *metrics.Collector // nil-safe: Run skips metric updates if nil
}

// New builds a Scheduler over an already-partitioned set of cores and
// the full task table. exec and dv may be nil.
func New(cores []*core.Core, tasks []*task.Task, maxLevels int, hyperperiod, granularity, shutdownThreshold float64, exec *execgen.Generator, dv *dvfs.Controller) *Scheduler {
	byNo := make(map[int]*task.Task, len(tasks))
	for _, t := range tasks {
		byNo[t.TaskNo] = t
	}
	return &Scheduler{
		Cores:             cores,
		Tasks:             tasks,
		tasksByNo:         byNo,
		CurrentLevel:      1,
		MaxLevels:         maxLevels,
		Hyperperiod:       hyperperiod,
		Granularity:       granularity,
		ShutdownThreshold: shutdownThreshold,
		Discarded:         discard.NewTable(maxLevels),
		Exec:              exec,
		DVFS:              dv,
	}
}

// Run drives the scheduler loop from its initial decision point to
// the hyperperiod.
func (s *Scheduler) Run() {
	s.TimeCount = s.computePoints(-s.Granularity)

	for s.TimeCount < s.Hyperperiod {
		s.preempt()
		s.arrivals()
		s.evaluateShutdown()
		if s.CurrentLevel > 1 {
			s.scheduleDiscarded()
		}
		s.escalate()
		s.wakeCores()
		s.dispatch()
		s.advance()
	}
}

// computePoints recomputes the per-core decision points as of now and
// returns the minimum across all cores, clamped to the hyperperiod.
func (s *Scheduler) computePoints(now float64) float64 {
	points := make([]decision.Point, len(s.Cores))
	next := s.Hyperperiod

	for i, c := range s.Cores {
		cs := decision.CoreState{Active: c.Status == core.Active, WakeupTime: math.Inf(1)}
		if j, ok := c.CurrExeJob.Job(); ok {
			cs.Running = decision.RunningJob{Present: true, ExecutionTime: j.ExecutionTime, WCETBudget: j.WCETBudget, JobCriticality: j.JobCriticality}
		}
		if t, ok := c.WakeTime.Time(); ok {
			cs.WakeupTime = t
		}
		pt := decision.Compute(c.Tasks, cs, s.CurrentLevel, now, s.Granularity, s.Hyperperiod)
		points[i] = pt
		if pt.Time < next {
			next = pt.Time
		}
	}

	s.points = points
	if next > s.Hyperperiod {
		next = s.Hyperperiod
	}
	return next
}

// preempt reinserts every ACTIVE core's unfinished running job into
// its own run queue (spec §4.6 step 1).
func (s *Scheduler) preempt() {
	for _, c := range s.Cores {
		if c.Status != core.Active {
			continue
		}
		j, ok := c.CurrExeJob.Job()
		if !ok || j.ExecutionTime <= 0 {
			continue
		}
		preempted := j.Clone()
		preempted.Status = job.Preempted
		c.PreemptedJob = preempted
		c.RunQueue.Insert(*preempted)
	}
}

// arrivals releases every task instance due exactly at TimeCount and
// routes it to a run queue, the pending-request queue, or a discarded
// queue (spec §4.6 step 2).
func (s *Scheduler) arrivals() {
	for ci, c := range s.Cores {
		if !(s.points[ci].Mask.Has(decision.JobArrival) && s.points[ci].Time == s.TimeCount) {
			continue
		}
		for _, t := range c.Tasks {
			if !isArrivalInstant(s.TimeCount, t.Phase, t.Period) {
				continue
			}
			instance := jobInstance(s.TimeCount, t.Phase, t.Period)
			j := job.New(t, instance, c.CoreNo, s.TimeCount, c.ThresholdCriticality, s.CurrentLevel)
			accept := job.AcceptAbove(s.CurrentLevel, c.ThresholdCriticality)

			switch {
			case j.JobCriticality >= accept && c.Status == core.Active:
				c.RunQueue.Insert(*j)
			case j.JobCriticality >= accept:
				s.Pending = append(s.Pending, *j)
			default:
				s.Discarded.Discard(*j)
				if s.Metrics != nil {
					s.Metrics.JobsDiscarded.Inc()
				}
			}
		}
	}
}

// evaluateShutdown considers every ACTIVE core with an empty run
// queue for power-down, either immediately (if the next qualifying
// arrival is far enough out) or after dynamic-procrastination slack
// analysis confirms every criticality level can absorb the wait (spec
// §4.6 step 3).
func (s *Scheduler) evaluateShutdown() {
	for _, c := range s.Cores {
		if c.Status != core.Active || c.RunQueue.Len() != 0 {
			continue
		}

		accept := c.AcceptAbove(s.CurrentLevel)
		minArrival := math.Inf(1)
		var minTask *task.Task
		for _, t := range c.Tasks {
			if t.Criticality < accept {
				continue
			}
			if a := decision.NextArrival(t, s.TimeCount, s.Granularity); a < minArrival {
				minArrival = a
				minTask = t
			}
		}
		if minTask == nil {
			continue
		}

		if minArrival >= s.TimeCount+s.ShutdownThreshold {
			c.WakeTime = core.At(minArrival)
			c.Status = core.Shutdown
			if s.DVFS != nil {
				s.DVFS.Reset(c.CoreNo)
			}
			if s.Report != nil {
				s.Report.Shutdown(c.CoreNo, s.TimeCount, minArrival)
			}
			continue
		}

		in := slack.Input{
			RunQueue: c.RunQueue, OwnedTasks: c.Tasks, ThresholdCriticality: c.ThresholdCriticality,
			CurrentSystemLevel: s.CurrentLevel, MaxLevels: s.MaxLevels,
			LatestArrival: minArrival + minTask.Deadline(), Now: s.TimeCount,
			Hyperperiod: s.Hyperperiod, Granularity: s.Granularity,
		}
		c.SlackAvailable = slack.Compute(in)

		sufficient := true
		for lvl := s.CurrentLevel; lvl <= s.MaxLevels; lvl++ {
			if c.SlackAvailable[lvl-1] < s.ShutdownThreshold {
				sufficient = false
				break
			}
		}
		if sufficient {
			wake := s.TimeCount + c.SlackAvailable[s.CurrentLevel-1]
			c.WakeTime = core.At(wake)
			c.Status = core.Shutdown
			if s.Report != nil {
				s.Report.Shutdown(c.CoreNo, s.TimeCount, wake)
			}
		}
	}
}

// scheduleDiscarded runs the opportunistic admission pass on every
// ACTIVE core (spec §4.6 step 4).
func (s *Scheduler) scheduleDiscarded() {
	for _, c := range s.Cores {
		if c.Status != core.Active {
			continue
		}
		before := c.RunQueue.Len()
		s.Discarded.Schedule(c, s.CurrentLevel, s.MaxLevels, s.Hyperperiod, s.TimeCount, s.Granularity)
		if s.Metrics != nil {
			if gained := c.RunQueue.Len() - before; gained > 0 {
				for i := 0; i < gained; i++ {
					s.Metrics.JobsReclaimed.Inc()
				}
			}
		}
	}
}

// escalate raises the system criticality level by one if any ACTIVE
// core's decision event at TimeCount is JOB_WCET_EXCEEDED, then
// applies the consequences - running-job reclamation, below-threshold
// discard, and (crossing into HI mode) deadline rewrite and resort -
// to every core independently, so a core whose own threshold was
// crossed this step always gets the LO->HI treatment regardless of
// which core triggered the event (spec §4.6 step 5).
func (s *Scheduler) escalate() {
	triggered := false
	for ci, c := range s.Cores {
		if c.Status == core.Active && s.points[ci].Mask.Has(decision.JobWCETExceeded) && s.points[ci].Time == s.TimeCount {
			triggered = true
			break
		}
	}

	if !triggered {
		for ci, c := range s.Cores {
			if c.Status == core.Active && s.points[ci].Mask.Has(decision.JobOverrun) && s.points[ci].Time == s.TimeCount {
				c.CurrExeJob = core.Idle()
			}
		}
		return
	}

	from := s.CurrentLevel
	s.CurrentLevel++
	if s.Report != nil {
		s.Report.Escalation(from, s.CurrentLevel, s.TimeCount)
	}
	if s.Metrics != nil {
		s.Metrics.Escalations.Inc()
		s.Metrics.CurrentLevel.Set(float64(s.CurrentLevel))
	}

	for ci, c := range s.Cores {
		c.CoreCriticality++
		if s.DVFS != nil {
			s.DVFS.Escalate(c.CoreNo, s.CurrentLevel, c.ThresholdCriticality)
		}

		atNow := s.points[ci].Time == s.TimeCount
		if j, ok := c.CurrExeJob.Job(); ok && c.Status == core.Active && j.ExecutionTime == 0 && atNow && s.points[ci].Mask.Has(decision.JobWCETExceeded) {
			preempted := j.Clone()
			preempted.Status = job.Preempted
			c.RunQueue.Insert(*preempted)
			c.CurrExeJob = core.Idle()
		} else if c.Status == core.Active && atNow && s.points[ci].Mask.Has(decision.JobOverrun) {
			c.CurrExeJob = core.Idle()
		}

		if s.CurrentLevel <= c.ThresholdCriticality {
			s.discardBelowCriticality(c.RunQueue, s.CurrentLevel)
			continue
		}

		s.discardBelowCriticality(c.RunQueue, c.ThresholdCriticality+1)
		s.rewriteDeadlinesAndResort(c.RunQueue)
	}
}

// discardBelowCriticality moves every run-queue job whose criticality
// is strictly below level into its discarded queue.
func (s *Scheduler) discardBelowCriticality(q *runqueue.Queue, level int) {
	for _, j := range q.All() {
		if j.JobCriticality < level {
			if _, ok := q.Delete(j.ID); ok {
				s.Discarded.Discard(j)
				if s.Metrics != nil {
					s.Metrics.JobsDiscarded.Inc()
				}
			}
		}
	}
}

// rewriteDeadlinesAndResort resets every queued job's scheduling
// deadline to its original (non-virtual) deadline and re-establishes
// EDF order - the HI-mode transition of spec §4.6 step 5.
func (s *Scheduler) rewriteDeadlinesAndResort(q *runqueue.Queue) {
	jobs := q.All()
	for _, j := range jobs {
		q.Delete(j.ID)
	}
	for _, j := range jobs {
		if t := s.tasksByNo[j.ID.TaskNo]; t != nil {
			j.SchedDeadline = j.ArrivalTime + t.Deadline()
		}
		q.Insert(j)
	}
	q.MergeSort()
}

// wakeCores activates every SHUTDOWN core whose wakeup event fires at
// TimeCount and drains the pending-request queue into its run queue
// (spec §4.6 step 6).
func (s *Scheduler) wakeCores() {
	for ci, c := range s.Cores {
		if c.Status != core.Shutdown {
			continue
		}
		if !(s.points[ci].Mask.Has(decision.WakeupCore) && s.points[ci].Time == s.TimeCount) {
			continue
		}
		c.Status = core.Active
		if s.DVFS != nil {
			s.DVFS.Reset(c.CoreNo)
		}
		if s.Report != nil {
			s.Report.Wakeup(c.CoreNo, s.TimeCount)
		}

		remaining := s.Pending[:0]
		for _, j := range s.Pending {
			if j.AllocatedCore == c.CoreNo {
				c.RunQueue.Insert(j)
			} else {
				remaining = append(remaining, j)
			}
		}
		s.Pending = remaining
	}
}

// dispatch pops each ACTIVE core's run queue head into CurrExeJob
// (spec §4.6 step 7).
func (s *Scheduler) dispatch() {
	for _, c := range s.Cores {
		if c.Status != core.Active {
			continue
		}
		j, ok := c.RunQueue.PopHead()
		if !ok {
			c.CurrExeJob = core.Idle()
			continue
		}
		if s.Exec != nil && j.Status != job.Preempted {
			budget := j.WCETBudget[j.JobCriticality-1]
			j.ExecutionTime = s.Exec.Draw(budget)
		}
		jp := j
		c.CurrExeJob = core.Running(&jp)
		if s.Metrics != nil {
			s.Metrics.JobsDispatched.Inc()
		}
	}
}

// advance computes the next global decision point, charges the
// elapsed interval against the running job's execution time and WCET
// budgets (or against idle time), reports the schedule line for the
// interval just finished, and moves TimeCount forward (spec §4.6
// step 8).
func (s *Scheduler) advance() {
	now := s.TimeCount
	next := s.computePoints(now)

	var entries []report.ScheduleEntry
	for _, c := range s.Cores {
		if s.Report != nil {
			entries = append(entries, s.scheduleEntry(c))
		}
		if c.Status != core.Active {
			continue
		}
		j, ok := c.CurrExeJob.Job()
		if !ok {
			c.IdleTime += next - now
			if s.Metrics != nil {
				s.Metrics.CoreIdleSeconds.WithLabelValues(coreLabel(c.CoreNo)).Set(c.IdleTime)
			}
			continue
		}
		elapsed := next - now
		j.ExecutionTime -= elapsed
		for i := range j.WCETBudget {
			j.WCETBudget[i] -= elapsed
		}
	}
	if s.Report != nil {
		s.Report.Schedule(now, next, entries)
	}

	s.TimeCount = next
}

func (s *Scheduler) scheduleEntry(c *core.Core) report.ScheduleEntry {
	e := report.ScheduleEntry{CoreNo: c.CoreNo}
	if c.Status != core.Active {
		e.ShutDown = true
		return e
	}
	j, ok := c.CurrExeJob.Job()
	if !ok {
		e.Idle = true
		return e
	}
	e.TaskNo = j.ID.TaskNo
	e.JobNo = j.ID.JobNo
	e.Preempted = j.Status == job.Preempted
	return e
}

func isArrivalInstant(now, phase, period float64) bool {
	diff := now - phase
	if diff < -arrivalEpsilon {
		return false
	}
	ratio := diff / period
	return math.Abs(ratio-math.Round(ratio)) < arrivalEpsilon
}

func jobInstance(now, phase, period float64) int {
	return int(math.Round((now - phase) / period))
}

func coreLabel(coreNo int) string {
	return strconv.Itoa(coreNo)
}
