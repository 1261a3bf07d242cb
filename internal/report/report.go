// Package report renders the textual trace spec §6 describes: the
// sorted task list, per-core allocations, the
// superhyperperiod, mode-change annotations, and one schedule line per
// dispatch interval.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/akankshac-073/mcsim/internal/core"
	"github.com/akankshac-073/mcsim/internal/task"
)

// Writer formats a run's trace to an underlying stream.
type Writer struct {
	w io.Writer

	escalation *color.Color
	shutdown   *color.Color
	preempted  *color.Color
	idle       *color.Color
}

// New wraps w with the trace formatter.
func New(w io.Writer) *Writer {
	return &Writer{
		w:          w,
		escalation: color.New(color.FgRed, color.Bold),
		shutdown:   color.New(color.FgBlue),
		preempted:  color.New(color.FgYellow),
		idle:       color.New(color.FgHiBlack),
	}
}

// SortedTasks prints the sorted task list with each task's criticality
// and own-criticality utilization.
func (r *Writer) SortedTasks(tasks []*task.Task) {
	fmt.Fprintln(r.w, "Sorted task structure array")
	for _, t := range tasks {
		fmt.Fprintf(r.w, "  Task %d\tCriticality: %d\tUtilization: %.6f\n", t.TaskNo, t.Criticality, t.OwnUtilization())
	}
	fmt.Fprintln(r.w)
}

// Allocations prints one block per core: task count, utilization,
// remaining capacity, threshold criticality, and allocated task ids.
func (r *Writer) Allocations(cores []*core.Core) {
	for _, c := range cores {
		fmt.Fprintf(r.w, "Core %d: %d tasks allocated\n", c.CoreNo, len(c.Tasks))
		fmt.Fprintf(r.w, "  Total core utilization: %.6f\n  Core remaining capacity: %.6f\n", c.Utilization, c.RemainingCapacity)
		fmt.Fprintf(r.w, "  Core threshold criticality: %d\n  Core type: %s\n", c.ThresholdCriticality, c.Type)
		fmt.Fprint(r.w, "  Task ids: ")
		for _, t := range c.Tasks {
			fmt.Fprintf(r.w, "%d ", t.TaskNo)
		}
		fmt.Fprintln(r.w, "\n")
	}
}

// Superhyperperiod prints the computed schedule horizon.
func (r *Writer) Superhyperperiod(hp float64) {
	fmt.Fprintf(r.w, "Superhyperperiod: %.2f\n\n", hp)
}

// Escalation announces a criticality mode change.
func (r *Writer) Escalation(from, to int, at float64) {
	r.escalation.Fprintf(r.w, "-- criticality escalation: level %d -> %d at t=%.4f --\n", from, to, at)
}

// Shutdown announces a core powering down until a wakeup time.
func (r *Writer) Shutdown(coreNo int, at, wake float64) {
	r.shutdown.Fprintf(r.w, "-- core %d POWERED DOWN at t=%.4f, wakeup at t=%.4f --\n", coreNo, at, wake)
}

// Wakeup announces a core returning to ACTIVE.
func (r *Writer) Wakeup(coreNo int, at float64) {
	r.shutdown.Fprintf(r.w, "-- core %d wakeup at t=%.4f --\n", coreNo, at)
}

// ScheduleEntry describes one core's dispatch over [from, to) for one
// interval line.
type ScheduleEntry struct {
	CoreNo    int
	Idle      bool
	ShutDown  bool
	Preempted bool
	TaskNo    int
	JobNo     int
}

// Schedule prints one interval line listing every core's activity
// between from and to, in the format spec §6 names: "Time: t0 to t1
// Core: c Task T Job J ..." with "#" for preempted, "IDLE task" for
// idle, "POWERED DOWN" for shutdown.
func (r *Writer) Schedule(from, to float64, entries []ScheduleEntry) {
	fmt.Fprintf(r.w, "Time: %.4f to %.4f\t", from, to)
	for _, e := range entries {
		fmt.Fprintf(r.w, "Core: %d ", e.CoreNo)
		switch {
		case e.ShutDown:
			r.idle.Fprint(r.w, "POWERED DOWN")
		case e.Idle:
			r.idle.Fprint(r.w, "IDLE task")
		default:
			fmt.Fprintf(r.w, "Task %d Job %d", e.TaskNo, e.JobNo)
			if e.Preempted {
				r.preempted.Fprint(r.w, " #")
			}
		}
		fmt.Fprint(r.w, "\t")
	}
	fmt.Fprintln(r.w)
}

// Failure prints a one-line, non-zero-exit failure report (spec §7).
func (r *Writer) Failure(msg string) {
	color.New(color.FgRed, color.Bold).Fprintf(r.w, "error: %s\n", msg)
}
