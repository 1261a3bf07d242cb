// Package runqueue implements the per-core EDF run queue: a doubly-linked
// list ordered by ascending sched_deadline, ties broken by insertion
// order. Per the re-architecture note in spec §9, nodes live in an arena
// (a growable slice) and are linked by index rather than by pointer, so
// moving a job between queues is an index move, not a pointer-aliasing
// hazard.
package runqueue

import "github.com/akankshac-073/mcsim/internal/job"

const none = -1

type node struct {
	job        job.Job
	prev, next int
	used       bool
}

// Queue is an EDF-ordered doubly-linked list of jobs.
type Queue struct {
	arena []node
	free  []int
	head  int
	tail  int
	size  int
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{head: none, tail: none}
}

// Len returns the number of jobs currently queued.
func (q *Queue) Len() int { return q.size }

func (q *Queue) alloc(j job.Job) int {
	if n := len(q.free); n > 0 {
		idx := q.free[n-1]
		q.free = q.free[:n-1]
		q.arena[idx] = node{job: j, used: true}
		return idx
	}
	q.arena = append(q.arena, node{job: j, used: true})
	return len(q.arena) - 1
}

// Insert adds j to the queue, maintaining ascending sched_deadline order;
// ties keep earlier insertions ahead of later ones.
func (q *Queue) Insert(j job.Job) {
	idx := q.alloc(j)
	n := &q.arena[idx]
	n.prev, n.next = none, none

	if q.head == none {
		q.head, q.tail = idx, idx
		q.size++
		return
	}

	// Walk from the head to find the first node whose deadline exceeds
	// the new job's; insert before it. If none, append at the tail.
	cur := q.head
	for cur != none {
		if q.arena[cur].job.SchedDeadline > j.SchedDeadline {
			break
		}
		cur = q.arena[cur].next
	}

	if cur == none {
		// Append at tail.
		n.prev = q.tail
		q.arena[q.tail].next = idx
		q.tail = idx
	} else if cur == q.head {
		n.next = cur
		q.arena[cur].prev = idx
		q.head = idx
	} else {
		prev := q.arena[cur].prev
		n.prev, n.next = prev, cur
		q.arena[prev].next = idx
		q.arena[cur].prev = idx
	}
	q.size++
}

func (q *Queue) release(idx int) job.Job {
	j := q.arena[idx].job
	q.arena[idx] = node{}
	q.free = append(q.free, idx)
	return j
}

func (q *Queue) unlink(idx int) {
	n := q.arena[idx]
	if n.prev != none {
		q.arena[n.prev].next = n.next
	} else {
		q.head = n.next
	}
	if n.next != none {
		q.arena[n.next].prev = n.prev
	} else {
		q.tail = n.prev
	}
	q.size--
}

// PopHead removes and returns the earliest-deadline job. ok is false if
// the queue is empty (callers substitute the spec's IDLE sentinel).
func (q *Queue) PopHead() (j job.Job, ok bool) {
	if q.head == none {
		return job.Job{}, false
	}
	idx := q.head
	q.unlink(idx)
	return q.release(idx), true
}

// PeekHead returns the earliest-deadline job without removing it.
func (q *Queue) PeekHead() (j job.Job, ok bool) {
	if q.head == none {
		return job.Job{}, false
	}
	return q.arena[q.head].job, true
}

// Delete removes and returns the job with the given (task_no, job_no)
// identity, if present.
func (q *Queue) Delete(id job.ID) (j job.Job, ok bool) {
	for idx := q.head; idx != none; idx = q.arena[idx].next {
		if q.arena[idx].job.ID == id {
			q.unlink(idx)
			return q.release(idx), true
		}
	}
	return job.Job{}, false
}

// TailDeadline returns the maximum sched_deadline currently queued.
func (q *Queue) TailDeadline() (float64, bool) {
	if q.tail == none {
		return 0, false
	}
	return q.arena[q.tail].job.SchedDeadline, true
}

// All returns every queued job in EDF order. Used to build the slack
// analyzer's dummy queue and for reporting; it does not mutate the
// queue.
func (q *Queue) All() []job.Job {
	out := make([]job.Job, 0, q.size)
	for idx := q.head; idx != none; idx = q.arena[idx].next {
		out = append(out, q.arena[idx].job)
	}
	return out
}

// MergeSort rebuilds the queue's order by sched_deadline, used after a
// mode change rewrites every queued job's deadline. It is a plain,
// stable merge sort over the extracted job slice re-inserted in one
// pass, rather than the pointer-juggling linked-list merge sort of the
// original source - equivalent result, without the source's
// documented-risky tail-walk (spec §9 open question).
func (q *Queue) MergeSort() {
	jobs := q.All()
	mergeSortJobs(jobs)
	q.arena = q.arena[:0]
	q.free = q.free[:0]
	q.head, q.tail, q.size = none, none, 0
	for _, j := range jobs {
		q.Insert(j)
	}
}

func mergeSortJobs(js []job.Job) {
	if len(js) < 2 {
		return
	}
	mid := len(js) / 2
	left := append([]job.Job(nil), js[:mid]...)
	right := append([]job.Job(nil), js[mid:]...)
	mergeSortJobs(left)
	mergeSortJobs(right)

	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if left[i].SchedDeadline <= right[j].SchedDeadline {
			js[k] = left[i]
			i++
		} else {
			js[k] = right[j]
			j++
		}
		k++
	}
	for i < len(left) {
		js[k] = left[i]
		i++
		k++
	}
	for j < len(right) {
		js[k] = right[j]
		j++
		k++
	}
}
