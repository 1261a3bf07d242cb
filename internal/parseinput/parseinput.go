// Package parseinput reads the whitespace-separated task-set input
// file: a task count, a max-criticality count, then one record per
// task (phase, period, relative deadline, criticality, followed by
// that many WCET values, level 1 first).
package parseinput

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/akankshac-073/mcsim/internal/task"
)

// TaskSet is a parsed input file: the tasks plus the max criticality
// level declared for the run.
type TaskSet struct {
	Tasks          []*task.Task
	MaxCriticality int
}

// Parse reads a TaskSet from r.
func Parse(r io.Reader) (*TaskSet, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1<<20)
	s.Split(bufio.ScanWords)

	next := func(field string) (string, error) {
		if !s.Scan() {
			if err := s.Err(); err != nil {
				return "", fmt.Errorf("parseinput: reading %s: %w", field, err)
			}
			return "", fmt.Errorf("parseinput: unexpected end of input reading %s", field)
		}
		return s.Text(), nil
	}
	nextInt := func(field string) (int, error) {
		tok, err := next(field)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("parseinput: %s: %q is not an integer: %w", field, tok, err)
		}
		return v, nil
	}

	numTasks, err := nextInt("num_tasks")
	if err != nil {
		return nil, err
	}
	maxCriticality, err := nextInt("max_criticality")
	if err != nil {
		return nil, err
	}
	if numTasks <= 0 {
		return nil, fmt.Errorf("parseinput: num_tasks must be positive, got %d", numTasks)
	}
	if maxCriticality <= 0 || maxCriticality > task.MaxLevels {
		return nil, fmt.Errorf("parseinput: max_criticality must be in [1, %d], got %d", task.MaxLevels, maxCriticality)
	}

	ts := &TaskSet{MaxCriticality: maxCriticality}
	for i := 0; i < numTasks; i++ {
		phase, err := nextInt(fmt.Sprintf("task %d phase", i+1))
		if err != nil {
			return nil, err
		}
		period, err := nextInt(fmt.Sprintf("task %d period", i+1))
		if err != nil {
			return nil, err
		}
		deadline, err := nextInt(fmt.Sprintf("task %d deadline", i+1))
		if err != nil {
			return nil, err
		}
		criticality, err := nextInt(fmt.Sprintf("task %d criticality", i+1))
		if err != nil {
			return nil, err
		}
		if criticality <= 0 || criticality > maxCriticality {
			return nil, fmt.Errorf("parseinput: task %d criticality %d out of range [1, %d]", i+1, criticality, maxCriticality)
		}

		wcet := make([]float64, criticality)
		for lvl := 0; lvl < criticality; lvl++ {
			w, err := nextInt(fmt.Sprintf("task %d wcet[%d]", i+1, lvl+1))
			if err != nil {
				return nil, err
			}
			wcet[lvl] = float64(w)
		}

		ts.Tasks = append(ts.Tasks, task.New(i+1, float64(phase), float64(period), float64(deadline), criticality, wcet, maxCriticality))
	}

	return ts, nil
}
