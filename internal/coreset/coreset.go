// Package coreset is a small bitset over core indices, generalized from
// the teacher's golang.org/x/sys/unix.CPUSet arithmetic (Union, Intersect,
// Difference, Range, String) with the OS-level CPU-affinity semantics
// stripped out: a Set here tracks which simulated cores are open,
// shutdown, or non-shutdownable, never a real sched_setaffinity mask.
package coreset

import (
	"fmt"
	"strconv"
	"strings"
)

// Set holds up to 64 core indices (spec's MAX_CORES default is 20, so a
// single machine word is ample headroom).
type Set uint64

// Of builds a Set from the given core numbers.
func Of(cores ...int) Set {
	var s Set
	for _, c := range cores {
		s = s.With(c)
	}
	return s
}

// With returns a copy of s with core i added.
func (s Set) With(i int) Set {
	return s | (1 << uint(i))
}

// Without returns a copy of s with core i removed.
func (s Set) Without(i int) Set {
	return s &^ (1 << uint(i))
}

// Has reports whether core i is a member of s.
func (s Set) Has(i int) bool {
	return s&(1<<uint(i)) != 0
}

// Count returns the number of cores in s.
func (s Set) Count() int {
	n := 0
	for s != 0 {
		s &= s - 1
		n++
	}
	return n
}

// Union returns the set union of a and b.
func Union(a, b Set) Set { return a | b }

// Intersect returns the set intersection of a and b.
func Intersect(a, b Set) Set { return a & b }

// Difference returns the cores in a that are not in b.
func Difference(a, b Set) Set { return a &^ b }

// Range calls fn with every core index present in s, in ascending order.
func Range(s Set, fn func(i int)) {
	for i := 0; s != 0; i++ {
		if s&1 != 0 {
			fn(i)
		}
		s >>= 1
	}
}

// String renders the set as a sorted comma-separated list of core indices.
func (s Set) String() string {
	var parts []string
	Range(s, func(i int) { parts = append(parts, strconv.Itoa(i)) })
	if len(parts) == 0 {
		return "{}"
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ","))
}
