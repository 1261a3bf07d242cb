// Package execgen generates actual job execution times for
// simulation. The source leaves this as an external collaborator
// (random-number generation of actual execution times is explicitly
// out of scope); this package gives the scheduler loop a seeded,
// reproducible source for it so end-to-end scenarios are
// deterministic given a fixed seed.
package execgen

import "math/rand"

// Generator draws a job's actual execution time, uniformly between a
// floor and the WCET budget at the job's own criticality level -
// never exceeding budget (that would make "overrun" meaningless) and
// never reaching zero (a job that never executes is indistinguishable
// from one that was never released).
type Generator struct {
	rng   *rand.Rand
	floor float64 // minimum fraction of budget a job actually uses
}

// New returns a Generator seeded deterministically; floorFraction
// bounds the low end of the uniform draw as a fraction of budget
// (e.g. 0.5 means a job never executes for less than half its WCET).
func New(seed int64, floorFraction float64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), floor: floorFraction}
}

// Draw returns an actual execution time in (floor*budget, budget]; with
// a floor of 1 it returns budget exactly.
func (g *Generator) Draw(budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	lo := g.floor * budget
	return lo + (1-g.rng.Float64())*(budget-lo)
}

// Overrun returns an execution time strictly greater than budget, for
// scenarios that exercise JOB_WCET_EXCEEDED / JOB_OVERRUN handling -
// drawn up to 50% beyond budget.
func (g *Generator) Overrun(budget float64) float64 {
	return budget + (1-g.rng.Float64())*0.5*budget
}
