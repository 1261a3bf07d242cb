package execgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawStaysWithinFloorAndBudget(t *testing.T) {
	g := New(42, 0.5)
	for i := 0; i < 100; i++ {
		d := g.Draw(10)
		assert.GreaterOrEqual(t, d, 5.0)
		assert.LessOrEqual(t, d, 10.0)
	}
}

func TestDrawZeroBudgetYieldsZero(t *testing.T) {
	g := New(1, 0.5)
	assert.Equal(t, 0.0, g.Draw(0))
}

func TestDrawDeterministicGivenSameSeed(t *testing.T) {
	a := New(7, 0.3)
	b := New(7, 0.3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Draw(20), b.Draw(20))
	}
}

func TestOverrunExceedsBudget(t *testing.T) {
	g := New(3, 0.5)
	for i := 0; i < 100; i++ {
		o := g.Overrun(10)
		assert.Greater(t, o, 10.0)
		assert.LessOrEqual(t, o, 15.0)
	}
}
