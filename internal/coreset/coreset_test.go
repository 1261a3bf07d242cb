package coreset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfAndHas(t *testing.T) {
	s := Of(1, 3, 5)
	assert.True(t, s.Has(1))
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(2))
	assert.Equal(t, 3, s.Count())
}

func TestWithAndWithout(t *testing.T) {
	s := Of(1)
	s = s.With(2)
	assert.True(t, s.Has(2))
	s = s.Without(1)
	assert.False(t, s.Has(1))
	assert.True(t, s.Has(2))
}

func TestUnionIntersectDifference(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(2, 3, 4)

	assert.Equal(t, Of(1, 2, 3, 4), Union(a, b))
	assert.Equal(t, Of(2, 3), Intersect(a, b))
	assert.Equal(t, Of(1), Difference(a, b))
}

func TestRangeVisitsInAscendingOrder(t *testing.T) {
	s := Of(5, 1, 3)
	var visited []int
	Range(s, func(i int) { visited = append(visited, i) })
	assert.Equal(t, []int{1, 3, 5}, visited)
}

func TestString(t *testing.T) {
	assert.Equal(t, "{}", Set(0).String())
	assert.Equal(t, "{0,2}", Of(0, 2).String())
}
