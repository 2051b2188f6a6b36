package predicate

import (
	"testing"

	"github.com/hupe1980/svscore/core"
	"github.com/stretchr/testify/assert"
)

func TestAlwaysTrue(t *testing.T) {
	assert.True(t, AlwaysTrue(0))
	assert.True(t, AlwaysTrue(core.MaxLocalID))
}

func TestAndOr(t *testing.T) {
	even := Predicate(func(id core.LocalID) bool { return id%2 == 0 })
	gt2 := Predicate(func(id core.LocalID) bool { return id > 2 })

	and := And(even, gt2)
	assert.False(t, and(2))
	assert.True(t, and(4))
	assert.True(t, And()(7))

	or := Or(even, gt2)
	assert.True(t, or(2))
	assert.True(t, or(3))
	assert.False(t, or(1))
	assert.False(t, Or()(7))
}

func TestNot(t *testing.T) {
	p := Not(AlwaysTrue)
	assert.False(t, p(5))
}

func TestBitmap(t *testing.T) {
	b := BitmapOf(1, 2, 5)
	assert.True(t, b.Contains(1))
	assert.False(t, b.Contains(3))
	assert.Equal(t, uint64(3), b.Cardinality())

	b.Remove(2)
	assert.False(t, b.Contains(2))

	other := BitmapOf(5, 9)
	b.Or(other)
	assert.True(t, b.Contains(9))

	clone := b.Clone()
	clone.Add(42)
	assert.False(t, b.Contains(42))
	assert.True(t, clone.Contains(42))

	var seen []core.LocalID
	for id := range b.Iterator() {
		seen = append(seen, id)
	}
	assert.ElementsMatch(t, []core.LocalID{1, 5, 9}, seen)

	p := b.Predicate()
	assert.True(t, p(5))
	assert.False(t, p(2))
}
