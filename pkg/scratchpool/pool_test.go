package scratchpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsZeroLengthSlice(t *testing.T) {
	p := NewSlices[int](8)
	s := p.Get()
	assert.Len(t, s, 0)
}

func TestGetAfterPutReturnsZeroLengthSlice(t *testing.T) {
	p := NewSlices[int](4)
	s := p.Get()
	s = append(s, 1, 2, 3)
	p.Put(s)

	got := p.Get()
	assert.Len(t, got, 0, "Get must always hand back a zero-length slice regardless of prior contents")
}

func TestPutTruncatesStaleElements(t *testing.T) {
	p := NewSlices[string](4)
	s := p.Get()
	s = append(s, "a", "b")
	p.Put(s)

	got := p.Get()
	got = append(got, "c")
	assert.Equal(t, []string{"c"}, got, "no stale element from the prior use should leak in")
}
