package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableOrder(t *testing.T) {
	ordered := Ordered()
	require.Len(t, ordered, Count())

	slugs := make([]string, len(ordered))
	for i, s := range ordered {
		slugs[i] = s.Slug
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5", "p6"}, slugs)
	assert.Equal(t, "p1", First().Slug)
}

func TestChoiceStepsAutoAdvance(t *testing.T) {
	for _, s := range Ordered() {
		if s.Kind == KindChoice {
			assert.True(t, s.AutoAdvance, "choice step %s auto-advances", s.Slug)
			assert.NotEmpty(t, s.Field)
			assert.Equal(t, []string{"Yes", "No"}, s.Options)
		} else {
			assert.False(t, s.AutoAdvance, "step %s waits for explicit continue", s.Slug)
		}
	}
}

func TestNavigation(t *testing.T) {
	next, ok := Next("p1")
	require.True(t, ok)
	assert.Equal(t, "p2", next.Slug)

	_, ok = Next("p6")
	assert.False(t, ok, "no step after the final one")

	prev, ok := Prev("p3")
	require.True(t, ok)
	assert.Equal(t, "p2", prev.Slug)

	_, ok = Prev("p1")
	assert.False(t, ok, "no step before the first one")
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("p4")
	require.True(t, ok)
	assert.Equal(t, KindAddress, s.Kind)

	_, ok = Lookup("p99")
	assert.False(t, ok)

	assert.Equal(t, 2, Index("p3"))
	assert.Equal(t, -1, Index("p99"))
}

func TestIsFinal(t *testing.T) {
	assert.True(t, IsFinal("p6"))
	assert.False(t, IsFinal("p5"))
	assert.False(t, IsFinal("p99"))
}
