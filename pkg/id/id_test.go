package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := NewGenerator(1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	prev := ""
	for i := 0; i < 100; i++ {
		next := g.At(now)
		assert.Len(t, next, 26)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := NewGenerator(42)
	b := NewGenerator(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.At(now.Add(time.Duration(i)*time.Hour)), b.At(now.Add(time.Duration(i)*time.Hour)))
	}
}

func TestTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)
	ts, err := Time(At(now))
	require.NoError(t, err)
	assert.True(t, now.Equal(ts))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}

func TestNewUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := New()
		require.False(t, seen[v])
		seen[v] = true
	}
}
