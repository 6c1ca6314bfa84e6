package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonotonicNeverRepeats(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithSource(func() time.Time { return frozen })

	first := c.Now()
	second := c.Now()
	assert.Equal(t, frozen, first)
	assert.Equal(t, frozen.Add(Resolution), second)
}

func TestMonotonicSurvivesBackwardStep(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC),
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	i := 0
	c := NewWithSource(func() time.Time { t := times[i]; i++; return t })

	a := c.Now()
	b := c.Now()
	assert.True(t, b.After(a))
}

func TestMonotonicConcurrent(t *testing.T) {
	c := New()
	const n = 200
	seen := make(chan time.Time, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- c.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]struct{}{}
	for ts := range seen {
		unique[ts] = struct{}{}
	}
	require.Len(t, unique, n)
	assert.Equal(t, 0, c.Last().Nanosecond()%int(Resolution))
}

func TestStepped(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := Stepped(start, time.Minute)
	assert.Equal(t, start, next())
	assert.Equal(t, start.Add(time.Minute), next())
}
