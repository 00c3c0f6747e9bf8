package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Derivations(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s := Session{StartTime: start, PlannedDuration: 1500, PausedTime: 60}

	assert.True(t, s.Active())

	now := start.Add(300 * time.Second)
	assert.Equal(t, 240, s.Elapsed(now))
	assert.Equal(t, 1260, s.Remaining(now))

	// Paused longer than the wall clock so far: elapsed floors at zero.
	assert.Equal(t, 0, s.Elapsed(start.Add(30*time.Second)))
	assert.Equal(t, 1500, s.Remaining(start.Add(30*time.Second)))

	// Overrun: remaining floors at zero.
	assert.Equal(t, 0, s.Remaining(start.Add(2*time.Hour)))

	end := start.Add(1500 * time.Second)
	s.EndTime = &end
	assert.False(t, s.Active())
}
