package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnDeadline(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := Session{
		Status:        SessionStatusActive,
		TurnStartedAt: &started,
		Settings:      SessionSettings{TurnTimeSec: 30},
	}
	d := s.TurnDeadline()
	require.NotNil(t, d)
	assert.Equal(t, started.Add(30*time.Second), *d)
}

func TestTurnDeadlineNoClockRunning(t *testing.T) {
	assert.Nil(t, (&Session{Settings: SessionSettings{TurnTimeSec: 30}}).TurnDeadline())

	started := time.Now()
	s := Session{TurnStartedAt: &started}
	assert.Nil(t, s.TurnDeadline(), "zero turn time means no deadline")
}

func TestValidSlotCategory(t *testing.T) {
	for _, c := range SlotCategories() {
		assert.True(t, ValidSlotCategory(c))
	}
	assert.False(t, ValidSlotCategory("K"))
	assert.False(t, ValidSlotCategory(""))
}
