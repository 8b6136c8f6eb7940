package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestActivity(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	// No stage actuals: creation time is the latest activity
	assert.Equal(t, order.CreatedAt, LatestActivity(order))

	first := now.Add(-90 * time.Hour)
	second := now.Add(-49 * time.Hour)
	stamp(order, 1, first, first)
	stamp(order, 2, second, second)

	assert.Equal(t, second, LatestActivity(order))
}

func TestIsDelayedThreshold(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		age     time.Duration
		delayed bool
	}{
		{"Exactly 49 hours stale", 49 * time.Hour, true},
		{"Exactly 47 hours stale", 47 * time.Hour, false},
		{"Just past the threshold", 48*time.Hour + time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := createTestOrder(t)
			at := now.Add(-tt.age)
			stamp(order, 1, at, at)

			assert.Equal(t, tt.delayed, IsDelayed(order, now))
		})
	}
}

func TestIsDelayedTerminalOrder(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	old := now.Add(-200 * time.Hour)
	for i := 1; i <= TrackedSlots; i++ {
		stamp(order, i, old, old)
	}

	assert.False(t, IsDelayed(order, now), "delivered orders are never delayed")
}

func TestStageDelaysSignConvention(t *testing.T) {
	order := createTestOrder(t)
	planned := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	actual := planned.Add(50 * time.Hour)
	stamp(order, 1, planned, actual)

	delays := StageDelays(order)
	require.Len(t, delays, 1)

	entry := delays[0]
	assert.Equal(t, StagePreApproval, entry.Stage)
	require.NotNil(t, entry.DelayDays)
	require.NotNil(t, entry.DelayHours)
	require.NotNil(t, entry.OnTime)
	assert.Equal(t, 2, *entry.DelayDays)
	assert.Equal(t, 50, *entry.DelayHours)
	assert.False(t, *entry.OnTime)
}

func TestStageDelaysOnTime(t *testing.T) {
	order := createTestOrder(t)
	planned := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	actual := planned.Add(-6 * time.Hour)
	stamp(order, 1, planned, actual)

	delays := StageDelays(order)
	require.Len(t, delays, 1)

	entry := delays[0]
	assert.True(t, *entry.OnTime)
	assert.Equal(t, -1, *entry.DelayDays, "early completion floors to negative days")
	assert.Equal(t, -6, *entry.DelayHours)
}

func TestStageDelaysOmitsUntouchedStages(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	// Stage 1 fully stamped, stage 2 planned only, the rest untouched
	stamp(order, 1, now, now)
	planned := now.Add(2 * time.Hour)
	order.Slot(2).Planned = &planned

	delays := StageDelays(order)
	require.Len(t, delays, 2)

	assert.Equal(t, StagePreApproval, delays[0].Stage)
	assert.NotNil(t, delays[0].OnTime)

	// Planned-only stage appears without delay figures, not zero-filled
	assert.Equal(t, StageOrderApproval, delays[1].Stage)
	assert.Nil(t, delays[1].Actual)
	assert.Nil(t, delays[1].DelayDays)
	assert.Nil(t, delays[1].DelayHours)
	assert.Nil(t, delays[1].OnTime)
}
