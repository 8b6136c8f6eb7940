package domain

import (
	"math"
	"time"
)

// StaleAfter is how long an order may sit without stage activity
// before it counts as delayed
const StaleAfter = 48 * time.Hour

// LatestActivity returns the timestamp of the order's most recent
// completed stage, scanning slots in pipeline order. Falls back to the
// creation timestamp when no stage actual is set.
func LatestActivity(o *Order) time.Time {
	latest := o.CreatedAt
	for i := 1; i <= TrackedSlots; i++ {
		if actual := o.StageActual(i); actual != nil {
			latest = *actual
		}
	}
	return latest
}

// IsDelayed reports whether a non-terminal order has been stuck for
// longer than StaleAfter as of now. Terminal orders are never delayed.
func IsDelayed(o *Order, now time.Time) bool {
	if o.IsTerminal() {
		return false
	}
	return now.Sub(LatestActivity(o)) > StaleAfter
}

// StageDelay reports planned-vs-actual timing for a single stage.
// DelayDays/DelayHours/OnTime are only populated when both timestamps
// are present; a stage with neither timestamp is omitted from delay
// reporting entirely.
type StageDelay struct {
	Stage      StageID    `json:"stage"`
	Label      string     `json:"label"`
	Planned    *time.Time `json:"planned"`
	Actual     *time.Time `json:"actual"`
	DelayDays  *int       `json:"delayDays"`
	DelayHours *int       `json:"delayHours"`
	OnTime     *bool      `json:"onTime"`
}

// StageDelays computes the per-stage delay breakdown for an order.
// Only tracked stages carrying at least one timestamp appear; Order
// Punch has no planned/actual pair and is never included.
func StageDelays(o *Order) []StageDelay {
	delays := make([]StageDelay, 0, TrackedSlots)
	for _, def := range Pipeline[1:] {
		slot := o.Slot(def.Slot)
		if slot == nil || (slot.Planned == nil && slot.Actual == nil) {
			continue
		}

		entry := StageDelay{
			Stage:   def.ID,
			Label:   def.Label,
			Planned: slot.Planned,
			Actual:  slot.Actual,
		}

		if slot.Planned != nil && slot.Actual != nil {
			diff := slot.Actual.Sub(*slot.Planned)
			days := int(math.Floor(diff.Hours() / 24))
			hours := int(math.Round(diff.Hours()))
			onTime := !slot.Actual.After(*slot.Planned)
			entry.DelayDays = &days
			entry.DelayHours = &hours
			entry.OnTime = &onTime
		}

		delays = append(delays, entry)
	}
	return delays
}
