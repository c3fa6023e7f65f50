package domain

import (
	"math"
	"time"
)

// ReminderStep is an escalation stage reached by an overdue receivable.
type ReminderStep string

const (
	StepFirst  ReminderStep = "first"
	StepSecond ReminderStep = "second"
	StepThird  ReminderStep = "third"
	StepFinal  ReminderStep = "final"
)

// Default thresholds, in days late, for reminder 1..3 and the final notice.
var defaultStepDays = [4]float64{15, 30, 45, 60}

var stepLabels = [4]ReminderStep{StepFirst, StepSecond, StepThird, StepFinal}

// DaysLate returns ceil(now - dueDate) in days. Zero or negative means the
// receivable is not yet due.
func DaysLate(dueDate, now time.Time) int {
	return int(math.Ceil(now.Sub(dueDate).Hours() / 24))
}

// ClassifyStep returns the most advanced escalation step reached by a
// receivable due at dueDate, or nil when no step applies yet. Client-configured
// delays override the defaults per step. The scan walks the thresholds from the
// most severe backward and returns on the first one that is <= daysLate, so
// when two thresholds are equal the more severe step wins.
func ClassifyStep(dueDate, now time.Time, c *Client) *ReminderStep {
	daysLate := DaysLate(dueDate, now)
	if daysLate <= 0 {
		return nil
	}

	thresholds := defaultStepDays
	if c != nil {
		overrides := [4]*ReminderDelay{
			c.Reminder1Delay,
			c.Reminder2Delay,
			c.Reminder3Delay,
			c.FinalDelay,
		}
		for i, d := range overrides {
			if d != nil {
				thresholds[i] = d.TotalDays()
			}
		}
	}

	for i := len(thresholds) - 1; i >= 0; i-- {
		if thresholds[i] <= float64(daysLate) {
			step := stepLabels[i]
			return &step
		}
	}
	return nil
}
