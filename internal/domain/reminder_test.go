package domain

import (
	"testing"
	"time"
)

var refNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func due(daysAgo int) time.Time {
	return refNow.AddDate(0, 0, -daysAgo)
}

func TestDaysLate(t *testing.T) {
	if got := DaysLate(due(10), refNow); got != 10 {
		t.Errorf("DaysLate(10 days ago) = %d, want 10", got)
	}
	if got := DaysLate(due(-5), refNow); got != -5 {
		t.Errorf("DaysLate(5 days ahead) = %d, want -5", got)
	}
	// a partial day counts as a full day late
	if got := DaysLate(refNow.Add(-1*time.Hour), refNow); got != 1 {
		t.Errorf("DaysLate(1 hour ago) = %d, want 1", got)
	}
}

func TestClassifyStep_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		daysLate int
		want     *ReminderStep
	}{
		{"not yet due", -3, nil},
		{"due today", 0, nil},
		{"under first threshold", 5, nil},
		{"first step", 15, stepPtr(StepFirst)},
		{"between first and second", 20, stepPtr(StepFirst)},
		{"second step", 30, stepPtr(StepSecond)},
		{"third step", 50, stepPtr(StepThird)},
		{"final step", 60, stepPtr(StepFinal)},
		{"way past final", 200, stepPtr(StepFinal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStep(due(tt.daysLate), refNow, nil)
			if !stepEq(got, tt.want) {
				t.Fatalf("ClassifyStep(%d days late) = %v, want %v", tt.daysLate, stepStr(got), stepStr(tt.want))
			}
		})
	}
}

func TestClassifyStep_ClientOverrides(t *testing.T) {
	c := &Client{
		Reminder1Delay: &ReminderDelay{Days: 5},
		FinalDelay:     &ReminderDelay{Days: 20},
	}

	// 6 days late: past the overridden first threshold
	if got := ClassifyStep(due(6), refNow, c); !stepEq(got, stepPtr(StepFirst)) {
		t.Errorf("6 days late = %v, want first", stepStr(got))
	}

	// 25 days late: past the overridden final threshold, which is more severe
	// than the untouched second (30) and third (45) defaults
	if got := ClassifyStep(due(25), refNow, c); !stepEq(got, stepPtr(StepFinal)) {
		t.Errorf("25 days late = %v, want final", stepStr(got))
	}
}

func TestClassifyStep_EqualThresholdsMostSevereWins(t *testing.T) {
	c := &Client{
		Reminder1Delay: &ReminderDelay{Days: 10},
		Reminder2Delay: &ReminderDelay{Days: 10},
	}

	if got := ClassifyStep(due(10), refNow, c); !stepEq(got, stepPtr(StepSecond)) {
		t.Fatalf("equal thresholds: got %v, want second", stepStr(got))
	}
}

func TestClassifyStep_FractionalDelay(t *testing.T) {
	// 12-hour delay: one day late already exceeds it
	c := &Client{Reminder1Delay: &ReminderDelay{Hours: 12}}

	if got := ClassifyStep(due(1), refNow, c); !stepEq(got, stepPtr(StepFirst)) {
		t.Fatalf("fractional delay: got %v, want first", stepStr(got))
	}
}

func stepPtr(s ReminderStep) *ReminderStep { return &s }

func stepEq(a, b *ReminderStep) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stepStr(s *ReminderStep) string {
	if s == nil {
		return "<nil>"
	}
	return string(*s)
}
