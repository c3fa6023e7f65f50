package domain

import (
	"encoding/json"
	"time"
)

// ReminderDelay is a per-step escalation delay. Older rows store a plain day
// count, newer ones a {days,hours,minutes} object; UnmarshalJSON accepts both.
type ReminderDelay struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (d *ReminderDelay) UnmarshalJSON(b []byte) error {
	var days float64
	if err := json.Unmarshal(b, &days); err == nil {
		*d = ReminderDelay{Days: int(days)}
		return nil
	}

	type plain ReminderDelay
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = ReminderDelay(p)
	return nil
}

func (d ReminderDelay) TotalMinutes() int {
	return d.Days*24*60 + d.Hours*60 + d.Minutes
}

// TotalDays returns the delay in days, fractional when hours/minutes are set,
// so it can be compared against a days-late count.
func (d ReminderDelay) TotalDays() float64 {
	return float64(d.TotalMinutes()) / (24 * 60)
}

type Client struct {
	ID      string
	OwnerID string
	Name    string
	Email   string
	Phone   *string

	// Per-step delay overrides; nil means the default threshold applies.
	PreReminderDelay *ReminderDelay
	Reminder1Delay   *ReminderDelay
	Reminder2Delay   *ReminderDelay
	Reminder3Delay   *ReminderDelay
	FinalDelay       *ReminderDelay

	CreatedAt time.Time
	UpdatedAt time.Time
}
