package domain

import "time"

type Notification struct {
	ID        string
	OwnerID   string
	Type      string
	Message   string
	Read      bool
	CreatedAt time.Time
}
