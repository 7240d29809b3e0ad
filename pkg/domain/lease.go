package domain

import "time"

// LeaseToken is the exclusive right to command the robot.
// Callers treat it as opaque; only lease services interpret the ID.
type LeaseToken struct {
	ID         string    `json:"id"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// IsZero reports whether the token is empty.
func (t LeaseToken) IsZero() bool {
	return t.ID == ""
}
