package domain

import "time"

// Reservation binds one invitation token (stored only as its SHA-256 digest)
// to a slot and tracks how many invitees have accepted. The plaintext token
// is handed to the organizer once and never persisted.
type Reservation struct {
	ID             string
	SlotID         string
	OrganizerEmail string
	TokenHash      string
	AcceptedCount  int
	CreatedAt      time.Time
}
