package domain

import "time"

type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "OPEN"
	SlotStatusReserved  SlotStatus = "RESERVED"
	SlotStatusFull      SlotStatus = "FULL"
	SlotStatusCancelled SlotStatus = "CANCELLED"
)

// Slot represents a fixed-duration, fixed-capacity bookable time window on a
// terrain. Terrains are managed elsewhere; TerrainID is opaque here.
type Slot struct {
	ID          string
	TerrainID   string
	StartAt     time.Time
	DurationMin int
	Capacity    int
	Status      SlotStatus
	CreatedAt   time.Time
}

// Bookable reports whether the slot shows up in public listings.
// Cancelled slots are hidden; FULL slots remain visible.
func (s Slot) Bookable() bool {
	switch s.Status {
	case SlotStatusOpen, SlotStatusReserved, SlotStatusFull:
		return true
	}
	return false
}
