package domain

import "errors"

var (
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotNotOpen         = errors.New("slot not open")
	ErrSlotFull            = errors.New("slot full")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrTerrainIDRequired   = errors.New("terrain id required")
	ErrInvalidStartAt      = errors.New("start at must be in the future")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidCapacity     = errors.New("invalid capacity")
	ErrInvalidID           = errors.New("invalid id")
)
