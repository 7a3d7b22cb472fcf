package app

import (
	"context"
	"time"

	"github.com/Erblinn450/Spootfoot/internal/clock"
	"github.com/Erblinn450/Spootfoot/internal/domain"
	"github.com/google/uuid"
)

type SlotRepository interface {
	GetByID(ctx context.Context, id string) (domain.Slot, error)
	ListBookable(ctx context.Context) ([]domain.Slot, error)
	Create(ctx context.Context, slot domain.Slot) error
	TransitionStatus(ctx context.Context, id string, from, to domain.SlotStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// SlotService owns the administrative slot lifecycle: creation, public
// listing, cancellation, deletion. Reservation-driven transitions (RESERVED,
// FULL) belong to ReservationService.
type SlotService struct {
	repo  SlotRepository
	clock clock.Clock
}

const (
	defaultDurationMin = 60
	defaultCapacity    = 10
)

func NewSlotService(repo SlotRepository, clk clock.Clock) *SlotService {
	return &SlotService{
		repo:  repo,
		clock: clk,
	}
}

type CreateSlotInput struct {
	TerrainID   string
	StartAt     time.Time
	DurationMin int
	Capacity    int
}

func (s *SlotService) CreateSlot(ctx context.Context, in CreateSlotInput) (domain.Slot, error) {
	if in.TerrainID == "" {
		return domain.Slot{}, domain.ErrTerrainIDRequired
	}
	if !in.StartAt.After(s.clock.Now()) {
		return domain.Slot{}, domain.ErrInvalidStartAt
	}
	if in.DurationMin < 0 {
		return domain.Slot{}, domain.ErrInvalidDuration
	}
	if in.Capacity < 0 {
		return domain.Slot{}, domain.ErrInvalidCapacity
	}

	duration := in.DurationMin
	if duration == 0 {
		duration = defaultDurationMin
	}
	capacity := in.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}

	slot := domain.Slot{
		ID:          uuid.NewString(),
		TerrainID:   in.TerrainID,
		StartAt:     in.StartAt.UTC(),
		DurationMin: duration,
		Capacity:    capacity,
		Status:      domain.SlotStatusOpen,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return domain.Slot{}, err
	}
	return slot, nil
}

func (s *SlotService) ListBookable(ctx context.Context) ([]domain.Slot, error) {
	return s.repo.ListBookable(ctx)
}

// CancelSlot marks the slot CANCELLED. The transition is a conditional write
// from the observed status, so a reservation racing in between is not
// silently clobbered; on a lost race the cancel is retried from the fresh
// status. Cancelling an already cancelled slot is a no-op.
func (s *SlotService) CancelSlot(ctx context.Context, id string) (domain.Slot, error) {
	if id == "" {
		return domain.Slot{}, domain.ErrInvalidID
	}

	for {
		slot, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.Slot{}, err
		}
		if slot.Status == domain.SlotStatusCancelled {
			return slot, nil
		}

		ok, err := s.repo.TransitionStatus(ctx, id, slot.Status, domain.SlotStatusCancelled)
		if err != nil {
			return domain.Slot{}, err
		}
		if ok {
			slot.Status = domain.SlotStatusCancelled
			return slot, nil
		}
	}
}

func (s *SlotService) DeleteSlot(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (s *SlotService) DeleteAllSlots(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
