package app

import (
	"context"
	"strings"

	"github.com/Erblinn450/Spootfoot/internal/clock"
	"github.com/Erblinn450/Spootfoot/internal/domain"
	"github.com/Erblinn450/Spootfoot/internal/token"
	"github.com/google/uuid"
)

type SlotStore interface {
	GetByID(ctx context.Context, id string) (domain.Slot, error)
	SetStatus(ctx context.Context, id string, status domain.SlotStatus) error
	TransitionStatus(ctx context.Context, id string, from, to domain.SlotStatus) (bool, error)
}

type ReservationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, res domain.Reservation) error
	FindByTokenHash(ctx context.Context, tokenHash string) (domain.Reservation, error)
	BoundedIncrement(ctx context.Context, tokenHash string, capacity int) (int, error)
}

// TokenSource issues invitation secrets and their storage digests.
type TokenSource interface {
	Issue() (secret, digest string, err error)
}

// ReservationService coordinates slot status, reservation rows, and the
// invitation token lifecycle.
type ReservationService struct {
	slots        SlotStore
	reservations ReservationStore
	tokens       TokenSource
	clock        clock.Clock
	baseURL      string
}

const defaultBaseURL = "http://localhost:3000"

func NewReservationService(slots SlotStore, reservations ReservationStore, tokens TokenSource, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		slots:        slots,
		reservations: reservations,
		tokens:       tokens,
		clock:        clk,
		baseURL:      defaultBaseURL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithBaseURL sets the public base used when building invite links.
func WithBaseURL(u string) ReservationServiceOption {
	return func(s *ReservationService) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

type CreateReservationInput struct {
	SlotID         string
	OrganizerEmail string
}

type CreateReservationResult struct {
	ReservationID string
	InviteURL     string
}

// CreateReservation reserves an OPEN slot and hands back a shareable invite
// link. The reservation insert and the OPEN→RESERVED flip commit as one
// transaction; the flip is conditional on the slot still being OPEN, so of
// two racing organizers exactly one commits and the other sees ErrSlotNotOpen
// with nothing written. The plaintext secret lives only in the returned URL.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (CreateReservationResult, error) {
	slot, err := s.slots.GetByID(ctx, in.SlotID)
	if err != nil {
		return CreateReservationResult{}, err
	}
	if slot.Status != domain.SlotStatusOpen {
		return CreateReservationResult{}, domain.ErrSlotNotOpen
	}

	secret, digest, err := s.tokens.Issue()
	if err != nil {
		return CreateReservationResult{}, err
	}

	res := domain.Reservation{
		ID:             uuid.NewString(),
		SlotID:         slot.ID,
		OrganizerEmail: in.OrganizerEmail,
		TokenHash:      digest,
		AcceptedCount:  0,
		CreatedAt:      s.clock.Now(),
	}

	err = s.reservations.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.reservations.Create(txCtx, res); err != nil {
			return err
		}
		ok, err := s.slots.TransitionStatus(txCtx, slot.ID, domain.SlotStatusOpen, domain.SlotStatusReserved)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race; abort so the insert rolls back too.
			return domain.ErrSlotNotOpen
		}
		return nil
	})
	if err != nil {
		return CreateReservationResult{}, err
	}

	return CreateReservationResult{
		ReservationID: res.ID,
		InviteURL:     s.baseURL + "/i/" + secret,
	}, nil
}

type InvitationInfo struct {
	Slot      domain.Slot
	Remaining int
}

// GetInvitationInfo resolves a presented secret to the slot it invites to and
// the number of spots still available.
func (s *ReservationService) GetInvitationInfo(ctx context.Context, secret string) (InvitationInfo, error) {
	res, err := s.reservations.FindByTokenHash(ctx, token.Digest(secret))
	if err != nil {
		return InvitationInfo{}, err
	}
	slot, err := s.slots.GetByID(ctx, res.SlotID)
	if err != nil {
		return InvitationInfo{}, err
	}

	remaining := slot.Capacity - res.AcceptedCount
	if remaining < 0 {
		remaining = 0
	}
	return InvitationInfo{Slot: slot, Remaining: remaining}, nil
}

// Accept claims one spot on the invitation. The capacity check and the
// counter bump are delegated to the store as one conditional write, so
// concurrent accepts can never push the count past capacity. When the
// returned count saturates the slot, its status flips to FULL; repeating
// that flip is harmless.
func (s *ReservationService) Accept(ctx context.Context, secret string) (int, error) {
	digest := token.Digest(secret)

	res, err := s.reservations.FindByTokenHash(ctx, digest)
	if err != nil {
		return 0, err
	}
	slot, err := s.slots.GetByID(ctx, res.SlotID)
	if err != nil {
		return 0, err
	}

	count, err := s.reservations.BoundedIncrement(ctx, digest, slot.Capacity)
	if err != nil {
		return 0, err
	}

	if count >= slot.Capacity {
		if err := s.slots.SetStatus(ctx, slot.ID, domain.SlotStatusFull); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// Decline acknowledges an invitee's refusal. It only proves the invitation
// exists; no count is reversed and no spot frees up.
func (s *ReservationService) Decline(ctx context.Context, secret string) error {
	_, err := s.reservations.FindByTokenHash(ctx, token.Digest(secret))
	return err
}
