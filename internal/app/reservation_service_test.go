package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Erblinn450/Spootfoot/internal/clock"
	"github.com/Erblinn450/Spootfoot/internal/domain"
	"github.com/Erblinn450/Spootfoot/internal/token"
)

func TestReservationService_CreateReservation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(slots []domain.Slot) (*ReservationService, *fakeSlotStore, *fakeReservationStore) {
		slotStore := newFakeSlotStore(slots)
		resStore := newFakeReservationStore(slotStore, nil)
		svc := NewReservationService(slotStore, resStore, token.NewService(), clock.NewFixed(now),
			WithBaseURL("https://spootfoot.example"))
		return svc, slotStore, resStore
	}

	t.Run("reserves an open slot and returns an invite link", func(t *testing.T) {
		svc, slotStore, resStore := makeSvc([]domain.Slot{
			{ID: "slot-1", Capacity: 10, Status: domain.SlotStatusOpen},
		})

		res, err := svc.CreateReservation(context.Background(), CreateReservationInput{
			SlotID:         "slot-1",
			OrganizerEmail: "orga@example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.HasPrefix(res.InviteURL, "https://spootfoot.example/i/") {
			t.Fatalf("unexpected invite url %q", res.InviteURL)
		}
		secret := strings.TrimPrefix(res.InviteURL, "https://spootfoot.example/i/")
		if secret == "" {
			t.Fatalf("invite url carries no secret")
		}

		if got := slotStore.get("slot-1").Status; got != domain.SlotStatusReserved {
			t.Fatalf("expected slot RESERVED, got %s", got)
		}
		stored, err := resStore.FindByTokenHash(context.Background(), token.Digest(secret))
		if err != nil {
			t.Fatalf("reservation not stored under digest: %v", err)
		}
		if stored.AcceptedCount != 0 {
			t.Fatalf("expected accepted count 0, got %d", stored.AcceptedCount)
		}
		if stored.TokenHash == secret {
			t.Fatalf("plaintext secret was stored")
		}
		if stored.OrganizerEmail != "orga@example.com" {
			t.Fatalf("organizer email not stored")
		}
	})

	t.Run("unknown slot", func(t *testing.T) {
		svc, _, _ := makeSvc(nil)

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{SlotID: "nope"})
		if !errors.Is(err, domain.ErrSlotNotFound) {
			t.Fatalf("expected ErrSlotNotFound, got %v", err)
		}
	})

	t.Run("non-open slot is rejected without mutation", func(t *testing.T) {
		for _, status := range []domain.SlotStatus{domain.SlotStatusReserved, domain.SlotStatusFull, domain.SlotStatusCancelled} {
			svc, slotStore, resStore := makeSvc([]domain.Slot{
				{ID: "slot-1", Capacity: 10, Status: status},
			})

			_, err := svc.CreateReservation(context.Background(), CreateReservationInput{SlotID: "slot-1"})
			if !errors.Is(err, domain.ErrSlotNotOpen) {
				t.Fatalf("status %s: expected ErrSlotNotOpen, got %v", status, err)
			}
			if got := slotStore.get("slot-1").Status; got != status {
				t.Fatalf("status %s: slot mutated to %s", status, got)
			}
			if n := resStore.count(); n != 0 {
				t.Fatalf("status %s: expected no reservations, got %d", status, n)
			}
		}
	})

	t.Run("failed insert leaves the slot open", func(t *testing.T) {
		svc, slotStore, resStore := makeSvc([]domain.Slot{
			{ID: "slot-1", Capacity: 10, Status: domain.SlotStatusOpen},
		})
		resStore.failCreate = errors.New("boom")

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{SlotID: "slot-1"})
		if err == nil {
			t.Fatalf("expected error")
		}
		if got := slotStore.get("slot-1").Status; got != domain.SlotStatusOpen {
			t.Fatalf("expected slot still OPEN after rollback, got %s", got)
		}
		if n := resStore.count(); n != 0 {
			t.Fatalf("expected no reservation row after rollback, got %d", n)
		}
	})

	t.Run("lost status race rolls back the insert", func(t *testing.T) {
		svc, slotStore, resStore := makeSvc([]domain.Slot{
			{ID: "slot-1", Capacity: 10, Status: domain.SlotStatusOpen},
		})
		// Another organizer wins between the status check and the commit.
		resStore.beforeTransition = func() {
			slotStore.set("slot-1", domain.SlotStatusReserved)
		}

		_, err := svc.CreateReservation(context.Background(), CreateReservationInput{SlotID: "slot-1"})
		if !errors.Is(err, domain.ErrSlotNotOpen) {
			t.Fatalf("expected ErrSlotNotOpen, got %v", err)
		}
		if n := resStore.count(); n != 0 {
			t.Fatalf("expected insert rolled back, got %d reservations", n)
		}
	})
}

func TestReservationService_GetInvitationInfo(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	slotStore := newFakeSlotStore([]domain.Slot{
		{ID: "slot-1", StartAt: now.Add(24 * time.Hour), DurationMin: 60, Capacity: 10, Status: domain.SlotStatusReserved},
	})
	resStore := newFakeReservationStore(slotStore, []domain.Reservation{
		{ID: "res-1", SlotID: "slot-1", TokenHash: token.Digest("secret-1"), AcceptedCount: 3},
	})
	svc := NewReservationService(slotStore, resStore, token.NewService(), clock.NewFixed(now))

	t.Run("reports remaining spots", func(t *testing.T) {
		info, err := svc.GetInvitationInfo(context.Background(), "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.Remaining != 7 {
			t.Fatalf("expected 7 remaining, got %d", info.Remaining)
		}
		if info.Slot.ID != "slot-1" {
			t.Fatalf("expected slot-1, got %s", info.Slot.ID)
		}
	})

	t.Run("unknown secret", func(t *testing.T) {
		_, err := svc.GetInvitationInfo(context.Background(), "wrong")
		if !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})

	t.Run("remaining never goes negative", func(t *testing.T) {
		resStore.setCount("res-1", 12)
		defer resStore.setCount("res-1", 3)

		info, err := svc.GetInvitationInfo(context.Background(), "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.Remaining != 0 {
			t.Fatalf("expected remaining clamped to 0, got %d", info.Remaining)
		}
	})
}

func TestReservationService_Accept(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(capacity, accepted int) (*ReservationService, *fakeSlotStore, *fakeReservationStore) {
		slotStore := newFakeSlotStore([]domain.Slot{
			{ID: "slot-1", Capacity: capacity, Status: domain.SlotStatusReserved},
		})
		resStore := newFakeReservationStore(slotStore, []domain.Reservation{
			{ID: "res-1", SlotID: "slot-1", TokenHash: token.Digest("secret-1"), AcceptedCount: accepted},
		})
		svc := NewReservationService(slotStore, resStore, token.NewService(), clock.NewFixed(now))
		return svc, slotStore, resStore
	}

	t.Run("increments and returns the new count", func(t *testing.T) {
		svc, slotStore, _ := makeSvc(3, 0)

		count, err := svc.Accept(context.Background(), "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 1 {
			t.Fatalf("expected count 1, got %d", count)
		}
		if got := slotStore.get("slot-1").Status; got != domain.SlotStatusReserved {
			t.Fatalf("slot flipped early to %s", got)
		}
	})

	t.Run("saturating accept flips the slot to FULL", func(t *testing.T) {
		svc, slotStore, _ := makeSvc(3, 2)

		count, err := svc.Accept(context.Background(), "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 3 {
			t.Fatalf("expected count 3, got %d", count)
		}
		if got := slotStore.get("slot-1").Status; got != domain.SlotStatusFull {
			t.Fatalf("expected slot FULL, got %s", got)
		}
	})

	t.Run("accept after full stays rejected", func(t *testing.T) {
		svc, _, _ := makeSvc(2, 2)

		for i := 0; i < 3; i++ {
			_, err := svc.Accept(context.Background(), "secret-1")
			if !errors.Is(err, domain.ErrSlotFull) {
				t.Fatalf("call %d: expected ErrSlotFull, got %v", i, err)
			}
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _ := makeSvc(2, 0)

		_, err := svc.Accept(context.Background(), "wrong")
		if !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})

	t.Run("concurrent accepts never overshoot capacity", func(t *testing.T) {
		const capacity = 2
		const callers = 5
		svc, slotStore, resStore := makeSvc(capacity, 0)

		counts := make(chan int, callers)
		fulls := make(chan error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				count, err := svc.Accept(context.Background(), "secret-1")
				if err != nil {
					fulls <- err
					return
				}
				counts <- count
			}()
		}
		wg.Wait()
		close(counts)
		close(fulls)

		seen := make(map[int]bool)
		for c := range counts {
			if seen[c] {
				t.Fatalf("duplicate count %d returned", c)
			}
			seen[c] = true
		}
		if len(seen) != capacity {
			t.Fatalf("expected exactly %d successes, got %d", capacity, len(seen))
		}
		for c := range seen {
			if c < 1 || c > capacity {
				t.Fatalf("count %d out of range 1..%d", c, capacity)
			}
		}

		var saturated int
		for err := range fulls {
			if !errors.Is(err, domain.ErrSlotFull) {
				t.Fatalf("expected ErrSlotFull, got %v", err)
			}
			saturated++
		}
		if saturated != callers-capacity {
			t.Fatalf("expected %d saturated calls, got %d", callers-capacity, saturated)
		}

		if got := resStore.getCount("res-1"); got != capacity {
			t.Fatalf("accepted count %d exceeds capacity %d", got, capacity)
		}
		if got := slotStore.get("slot-1").Status; got != domain.SlotStatusFull {
			t.Fatalf("expected slot FULL, got %s", got)
		}
	})
}

func TestReservationService_Decline(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	slotStore := newFakeSlotStore([]domain.Slot{
		{ID: "slot-1", Capacity: 5, Status: domain.SlotStatusReserved},
	})
	resStore := newFakeReservationStore(slotStore, []domain.Reservation{
		{ID: "res-1", SlotID: "slot-1", TokenHash: token.Digest("secret-1"), AcceptedCount: 2},
	})
	svc := NewReservationService(slotStore, resStore, token.NewService(), clock.NewFixed(now))

	if err := svc.Decline(context.Background(), "secret-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := resStore.getCount("res-1"); got != 2 {
		t.Fatalf("decline mutated accepted count to %d", got)
	}
	if got := slotStore.get("slot-1").Status; got != domain.SlotStatusReserved {
		t.Fatalf("decline mutated slot status to %s", got)
	}

	if err := svc.Decline(context.Background(), "wrong"); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

// fakeSlotStore keeps slots in memory behind a mutex so concurrency tests
// exercise the same conditional-transition contract the repository offers.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]domain.Slot
}

func newFakeSlotStore(slots []domain.Slot) *fakeSlotStore {
	m := make(map[string]domain.Slot, len(slots))
	for _, s := range slots {
		m[s.ID] = s
	}
	return &fakeSlotStore{slots: m}
}

func (f *fakeSlotStore) GetByID(_ context.Context, id string) (domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return s, nil
}

func (f *fakeSlotStore) SetStatus(_ context.Context, id string, status domain.SlotStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return domain.ErrSlotNotFound
	}
	s.Status = status
	f.slots[id] = s
	return nil
}

func (f *fakeSlotStore) TransitionStatus(_ context.Context, id string, from, to domain.SlotStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	f.slots[id] = s
	return true, nil
}

func (f *fakeSlotStore) get(id string) domain.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id]
}

func (f *fakeSlotStore) set(id string, status domain.SlotStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.slots[id]
	s.Status = status
	f.slots[id] = s
}

// fakeReservationStore mirrors the repository contract: WithTx snapshots
// state and restores it when fn fails, and BoundedIncrement is atomic under
// the mutex.
type fakeReservationStore struct {
	mu           sync.Mutex
	slots        *fakeSlotStore
	reservations map[string]domain.Reservation // keyed by token hash

	failCreate       error
	beforeTransition func()
}

func newFakeReservationStore(slots *fakeSlotStore, reservations []domain.Reservation) *fakeReservationStore {
	m := make(map[string]domain.Reservation, len(reservations))
	for _, r := range reservations {
		m[r.TokenHash] = r
	}
	return &fakeReservationStore{slots: slots, reservations: m}
}

func (f *fakeReservationStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	resSnapshot := make(map[string]domain.Reservation, len(f.reservations))
	for k, v := range f.reservations {
		resSnapshot[k] = v
	}
	f.mu.Unlock()

	f.slots.mu.Lock()
	slotSnapshot := make(map[string]domain.Slot, len(f.slots.slots))
	for k, v := range f.slots.slots {
		slotSnapshot[k] = v
	}
	f.slots.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.reservations = resSnapshot
		f.mu.Unlock()
		f.slots.mu.Lock()
		f.slots.slots = slotSnapshot
		f.slots.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeReservationStore) Create(_ context.Context, res domain.Reservation) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.mu.Lock()
	f.reservations[res.TokenHash] = res
	f.mu.Unlock()
	if f.beforeTransition != nil {
		f.beforeTransition()
	}
	return nil
}

func (f *fakeReservationStore) FindByTokenHash(_ context.Context, tokenHash string) (domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[tokenHash]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeReservationStore) BoundedIncrement(_ context.Context, tokenHash string, capacity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[tokenHash]
	if !ok {
		return 0, domain.ErrReservationNotFound
	}
	if r.AcceptedCount >= capacity {
		return 0, domain.ErrSlotFull
	}
	r.AcceptedCount++
	f.reservations[tokenHash] = r
	return r.AcceptedCount, nil
}

func (f *fakeReservationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reservations)
}

func (f *fakeReservationStore) getCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ID == id {
			return r.AcceptedCount
		}
	}
	return -1
}

func (f *fakeReservationStore) setCount(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.reservations {
		if r.ID == id {
			r.AcceptedCount = n
			f.reservations[k] = r
		}
	}
}
