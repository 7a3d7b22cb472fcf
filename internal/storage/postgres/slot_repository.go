package postgres

import (
	"context"
	"fmt"

	"github.com/Erblinn450/Spootfoot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func (r *SlotRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SlotRepository) GetByID(ctx context.Context, id string) (domain.Slot, error) {
	const query = `
SELECT id, terrain_id, start_at, duration_min, capacity, status, created_at
FROM slots
WHERE id = $1`

	var s domain.Slot
	err := r.queryRow(ctx, query, id).
		Scan(&s.ID, &s.TerrainID, &s.StartAt, &s.DurationMin, &s.Capacity, &s.Status, &s.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Slot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Slot{}, domain.ErrSlotNotFound
		}
		return domain.Slot{}, fmt.Errorf("get slot: %w", err)
	}
	return s, nil
}

// ListBookable returns non-cancelled slots ordered by start time ascending.
func (r *SlotRepository) ListBookable(ctx context.Context) ([]domain.Slot, error) {
	const query = `
SELECT id, terrain_id, start_at, duration_min, capacity, status, created_at
FROM slots
WHERE status IN ('OPEN', 'RESERVED', 'FULL')
ORDER BY start_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.TerrainID, &s.StartAt, &s.DurationMin, &s.Capacity, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate slots: %w", rows.Err())
	}
	return slots, nil
}

func (r *SlotRepository) Create(ctx context.Context, slot domain.Slot) error {
	const stmt = `
INSERT INTO slots (id, terrain_id, start_at, duration_min, capacity, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		slot.ID,
		slot.TerrainID,
		slot.StartAt,
		slot.DurationMin,
		slot.Capacity,
		slot.Status,
		slot.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// SetStatus writes the status unconditionally. Transition legality is the
// caller's concern; use TransitionStatus when the previous status matters.
func (r *SlotRepository) SetStatus(ctx context.Context, id string, status domain.SlotStatus) error {
	const stmt = `UPDATE slots SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set slot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

// TransitionStatus flips the status only if the slot currently holds from.
// The condition and the write are one statement, so two racing callers can
// never both win. Returns false when the slot exists but is not in from.
func (r *SlotRepository) TransitionStatus(ctx context.Context, id string, from, to domain.SlotStatus) (bool, error) {
	const stmt = `UPDATE slots SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, id, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("transition slot status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) Delete(ctx context.Context, id string) (bool, error) {
	const stmt = `DELETE FROM slots WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("delete slot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SlotRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.exec(ctx, `DELETE FROM slots`)
	if err != nil {
		return 0, fmt.Errorf("delete all slots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SlotRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SlotRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
