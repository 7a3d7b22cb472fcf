package postgres

import (
	"context"
	"fmt"

	"github.com/Erblinn450/Spootfoot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) Create(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, slot_id, organizer_email, token_hash, accepted_count, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.SlotID,
		res.OrganizerEmail,
		res.TokenHash,
		res.AcceptedCount,
		res.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrSlotNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("token hash collision: %w", err)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) FindByTokenHash(ctx context.Context, tokenHash string) (domain.Reservation, error) {
	const query = `
SELECT id, slot_id, COALESCE(organizer_email, ''), token_hash, accepted_count, created_at
FROM reservations
WHERE token_hash = $1`

	var res domain.Reservation
	err := r.queryRow(ctx, query, tokenHash).
		Scan(&res.ID, &res.SlotID, &res.OrganizerEmail, &res.TokenHash, &res.AcceptedCount, &res.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

// BoundedIncrement bumps accepted_count by one, but only while it is below
// capacity. Check and mutation are a single conditional UPDATE, so any number
// of concurrent callers get distinct counts and the bound is never overshot.
// Returns ErrSlotFull once the counter is saturated and ErrReservationNotFound
// when no reservation carries the digest.
func (r *ReservationRepository) BoundedIncrement(ctx context.Context, tokenHash string, capacity int) (int, error) {
	const stmt = `
UPDATE reservations
SET accepted_count = accepted_count + 1
WHERE token_hash = $1 AND accepted_count < $2
RETURNING accepted_count`

	var count int
	err := r.queryRow(ctx, stmt, tokenHash, capacity).Scan(&count)
	if err == nil {
		return count, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("bounded increment: %w", err)
	}

	// Zero rows: either the digest misses or the guard condition failed.
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM reservations WHERE token_hash = $1)`
	var exists bool
	if err := r.queryRow(ctx, existsQuery, tokenHash).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check reservation: %w", err)
	}
	if !exists {
		return 0, domain.ErrReservationNotFound
	}
	return 0, domain.ErrSlotFull
}

func (r *ReservationRepository) CountBySlot(ctx context.Context, slotID string) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE slot_id = $1`

	var n int
	if err := r.queryRow(ctx, query, slotID).Scan(&n); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
