package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// ProfileRepository owns the win/loss/battle aggregates. Outcome application
// is idempotent per (room, user) so the queue may deliver at least once.
type ProfileRepository interface {
	ApplyMatchOutcome(ctx context.Context, roomID, userID string, won bool) error
}

type pgProfileRepository struct {
	db *sql.DB
}

func NewPgProfileRepository(db *sql.DB) ProfileRepository {
	return &pgProfileRepository{db: db}
}

func (r *pgProfileRepository) ApplyMatchOutcome(ctx context.Context, roomID, userID string, won bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProfileRepository.ApplyMatchOutcome begin: %w", err)
	}
	defer tx.Rollback()

	// Dedup row first; if it already exists the outcome was applied before.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO profile_outcomes (room_id, user_id, won) VALUES ($1, $2, $3)
		 ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, userID, won)
	if err != nil {
		return fmt.Errorf("pgProfileRepository.ApplyMatchOutcome dedup insert: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProfileRepository.ApplyMatchOutcome rows affected: %w", err)
	}
	if inserted == 0 {
		return tx.Commit() // Replayed delivery; counters already incremented.
	}

	winInc := 0
	lossInc := 1
	if won {
		winInc = 1
		lossInc = 0
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE user_profiles
		 SET total_win = total_win + $1, total_loss = total_loss + $2, total_battle = total_battle + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = $3`,
		winInc, lossInc, userID)
	if err != nil {
		return fmt.Errorf("pgProfileRepository.ApplyMatchOutcome increment: %w", err)
	}

	return tx.Commit()
}
