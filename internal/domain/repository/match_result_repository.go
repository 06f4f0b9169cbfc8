package repository

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type MatchResultRepository interface {
	FindByRoomAndUser(ctx context.Context, roomID, userID string) (*model.MatchResult, error)
	// UpsertFinished marks the participant finished at finishedAt, creating
	// the row if absent. Re-running for an already finished participant is a
	// no-op that preserves the original finished_at.
	UpsertFinished(ctx context.Context, tx *sql.Tx, id, roomID, userID string, finishedAt time.Time) error
	CountFinished(ctx context.Context, roomID string) (int, error)
	UpdateFinal(ctx context.Context, tx *sql.Tx, roomID, userID string, score int, totalTimeSec int64, winner bool) error
	ListByRoom(ctx context.Context, roomID string) ([]model.MatchResult, error)
}

type pgMatchResultRepository struct {
	db *sql.DB
}

func NewPgMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &pgMatchResultRepository{db: db}
}

func (r *pgMatchResultRepository) FindByRoomAndUser(ctx context.Context, roomID, userID string) (*model.MatchResult, error) {
	query := `SELECT id, room_id, user_id, score, total_time_sec, winner, finished, finished_at, created_at, updated_at
	          FROM match_results WHERE room_id = $1 AND user_id = $2`
	mr := &model.MatchResult{}
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(
		&mr.ID, &mr.RoomID, &mr.UserID, &mr.Score, &mr.TotalTimeSec, &mr.Winner, &mr.Finished, &mr.FinishedAt, &mr.CreatedAt, &mr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMatchResultRepository.FindByRoomAndUser: %w", err)
	}
	return mr, nil
}

func (r *pgMatchResultRepository) UpsertFinished(ctx context.Context, tx *sql.Tx, id, roomID, userID string, finishedAt time.Time) error {
	// The WHERE guard keeps the first finished_at when a participant
	// re-signals; the unique (room_id, user_id) index backs the conflict.
	query := `INSERT INTO match_results (id, room_id, user_id, finished, finished_at)
	          VALUES ($1, $2, $3, TRUE, $4)
	          ON CONFLICT (room_id, user_id)
	          DO UPDATE SET finished = TRUE, finished_at = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE match_results.finished = FALSE`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id, roomID, userID, finishedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, id, roomID, userID, finishedAt)
	}
	if err != nil {
		return fmt.Errorf("pgMatchResultRepository.UpsertFinished: %w", err)
	}
	return nil
}

func (r *pgMatchResultRepository) CountFinished(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_results WHERE room_id = $1 AND finished = TRUE`, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgMatchResultRepository.CountFinished: %w", err)
	}
	return count, nil
}

func (r *pgMatchResultRepository) UpdateFinal(ctx context.Context, tx *sql.Tx, roomID, userID string, score int, totalTimeSec int64, winner bool) error {
	query := `UPDATE match_results SET score = $1, total_time_sec = $2, winner = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE room_id = $4 AND user_id = $5`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, score, totalTimeSec, winner, roomID, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, score, totalTimeSec, winner, roomID, userID)
	}
	if err != nil {
		return fmt.Errorf("pgMatchResultRepository.UpdateFinal: %w", err)
	}
	return nil
}

func (r *pgMatchResultRepository) ListByRoom(ctx context.Context, roomID string) ([]model.MatchResult, error) {
	query := `SELECT mr.id, mr.room_id, mr.user_id, u.username, mr.score, mr.total_time_sec, mr.winner, mr.finished, mr.finished_at, mr.created_at, mr.updated_at
	          FROM match_results mr
	          JOIN users u ON mr.user_id = u.id
	          WHERE mr.room_id = $1 ORDER BY mr.user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgMatchResultRepository.ListByRoom query: %w", err)
	}
	defer rows.Close()

	var results []model.MatchResult
	for rows.Next() {
		var mr model.MatchResult
		if err := rows.Scan(&mr.ID, &mr.RoomID, &mr.UserID, &mr.Username, &mr.Score, &mr.TotalTimeSec, &mr.Winner, &mr.Finished, &mr.FinishedAt, &mr.CreatedAt, &mr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgMatchResultRepository.ListByRoom scan: %w", err)
		}
		results = append(results, mr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMatchResultRepository.ListByRoom rows.Err: %w", err)
	}
	return results, nil
}
