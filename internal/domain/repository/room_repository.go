package repository

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error
	FindRoomByCode(ctx context.Context, roomCode int) (*model.Room, error)
	// FindRoomByCodeForUpdate reads the room under a row-scoped exclusive
	// lock. It must run inside a transaction; the lock is held until that
	// transaction commits or rolls back.
	FindRoomByCodeForUpdate(ctx context.Context, tx *sql.Tx, roomCode int) (*model.Room, error)
	UpdateRoomJoin(ctx context.Context, tx *sql.Tx, roomID, joinerID string, status model.RoomStatus) error
	UpdateRoomStart(ctx context.Context, tx *sql.Tx, roomID string, startedAt, expiryTime time.Time) error
	UpdateRoomCompleted(ctx context.Context, tx *sql.Tx, roomID string, endedAt time.Time) error
	UpdateRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status model.RoomStatus) error
	RoomCodeExists(ctx context.Context, roomCode int) (bool, error)
}

type pgRoomRepository struct {
	db *sql.DB
}

func NewPgRoomRepository(db *sql.DB) RoomRepository {
	return &pgRoomRepository{db: db}
}

const roomColumns = `r.id, r.room_code, r.created_by, cb.username, r.joined_by, jb.username,
       r.status, r.question_kind, r.difficulty, r.question_count, r.duration_minutes,
       r.started_at, r.expiry_time, r.ended_at, r.created_at, r.updated_at`

func (r *pgRoomRepository) CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	query := `INSERT INTO rooms (id, room_code, created_by, status, question_kind, difficulty, question_count, duration_minutes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, room.ID, room.RoomCode, room.CreatedByID, room.Status, room.QuestionKind, room.Difficulty, room.QuestionCount, room.DurationMinutes)
	} else {
		_, err = r.db.ExecContext(ctx, query, room.ID, room.RoomCode, room.CreatedByID, room.Status, room.QuestionKind, room.Difficulty, room.QuestionCount, room.DurationMinutes)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for room_code
			return fmt.Errorf("room with this code already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRoomRepository.CreateRoom: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) FindRoomByCode(ctx context.Context, roomCode int) (*model.Room, error) {
	query := `
        SELECT ` + roomColumns + `
        FROM rooms r
        JOIN users cb ON r.created_by = cb.id
        LEFT JOIN users jb ON r.joined_by = jb.id
        WHERE r.room_code = $1 AND r.is_deleted = FALSE`

	return r.scanRoom(r.db.QueryRowContext(ctx, query, roomCode))
}

func (r *pgRoomRepository) FindRoomByCodeForUpdate(ctx context.Context, tx *sql.Tx, roomCode int) (*model.Room, error) {
	if tx == nil {
		return nil, fmt.Errorf("pgRoomRepository.FindRoomByCodeForUpdate: transaction required")
	}
	// FOR UPDATE OF r: lock only the room row, not the joined user rows.
	query := `
        SELECT ` + roomColumns + `
        FROM rooms r
        JOIN users cb ON r.created_by = cb.id
        LEFT JOIN users jb ON r.joined_by = jb.id
        WHERE r.room_code = $1 AND r.is_deleted = FALSE
        FOR UPDATE OF r`

	return r.scanRoom(tx.QueryRowContext(ctx, query, roomCode))
}

func (r *pgRoomRepository) scanRoom(row *sql.Row) (*model.Room, error) {
	room := &model.Room{}
	err := row.Scan(
		&room.ID, &room.RoomCode, &room.CreatedByID, &room.CreatedByName, &room.JoinedByID, &room.JoinedByName,
		&room.Status, &room.QuestionKind, &room.Difficulty, &room.QuestionCount, &room.DurationMinutes,
		&room.StartedAt, &room.ExpiryTime, &room.EndedAt, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoomRepository.scanRoom: %w", err)
	}
	return room, nil
}

func (r *pgRoomRepository) UpdateRoomJoin(ctx context.Context, tx *sql.Tx, roomID, joinerID string, status model.RoomStatus) error {
	query := `UPDATE rooms SET joined_by = $1, status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, joinerID, status, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, joinerID, status, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateRoomJoin: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) UpdateRoomStart(ctx context.Context, tx *sql.Tx, roomID string, startedAt, expiryTime time.Time) error {
	query := `UPDATE rooms SET status = $1, started_at = $2, expiry_time = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, model.RoomActive, startedAt, expiryTime, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, model.RoomActive, startedAt, expiryTime, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateRoomStart: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) UpdateRoomCompleted(ctx context.Context, tx *sql.Tx, roomID string, endedAt time.Time) error {
	query := `UPDATE rooms SET status = $1, ended_at = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, model.RoomCompleted, endedAt, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, model.RoomCompleted, endedAt, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateRoomCompleted: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) UpdateRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status model.RoomStatus) error {
	query := `UPDATE rooms SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateRoomStatus: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) RoomCodeExists(ctx context.Context, roomCode int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = $1 AND is_deleted = FALSE)`,
		roomCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.RoomCodeExists: %w", err)
	}
	return exists, nil
}
