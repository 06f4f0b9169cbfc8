package repository

import (
	"code_arena/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type RoomQuestionRepository interface {
	AddRoomQuestions(ctx context.Context, tx *sql.Tx, questions []model.RoomQuestion) error
	GetRoomQuestions(ctx context.Context, roomID string) ([]model.RoomQuestion, error)
	// HasRoomQuestions reports whether the room's question set is already
	// assigned. Pass the start transaction so the check runs under the room
	// row lock.
	HasRoomQuestions(ctx context.Context, tx *sql.Tx, roomID string) (bool, error)
}

type pgRoomQuestionRepository struct {
	db *sql.DB
}

func NewPgRoomQuestionRepository(db *sql.DB) RoomQuestionRepository {
	return &pgRoomQuestionRepository{db: db}
}

func (r *pgRoomQuestionRepository) AddRoomQuestions(ctx context.Context, tx *sql.Tx, questions []model.RoomQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO room_questions (id, room_id, question_kind, coding_question_id, mcq_question_id, question_order)
	                                     VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgRoomQuestionRepository.AddRoomQuestions prepare: %w", err)
	}
	defer stmt.Close()

	for _, rq := range questions {
		_, err := stmt.ExecContext(ctx, rq.ID, rq.RoomID, rq.QuestionKind, rq.CodingQuestionID, rq.McqQuestionID, rq.QuestionOrder)
		if err != nil {
			return fmt.Errorf("pgRoomQuestionRepository.AddRoomQuestions exec for question %s: %w", rq.ID, err)
		}
	}
	return nil
}

func (r *pgRoomQuestionRepository) GetRoomQuestions(ctx context.Context, roomID string) ([]model.RoomQuestion, error) {
	query := `SELECT id, room_id, question_kind, coding_question_id, mcq_question_id, question_order, created_at
	          FROM room_questions WHERE room_id = $1 ORDER BY question_order ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgRoomQuestionRepository.GetRoomQuestions query: %w", err)
	}
	defer rows.Close()

	var questions []model.RoomQuestion
	for rows.Next() {
		var rq model.RoomQuestion
		if err := rows.Scan(&rq.ID, &rq.RoomID, &rq.QuestionKind, &rq.CodingQuestionID, &rq.McqQuestionID, &rq.QuestionOrder, &rq.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgRoomQuestionRepository.GetRoomQuestions scan: %w", err)
		}
		questions = append(questions, rq)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoomQuestionRepository.GetRoomQuestions rows.Err: %w", err)
	}
	return questions, nil
}

func (r *pgRoomQuestionRepository) HasRoomQuestions(ctx context.Context, tx *sql.Tx, roomID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM room_questions WHERE room_id = $1)`
	var exists bool
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, roomID).Scan(&exists)
	} else {
		err = r.db.QueryRowContext(ctx, query, roomID).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("pgRoomQuestionRepository.HasRoomQuestions: %w", err)
	}
	return exists, nil
}
