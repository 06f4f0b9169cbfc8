package repository

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	// CountAttempts counts prior attempts for (user, room, question),
	// matching either the coding or the mcq question column.
	CountAttempts(ctx context.Context, tx *sql.Tx, userID, roomID, questionID string) (int, error)
	SumAcceptedScores(ctx context.Context, roomID string) ([]model.UserScore, error)
	ListUserRoomSubmissions(ctx context.Context, userID, roomID string) ([]model.Submission, error)
	HasAcceptedSubmission(ctx context.Context, userID, roomID, questionID string) (bool, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, room_id, question_kind, coding_question_id, language, language_version, source_code,
	              mcq_question_id, mcq_option_id, is_correct, attempt_number, status, score, execution_time_sec, memory_kb,
	              passed_test_cases, total_test_cases, judge_message, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, s.ID, s.UserID, s.RoomID, s.QuestionKind, s.CodingQuestionID, s.Language, s.LanguageVersion, s.SourceCode,
			s.McqQuestionID, s.McqOptionID, s.IsCorrect, s.AttemptNumber, s.Status, s.Score, s.ExecutionTimeSec, s.MemoryKb,
			s.PassedTestCases, s.TotalTestCases, s.JudgeMessage, s.SubmittedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, s.ID, s.UserID, s.RoomID, s.QuestionKind, s.CodingQuestionID, s.Language, s.LanguageVersion, s.SourceCode,
			s.McqQuestionID, s.McqOptionID, s.IsCorrect, s.AttemptNumber, s.Status, s.Score, s.ExecutionTimeSec, s.MemoryKb,
			s.PassedTestCases, s.TotalTestCases, s.JudgeMessage, s.SubmittedAt)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique index on (user_id, room_id, mcq_question_id)
			return fmt.Errorf("answer already submitted for this question: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) CountAttempts(ctx context.Context, tx *sql.Tx, userID, roomID, questionID string) (int, error) {
	query := `SELECT COUNT(*) FROM submissions
	          WHERE user_id = $1 AND room_id = $2 AND (coding_question_id = $3 OR mcq_question_id = $3)`
	var count int
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, userID, roomID, questionID).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, query, userID, roomID, questionID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountAttempts: %w", err)
	}
	return count, nil
}

// SumAcceptedScores aggregates each participant's ACCEPTED points. For coding
// rooms only the best attempt per question counts, so scores are deduplicated
// per question before summing.
func (r *pgSubmissionRepository) SumAcceptedScores(ctx context.Context, roomID string) ([]model.UserScore, error) {
	query := `
        SELECT user_id, COALESCE(SUM(max_score), 0)
        FROM (
            SELECT user_id, COALESCE(coding_question_id, mcq_question_id) AS question_id, MAX(score) AS max_score
            FROM submissions
            WHERE room_id = $1 AND status = 'ACCEPTED'
            GROUP BY user_id, COALESCE(coding_question_id, mcq_question_id)
        ) per_question
        GROUP BY user_id`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.SumAcceptedScores query: %w", err)
	}
	defer rows.Close()

	var scores []model.UserScore
	for rows.Next() {
		var us model.UserScore
		if err := rows.Scan(&us.UserID, &us.Score); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.SumAcceptedScores scan: %w", err)
		}
		scores = append(scores, us)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.SumAcceptedScores rows.Err: %w", err)
	}
	return scores, nil
}

func (r *pgSubmissionRepository) ListUserRoomSubmissions(ctx context.Context, userID, roomID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, room_id, question_kind, coding_question_id, language, language_version,
	                 mcq_question_id, mcq_option_id, is_correct, attempt_number, status, score,
	                 execution_time_sec, memory_kb, passed_test_cases, total_test_cases, judge_message, submitted_at
	          FROM submissions WHERE user_id = $1 AND room_id = $2 ORDER BY submitted_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions query: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.RoomID, &s.QuestionKind, &s.CodingQuestionID, &s.Language, &s.LanguageVersion,
			&s.McqQuestionID, &s.McqOptionID, &s.IsCorrect, &s.AttemptNumber, &s.Status, &s.Score,
			&s.ExecutionTimeSec, &s.MemoryKb, &s.PassedTestCases, &s.TotalTestCases, &s.JudgeMessage, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) HasAcceptedSubmission(ctx context.Context, userID, roomID, questionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM submissions
	          WHERE user_id = $1 AND room_id = $2 AND (coding_question_id = $3 OR mcq_question_id = $3) AND status = 'ACCEPTED')`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, roomID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.HasAcceptedSubmission: %w", err)
	}
	return exists, nil
}
