package repository

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// QuestionRepository is read-only: the question catalog is authored by a
// separate surface and this component only consumes it.
type QuestionRepository interface {
	SampleCodingQuestionIDs(ctx context.Context, difficulty model.Difficulty, count int) ([]string, error)
	SampleMcqQuestionIDs(ctx context.Context, difficulty model.Difficulty, count int) ([]string, error)
	FindCodingQuestionByID(ctx context.Context, id string) (*model.CodingQuestion, error)
	GetTestCasesByQuestionID(ctx context.Context, questionID string) ([]model.TestCase, error)
	GetStarterCodesByQuestionID(ctx context.Context, questionID string) ([]model.StarterCode, error)
	FindMcqQuestionByID(ctx context.Context, id string) (*model.McqQuestion, error)
	GetMcqOptionsByQuestionID(ctx context.Context, questionID string) ([]model.McqOption, error)
	FindMcqOptionByID(ctx context.Context, id string) (*model.McqOption, error)
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

func (r *pgQuestionRepository) SampleCodingQuestionIDs(ctx context.Context, difficulty model.Difficulty, count int) ([]string, error) {
	query := `SELECT id FROM coding_questions WHERE difficulty = $1 ORDER BY random() LIMIT $2`
	return r.sampleIDs(ctx, query, difficulty, count, "SampleCodingQuestionIDs")
}

func (r *pgQuestionRepository) SampleMcqQuestionIDs(ctx context.Context, difficulty model.Difficulty, count int) ([]string, error) {
	query := `SELECT id FROM mcq_questions WHERE difficulty = $1 ORDER BY random() LIMIT $2`
	return r.sampleIDs(ctx, query, difficulty, count, "SampleMcqQuestionIDs")
}

func (r *pgQuestionRepository) sampleIDs(ctx context.Context, query string, difficulty model.Difficulty, count int, op string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.%s scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.%s rows.Err: %w", op, err)
	}
	return ids, nil
}

func (r *pgQuestionRepository) FindCodingQuestionByID(ctx context.Context, id string) (*model.CodingQuestion, error) {
	query := `SELECT id, title, slug, description, difficulty, points, input_format, output_format, constraints, time_limit_sec, created_at, updated_at
	          FROM coding_questions WHERE id = $1`
	q := &model.CodingQuestion{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Title, &q.Slug, &q.Description, &q.Difficulty, &q.Points,
		&q.InputFormat, &q.OutputFormat, &q.Constraints, &q.TimeLimitSec,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindCodingQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) GetTestCasesByQuestionID(ctx context.Context, questionID string) ([]model.TestCase, error) {
	query := `SELECT id, coding_question_id, input, expected_output, is_sample, order_index, explanation, created_at
	          FROM test_cases WHERE coding_question_id = $1 ORDER BY order_index ASC`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetTestCasesByQuestionID query: %w", err)
	}
	defer rows.Close()

	var testCases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.CodingQuestionID, &tc.Input, &tc.ExpectedOutput, &tc.IsSample, &tc.OrderIndex, &tc.Explanation, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.GetTestCasesByQuestionID scan: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetTestCasesByQuestionID rows.Err: %w", err)
	}
	return testCases, nil
}

func (r *pgQuestionRepository) GetStarterCodesByQuestionID(ctx context.Context, questionID string) ([]model.StarterCode, error) {
	query := `SELECT id, coding_question_id, language, version, code_template
	          FROM starter_codes WHERE coding_question_id = $1 ORDER BY language ASC`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetStarterCodesByQuestionID query: %w", err)
	}
	defer rows.Close()

	var starters []model.StarterCode
	for rows.Next() {
		var sc model.StarterCode
		if err := rows.Scan(&sc.ID, &sc.CodingQuestionID, &sc.Language, &sc.Version, &sc.CodeTemplate); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.GetStarterCodesByQuestionID scan: %w", err)
		}
		starters = append(starters, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetStarterCodesByQuestionID rows.Err: %w", err)
	}
	return starters, nil
}

func (r *pgQuestionRepository) FindMcqQuestionByID(ctx context.Context, id string) (*model.McqQuestion, error) {
	query := `SELECT id, title, description, difficulty, points, created_at, updated_at
	          FROM mcq_questions WHERE id = $1`
	q := &model.McqQuestion{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Title, &q.Description, &q.Difficulty, &q.Points, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindMcqQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) GetMcqOptionsByQuestionID(ctx context.Context, questionID string) ([]model.McqOption, error) {
	query := `SELECT id, mcq_question_id, option_text, is_correct
	          FROM mcq_options WHERE mcq_question_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetMcqOptionsByQuestionID query: %w", err)
	}
	defer rows.Close()

	var options []model.McqOption
	for rows.Next() {
		var opt model.McqOption
		if err := rows.Scan(&opt.ID, &opt.McqQuestionID, &opt.OptionText, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.GetMcqOptionsByQuestionID scan: %w", err)
		}
		options = append(options, opt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.GetMcqOptionsByQuestionID rows.Err: %w", err)
	}
	return options, nil
}

func (r *pgQuestionRepository) FindMcqOptionByID(ctx context.Context, id string) (*model.McqOption, error) {
	query := `SELECT id, mcq_question_id, option_text, is_correct FROM mcq_options WHERE id = $1`
	opt := &model.McqOption{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&opt.ID, &opt.McqQuestionID, &opt.OptionText, &opt.IsCorrect)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindMcqOptionByID: %w", err)
	}
	return opt, nil
}
