package model

import "time"

type CodingQuestion struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	Difficulty   Difficulty `json:"difficulty"`
	Points       int        `json:"points"`
	InputFormat  string     `json:"input_format"`
	OutputFormat string     `json:"output_format"`
	Constraints  string     `json:"constraints"`
	TimeLimitSec int        `json:"time_limit_sec"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	TestCases    []TestCase    `json:"test_cases,omitempty"`
	StarterCodes []StarterCode `json:"starter_codes,omitempty"`
}

type TestCase struct {
	ID               string    `json:"id"`
	CodingQuestionID string    `json:"coding_question_id"`
	Input            string    `json:"input"`
	ExpectedOutput   string    `json:"expected_output"`
	IsSample         bool      `json:"is_sample"`
	OrderIndex       int       `json:"order_index"`
	Explanation      *string   `json:"explanation,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type StarterCode struct {
	ID               string `json:"id"`
	CodingQuestionID string `json:"coding_question_id"`
	Language         string `json:"language"`
	Version          string `json:"version"`
	CodeTemplate     string `json:"code_template"`
}

type McqQuestion struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Points      int        `json:"points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Options []McqOption `json:"options,omitempty"`
}

type McqOption struct {
	ID            string `json:"id"`
	McqQuestionID string `json:"mcq_question_id"`
	OptionText    string `json:"option_text"`
	IsCorrect     bool   `json:"is_correct"`
}
