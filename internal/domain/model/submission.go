package model

import "time"

type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "PENDING"
	StatusAccepted          SubmissionStatus = "ACCEPTED"
	StatusWrongAnswer       SubmissionStatus = "WRONG_ANSWER"
	StatusRuntimeError      SubmissionStatus = "RUNTIME_ERROR"
	StatusCompilationError  SubmissionStatus = "COMPILATION_ERROR"
	StatusTimeLimitExceeded SubmissionStatus = "TIME_LIMIT_EXCEEDED"
	StatusSystemError       SubmissionStatus = "SYSTEM_ERROR" // Sandbox failure, not a test verdict
)

type Submission struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	RoomID       string       `json:"room_id"`
	QuestionKind QuestionKind `json:"question_kind"`

	CodingQuestionID *string `json:"coding_question_id,omitempty"`
	Language         *string `json:"language,omitempty"`
	LanguageVersion  *string `json:"language_version,omitempty"`
	SourceCode       *string `json:"source_code,omitempty"`

	McqQuestionID *string `json:"mcq_question_id,omitempty"`
	McqOptionID   *string `json:"mcq_option_id,omitempty"`
	IsCorrect     *bool   `json:"is_correct,omitempty"`

	AttemptNumber    int              `json:"attempt_number"`
	Status           SubmissionStatus `json:"status"`
	Score            int              `json:"score"`
	ExecutionTimeSec float64          `json:"execution_time_sec"`
	MemoryKb         float64          `json:"memory_kb"`
	PassedTestCases  int              `json:"passed_test_cases"`
	TotalTestCases   int              `json:"total_test_cases"`
	JudgeMessage     *string          `json:"judge_message,omitempty"`
	SubmittedAt      time.Time        `json:"submitted_at"`
}

// UserScore is one participant's aggregate of ACCEPTED submission points
// within a room.
type UserScore struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// QuestionStatus summarises one assigned question for one participant.
type QuestionStatus struct {
	QuestionID string `json:"question_id"`
	Solved     bool   `json:"solved"`
	Attempts   int    `json:"attempts"`
}
