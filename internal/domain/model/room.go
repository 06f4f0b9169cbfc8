package model

import (
	"code_arena/internal/common"
	"time"
)

type RoomStatus string
type Difficulty string
type QuestionKind string

const (
	RoomWaiting    RoomStatus = "WAITING"
	RoomInProgress RoomStatus = "IN_PROGRESS"
	RoomActive     RoomStatus = "ACTIVE"
	RoomCompleted  RoomStatus = "COMPLETED"
	RoomExpired    RoomStatus = "EXPIRED"

	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	DifficultyMixed  Difficulty = "MIXED"

	KindCoding QuestionKind = "CODING"
	KindMcq    QuestionKind = "MCQ"
)

type Room struct {
	ID              string       `json:"id"`
	RoomCode        int          `json:"room_code"`
	CreatedByID     string       `json:"created_by_id"`
	JoinedByID      *string      `json:"joined_by_id,omitempty"`
	Status          RoomStatus   `json:"status"`
	QuestionKind    QuestionKind `json:"question_kind"`
	Difficulty      Difficulty   `json:"difficulty"`
	QuestionCount   int          `json:"question_count"`
	DurationMinutes int          `json:"duration_minutes"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	ExpiryTime      *time.Time   `json:"expiry_time,omitempty"`
	EndedAt         *time.Time   `json:"ended_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	CreatedByName *string `json:"created_by_name,omitempty"` // For display
	JoinedByName  *string `json:"joined_by_name,omitempty"`  // For display
	WinnerName    *string `json:"winner_name,omitempty"`     // Set once COMPLETED
}

// Expired reports whether the room's deadline has passed. Rooms already
// COMPLETED or EXPIRED are never re-expired.
func (r *Room) Expired(now time.Time) bool {
	if r.Status == RoomCompleted || r.Status == RoomExpired {
		return false
	}
	return r.ExpiryTime != nil && now.After(*r.ExpiryTime)
}

// JoinableBy decides whether userID may take the second seat. Callers must
// hold the room row lock; the checks here are only correct under it.
func (r *Room) JoinableBy(userID string, now time.Time) error {
	if r.Status != RoomWaiting && r.Status != RoomInProgress {
		return common.ErrRoomNotJoinable
	}
	if r.JoinedByID != nil {
		return common.ErrRoomFull
	}
	if r.CreatedByID == userID {
		return common.ErrSelfJoin
	}
	if r.Expired(now) {
		return common.ErrRoomExpired
	}
	return nil
}

// IsParticipant reports whether userID is one of the two players.
func (r *Room) IsParticipant(userID string) bool {
	if r.CreatedByID == userID {
		return true
	}
	return r.JoinedByID != nil && *r.JoinedByID == userID
}

type RoomQuestion struct {
	ID               string       `json:"id"`
	RoomID           string       `json:"room_id"`
	QuestionKind     QuestionKind `json:"question_kind"`
	CodingQuestionID *string      `json:"coding_question_id,omitempty"`
	McqQuestionID    *string      `json:"mcq_question_id,omitempty"`
	QuestionOrder    int          `json:"question_order"`
	CreatedAt        time.Time    `json:"created_at"`
}

// QuestionID collapses the tagged pair into the one identifier that is set.
func (rq *RoomQuestion) QuestionID() string {
	if rq.QuestionKind == KindCoding && rq.CodingQuestionID != nil {
		return *rq.CodingQuestionID
	}
	if rq.McqQuestionID != nil {
		return *rq.McqQuestionID
	}
	return ""
}
