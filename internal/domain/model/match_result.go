package model

import "time"

type MatchResult struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"room_id"`
	UserID       string     `json:"user_id"`
	Score        int        `json:"score"`
	TotalTimeSec int64      `json:"total_time_sec"`
	Winner       bool       `json:"winner"`
	Finished     bool       `json:"finished"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Username *string `json:"username,omitempty"` // For display
}

// ProfileOutcome is the payload queued for the profile worker after a match
// finalizes. (RoomID, UserID) doubles as the replay dedup key.
type ProfileOutcome struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Won    bool   `json:"won"`
}
