package model

const (
	EventPlayerJoined   = "PLAYER_JOINED"
	EventStartMatch     = "START_MATCH"
	EventMatchCompleted = "MATCH_COMPLETED"
	EventJudgeError     = "JUDGE_ERROR"
)

// RoomEvent is the JSON envelope published on a room's broadcast channel.
// Delivery is best-effort; consumers must tolerate missed events.
type RoomEvent struct {
	Event     string         `json:"event"`
	RoomCode  int            `json:"room_code"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp int64          `json:"timestamp"`
}
