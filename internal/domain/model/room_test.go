package model

import (
	"code_arena/internal/common"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestRoomExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		room Room
		want bool
	}{
		{"no deadline", Room{Status: RoomActive}, false},
		{"deadline in future", Room{Status: RoomActive, ExpiryTime: &future}, false},
		{"deadline passed", Room{Status: RoomActive, ExpiryTime: &past}, true},
		{"completed rooms never re-expire", Room{Status: RoomCompleted, ExpiryTime: &past}, false},
		{"expired rooms stay terminal", Room{Status: RoomExpired, ExpiryTime: &past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.room.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoomJoinableBy(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	tests := []struct {
		name    string
		room    Room
		userID  string
		wantErr error
	}{
		{
			name:   "waiting room accepts a second player",
			room:   Room{Status: RoomWaiting, CreatedByID: "alice"},
			userID: "bob",
		},
		{
			name:    "active room rejects joins",
			room:    Room{Status: RoomActive, CreatedByID: "alice"},
			userID:  "bob",
			wantErr: common.ErrRoomNotJoinable,
		},
		{
			name:    "completed room rejects joins",
			room:    Room{Status: RoomCompleted, CreatedByID: "alice"},
			userID:  "bob",
			wantErr: common.ErrRoomNotJoinable,
		},
		{
			name:    "seat already taken",
			room:    Room{Status: RoomInProgress, CreatedByID: "alice", JoinedByID: strPtr("bob")},
			userID:  "carol",
			wantErr: common.ErrRoomFull,
		},
		{
			name:    "creator cannot join own room",
			room:    Room{Status: RoomWaiting, CreatedByID: "alice"},
			userID:  "alice",
			wantErr: common.ErrSelfJoin,
		},
		{
			name:    "expired waiting room",
			room:    Room{Status: RoomWaiting, CreatedByID: "alice", ExpiryTime: &past},
			userID:  "bob",
			wantErr: common.ErrRoomExpired,
		},
		{
			name:    "full beats self-join for the creator of a full room",
			room:    Room{Status: RoomInProgress, CreatedByID: "alice", JoinedByID: strPtr("bob")},
			userID:  "alice",
			wantErr: common.ErrRoomFull,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.room.JoinableBy(tt.userID, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("JoinableBy() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoomIsParticipant(t *testing.T) {
	room := Room{CreatedByID: "alice", JoinedByID: strPtr("bob")}
	if !room.IsParticipant("alice") || !room.IsParticipant("bob") {
		t.Error("both players should be participants")
	}
	if room.IsParticipant("carol") {
		t.Error("outsider should not be a participant")
	}

	open := Room{CreatedByID: "alice"}
	if open.IsParticipant("bob") {
		t.Error("unjoined room has only the creator as participant")
	}
}

func TestRoomQuestionID(t *testing.T) {
	coding := RoomQuestion{QuestionKind: KindCoding, CodingQuestionID: strPtr("cq-1")}
	if got := coding.QuestionID(); got != "cq-1" {
		t.Errorf("QuestionID() = %q, want %q", got, "cq-1")
	}
	mcq := RoomQuestion{QuestionKind: KindMcq, McqQuestionID: strPtr("mq-1")}
	if got := mcq.QuestionID(); got != "mq-1" {
		t.Errorf("QuestionID() = %q, want %q", got, "mq-1")
	}
}
