package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/platform/config"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

// fakeRoomStore only answers RoomCodeExists; the rest is unused by the code
// generation path.
type fakeRoomStore struct {
	existingCodes map[int]bool
	checks        int
}

func (f *fakeRoomStore) CreateRoom(context.Context, *sql.Tx, *model.Room) error { return nil }
func (f *fakeRoomStore) FindRoomByCode(context.Context, int) (*model.Room, error) {
	return nil, common.ErrNotFound
}
func (f *fakeRoomStore) FindRoomByCodeForUpdate(context.Context, *sql.Tx, int) (*model.Room, error) {
	return nil, common.ErrNotFound
}
func (f *fakeRoomStore) UpdateRoomJoin(context.Context, *sql.Tx, string, string, model.RoomStatus) error {
	return nil
}
func (f *fakeRoomStore) UpdateRoomStart(context.Context, *sql.Tx, string, time.Time, time.Time) error {
	return nil
}
func (f *fakeRoomStore) UpdateRoomCompleted(context.Context, *sql.Tx, string, time.Time) error {
	return nil
}
func (f *fakeRoomStore) UpdateRoomStatus(context.Context, *sql.Tx, string, model.RoomStatus) error {
	return nil
}
func (f *fakeRoomStore) RoomCodeExists(_ context.Context, code int) (bool, error) {
	f.checks++
	if f.existingCodes == nil {
		return true, nil // Every code taken; forces exhaustion.
	}
	return f.existingCodes[code], nil
}

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{
		RoomCodeMaxAttempts: 5,
		MaxQuestionsPerRoom: 20,
		MaxDurationMinutes:  180,
	}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestValidateCreateRoomRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRoomRequest
		wantErr error
	}{
		{
			name: "valid coding room",
			req:  CreateRoomRequest{QuestionKind: model.KindCoding, Difficulty: model.DifficultyEasy, NoOfQuestions: 5, DurationMinutes: 30},
		},
		{
			name: "valid mcq room without difficulty",
			req:  CreateRoomRequest{QuestionKind: model.KindMcq, NoOfQuestions: 10, DurationMinutes: 15},
		},
		{
			name:    "zero questions",
			req:     CreateRoomRequest{QuestionKind: model.KindCoding, NoOfQuestions: 0, DurationMinutes: 30},
			wantErr: common.ErrValidation,
		},
		{
			name:    "too many questions",
			req:     CreateRoomRequest{QuestionKind: model.KindCoding, NoOfQuestions: 21, DurationMinutes: 30},
			wantErr: common.ErrValidation,
		},
		{
			name:    "zero duration",
			req:     CreateRoomRequest{QuestionKind: model.KindCoding, NoOfQuestions: 5, DurationMinutes: 0},
			wantErr: common.ErrValidation,
		},
		{
			name:    "duration over the cap",
			req:     CreateRoomRequest{QuestionKind: model.KindCoding, NoOfQuestions: 5, DurationMinutes: 181},
			wantErr: common.ErrValidation,
		},
		{
			name:    "unknown question kind",
			req:     CreateRoomRequest{QuestionKind: "ESSAY", NoOfQuestions: 5, DurationMinutes: 30},
			wantErr: common.ErrValidation,
		},
		{
			name:    "unknown difficulty",
			req:     CreateRoomRequest{QuestionKind: model.KindCoding, Difficulty: "IMPOSSIBLE", NoOfQuestions: 5, DurationMinutes: 30},
			wantErr: common.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreateRoomRequest(tt.req, 20, 180)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateCreateRoomRequest() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateUniqueRoomCode(t *testing.T) {
	withTestConfig(t)

	store := &fakeRoomStore{existingCodes: map[int]bool{}}
	svc := &RoomService{roomRepo: store}

	code, err := svc.generateUniqueRoomCode(context.Background())
	if err != nil {
		t.Fatalf("generateUniqueRoomCode() error: %v", err)
	}
	if code < 100000 || code > 999999 {
		t.Errorf("code %d is not 6 digits", code)
	}
}

func TestGenerateUniqueRoomCodeExhaustion(t *testing.T) {
	withTestConfig(t)

	store := &fakeRoomStore{} // nil map: every code reported taken
	svc := &RoomService{roomRepo: store}

	_, err := svc.generateUniqueRoomCode(context.Background())
	if !errors.Is(err, common.ErrCodeGenExhausted) {
		t.Fatalf("generateUniqueRoomCode() = %v, want ErrCodeGenExhausted", err)
	}
	if store.checks != 5 {
		t.Errorf("checked %d codes, want exactly the configured 5 attempts", store.checks)
	}
}

func TestCheckStartable(t *testing.T) {
	now := time.Now()
	joiner := "bob"
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		room    model.Room
		wantErr error
	}{
		{
			name:    "in progress with joiner",
			room:    model.Room{Status: model.RoomInProgress, JoinedByID: &joiner, ExpiryTime: &future},
			wantErr: nil,
		},
		{
			name:    "already active",
			room:    model.Room{Status: model.RoomActive, JoinedByID: &joiner},
			wantErr: common.ErrAlreadyStarted,
		},
		{
			name:    "already completed",
			room:    model.Room{Status: model.RoomCompleted, JoinedByID: &joiner},
			wantErr: common.ErrAlreadyStarted,
		},
		{
			name:    "expired status",
			room:    model.Room{Status: model.RoomExpired, JoinedByID: &joiner},
			wantErr: common.ErrRoomExpired,
		},
		{
			name:    "expiry time passed but status stale",
			room:    model.Room{Status: model.RoomInProgress, JoinedByID: &joiner, ExpiryTime: &past},
			wantErr: common.ErrRoomExpired,
		},
		{
			name:    "no second player yet",
			room:    model.Room{Status: model.RoomWaiting},
			wantErr: common.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStartable(&tt.room, now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("checkStartable() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkStartable() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
