package common

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrValidation, http.StatusBadRequest},
		{ErrRoomNotJoinable, http.StatusConflict},
		{ErrRoomFull, http.StatusConflict},
		{ErrSelfJoin, http.StatusConflict},
		{ErrAlreadyStarted, http.StatusConflict},
		{ErrRoomExpired, http.StatusGone},
		{ErrJudgeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeGenExhausted, http.StatusServiceUnavailable},
		{fmt.Errorf("room 123456: %w", ErrRoomFull), http.StatusConflict},
		{fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{fmt.Errorf("plain failure"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRoomNotJoinable, "ROOM_NOT_JOINABLE"},
		{ErrRoomFull, "ROOM_FULL"},
		{ErrSelfJoin, "SELF_JOIN_FORBIDDEN"},
		{ErrRoomExpired, "ROOM_EXPIRED"},
		{ErrAlreadyStarted, "ALREADY_STARTED"},
		{ErrCodeGenExhausted, "CODE_GENERATION_EXHAUSTED"},
		{ErrJudgeUnavailable, "JUDGE_UNAVAILABLE"},
		{fmt.Errorf("wrapped: %w", ErrSelfJoin), "SELF_JOIN_FORBIDDEN"},
		{fmt.Errorf("plain failure"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
