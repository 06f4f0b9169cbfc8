package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Match room engine error kinds.
	ErrRoomNotJoinable  = errors.New("room is no longer accepting players")
	ErrRoomFull         = errors.New("room is already full")
	ErrSelfJoin         = errors.New("cannot join your own room")
	ErrRoomExpired      = errors.New("room has expired")
	ErrAlreadyStarted   = errors.New("match already started")
	ErrCodeGenExhausted = errors.New("room code generation attempts exhausted")
	ErrJudgeUnavailable = errors.New("code execution sandbox unavailable")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrRoomNotJoinable) ||
		errors.Is(err, ErrRoomFull) ||
		errors.Is(err, ErrSelfJoin) ||
		errors.Is(err, ErrAlreadyStarted) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRoomExpired) {
		return http.StatusGone
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrJudgeUnavailable) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrCodeGenExhausted) {
		// Caller should retry the whole create call.
		return http.StatusServiceUnavailable
	}

	// Check for pgx specific errors (example for unique constraint)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// ErrorKind returns the stable machine-readable kind for an error, paired
// with the human-readable message in the response body.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRoomNotJoinable):
		return "ROOM_NOT_JOINABLE"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrSelfJoin):
		return "SELF_JOIN_FORBIDDEN"
	case errors.Is(err, ErrRoomExpired):
		return "ROOM_EXPIRED"
	case errors.Is(err, ErrAlreadyStarted):
		return "ALREADY_STARTED"
	case errors.Is(err, ErrCodeGenExhausted):
		return "CODE_GENERATION_EXHAUSTED"
	case errors.Is(err, ErrJudgeUnavailable):
		return "JUDGE_UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return "VALIDATION_FAILED"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrServiceUnavailable):
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
