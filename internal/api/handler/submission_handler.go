package handler

import (
	"code_arena/internal/api/middleware"
	"code_arena/internal/app/service"
	"code_arena/internal/common"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{roomCode}/submissions/code", h.submitCode) // POST /api/v1/rooms/123456/submissions/code
	r.Post("/{roomCode}/submissions/quiz", h.submitQuiz) // POST /api/v1/rooms/123456/submissions/quiz
	r.Get("/{roomCode}/submissions", h.listSubmissions)  // GET  /api/v1/rooms/123456/submissions
}

func (h *SubmissionHandler) submitCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	roomCode, err := parseRoomCode(r)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	var req service.CodeSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sub, err := h.submissionService.SubmitCode(r.Context(), roomCode, userID, req)
	if err != nil {
		// A sandbox failure still produced a persisted SYSTEM_ERROR
		// submission; surface both.
		if sub != nil && errors.Is(err, common.ErrJudgeUnavailable) {
			common.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]any{
				"error":      err.Error(),
				"kind":       common.ErrorKind(err),
				"submission": sub,
			})
			return
		}
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	roomCode, err := parseRoomCode(r)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	var req service.QuizSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.submissionService.SubmitQuiz(r.Context(), roomCode, userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *SubmissionHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	roomCode, err := parseRoomCode(r)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	subs, err := h.submissionService.ListMySubmissions(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
