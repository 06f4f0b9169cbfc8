package handler

import (
	"code_arena/internal/api/middleware"
	"code_arena/internal/app/service"
	"code_arena/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type QuestionHandler struct {
	questionService   *service.QuestionService
	submissionService *service.SubmissionService
}

func NewQuestionHandler(qs *service.QuestionService, ss *service.SubmissionService) *QuestionHandler {
	return &QuestionHandler{questionService: qs, submissionService: ss}
}

func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{roomCode}/questions", h.getRoomQuestions)         // GET /api/v1/rooms/123456/questions
	r.Get("/{roomCode}/questions/status", h.getQuestionStatus) // GET /api/v1/rooms/123456/questions/status
}

func (h *QuestionHandler) getRoomQuestions(w http.ResponseWriter, r *http.Request) {
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

	questions, err := h.questionService.GetRoomQuestions(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) getQuestionStatus(w http.ResponseWriter, r *http.Request) {
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

	statuses, err := h.submissionService.GetQuestionStatuses(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, statuses)
}
