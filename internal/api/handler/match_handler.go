package handler

import (
	"code_arena/internal/api/middleware"
	"code_arena/internal/app/service"
	"code_arena/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(ms *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{roomCode}/finish", h.signalDone) // POST /api/v1/rooms/123456/finish
	r.Get("/{roomCode}/result", h.getResult)   // GET  /api/v1/rooms/123456/result
}

func (h *MatchHandler) signalDone(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.matchService.SignalDone(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, status)
}

func (h *MatchHandler) getResult(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.matchService.GetRoomResult(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
