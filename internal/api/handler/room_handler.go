package handler

import (
	"code_arena/internal/api/middleware"
	"code_arena/internal/app/service"
	"code_arena/internal/common"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(rs *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: rs}
}

func (h *RoomHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createRoom)                 // POST /api/v1/rooms
	r.Get("/{roomCode}", h.getRoom)           // GET  /api/v1/rooms/123456
	r.Post("/{roomCode}/join", h.joinRoom)    // POST /api/v1/rooms/123456/join
	r.Post("/{roomCode}/start", h.startRoom)  // POST /api/v1/rooms/123456/start
}

// parseRoomCode reads the 6-digit room code path parameter.
func parseRoomCode(r *http.Request) (int, error) {
	code, err := strconv.Atoi(chi.URLParam(r, "roomCode"))
	if err != nil || code < 100000 || code > 999999 {
		return 0, common.Errorf("invalid room code: %w", common.ErrValidation)
	}
	return code, nil
}

func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), userID, req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) getRoom(w http.ResponseWriter, r *http.Request) {
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

	room, err := h.roomService.GetRoomDetails(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) joinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	username, _ := middleware.GetUsernameFromContext(r.Context())
	roomCode, err := parseRoomCode(r)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	room, err := h.roomService.JoinRoom(r.Context(), roomCode, userID, username)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) startRoom(w http.ResponseWriter, r *http.Request) {
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

	room, err := h.roomService.StartRoom(r.Context(), roomCode, userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}
