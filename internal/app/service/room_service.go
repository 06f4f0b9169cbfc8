package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"code_arena/internal/platform/config"
	"code_arena/internal/platform/queue"
	"context"
	"database/sql"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// RoomService owns the match room lifecycle: creation, join arbitration,
// start, and opportunistic expiry.
type RoomService struct {
	roomRepo         repository.RoomRepository
	roomQuestionRepo repository.RoomQuestionRepository
	matchResultRepo  repository.MatchResultRepository
	questionPool     *QuestionPoolService
	publisher        *queue.EventPublisher
	db               *sql.DB
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	roomQuestionRepo repository.RoomQuestionRepository,
	matchResultRepo repository.MatchResultRepository,
	questionPool *QuestionPoolService,
	publisher *queue.EventPublisher,
	db *sql.DB,
) *RoomService {
	return &RoomService{
		roomRepo:         roomRepo,
		roomQuestionRepo: roomQuestionRepo,
		matchResultRepo:  matchResultRepo,
		questionPool:     questionPool,
		publisher:        publisher,
		db:               db,
	}
}

type CreateRoomRequest struct {
	QuestionKind    model.QuestionKind `json:"question_kind"`
	Difficulty      model.Difficulty   `json:"difficulty"`
	NoOfQuestions   int                `json:"no_of_questions"`
	DurationMinutes int                `json:"duration_minutes"`
}

func validateCreateRoomRequest(req CreateRoomRequest, maxQuestions, maxDuration int) error {
	if req.NoOfQuestions <= 0 {
		return common.Errorf("number of questions must be greater than 0: %w", common.ErrValidation)
	}
	if req.NoOfQuestions > maxQuestions {
		return common.Errorf("number of questions cannot exceed %d: %w", maxQuestions, common.ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		return common.Errorf("duration must be greater than 0: %w", common.ErrValidation)
	}
	if req.DurationMinutes > maxDuration {
		return common.Errorf("duration cannot exceed %d minutes: %w", maxDuration, common.ErrValidation)
	}
	switch req.QuestionKind {
	case model.KindCoding, model.KindMcq:
	default:
		return common.Errorf("invalid question kind %q: %w", req.QuestionKind, common.ErrValidation)
	}
	switch req.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyMixed:
	case "":
		// Tolerated; CreateRoom defaults it to MIXED.
	default:
		return common.Errorf("invalid difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	return nil
}

func (s *RoomService) CreateRoom(ctx context.Context, creatorID string, req CreateRoomRequest) (*model.Room, error) {
	if err := validateCreateRoomRequest(req, config.AppConfig.MaxQuestionsPerRoom, config.AppConfig.MaxDurationMinutes); err != nil {
		return nil, err
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMixed
	}

	roomCode, err := s.generateUniqueRoomCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		ID:              uuid.NewString(),
		RoomCode:        roomCode,
		CreatedByID:     creatorID,
		Status:          model.RoomWaiting,
		QuestionKind:    req.QuestionKind,
		Difficulty:      req.Difficulty,
		QuestionCount:   req.NoOfQuestions,
		DurationMinutes: req.DurationMinutes,
	}

	if err := s.roomRepo.CreateRoom(ctx, nil, room); err != nil {
		return nil, common.Errorf("failed to create room: %w", err)
	}

	log.Printf("Room %d created by user %s", room.RoomCode, creatorID)
	return room, nil
}

// generateUniqueRoomCode samples 6-digit codes until one is free, giving up
// after the configured retry budget so a saturated code space surfaces as an
// error instead of an unbounded loop.
func (s *RoomService) generateUniqueRoomCode(ctx context.Context) (int, error) {
	maxAttempts := config.AppConfig.RoomCodeMaxAttempts
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := 100000 + rand.Intn(900000)
		exists, err := s.roomRepo.RoomCodeExists(ctx, code)
		if err != nil {
			return 0, common.Errorf("failed to check room code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return 0, common.Errorf("could not allocate a room code after %d attempts: %w", maxAttempts, common.ErrCodeGenExhausted)
}

// JoinRoom arbitrates the second seat. The room row is read under an
// exclusive lock so concurrent joiners serialize: the first commit wins, the
// rest observe the non-null joiner and fail cleanly.
func (s *RoomService) JoinRoom(ctx context.Context, roomCode int, joinerID, joinerName string) (*model.Room, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin join transaction: %w", err)
	}
	defer tx.Rollback()

	room, err := s.roomRepo.FindRoomByCodeForUpdate(ctx, tx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}

	now := time.Now()
	if room.Expired(now) {
		// Flip the state inside the same locked transaction so the failed
		// join leaves the room consistently EXPIRED.
		if err := s.roomRepo.UpdateRoomStatus(ctx, tx, room.ID, model.RoomExpired); err != nil {
			return nil, common.Errorf("failed to expire room %d: %w", roomCode, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, common.Errorf("failed to commit room expiry: %w", err)
		}
		return nil, common.Errorf("room %d: %w", roomCode, common.ErrRoomExpired)
	}

	if err := room.JoinableBy(joinerID, now); err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}

	if err := s.roomRepo.UpdateRoomJoin(ctx, tx, room.ID, joinerID, model.RoomInProgress); err != nil {
		return nil, common.Errorf("failed to set joiner for room %d: %w", roomCode, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit join for room %d: %w", roomCode, err)
	}

	room.JoinedByID = &joinerID
	room.JoinedByName = &joinerName
	room.Status = model.RoomInProgress
	log.Printf("User %s joined room %d", joinerID, roomCode)

	s.publisher.PublishRoomEvent(ctx, roomCode, model.EventPlayerJoined, map[string]any{
		"player": joinerName,
	})

	return room, nil
}

// checkStartable validates the start preconditions against one room read.
// StartRoom runs it twice: once on an unlocked read to fail fast, then
// again under the row lock, where the answer is authoritative.
func checkStartable(room *model.Room, now time.Time) error {
	if room.Status == model.RoomActive || room.Status == model.RoomCompleted {
		return common.ErrAlreadyStarted
	}
	if room.Status == model.RoomExpired || room.Expired(now) {
		return common.ErrRoomExpired
	}
	if room.JoinedByID == nil {
		return common.Errorf("cannot start room, waiting for another player to join: %w", common.ErrBadRequest)
	}
	return nil
}

// StartRoom assigns the question set and activates the match. Only the
// creator may start, and only once: the question-set check and the inserts
// run under the same room row lock joins use, so racing start calls cannot
// both assign questions.
func (s *RoomService) StartRoom(ctx context.Context, roomCode int, callerID string) (*model.Room, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if room.CreatedByID != callerID {
		return nil, common.Errorf("only the room creator can start the match: %w", common.ErrForbidden)
	}
	if err := checkStartable(room, time.Now()); err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}

	// Catalog sampling stays outside the lock; only the assignment itself
	// needs serializing.
	questionIDs, err := s.questionPool.Sample(ctx, room.QuestionKind, room.Difficulty, room.QuestionCount)
	if err != nil {
		return nil, common.Errorf("failed to sample questions for room %d: %w", roomCode, err)
	}
	if len(questionIDs) == 0 {
		return nil, common.Errorf("no questions available for room %d: %w", roomCode, common.ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin start transaction: %w", err)
	}
	defer tx.Rollback()

	room, err = s.roomRepo.FindRoomByCodeForUpdate(ctx, tx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}

	now := time.Now()
	if room.Expired(now) {
		if err := s.roomRepo.UpdateRoomStatus(ctx, tx, room.ID, model.RoomExpired); err != nil {
			return nil, common.Errorf("failed to expire room %d: %w", roomCode, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, common.Errorf("failed to commit room expiry: %w", err)
		}
		return nil, common.Errorf("room %d: %w", roomCode, common.ErrRoomExpired)
	}
	if err := checkStartable(room, now); err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}

	hasQuestions, err := s.roomQuestionRepo.HasRoomQuestions(ctx, tx, room.ID)
	if err != nil {
		return nil, common.Errorf("failed to check room questions: %w", err)
	}
	if hasQuestions {
		return nil, common.Errorf("room %d: %w", roomCode, common.ErrAlreadyStarted)
	}

	roomQuestions := make([]model.RoomQuestion, 0, len(questionIDs))
	for i, qid := range questionIDs {
		rq := model.RoomQuestion{
			ID:            uuid.NewString(),
			RoomID:        room.ID,
			QuestionKind:  room.QuestionKind,
			QuestionOrder: i + 1,
		}
		id := qid
		if room.QuestionKind == model.KindCoding {
			rq.CodingQuestionID = &id
		} else {
			rq.McqQuestionID = &id
		}
		roomQuestions = append(roomQuestions, rq)
	}

	if err := s.roomQuestionRepo.AddRoomQuestions(ctx, tx, roomQuestions); err != nil {
		return nil, common.Errorf("failed to assign questions to room %d: %w", roomCode, err)
	}

	startedAt := now
	expiryTime := startedAt.Add(time.Duration(room.DurationMinutes) * time.Minute)
	if err := s.roomRepo.UpdateRoomStart(ctx, tx, room.ID, startedAt, expiryTime); err != nil {
		return nil, common.Errorf("failed to activate room %d: %w", roomCode, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit start for room %d: %w", roomCode, err)
	}

	room.Status = model.RoomActive
	room.StartedAt = &startedAt
	room.ExpiryTime = &expiryTime
	log.Printf("Room %d started with %d questions", roomCode, len(roomQuestions))

	s.publisher.PublishRoomEvent(ctx, roomCode, model.EventStartMatch, map[string]any{
		"question_count": len(roomQuestions),
		"expiry_time":    expiryTime,
	})

	return room, nil
}

// GetRoomDetails returns the room to a participant, applying lazy expiry.
func (s *RoomService) GetRoomDetails(ctx context.Context, roomCode int, callerID string) (*model.Room, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(callerID) {
		return nil, common.Errorf("you don't have permission to view this room: %w", common.ErrForbidden)
	}

	if _, err := s.expireIfNeeded(ctx, room); err != nil {
		return nil, err
	}

	if room.Status == model.RoomCompleted {
		results, err := s.matchResultRepo.ListByRoom(ctx, room.ID)
		if err != nil {
			log.Printf("WARN: Failed to load match results for room %d: %v", roomCode, err)
		} else {
			for _, mr := range results {
				if mr.Winner {
					room.WinnerName = mr.Username
					break
				}
			}
		}
	}

	return room, nil
}

// expireIfNeeded applies the advisory expiry check. Idempotent; a room is
// only moved forward, never out of COMPLETED.
func (s *RoomService) expireIfNeeded(ctx context.Context, room *model.Room) (bool, error) {
	if !room.Expired(time.Now()) {
		return room.Status == model.RoomExpired, nil
	}
	if err := s.roomRepo.UpdateRoomStatus(ctx, nil, room.ID, model.RoomExpired); err != nil {
		return false, common.Errorf("failed to expire room %d: %w", room.RoomCode, err)
	}
	room.Status = model.RoomExpired
	log.Printf("Room %d expired", room.RoomCode)
	return true, nil
}
