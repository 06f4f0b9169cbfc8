package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"code_arena/internal/platform/queue"
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	MatchWaitingForOpponent = "WAITING_FOR_OPPONENT"
	MatchCompleted          = "COMPLETED"
)

// MatchStatus is what a participant sees after signalling done: either they
// are waiting for the opponent, or the final standings.
type MatchStatus struct {
	Status  string              `json:"status"`
	Results []model.MatchResult `json:"results,omitempty"`
}

// MatchService records finish signals and finalizes the match exactly once
// when both participants are done.
type MatchService struct {
	matchResultRepo repository.MatchResultRepository
	submissionRepo  repository.SubmissionRepository
	roomRepo        repository.RoomRepository
	publisher       *queue.EventPublisher
	db              *sql.DB
}

func NewMatchService(
	matchResultRepo repository.MatchResultRepository,
	submissionRepo repository.SubmissionRepository,
	roomRepo repository.RoomRepository,
	publisher *queue.EventPublisher,
	db *sql.DB,
) *MatchService {
	return &MatchService{
		matchResultRepo: matchResultRepo,
		submissionRepo:  submissionRepo,
		roomRepo:        roomRepo,
		publisher:       publisher,
		db:              db,
	}
}

// playerStanding is the per-participant input to winner decision.
type playerStanding struct {
	UserID     string
	Score      int
	FinishedAt time.Time
}

// decideWinner picks the winner deterministically: higher score, then
// earlier finish, then smaller user ID so both finalizers agree even on a
// bit-identical tie.
func decideWinner(a, b playerStanding) string {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return a.UserID
		}
		return b.UserID
	}
	if !a.FinishedAt.Equal(b.FinishedAt) {
		if a.FinishedAt.Before(b.FinishedAt) {
			return a.UserID
		}
		return b.UserID
	}
	if a.UserID < b.UserID {
		return a.UserID
	}
	return b.UserID
}

// SignalDone marks the caller finished. The first signal per participant
// sticks; when both are in, the match is finalized under the room row lock
// so only one finalizer commits.
func (s *MatchService) SignalDone(ctx context.Context, roomCode int, userID string) (*MatchStatus, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(userID) {
		return nil, common.Errorf("you are not a participant of this room: %w", common.ErrForbidden)
	}
	if room.Status == model.RoomCompleted {
		return s.completedStatus(ctx, room.ID)
	}
	if room.Status != model.RoomActive && room.Status != model.RoomExpired {
		return nil, common.Errorf("room %d has no match in progress: %w", roomCode, common.ErrBadRequest)
	}

	if err := s.matchResultRepo.UpsertFinished(ctx, nil, uuid.NewString(), room.ID, userID, time.Now()); err != nil {
		return nil, common.Errorf("failed to record finish for room %d: %w", roomCode, err)
	}
	log.Printf("User %s signalled done in room %d", userID, roomCode)

	finished, err := s.matchResultRepo.CountFinished(ctx, room.ID)
	if err != nil {
		return nil, common.Errorf("failed to count finished players: %w", err)
	}
	if finished < 2 {
		return &MatchStatus{Status: MatchWaitingForOpponent}, nil
	}

	if err := s.finalize(ctx, roomCode); err != nil {
		return nil, err
	}
	return s.completedStatus(ctx, room.ID)
}

// finalize aggregates scores and writes the final standings. It re-reads the
// room under the row lock; a room already COMPLETED means the opponent's
// finalizer won the race and there is nothing left to do.
func (s *MatchService) finalize(ctx context.Context, roomCode int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin finalize transaction: %w", err)
	}
	defer tx.Rollback()

	room, err := s.roomRepo.FindRoomByCodeForUpdate(ctx, tx, roomCode)
	if err != nil {
		return common.Errorf("room %d: %w", roomCode, err)
	}
	if room.Status == model.RoomCompleted {
		return nil
	}
	if room.JoinedByID == nil {
		return common.Errorf("room %d has no second participant: %w", roomCode, common.ErrInternalServer)
	}

	scores, err := s.submissionRepo.SumAcceptedScores(ctx, room.ID)
	if err != nil {
		return common.Errorf("failed to aggregate scores for room %d: %w", roomCode, err)
	}
	scoreByUser := make(map[string]int, len(scores))
	for _, us := range scores {
		scoreByUser[us.UserID] = us.Score
	}

	standings := make([]playerStanding, 0, 2)
	participants := []string{room.CreatedByID, *room.JoinedByID}
	for _, pid := range participants {
		mr, err := s.matchResultRepo.FindByRoomAndUser(ctx, room.ID, pid)
		if err != nil {
			return common.Errorf("failed to load match result for user %s: %w", pid, err)
		}
		st := playerStanding{UserID: pid, Score: scoreByUser[pid]}
		if mr.FinishedAt != nil {
			st.FinishedAt = *mr.FinishedAt
		}
		standings = append(standings, st)
	}

	winner := decideWinner(standings[0], standings[1])
	endedAt := time.Now()
	for _, st := range standings {
		totalTimeSec := int64(0)
		if room.StartedAt != nil && !st.FinishedAt.IsZero() {
			totalTimeSec = int64(st.FinishedAt.Sub(*room.StartedAt).Seconds())
		}
		if err := s.matchResultRepo.UpdateFinal(ctx, tx, room.ID, st.UserID, st.Score, totalTimeSec, st.UserID == winner); err != nil {
			return common.Errorf("failed to write final result for user %s: %w", st.UserID, err)
		}
	}

	if err := s.roomRepo.UpdateRoomCompleted(ctx, tx, room.ID, endedAt); err != nil {
		return common.Errorf("failed to complete room %d: %w", roomCode, err)
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit finalize for room %d: %w", roomCode, err)
	}

	log.Printf("Room %d finalized, winner %s", roomCode, winner)

	// Side effects after commit: profile counter outcomes are queued for the
	// worker, and losing either one is logged, never fatal.
	for _, pid := range participants {
		outcome := model.ProfileOutcome{RoomID: room.ID, UserID: pid, Won: pid == winner}
		if err := s.publisher.EnqueueProfileOutcome(ctx, outcome); err != nil {
			log.Printf("ERROR: Failed to enqueue profile outcome for user %s in room %d: %v", pid, roomCode, err)
		}
	}
	players := make([]map[string]any, 0, 2)
	for _, st := range standings {
		players = append(players, map[string]any{
			"user_id": st.UserID,
			"score":   st.Score,
			"winner":  st.UserID == winner,
		})
	}
	s.publisher.PublishRoomEvent(ctx, roomCode, model.EventMatchCompleted, map[string]any{
		"winner":  winner,
		"players": players,
	})
	return nil
}

// GetRoomResult returns the standings of a room to a participant.
func (s *MatchService) GetRoomResult(ctx context.Context, roomCode int, userID string) (*MatchStatus, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(userID) {
		return nil, common.Errorf("you are not a participant of this room: %w", common.ErrForbidden)
	}
	if room.Status != model.RoomCompleted {
		return &MatchStatus{Status: MatchWaitingForOpponent}, nil
	}
	return s.completedStatus(ctx, room.ID)
}

func (s *MatchService) completedStatus(ctx context.Context, roomID string) (*MatchStatus, error) {
	results, err := s.matchResultRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("failed to load match results: %w", err)
	}
	return &MatchStatus{Status: MatchCompleted, Results: results}, nil
}
