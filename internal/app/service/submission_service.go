package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"code_arena/internal/platform/executor"
	"code_arena/internal/platform/queue"
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmissionService runs the judging pipeline for coding submissions and the
// one-shot bulk scoring for quiz rooms.
type SubmissionService struct {
	submissionRepo   repository.SubmissionRepository
	questionRepo     repository.QuestionRepository
	roomRepo         repository.RoomRepository
	roomQuestionRepo repository.RoomQuestionRepository
	exec             executor.Executor
	publisher        *queue.EventPublisher
	db               *sql.DB
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	questionRepo repository.QuestionRepository,
	roomRepo repository.RoomRepository,
	roomQuestionRepo repository.RoomQuestionRepository,
	exec executor.Executor,
	publisher *queue.EventPublisher,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:   submissionRepo,
		questionRepo:     questionRepo,
		roomRepo:         roomRepo,
		roomQuestionRepo: roomQuestionRepo,
		exec:             exec,
		publisher:        publisher,
		db:               db,
	}
}

type CodeSubmissionRequest struct {
	QuestionID string `json:"question_id"`
	Language   string `json:"language"`
	SourceCode string `json:"source_code"`
}

type QuizAnswer struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

type QuizSubmissionRequest struct {
	Answers []QuizAnswer `json:"answers"`
}

type QuizResult struct {
	TotalQuestions int   `json:"total_questions"`
	CorrectAnswers int   `json:"correct_answers"`
	Score          int   `json:"score"`
	ElapsedSec     int64 `json:"elapsed_sec"`
}

// judgeVerdict is the outcome of running one submission against the full
// ordered test case set.
type judgeVerdict struct {
	Status          model.SubmissionStatus
	PassedTestCases int
	TotalTestCases  int
	MaxTimeSec      float64
	MaxMemoryKb     float64
	Message         string
}

// normalizeOutput collapses every whitespace run to a single space and trims
// the ends, so "4 \n" and "4" compare equal.
func normalizeOutput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// judgeCode runs the source against the ordered test cases and stops at the
// first failure. A non-nil error means the sandbox itself failed; verdicts,
// including wrong answers and crashes, come back as (verdict, nil).
func judgeCode(ctx context.Context, exec executor.Executor, language, version, code string, timeLimitSec int, testCases []model.TestCase) (judgeVerdict, error) {
	verdict := judgeVerdict{
		Status:         model.StatusAccepted,
		TotalTestCases: len(testCases),
	}

	for i, tc := range testCases {
		res, err := exec.Execute(ctx, executor.ExecutionRequest{
			Language: language,
			Version:  version,
			Code:     code,
			Stdin:    tc.Input,
		})
		if err != nil {
			return judgeVerdict{}, err
		}

		if res.TimeSec > verdict.MaxTimeSec {
			verdict.MaxTimeSec = res.TimeSec
		}
		if res.MemoryKb > verdict.MaxMemoryKb {
			verdict.MaxMemoryKb = res.MemoryKb
		}

		if res.CompileFailed {
			verdict.Status = model.StatusCompilationError
			verdict.Message = res.CompileStderr
			return verdict, nil
		}
		if timeLimitSec > 0 && res.TimeSec > float64(timeLimitSec) {
			verdict.Status = model.StatusTimeLimitExceeded
			verdict.Message = fmt.Sprintf("Time limit exceeded on test case %d", tc.OrderIndex)
			return verdict, nil
		}
		if res.Stderr != "" || res.ExitCode != 0 {
			verdict.Status = model.StatusRuntimeError
			verdict.Message = fmt.Sprintf("Runtime error on test case %d: %s", tc.OrderIndex, res.Stderr)
			return verdict, nil
		}

		expected := normalizeOutput(tc.ExpectedOutput)
		actual := normalizeOutput(res.Stdout)
		if expected != actual {
			verdict.Status = model.StatusWrongAnswer
			verdict.Message = fmt.Sprintf("Wrong answer on test case %d: expected %q, got %q", tc.OrderIndex, expected, actual)
			return verdict, nil
		}

		verdict.PassedTestCases = i + 1
	}

	return verdict, nil
}

// SubmitCode judges a coding submission synchronously and records the
// attempt. Every call is persisted, including sandbox failures.
func (s *SubmissionService) SubmitCode(ctx context.Context, roomCode int, userID string, req CodeSubmissionRequest) (*model.Submission, error) {
	if strings.TrimSpace(req.SourceCode) == "" {
		return nil, common.Errorf("source code must not be empty: %w", common.ErrValidation)
	}
	if req.Language == "" {
		return nil, common.Errorf("language is required: %w", common.ErrValidation)
	}

	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if err := s.checkSubmittable(room, userID, model.KindCoding); err != nil {
		return nil, err
	}

	if err := s.ensureQuestionAssigned(ctx, room.ID, req.QuestionID); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindCodingQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return nil, common.Errorf("coding question %s: %w", req.QuestionID, err)
	}
	testCases, err := s.questionRepo.GetTestCasesByQuestionID(ctx, req.QuestionID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	if len(testCases) == 0 {
		return nil, common.Errorf("question %s has no test cases: %w", req.QuestionID, common.ErrInternalServer)
	}

	version := executor.DefaultVersion(req.Language)
	verdict, judgeErr := judgeCode(ctx, s.exec, req.Language, version, req.SourceCode, question.TimeLimitSec, testCases)

	sub := &model.Submission{
		ID:               uuid.NewString(),
		UserID:           userID,
		RoomID:           room.ID,
		QuestionKind:     model.KindCoding,
		CodingQuestionID: &question.ID,
		Language:         &req.Language,
		LanguageVersion:  &version,
		SourceCode:       &req.SourceCode,
		SubmittedAt:      time.Now(),
	}

	if judgeErr != nil {
		// The sandbox failed, not the submission. Record it so the attempt
		// history is honest, then surface 503 to the caller.
		sub.Status = model.StatusSystemError
		msg := "code execution sandbox unavailable"
		sub.JudgeMessage = &msg
		sub.TotalTestCases = len(testCases)
		log.Printf("ERROR: Sandbox failure judging submission for room %d: %v", roomCode, judgeErr)
		s.publisher.PublishRoomEvent(ctx, roomCode, model.EventJudgeError, map[string]any{
			"question_id": question.ID,
		})
	} else {
		sub.Status = verdict.Status
		sub.PassedTestCases = verdict.PassedTestCases
		sub.TotalTestCases = verdict.TotalTestCases
		sub.ExecutionTimeSec = verdict.MaxTimeSec
		sub.MemoryKb = verdict.MaxMemoryKb
		if verdict.Message != "" {
			msg := verdict.Message
			sub.JudgeMessage = &msg
		}
		if verdict.Status == model.StatusAccepted {
			sub.Score = question.Points
		}
	}

	if err := s.persistAttempt(ctx, sub, question.ID); err != nil {
		return nil, err
	}

	if judgeErr != nil {
		return sub, common.Errorf("judging failed: %w", common.ErrJudgeUnavailable)
	}

	log.Printf("Submission %s judged %s for user %s in room %d", sub.ID, sub.Status, userID, roomCode)
	return sub, nil
}

// recordAttempt numbers the submission after the user's prior attempts on
// the question and inserts it. Both steps must share a transaction so
// concurrent attempts by the same user stay sequential.
func recordAttempt(ctx context.Context, tx *sql.Tx, repo repository.SubmissionRepository, sub *model.Submission, questionID string) error {
	attempts, err := repo.CountAttempts(ctx, tx, sub.UserID, sub.RoomID, questionID)
	if err != nil {
		return common.Errorf("failed to count attempts: %w", err)
	}
	sub.AttemptNumber = attempts + 1

	if err := repo.CreateSubmission(ctx, tx, sub); err != nil {
		return common.Errorf("failed to save submission: %w", err)
	}
	return nil
}

func (s *SubmissionService) persistAttempt(ctx context.Context, sub *model.Submission, questionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin submission transaction: %w", err)
	}
	defer tx.Rollback()

	if err := recordAttempt(ctx, tx, s.submissionRepo, sub, questionID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit submission: %w", err)
	}
	return nil
}

// quizSelection is one validated answer: the chosen option resolved against
// the catalog.
type quizSelection struct {
	QuestionID string
	OptionID   string
	Correct    bool
}

// scoreQuiz turns validated selections into submission rows, one per
// question, scoring 1 per correct answer.
func scoreQuiz(userID, roomID string, selections []quizSelection, now time.Time) ([]*model.Submission, int) {
	subs := make([]*model.Submission, 0, len(selections))
	correct := 0
	for _, sel := range selections {
		qID := sel.QuestionID
		oID := sel.OptionID
		isCorrect := sel.Correct
		sub := &model.Submission{
			ID:            uuid.NewString(),
			UserID:        userID,
			RoomID:        roomID,
			QuestionKind:  model.KindMcq,
			McqQuestionID: &qID,
			McqOptionID:   &oID,
			IsCorrect:     &isCorrect,
			AttemptNumber: 1,
			Status:        model.StatusWrongAnswer,
			SubmittedAt:   now,
		}
		if isCorrect {
			sub.Status = model.StatusAccepted
			sub.Score = 1
			correct++
		}
		subs = append(subs, sub)
	}
	return subs, correct
}

// SubmitQuiz scores all answers of an MCQ room in one shot. A participant
// gets exactly one quiz submission per room.
func (s *SubmissionService) SubmitQuiz(ctx context.Context, roomCode int, userID string, req QuizSubmissionRequest) (*QuizResult, error) {
	if len(req.Answers) == 0 {
		return nil, common.Errorf("answers must not be empty: %w", common.ErrValidation)
	}

	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if err := s.checkSubmittable(room, userID, model.KindMcq); err != nil {
		return nil, err
	}

	// Fast-path rejection for repeat submitters. The real one-shot guard is
	// the unique index on (user_id, room_id, mcq_question_id): a racing
	// duplicate fails its insert with ErrConflict.
	prior, err := s.submissionRepo.ListUserRoomSubmissions(ctx, userID, room.ID)
	if err != nil {
		return nil, common.Errorf("failed to check prior submissions: %w", err)
	}
	if len(prior) > 0 {
		return nil, common.Errorf("quiz already submitted for this room: %w", common.ErrConflict)
	}

	assigned, err := s.assignedQuestionSet(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	answered := make(map[string]bool, len(req.Answers))
	selections := make([]quizSelection, 0, len(req.Answers))
	for _, ans := range req.Answers {
		if !assigned[ans.QuestionID] {
			return nil, common.Errorf("question %s is not part of this room: %w", ans.QuestionID, common.ErrBadRequest)
		}
		if answered[ans.QuestionID] {
			return nil, common.Errorf("duplicate answer for question %s: %w", ans.QuestionID, common.ErrBadRequest)
		}
		answered[ans.QuestionID] = true

		option, err := s.questionRepo.FindMcqOptionByID(ctx, ans.OptionID)
		if err != nil {
			return nil, common.Errorf("option %s: %w", ans.OptionID, err)
		}
		if option.McqQuestionID != ans.QuestionID {
			return nil, common.Errorf("option %s does not belong to question %s: %w", ans.OptionID, ans.QuestionID, common.ErrBadRequest)
		}
		selections = append(selections, quizSelection{QuestionID: ans.QuestionID, OptionID: ans.OptionID, Correct: option.IsCorrect})
	}

	now := time.Now()
	subs, correct := scoreQuiz(userID, room.ID, selections, now)
	result := &QuizResult{
		TotalQuestions: len(assigned),
		CorrectAnswers: correct,
		Score:          correct,
	}
	if room.StartedAt != nil {
		result.ElapsedSec = int64(now.Sub(*room.StartedAt).Seconds())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin quiz transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sub := range subs {
		if err := s.submissionRepo.CreateSubmission(ctx, tx, sub); err != nil {
			return nil, common.Errorf("failed to save quiz answer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit quiz submission: %w", err)
	}

	log.Printf("User %s submitted quiz for room %d: %d/%d correct", userID, roomCode, result.CorrectAnswers, result.TotalQuestions)
	return result, nil
}

// ListMySubmissions returns the caller's attempt history in the room.
func (s *SubmissionService) ListMySubmissions(ctx context.Context, roomCode int, userID string) ([]model.Submission, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(userID) {
		return nil, common.Errorf("you don't have permission to view this room: %w", common.ErrForbidden)
	}
	return s.submissionRepo.ListUserRoomSubmissions(ctx, userID, room.ID)
}

// GetQuestionStatuses reports per-question progress for the caller.
func (s *SubmissionService) GetQuestionStatuses(ctx context.Context, roomCode int, userID string) ([]model.QuestionStatus, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(userID) {
		return nil, common.Errorf("you don't have permission to view this room: %w", common.ErrForbidden)
	}

	roomQuestions, err := s.roomQuestionRepo.GetRoomQuestions(ctx, room.ID)
	if err != nil {
		return nil, common.Errorf("failed to load room questions: %w", err)
	}

	statuses := make([]model.QuestionStatus, 0, len(roomQuestions))
	for _, rq := range roomQuestions {
		qid := rq.QuestionID()
		attempts, err := s.submissionRepo.CountAttempts(ctx, nil, userID, room.ID, qid)
		if err != nil {
			return nil, common.Errorf("failed to count attempts for question %s: %w", qid, err)
		}
		solved, err := s.submissionRepo.HasAcceptedSubmission(ctx, userID, room.ID, qid)
		if err != nil {
			return nil, common.Errorf("failed to check accepted submission for question %s: %w", qid, err)
		}
		statuses = append(statuses, model.QuestionStatus{
			QuestionID: qid,
			Solved:     solved,
			Attempts:   attempts,
		})
	}
	return statuses, nil
}

func (s *SubmissionService) checkSubmittable(room *model.Room, userID string, kind model.QuestionKind) error {
	if !room.IsParticipant(userID) {
		return common.Errorf("you are not a participant of this room: %w", common.ErrForbidden)
	}
	if room.QuestionKind != kind {
		return common.Errorf("room %d does not accept %s submissions: %w", room.RoomCode, kind, common.ErrBadRequest)
	}
	if room.Expired(time.Now()) {
		return common.Errorf("room %d: %w", room.RoomCode, common.ErrRoomExpired)
	}
	if room.Status != model.RoomActive {
		return common.Errorf("room %d is not accepting submissions: %w", room.RoomCode, common.ErrBadRequest)
	}
	return nil
}

func (s *SubmissionService) ensureQuestionAssigned(ctx context.Context, roomID, questionID string) error {
	assigned, err := s.assignedQuestionSet(ctx, roomID)
	if err != nil {
		return err
	}
	if !assigned[questionID] {
		return common.Errorf("question %s is not part of this room: %w", questionID, common.ErrBadRequest)
	}
	return nil
}

func (s *SubmissionService) assignedQuestionSet(ctx context.Context, roomID string) (map[string]bool, error) {
	roomQuestions, err := s.roomQuestionRepo.GetRoomQuestions(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("failed to load room questions: %w", err)
	}
	set := make(map[string]bool, len(roomQuestions))
	for _, rq := range roomQuestions {
		set[rq.QuestionID()] = true
	}
	return set, nil
}
