package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"context"

	"github.com/gosimple/slug"
)

// QuestionService assembles the participant-facing view of a room's
// question set. Hidden test cases and correct-answer flags never leave it.
type QuestionService struct {
	questionRepo     repository.QuestionRepository
	roomRepo         repository.RoomRepository
	roomQuestionRepo repository.RoomQuestionRepository
}

func NewQuestionService(
	questionRepo repository.QuestionRepository,
	roomRepo repository.RoomRepository,
	roomQuestionRepo repository.RoomQuestionRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo:     questionRepo,
		roomRepo:         roomRepo,
		roomQuestionRepo: roomQuestionRepo,
	}
}

type SampleTestCase struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Explanation    *string `json:"explanation,omitempty"`
}

type CodingQuestionView struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Slug            string              `json:"slug"`
	Description     string              `json:"description"`
	Difficulty      model.Difficulty    `json:"difficulty"`
	Points          int                 `json:"points"`
	InputFormat     string              `json:"input_format"`
	OutputFormat    string              `json:"output_format"`
	Constraints     string              `json:"constraints"`
	TimeLimitSec    int                 `json:"time_limit_sec"`
	SampleTestCases []SampleTestCase    `json:"sample_test_cases"`
	StarterCodes    []model.StarterCode `json:"starter_codes"`
}

type McqOptionView struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
}

type McqQuestionView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Difficulty  model.Difficulty `json:"difficulty"`
	Points      int              `json:"points"`
	Options     []McqOptionView  `json:"options"`
}

type RoomQuestionView struct {
	Order  int                 `json:"order"`
	Kind   model.QuestionKind  `json:"kind"`
	Coding *CodingQuestionView `json:"coding,omitempty"`
	Mcq    *McqQuestionView    `json:"mcq,omitempty"`
}

// GetRoomQuestions returns the assigned question set to a participant, in
// room order.
func (s *QuestionService) GetRoomQuestions(ctx context.Context, roomCode int, userID string) ([]RoomQuestionView, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, common.Errorf("room %d: %w", roomCode, err)
	}
	if !room.IsParticipant(userID) {
		return nil, common.Errorf("you don't have permission to view this room: %w", common.ErrForbidden)
	}
	if room.Status == model.RoomWaiting || room.Status == model.RoomInProgress {
		return nil, common.Errorf("questions are revealed when the match starts: %w", common.ErrBadRequest)
	}

	roomQuestions, err := s.roomQuestionRepo.GetRoomQuestions(ctx, room.ID)
	if err != nil {
		return nil, common.Errorf("failed to load room questions: %w", err)
	}

	views := make([]RoomQuestionView, 0, len(roomQuestions))
	for _, rq := range roomQuestions {
		view := RoomQuestionView{Order: rq.QuestionOrder, Kind: rq.QuestionKind}
		switch rq.QuestionKind {
		case model.KindCoding:
			cv, err := s.codingView(ctx, rq.QuestionID())
			if err != nil {
				return nil, err
			}
			view.Coding = cv
		case model.KindMcq:
			mv, err := s.mcqView(ctx, rq.QuestionID())
			if err != nil {
				return nil, err
			}
			view.Mcq = mv
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *QuestionService) codingView(ctx context.Context, questionID string) (*CodingQuestionView, error) {
	q, err := s.questionRepo.FindCodingQuestionByID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("coding question %s: %w", questionID, err)
	}
	testCases, err := s.questionRepo.GetTestCasesByQuestionID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases for question %s: %w", questionID, err)
	}
	starters, err := s.questionRepo.GetStarterCodesByQuestionID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("failed to load starter codes for question %s: %w", questionID, err)
	}

	samples := make([]SampleTestCase, 0)
	for _, tc := range testCases {
		if !tc.IsSample {
			continue
		}
		samples = append(samples, SampleTestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Explanation:    tc.Explanation,
		})
	}

	questionSlug := q.Slug
	if questionSlug == "" {
		questionSlug = slug.Make(q.Title)
	}

	return &CodingQuestionView{
		ID:              q.ID,
		Title:           q.Title,
		Slug:            questionSlug,
		Description:     q.Description,
		Difficulty:      q.Difficulty,
		Points:          q.Points,
		InputFormat:     q.InputFormat,
		OutputFormat:    q.OutputFormat,
		Constraints:     q.Constraints,
		TimeLimitSec:    q.TimeLimitSec,
		SampleTestCases: samples,
		StarterCodes:    starters,
	}, nil
}

func (s *QuestionService) mcqView(ctx context.Context, questionID string) (*McqQuestionView, error) {
	q, err := s.questionRepo.FindMcqQuestionByID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("mcq question %s: %w", questionID, err)
	}
	options, err := s.questionRepo.GetMcqOptionsByQuestionID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("failed to load options for question %s: %w", questionID, err)
	}

	optionViews := make([]McqOptionView, 0, len(options))
	for _, opt := range options {
		optionViews = append(optionViews, McqOptionView{ID: opt.ID, OptionText: opt.OptionText})
	}

	return &McqQuestionView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Points:      q.Points,
		Options:     optionViews,
	}, nil
}
