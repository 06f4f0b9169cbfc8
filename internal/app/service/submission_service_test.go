package service

import (
	"code_arena/internal/domain/model"
	"code_arena/internal/platform/executor"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeExecutor maps stdin to a canned result and records how many runs
// happened, so short-circuiting is observable.
type fakeExecutor struct {
	results map[string]*executor.ExecutionResult
	err     error
	runs    int
}

func (f *fakeExecutor) Execute(_ context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[req.Stdin]; ok {
		return res, nil
	}
	return &executor.ExecutionResult{Stdout: ""}, nil
}

func testCases(outputs ...string) []model.TestCase {
	tcs := make([]model.TestCase, len(outputs))
	for i, out := range outputs {
		tcs[i] = model.TestCase{
			Input:          "in" + string(rune('1'+i)),
			ExpectedOutput: out,
			OrderIndex:     i + 1,
		}
	}
	return tcs
}

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4", "4"},
		{"4 \n", "4"},
		{"  1   2  3 ", "1 2 3"},
		{"a\nb\nc", "a b c"},
		{"\t\n ", ""},
	}
	for _, tt := range tests {
		if got := normalizeOutput(tt.in); got != tt.want {
			t.Errorf("normalizeOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJudgeCodeAccepted(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*executor.ExecutionResult{
		"in1": {Stdout: "4 \n", TimeSec: 0.1, MemoryKb: 1024},
		"in2": {Stdout: "9", TimeSec: 0.3, MemoryKb: 2048},
	}}

	verdict, err := judgeCode(context.Background(), exec, "python", "3.10.0", "code", 2, testCases("4", "9"))
	if err != nil {
		t.Fatalf("judgeCode() error: %v", err)
	}
	if verdict.Status != model.StatusAccepted {
		t.Errorf("Status = %s, want ACCEPTED", verdict.Status)
	}
	if verdict.PassedTestCases != 2 || verdict.TotalTestCases != 2 {
		t.Errorf("Passed/Total = %d/%d, want 2/2", verdict.PassedTestCases, verdict.TotalTestCases)
	}
	if verdict.MaxTimeSec != 0.3 || verdict.MaxMemoryKb != 2048 {
		t.Errorf("Max time/memory = %v/%v, want 0.3/2048", verdict.MaxTimeSec, verdict.MaxMemoryKb)
	}
}

func TestJudgeCodeWrongAnswerShortCircuits(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*executor.ExecutionResult{
		"in1": {Stdout: "4"},
		"in2": {Stdout: "wrong"},
		"in3": {Stdout: "16"},
	}}

	verdict, err := judgeCode(context.Background(), exec, "python", "3.10.0", "code", 2, testCases("4", "9", "16"))
	if err != nil {
		t.Fatalf("judgeCode() error: %v", err)
	}
	if verdict.Status != model.StatusWrongAnswer {
		t.Errorf("Status = %s, want WRONG_ANSWER", verdict.Status)
	}
	if verdict.PassedTestCases != 1 {
		t.Errorf("PassedTestCases = %d, want 1", verdict.PassedTestCases)
	}
	if exec.runs != 2 {
		t.Errorf("executor ran %d times, judging should stop at the first failure", exec.runs)
	}
	if !strings.Contains(verdict.Message, "test case 2") {
		t.Errorf("Message = %q, should name the failing test case", verdict.Message)
	}
}

func TestJudgeCodeCompilationError(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*executor.ExecutionResult{
		"in1": {CompileFailed: true, CompileStderr: "syntax error"},
	}}

	verdict, err := judgeCode(context.Background(), exec, "cpp", "10.2.0", "code", 2, testCases("4", "9"))
	if err != nil {
		t.Fatalf("judgeCode() error: %v", err)
	}
	if verdict.Status != model.StatusCompilationError {
		t.Errorf("Status = %s, want COMPILATION_ERROR", verdict.Status)
	}
	if exec.runs != 1 {
		t.Errorf("executor ran %d times, want 1", exec.runs)
	}
	if verdict.Message != "syntax error" {
		t.Errorf("Message = %q, want compiler stderr", verdict.Message)
	}
}

func TestJudgeCodeRuntimeError(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*executor.ExecutionResult{
		"in1": {Stdout: "4"},
		"in2": {Stderr: "panic: index out of range", ExitCode: 1},
	}}

	verdict, err := judgeCode(context.Background(), exec, "go", "1.16.2", "code", 2, testCases("4", "9"))
	if err != nil {
		t.Fatalf("judgeCode() error: %v", err)
	}
	if verdict.Status != model.StatusRuntimeError {
		t.Errorf("Status = %s, want RUNTIME_ERROR", verdict.Status)
	}
	if verdict.PassedTestCases != 1 {
		t.Errorf("PassedTestCases = %d, want 1", verdict.PassedTestCases)
	}
}

func TestJudgeCodeTimeLimitExceeded(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*executor.ExecutionResult{
		"in1": {Stdout: "4", TimeSec: 5.0},
	}}

	verdict, err := judgeCode(context.Background(), exec, "python", "3.10.0", "code", 2, testCases("4"))
	if err != nil {
		t.Fatalf("judgeCode() error: %v", err)
	}
	if verdict.Status != model.StatusTimeLimitExceeded {
		t.Errorf("Status = %s, want TIME_LIMIT_EXCEEDED", verdict.Status)
	}
}

func TestScoreQuiz(t *testing.T) {
	now := time.Now()
	selections := []quizSelection{
		{QuestionID: "q1", OptionID: "o1", Correct: true},
		{QuestionID: "q2", OptionID: "o5", Correct: false},
		{QuestionID: "q3", OptionID: "o9", Correct: true},
	}

	subs, correct := scoreQuiz("alice", "room-1", selections, now)
	if correct != 2 {
		t.Errorf("correct = %d, want 2", correct)
	}
	if len(subs) != 3 {
		t.Fatalf("len(subs) = %d, want one row per answer", len(subs))
	}
	for i, sub := range subs {
		if sub.QuestionKind != model.KindMcq || sub.AttemptNumber != 1 {
			t.Errorf("subs[%d] has wrong kind or attempt number: %+v", i, sub)
		}
		if *sub.McqQuestionID != selections[i].QuestionID {
			t.Errorf("subs[%d] question id = %s, want %s", i, *sub.McqQuestionID, selections[i].QuestionID)
		}
		wantStatus := model.StatusWrongAnswer
		wantScore := 0
		if selections[i].Correct {
			wantStatus = model.StatusAccepted
			wantScore = 1
		}
		if sub.Status != wantStatus || sub.Score != wantScore {
			t.Errorf("subs[%d] status/score = %s/%d, want %s/%d", i, sub.Status, sub.Score, wantStatus, wantScore)
		}
	}
}

func TestJudgeCodeSandboxFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("connection refused")}

	_, err := judgeCode(context.Background(), exec, "python", "3.10.0", "code", 2, testCases("4"))
	if err == nil {
		t.Fatal("judgeCode() should surface sandbox failures as errors, not verdicts")
	}
}

// fakeSubmissionStore keeps inserted rows in memory so attempt counting
// reflects what was stored.
type fakeSubmissionStore struct {
	subs []model.Submission
}

func (f *fakeSubmissionStore) CreateSubmission(_ context.Context, _ *sql.Tx, sub *model.Submission) error {
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeSubmissionStore) CountAttempts(_ context.Context, _ *sql.Tx, userID, roomID, questionID string) (int, error) {
	count := 0
	for _, s := range f.subs {
		if s.UserID != userID || s.RoomID != roomID {
			continue
		}
		if (s.CodingQuestionID != nil && *s.CodingQuestionID == questionID) ||
			(s.McqQuestionID != nil && *s.McqQuestionID == questionID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionStore) SumAcceptedScores(context.Context, string) ([]model.UserScore, error) {
	return nil, nil
}

func (f *fakeSubmissionStore) ListUserRoomSubmissions(context.Context, string, string) ([]model.Submission, error) {
	return f.subs, nil
}

func (f *fakeSubmissionStore) HasAcceptedSubmission(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func TestRecordAttemptNumbersSequentially(t *testing.T) {
	store := &fakeSubmissionStore{}
	questionID := "q-1"

	for want := 1; want <= 3; want++ {
		sub := &model.Submission{
			ID:               "sub-" + strings.Repeat("x", want),
			UserID:           "alice",
			RoomID:           "room-1",
			QuestionKind:     model.KindCoding,
			CodingQuestionID: &questionID,
		}
		if err := recordAttempt(context.Background(), nil, store, sub, questionID); err != nil {
			t.Fatalf("recordAttempt() attempt %d: %v", want, err)
		}
		if sub.AttemptNumber != want {
			t.Errorf("attempt %d numbered %d, want %d", want, sub.AttemptNumber, want)
		}
	}

	// Another user's attempts on the same question start from 1.
	otherSub := &model.Submission{
		ID:               "sub-bob",
		UserID:           "bob",
		RoomID:           "room-1",
		QuestionKind:     model.KindCoding,
		CodingQuestionID: &questionID,
	}
	if err := recordAttempt(context.Background(), nil, store, otherSub, questionID); err != nil {
		t.Fatalf("recordAttempt() for second user: %v", err)
	}
	if otherSub.AttemptNumber != 1 {
		t.Errorf("second user's first attempt numbered %d, want 1", otherSub.AttemptNumber)
	}
}
