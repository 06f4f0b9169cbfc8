package service

import (
	"code_arena/internal/domain/model"
	"context"
	"testing"
)

// fakeQuestionCatalog serves fixed per-difficulty pools in a stable order.
type fakeQuestionCatalog struct {
	coding map[model.Difficulty][]string
	mcq    map[model.Difficulty][]string
}

func (f *fakeQuestionCatalog) SampleCodingQuestionIDs(_ context.Context, difficulty model.Difficulty, count int) ([]string, error) {
	return takeIDs(f.coding[difficulty], count), nil
}

func (f *fakeQuestionCatalog) SampleMcqQuestionIDs(_ context.Context, difficulty model.Difficulty, count int) ([]string, error) {
	return takeIDs(f.mcq[difficulty], count), nil
}

func (f *fakeQuestionCatalog) FindCodingQuestionByID(context.Context, string) (*model.CodingQuestion, error) {
	return nil, nil
}
func (f *fakeQuestionCatalog) GetTestCasesByQuestionID(context.Context, string) ([]model.TestCase, error) {
	return nil, nil
}
func (f *fakeQuestionCatalog) GetStarterCodesByQuestionID(context.Context, string) ([]model.StarterCode, error) {
	return nil, nil
}
func (f *fakeQuestionCatalog) FindMcqQuestionByID(context.Context, string) (*model.McqQuestion, error) {
	return nil, nil
}
func (f *fakeQuestionCatalog) GetMcqOptionsByQuestionID(context.Context, string) ([]model.McqOption, error) {
	return nil, nil
}
func (f *fakeQuestionCatalog) FindMcqOptionByID(context.Context, string) (*model.McqOption, error) {
	return nil, nil
}

func takeIDs(pool []string, count int) []string {
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]string, count)
	copy(out, pool[:count])
	return out
}

func TestMixedSplit(t *testing.T) {
	tests := []struct {
		count              int
		easy, medium, hard int
	}{
		{1, 1, 0, 0},
		{2, 1, 1, 0},
		{3, 2, 1, 0},
		{5, 2, 2, 1},
		{10, 4, 4, 2},
		{20, 8, 8, 4},
	}
	for _, tt := range tests {
		easy, medium, hard := mixedSplit(tt.count)
		if easy != tt.easy || medium != tt.medium || hard != tt.hard {
			t.Errorf("mixedSplit(%d) = (%d, %d, %d), want (%d, %d, %d)",
				tt.count, easy, medium, hard, tt.easy, tt.medium, tt.hard)
		}
		if easy+medium+hard != tt.count {
			t.Errorf("mixedSplit(%d) buckets sum to %d", tt.count, easy+medium+hard)
		}
	}
}

func TestSampleSingleDifficulty(t *testing.T) {
	catalog := &fakeQuestionCatalog{
		coding: map[model.Difficulty][]string{
			model.DifficultyEasy: {"e1", "e2", "e3"},
		},
	}
	pool := NewQuestionPoolService(catalog)

	ids, err := pool.Sample(context.Background(), model.KindCoding, model.DifficultyEasy, 2)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Sample() returned %d ids, want 2", len(ids))
	}
}

func TestSampleSingleDifficultyShortPool(t *testing.T) {
	catalog := &fakeQuestionCatalog{
		mcq: map[model.Difficulty][]string{
			model.DifficultyHard: {"h1"},
		},
	}
	pool := NewQuestionPoolService(catalog)

	ids, err := pool.Sample(context.Background(), model.KindMcq, model.DifficultyHard, 5)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("under-supplied pool should return what it has, got %d ids", len(ids))
	}
}

func TestSampleMixedDistribution(t *testing.T) {
	catalog := &fakeQuestionCatalog{
		coding: map[model.Difficulty][]string{
			model.DifficultyEasy:   {"e1", "e2", "e3", "e4"},
			model.DifficultyMedium: {"m1", "m2", "m3", "m4"},
			model.DifficultyHard:   {"h1", "h2"},
		},
	}
	pool := NewQuestionPoolService(catalog)

	ids, err := pool.Sample(context.Background(), model.KindCoding, model.DifficultyMixed, 5)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("Sample() returned %d ids, want 5", len(ids))
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate question id %q in sample", id)
		}
		seen[id] = true
	}
}

func TestSampleMixedTopsUpFromMedium(t *testing.T) {
	// Hard pool is empty; the shortfall should be covered by mediums.
	catalog := &fakeQuestionCatalog{
		coding: map[model.Difficulty][]string{
			model.DifficultyEasy:   {"e1", "e2"},
			model.DifficultyMedium: {"m1", "m2", "m3", "m4", "m5"},
		},
	}
	pool := NewQuestionPoolService(catalog)

	ids, err := pool.Sample(context.Background(), model.KindCoding, model.DifficultyMixed, 5)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("Sample() returned %d ids, want 5 after top-up", len(ids))
	}
}

func TestSampleMixedStillShortIsNotAnError(t *testing.T) {
	catalog := &fakeQuestionCatalog{
		coding: map[model.Difficulty][]string{
			model.DifficultyEasy: {"e1"},
		},
	}
	pool := NewQuestionPoolService(catalog)

	ids, err := pool.Sample(context.Background(), model.KindCoding, model.DifficultyMixed, 10)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Sample() returned %d ids, want 1", len(ids))
	}
}

func TestSampleRejectsNonPositiveCount(t *testing.T) {
	pool := NewQuestionPoolService(&fakeQuestionCatalog{})
	if _, err := pool.Sample(context.Background(), model.KindCoding, model.DifficultyEasy, 0); err == nil {
		t.Error("Sample() with count 0 should fail")
	}
}
