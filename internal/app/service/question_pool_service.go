package service

import (
	"code_arena/internal/common"
	"code_arena/internal/domain/model"
	"code_arena/internal/domain/repository"
	"context"
	"log"
	"math/rand"
)

// QuestionPoolService draws randomized, non-repeating question sets from the
// read-only catalog.
type QuestionPoolService struct {
	questionRepo repository.QuestionRepository
}

func NewQuestionPoolService(questionRepo repository.QuestionRepository) *QuestionPoolService {
	return &QuestionPoolService{questionRepo: questionRepo}
}

// mixedSplit divides count into easy/medium/hard buckets at a 40/40/20 ratio.
// Ceiling rounding keeps small counts represented: a count of 1 yields one
// easy question.
func mixedSplit(count int) (easy, medium, hard int) {
	easy = (count*4 + 9) / 10 // ceil(0.4 * count)
	medium = (count*4 + 9) / 10
	if easy+medium > count {
		medium = count - easy
	}
	hard = count - easy - medium
	return easy, medium, hard
}

// Sample returns up to count question IDs for the given kind and difficulty,
// shuffled so ordering does not leak difficulty. Under-supplied pools top up
// from the medium bucket; a still-short result is returned as-is and logged,
// never treated as a hard failure.
func (s *QuestionPoolService) Sample(ctx context.Context, kind model.QuestionKind, difficulty model.Difficulty, count int) ([]string, error) {
	if count <= 0 {
		return nil, common.Errorf("question count must be positive: %w", common.ErrValidation)
	}

	if difficulty != model.DifficultyMixed {
		ids, err := s.sampleBucket(ctx, kind, difficulty, count)
		if err != nil {
			return nil, err
		}
		if len(ids) < count {
			log.Printf("WARN: Question pool under-supplied for %s/%s: requested %d, got %d", kind, difficulty, count, len(ids))
		}
		return ids, nil
	}

	easyCount, mediumCount, hardCount := mixedSplit(count)

	var combined []string
	seen := make(map[string]bool)
	for _, bucket := range []struct {
		difficulty model.Difficulty
		count      int
	}{
		{model.DifficultyEasy, easyCount},
		{model.DifficultyMedium, mediumCount},
		{model.DifficultyHard, hardCount},
	} {
		if bucket.count == 0 {
			continue
		}
		ids, err := s.sampleBucket(ctx, kind, bucket.difficulty, bucket.count)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				combined = append(combined, id)
			}
		}
	}

	// Fallback: top up a shortfall from the medium pool.
	if len(combined) < count {
		extra, err := s.sampleBucket(ctx, kind, model.DifficultyMedium, count)
		if err != nil {
			return nil, err
		}
		for _, id := range extra {
			if len(combined) >= count {
				break
			}
			if !seen[id] {
				seen[id] = true
				combined = append(combined, id)
			}
		}
	}
	if len(combined) < count {
		log.Printf("WARN: Mixed question pool under-supplied for %s: requested %d, got %d", kind, count, len(combined))
	}

	rand.Shuffle(len(combined), func(i, j int) {
		combined[i], combined[j] = combined[j], combined[i]
	})
	return combined, nil
}

func (s *QuestionPoolService) sampleBucket(ctx context.Context, kind model.QuestionKind, difficulty model.Difficulty, count int) ([]string, error) {
	if kind == model.KindCoding {
		return s.questionRepo.SampleCodingQuestionIDs(ctx, difficulty, count)
	}
	return s.questionRepo.SampleMcqQuestionIDs(ctx, difficulty, count)
}
