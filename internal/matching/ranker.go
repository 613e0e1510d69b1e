package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/profile"
)

const (
	defaultLookupTimeout = 15 * time.Second
	defaultConcurrency   = 4
)

// Ranker scores a resume against a batch of postings and returns an ordered,
// explained result list. A nil index means no semantic search is configured;
// every posting then receives the neutral semantic score.
type Ranker struct {
	index   VectorIndex
	weights Weights
	logger  *zap.Logger

	// Concurrency bounds the parallel similarity lookups per batch.
	Concurrency   int
	LookupTimeout time.Duration
}

func NewRanker(index VectorIndex, weights Weights, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		index:         index,
		weights:       weights,
		logger:        logger,
		Concurrency:   defaultConcurrency,
		LookupTimeout: defaultLookupTimeout,
	}
}

// Rank produces exactly one MatchResult per posting, sorted by final score
// descending with ties kept in input order. A failed semantic lookup for one
// posting never aborts the batch; that posting falls back to the neutral
// semantic score.
func (r *Ranker) Rank(ctx context.Context, resume *profile.ResumeProfile, postings []*profile.JobPosting) Results {
	results := make(Results, len(postings))
	semantic := r.semanticScores(ctx, resume, postings)

	for i, posting := range postings {
		skillScore, matched, missing := SkillScore(resume.Skills, posting.RequiredSkills)
		experienceScore := ExperienceScore(resume.YearsExperience, posting.MinYears)
		semanticScore := semantic[i]

		final := skillScore*r.weights.Skill +
			experienceScore*r.weights.Experience +
			semanticScore*r.weights.Semantic

		results[i] = MatchResult{
			JobID:           posting.ID,
			Title:           posting.Title,
			Company:         posting.Company,
			URL:             posting.URL,
			SkillScore:      skillScore,
			ExperienceScore: experienceScore,
			SemanticScore:   semanticScore,
			FinalScore:      final,
			MatchedSkills:   matched,
			MissingSkills:   missing,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

// semanticScores resolves the similarity for every posting with bounded
// concurrency, slotting results by input index so ordering is untouched.
func (r *Ranker) semanticScores(ctx context.Context, resume *profile.ResumeProfile, postings []*profile.JobPosting) []float64 {
	scores := make([]float64, len(postings))

	if r.index == nil {
		for i := range scores {
			scores[i] = NeutralSemanticScore
		}
		return scores
	}

	workers := r.Concurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, posting := range postings {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, posting *profile.JobPosting) {
			defer wg.Done()
			defer func() { <-sem }()
			scores[i] = r.similarity(ctx, resume.RawText, posting)
		}(i, posting)
	}
	wg.Wait()

	return scores
}

func (r *Ranker) similarity(ctx context.Context, resumeText string, posting *profile.JobPosting) float64 {
	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout())
	defer cancel()

	score, err := r.index.Similarity(lookupCtx, resumeText, posting.DescriptionText)
	if err != nil {
		r.logger.Warn("semantic lookup failed, using neutral fallback",
			zap.String("job_id", posting.ID),
			zap.Error(err),
		)
		return NeutralSemanticScore
	}

	return clamp01(score)
}

func (r *Ranker) lookupTimeout() time.Duration {
	if r.LookupTimeout > 0 {
		return r.LookupTimeout
	}
	return defaultLookupTimeout
}
