// Package matching implements the hybrid scoring engine: deterministic
// skill and experience scoring combined with a semantic-similarity signal.
package matching

import (
	"context"
	"sort"
)

// Weights is the fixed scoring policy for combining the three sub-scores.
// It is a single named value so tuning never touches scorer internals.
type Weights struct {
	Skill      float64
	Experience float64
	Semantic   float64
}

// DefaultWeights is the production scoring policy.
var DefaultWeights = Weights{Skill: 0.50, Experience: 0.30, Semantic: 0.20}

// NeutralSemanticScore is used when no vector index is configured or a
// similarity lookup fails, keeping the final score well-defined either way.
const NeutralSemanticScore = 0.5

// VectorIndex is the external semantic-similarity capability. Implementations
// must return a bounded score in [0,1] and 0 for empty input on either side.
type VectorIndex interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// SkillScore returns the fraction of required skills present in the resume
// skill set, plus the matched and missing skills. An empty requirement set
// gives full credit.
func SkillScore(resumeSkills, requiredSkills map[string]struct{}) (float64, []string, []string) {
	if len(requiredSkills) == 0 {
		return 1.0, []string{}, []string{}
	}

	matched := make([]string, 0, len(requiredSkills))
	missing := make([]string, 0, len(requiredSkills))
	for skill := range requiredSkills {
		if _, ok := resumeSkills[skill]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	score := clamp01(float64(len(matched)) / float64(len(requiredSkills)))
	return score, matched, missing
}

// ExperienceScore gives linear credit for years held against years required,
// capped at full credit. Exceeding the requirement earns no bonus.
func ExperienceScore(yearsHeld, yearsRequired float64) float64 {
	if yearsRequired <= 0 {
		return 1.0
	}
	if yearsHeld >= yearsRequired {
		return 1.0
	}
	return clamp01(yearsHeld / yearsRequired)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
