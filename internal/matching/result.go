package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MatchResult is the explained score for one (resume, posting) pair.
// Never mutated after creation.
type MatchResult struct {
	JobID           string   `json:"job_id"`
	Title           string   `json:"title,omitempty"`
	Company         string   `json:"company,omitempty"`
	URL             string   `json:"url,omitempty"`
	SkillScore      float64  `json:"skill_score"`
	ExperienceScore float64  `json:"experience_score"`
	SemanticScore   float64  `json:"semantic_score"`
	FinalScore      float64  `json:"final_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
}

// Summary returns a short human-readable explanation of the match.
func (r MatchResult) Summary() string {
	var parts []string

	switch {
	case r.FinalScore >= 0.8:
		parts = append(parts, "excellent match")
	case r.FinalScore >= 0.6:
		parts = append(parts, "good match")
	case r.FinalScore >= 0.4:
		parts = append(parts, "partial match")
	default:
		parts = append(parts, "low match")
	}

	if len(r.MatchedSkills) > 0 {
		parts = append(parts, fmt.Sprintf("matching skills: %s", strings.Join(r.MatchedSkills, ", ")))
	}
	if len(r.MissingSkills) > 0 {
		parts = append(parts, fmt.Sprintf("skills to develop: %s", strings.Join(r.MissingSkills, ", ")))
	}

	return strings.Join(parts, "; ")
}

// Results is an ordered ranking, best match first.
type Results []MatchResult

func (rs Results) Len() int { return len(rs) }

// AboveThreshold returns the results whose final score meets the threshold,
// preserving rank order.
func (rs Results) AboveThreshold(min float64) Results {
	passed := make(Results, 0, len(rs))
	for _, r := range rs {
		if r.FinalScore >= min {
			passed = append(passed, r)
		}
	}
	return passed
}

// JobIDs returns the job ids in rank order.
func (rs Results) JobIDs() []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.JobID)
	}
	return ids
}

// FindByID returns the result for the given job id, or nil.
func (rs Results) FindByID(id string) *MatchResult {
	for i := range rs {
		if rs[i].JobID == id {
			return &rs[i]
		}
	}
	return nil
}

// DumpToTmpFile writes the ranking to a temporary JSON file and returns its name.
func (rs Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return "", err
	}
	return file.Name(), nil
}
