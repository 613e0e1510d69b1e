// Package extract turns resume documents into the raw fields the normalizer
// consumes. Document-to-text conversion is delegated to docconv; field
// extraction is a dictionary scan plus experience-phrase regexes.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/profile"
)

// ExtractionError reports an upstream document-processing failure. It aborts
// only the affected resume, never the caller's wider processing.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting resume %q: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// knownSkills is the dictionary scanned against resume text. Exact-token,
// case-insensitive matching; no synonym resolution.
var knownSkills = []string{
	"python", "java", "javascript", "typescript", "c++", "c#", "go", "rust",
	"ruby", "php", "swift", "kotlin", "scala", "r",
	"react", "vue.js", "angular", "node.js", "django", "flask", "fastapi",
	"spring", "html", "css", "graphql",
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"machine learning", "deep learning", "tensorflow", "pytorch", "nlp",
	"pandas", "numpy",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"ci/cd", "jenkins", "linux", "bash",
	"git", "agile", "scrum", "rest api", "microservices",
	"kafka", "rabbitmq", "spark", "airflow",
}

var experienceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
	regexp.MustCompile(`(?i)experience[:\s]+(\d+)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s*(?:in|of|working)`),
}

// Extractor converts a resume file into raw extracted fields. JSON files are
// treated as pre-extracted fields; anything else goes through docconv.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// ExtractFile produces the raw resume fields for the given path.
func (e *Extractor) ExtractFile(path string) (*profile.RawResume, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return e.fromJSON(path)
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("document contains no text")}
	}

	raw := FromText(text)

	e.logger.Debug("extracted resume",
		zap.String("path", path),
		zap.Int("text_length", len(text)),
		zap.Int("skills_found", len(raw.Skills)),
	)

	return raw, nil
}

func (e *Extractor) fromJSON(path string) (*profile.RawResume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	var raw profile.RawResume
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("parse pre-extracted fields: %w", err)}
	}

	return &raw, nil
}

// FromText extracts raw resume fields from plain resume text.
func FromText(text string) *profile.RawResume {
	return &profile.RawResume{
		Skills:     ScanSkills(text),
		Experience: ExperiencePhrase(text),
		FullText:   text,
	}
}

// ScanSkills returns every known skill present in the text as a whole word.
func ScanSkills(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, skill := range knownSkills {
		pattern := regexp.MustCompile(`(?:^|\W)` + regexp.QuoteMeta(skill) + `(?:$|\W)`)
		if pattern.MatchString(lower) {
			found = append(found, skill)
		}
	}
	return found
}

// ExperiencePhrase returns the first experience phrase found in the text,
// e.g. "7+ years experience". Empty when none is present; the normalizer
// then defaults years to 0.
func ExperiencePhrase(text string) string {
	for _, re := range experienceRes {
		if match := re.FindString(text); match != "" {
			return match
		}
	}
	return ""
}
