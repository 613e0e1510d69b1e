package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/logger"
	"github.com/vslobodin/jobscout/internal/profile"
)

//go:embed cover_letter.md
var coverLetterTemplate string

//go:embed answer.md
var answerTemplate string

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assistant drafts application materials from a resume and a posting.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func New(generator contentGenerator, log *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// CoverLetter drafts a cover letter for the posting.
func (a *Assistant) CoverLetter(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobPosting) (string, error) {
	prompt, err := a.buildPrompt(coverLetterTemplate, resume, job, "")
	if err != nil {
		return "", err
	}
	return a.generate(ctx, "cover letter", job.ID, prompt)
}

// Answer drafts a reply to a screening question for the posting.
func (a *Assistant) Answer(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobPosting, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	prompt, err := a.buildPrompt(answerTemplate, resume, job, question)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, "screening answer", job.ID, prompt)
}

func (a *Assistant) buildPrompt(template string, resume *profile.ResumeProfile, job *profile.JobPosting, question string) (string, error) {
	if resume == nil {
		return "", fmt.Errorf("resume profile is required")
	}
	if job == nil {
		return "", fmt.Errorf("job posting is required")
	}

	resumePayload := map[string]any{
		"skills":           profile.SortedSkills(resume.Skills),
		"years_experience": resume.YearsExperience,
		"text":             resume.RawText,
	}
	resumeJSON, err := json.MarshalIndent(resumePayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume payload: %w", err)
	}

	jobPayload := map[string]any{
		"title":           job.Title,
		"company":         job.Company,
		"required_skills": profile.SortedSkills(job.RequiredSkills),
		"min_years":       job.MinYears,
		"description":     job.DescriptionText,
	}
	jobJSON, err := json.MarshalIndent(jobPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := strings.ReplaceAll(template, "{{RESUME}}", string(resumeJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)
	return prompt, nil
}

func (a *Assistant) generate(ctx context.Context, kind, jobID, prompt string) (string, error) {
	a.logger.Debug("generate content request",
		zap.String("kind", kind),
		zap.String("job_id", jobID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("drafting %s for %s: %w", kind, jobID, err)
	}

	a.logger.Debug("generate content response",
		zap.String("kind", kind),
		zap.String("job_id", jobID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return strings.TrimSpace(raw), nil
}
