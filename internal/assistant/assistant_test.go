package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/profile"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.response, g.err
}

func testResume() *profile.ResumeProfile {
	return &profile.ResumeProfile{
		Skills:          map[string]struct{}{"go": {}, "postgresql": {}},
		YearsExperience: 5,
		RawText:         "Backend engineer with 5 years of experience in Go.",
	}
}

func testPosting() *profile.JobPosting {
	return &profile.JobPosting{
		ID:              "j1",
		Title:           "Go Developer",
		Company:         "Acme",
		RequiredSkills:  map[string]struct{}{"go": {}},
		DescriptionText: "Build services in Go.",
	}
}

func TestCoverLetter(t *testing.T) {
	gen := &stubGenerator{response: "Dear hiring manager,\n\nI build Go services."}

	letter, err := New(gen, zap.NewNop(), 0).CoverLetter(context.Background(), testResume(), testPosting())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(letter, "Go services") {
		t.Fatalf("unexpected letter: %q", letter)
	}

	for _, expected := range []string{"Go Developer", "Backend engineer"} {
		if !strings.Contains(gen.prompt, expected) {
			t.Fatalf("prompt missing %q:\n%s", expected, gen.prompt)
		}
	}
}

func TestAnswerIncludesQuestion(t *testing.T) {
	gen := &stubGenerator{response: "Yes, I have five years of Go experience."}

	answer, err := New(gen, zap.NewNop(), 0).Answer(context.Background(), testResume(), testPosting(), "How many years of Go experience do you have?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected non-empty answer")
	}
	if !strings.Contains(gen.prompt, "How many years of Go experience") {
		t.Fatalf("prompt missing question:\n%s", gen.prompt)
	}
}

func TestAnswerRequiresQuestion(t *testing.T) {
	gen := &stubGenerator{response: "irrelevant"}

	if _, err := New(gen, zap.NewNop(), 0).Answer(context.Background(), testResume(), testPosting(), "  "); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestCoverLetterGeneratorError(t *testing.T) {
	genErr := errors.New("quota exceeded")
	gen := &stubGenerator{err: genErr}

	if _, err := New(gen, zap.NewNop(), 0).CoverLetter(context.Background(), testResume(), testPosting()); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error to surface, got %v", err)
	}
}

func TestCoverLetterRequiresInputs(t *testing.T) {
	gen := &stubGenerator{response: "irrelevant"}
	a := New(gen, zap.NewNop(), 0)

	if _, err := a.CoverLetter(context.Background(), nil, testPosting()); err == nil {
		t.Fatal("expected error for missing resume")
	}
	if _, err := a.CoverLetter(context.Background(), testResume(), nil); err == nil {
		t.Fatal("expected error for missing posting")
	}
}
