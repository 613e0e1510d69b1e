package matching

import (
	"reflect"
	"testing"
)

func skillSet(skills ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

func TestSkillScore(t *testing.T) {
	cases := []struct {
		name            string
		resume          []string
		required        []string
		expectedScore   float64
		expectedMatched []string
		expectedMissing []string
	}{
		{
			name:            "partial overlap",
			resume:          []string{"python", "sql", "aws"},
			required:        []string{"python", "aws", "docker"},
			expectedScore:   2.0 / 3.0,
			expectedMatched: []string{"aws", "python"},
			expectedMissing: []string{"docker"},
		},
		{
			name:            "empty requirements give full credit",
			resume:          []string{"python"},
			required:        nil,
			expectedScore:   1.0,
			expectedMatched: []string{},
			expectedMissing: []string{},
		},
		{
			name:            "no overlap",
			resume:          []string{"ruby"},
			required:        []string{"go", "rust"},
			expectedScore:   0,
			expectedMatched: []string{},
			expectedMissing: []string{"go", "rust"},
		},
		{
			name:            "empty resume against empty requirements",
			resume:          nil,
			required:        nil,
			expectedScore:   1.0,
			expectedMatched: []string{},
			expectedMissing: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, matched, missing := SkillScore(skillSet(tc.resume...), skillSet(tc.required...))

			if score < 0 || score > 1 {
				t.Fatalf("score %v out of [0,1]", score)
			}
			if score != tc.expectedScore {
				t.Fatalf("expected score %v, got %v", tc.expectedScore, score)
			}
			if !reflect.DeepEqual(matched, tc.expectedMatched) {
				t.Fatalf("expected matched %v, got %v", tc.expectedMatched, matched)
			}
			if !reflect.DeepEqual(missing, tc.expectedMissing) {
				t.Fatalf("expected missing %v, got %v", tc.expectedMissing, missing)
			}
		})
	}
}

func TestExperienceScore(t *testing.T) {
	cases := []struct {
		name     string
		held     float64
		required float64
		expected float64
	}{
		{"no requirement", 0, 0, 1.0},
		{"meets requirement exactly", 2, 2, 1.0},
		{"exceeding earns no bonus", 10, 2, 1.0},
		{"half the requirement", 1, 2, 0.5},
		{"no experience", 0, 4, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExperienceScore(tc.held, tc.required)
			if got != tc.expected {
				t.Fatalf("ExperienceScore(%v, %v) = %v, expected %v", tc.held, tc.required, got, tc.expected)
			}
			if got > 1.0 {
				t.Fatalf("score %v exceeds 1.0", got)
			}
		})
	}
}
