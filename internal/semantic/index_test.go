package semantic

import (
	"context"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"empty", nil, nil, 0},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Cosine(tc.a, tc.b)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Fatalf("Cosine(%v, %v) = %v, expected %v", tc.a, tc.b, got, tc.expected)
			}
			if got < 0 || got > 1 {
				t.Fatalf("cosine %v out of [0,1]", got)
			}
		})
	}
}

func TestSimilarityEmptyInput(t *testing.T) {
	// Empty input must short-circuit before any API call, so a nil client is fine.
	idx := &Index{cache: map[string][]float32{}}

	score, err := idx.Similarity(context.Background(), "", "job description")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0 for empty input, got %v", score)
	}

	score, err = idx.Similarity(context.Background(), "resume text", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0 for empty input, got %v", score)
	}
}
