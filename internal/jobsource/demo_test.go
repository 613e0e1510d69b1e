package jobsource

import (
	"context"
	"testing"
)

func TestDemoSearchFiltersByQuery(t *testing.T) {
	source, err := NewDemo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postings, err := source.Search(context.Background(), Criteria{"what": "kubernetes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(postings) == 0 {
		t.Fatalf("expected at least one kubernetes posting")
	}

	for _, p := range postings {
		found := false
		for _, skill := range p.RequiredSkills {
			if skill == "Kubernetes" {
				found = true
			}
		}
		if !found {
			t.Fatalf("posting %s does not require kubernetes", p.ID)
		}
	}
}

func TestDemoSearchEmptyQueryReturnsAll(t *testing.T) {
	source, err := NewDemo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postings, err := source.Search(context.Background(), Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(postings) != len(source.postings) {
		t.Fatalf("expected all %d postings, got %d", len(source.postings), len(postings))
	}
}

func TestDemoSearchDeterministicOrder(t *testing.T) {
	source, err := NewDemo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := source.Search(context.Background(), Criteria{"what": "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := source.Search(context.Background(), Criteria{"what": "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result count changed between runs: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("result order changed at %d: %s != %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestDemoSearchNoMatchFallsBackToAll(t *testing.T) {
	source, err := NewDemo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postings, err := source.Search(context.Background(), Criteria{"what": "underwater basket weaving"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(postings) != len(source.postings) {
		t.Fatalf("expected fallback to all postings, got %d", len(postings))
	}
}

func TestDemoSearchLimit(t *testing.T) {
	source, err := NewDemo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postings, err := source.Search(context.Background(), Criteria{"limit": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
}
