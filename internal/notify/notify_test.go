package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/matching"
)

type stubTransport struct {
	name   string
	err    error
	sentTo []string
	bodies []string
}

func (t *stubTransport) Name() string { return t.name }

func (t *stubTransport) Send(_ context.Context, address, _, body string) error {
	if t.err != nil {
		return t.err
	}
	t.sentTo = append(t.sentTo, address)
	t.bodies = append(t.bodies, body)
	return nil
}

func sampleResults() matching.Results {
	return matching.Results{
		{JobID: "j1", Title: "Go Developer", Company: "Acme", URL: "https://example.com/j1", FinalScore: 0.85, MatchedSkills: []string{"go"}},
		{JobID: "j2", Title: "Platform Engineer", Company: "Globex", FinalScore: 0.62},
	}
}

func TestDispatcherRoutesPerRecipient(t *testing.T) {
	email := &stubTransport{name: "email"}
	whatsapp := &stubTransport{name: "whatsapp"}

	d := NewDispatcher(email, whatsapp, map[string]Recipient{
		"alice": {Email: "alice@example.com"},
		"bob":   {Email: "bob@example.com", WhatsApp: "+15550001111"},
	}, zap.NewNop())

	if err := d.Notify(context.Background(), "alice", sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Notify(context.Background(), "bob", sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(email.sentTo) != 2 {
		t.Fatalf("expected 2 emails, got %v", email.sentTo)
	}
	if len(whatsapp.sentTo) != 1 || whatsapp.sentTo[0] != "+15550001111" {
		t.Fatalf("expected 1 whatsapp message to bob, got %v", whatsapp.sentTo)
	}
}

func TestDispatcherUnknownOwnerLogsOnly(t *testing.T) {
	email := &stubTransport{name: "email"}

	d := NewDispatcher(email, nil, map[string]Recipient{}, zap.NewNop())
	if err := d.Notify(context.Background(), "stranger", sampleResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.sentTo) != 0 {
		t.Fatalf("expected no emails, got %v", email.sentTo)
	}
}

func TestDispatcherJoinsTransportErrors(t *testing.T) {
	emailErr := errors.New("smtp down")
	email := &stubTransport{name: "email", err: emailErr}
	whatsapp := &stubTransport{name: "whatsapp"}

	d := NewDispatcher(email, whatsapp, map[string]Recipient{
		"alice": {Email: "alice@example.com", WhatsApp: "+15550001111"},
	}, zap.NewNop())

	err := d.Notify(context.Background(), "alice", sampleResults())
	if !errors.Is(err, emailErr) {
		t.Fatalf("expected smtp error to surface, got %v", err)
	}
	// The broken email channel must not block whatsapp delivery.
	if len(whatsapp.sentTo) != 1 {
		t.Fatalf("expected whatsapp delivery despite email failure, got %v", whatsapp.sentTo)
	}
}

func TestFormatText(t *testing.T) {
	text := FormatText(sampleResults())

	for _, expected := range []string{"New job matches found: 2", "Go Developer at Acme", "85%", "https://example.com/j1"} {
		if !strings.Contains(text, expected) {
			t.Fatalf("digest missing %q:\n%s", expected, text)
		}
	}
}

func TestFormatTextCapsListing(t *testing.T) {
	var results matching.Results
	for i := 0; i < 8; i++ {
		results = append(results, matching.MatchResult{JobID: "j", Title: "Role", FinalScore: 0.7})
	}

	text := FormatText(results)
	if !strings.Contains(text, "...and 3 more") {
		t.Fatalf("expected overflow marker in digest:\n%s", text)
	}
}

func TestFormatWhatsApp(t *testing.T) {
	text := FormatWhatsApp(sampleResults())

	if !strings.Contains(text, "*Go Developer*") {
		t.Fatalf("expected bold title in message:\n%s", text)
	}
	if !strings.Contains(text, "62%") {
		t.Fatalf("expected rounded score in message:\n%s", text)
	}
}
