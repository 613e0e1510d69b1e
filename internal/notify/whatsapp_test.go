package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhatsAppSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("To"); got != "whatsapp:+15550001111" {
			t.Fatalf("expected whatsapp-prefixed recipient, got %q", got)
		}
		if got := r.PostForm.Get("From"); got != "whatsapp:+14155238886" {
			t.Fatalf("expected whatsapp-prefixed sender, got %q", got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Fatal("expected basic auth")
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	transport := NewWhatsAppTransport("sid", "token", "+14155238886")
	transport.BaseURL = server.URL

	if err := transport.Send(context.Background(), "+15550001111", "subject", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWhatsAppSendBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "invalid number"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	transport := NewWhatsAppTransport("sid", "token", "+14155238886")
	transport.BaseURL = server.URL

	if err := transport.Send(context.Background(), "bogus", "subject", "body"); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestWhatsAppSendWithoutCredentials(t *testing.T) {
	transport := NewWhatsAppTransport("", "", "+14155238886")

	if err := transport.Send(context.Background(), "+15550001111", "subject", "body"); err == nil {
		t.Fatal("expected error without credentials")
	}
}
