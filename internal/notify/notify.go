// Package notify formats match digests and delivers them over the configured
// transports (email, WhatsApp).
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/matching"
)

// maxDigestJobs caps how many matches a single digest lists.
const maxDigestJobs = 5

// Recipient holds the delivery addresses for one owner. Empty fields disable
// the corresponding transport.
type Recipient struct {
	Email    string `mapstructure:"email"`
	WhatsApp string `mapstructure:"whatsapp"`
}

// Transport delivers one formatted digest to one address.
type Transport interface {
	Name() string
	Send(ctx context.Context, address, subject, body string) error
}

// Dispatcher fans a digest out to every transport the owner has an address
// for. An owner without a recipient entry is delivered to stdout via the
// logger, which keeps demo mode working without credentials.
type Dispatcher struct {
	email      Transport
	whatsapp   Transport
	recipients map[string]Recipient
	logger     *zap.Logger
}

func NewDispatcher(email, whatsapp Transport, recipients map[string]Recipient, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{email: email, whatsapp: whatsapp, recipients: recipients, logger: logger}
}

// Notify delivers the digest for owner over every configured transport.
// Transport failures are joined so a broken channel does not hide a working
// one, but any failure still fails the delivery as a whole.
func (d *Dispatcher) Notify(ctx context.Context, owner string, results matching.Results) error {
	recipient, ok := d.recipients[owner]
	if !ok || (recipient.Email == "" && recipient.WhatsApp == "") {
		d.logger.Info("no delivery addresses configured, logging digest",
			zap.String("owner", owner),
			zap.String("digest", FormatText(results)),
		)
		return nil
	}

	subject := fmt.Sprintf("New job matches: %d found", results.Len())

	var errs []error
	if recipient.Email != "" && d.email != nil {
		if err := d.email.Send(ctx, recipient.Email, subject, FormatText(results)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.email.Name(), err))
		}
	}
	if recipient.WhatsApp != "" && d.whatsapp != nil {
		if err := d.whatsapp.Send(ctx, recipient.WhatsApp, subject, FormatWhatsApp(results)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.whatsapp.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// FormatText renders a plain-text digest, best matches first.
func FormatText(results matching.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New job matches found: %d\n\n", results.Len())

	for i, r := range results {
		if i == maxDigestJobs {
			fmt.Fprintf(&b, "...and %d more\n", results.Len()-maxDigestJobs)
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
		if r.Company != "" {
			fmt.Fprintf(&b, " at %s", r.Company)
		}
		fmt.Fprintf(&b, "\n   Match score: %.0f%%\n", r.FinalScore*100)
		if summary := r.Summary(); summary != "" {
			fmt.Fprintf(&b, "   %s\n", summary)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   %s\n", r.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWhatsApp renders a compact digest with WhatsApp bold markers.
func FormatWhatsApp(results matching.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*New job matches: %d*\n\n", results.Len())

	for i, r := range results {
		if i == maxDigestJobs {
			fmt.Fprintf(&b, "...and %d more\n", results.Len()-maxDigestJobs)
			break
		}
		fmt.Fprintf(&b, "*%s*", r.Title)
		if r.Company != "" {
			fmt.Fprintf(&b, " (%s)", r.Company)
		}
		fmt.Fprintf(&b, " %.0f%%\n", r.FinalScore*100)
		if r.URL != "" {
			fmt.Fprintf(&b, "%s\n", r.URL)
		}
	}
	return b.String()
}
