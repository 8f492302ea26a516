package digest

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"hwboard-backend/lib/telemetry"
	"hwboard-backend/services/consolidation"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("hwboard.services.digest")

type SmtpConfig struct {
	Server       string
	Port         int
	EmailAddress string
	Password     string
}

type Options struct {
	Smtp SmtpConfig
	// To receives the digest after every run.
	To []string
}

type Service struct {
	config Options
}

func NewService(options Options) Service {
	return Service{config: options}
}

// Send mails a plain-text summary of the run's missing work. Nothing
// is sent when there is none.
func (s Service) Send(ctx context.Context, payload consolidation.Payload) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	if len(payload.Missing) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Homework Board <%s>", s.config.Smtp.EmailAddress)
	mail.To = s.config.To
	mail.Subject = fmt.Sprintf("%d missing assignments", len(payload.Missing))
	mail.Text = []byte(renderBody(payload))

	err := mail.Send(
		fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port),
		smtp.PlainAuth("", s.config.Smtp.EmailAddress, s.config.Smtp.Password, s.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}

func renderBody(payload consolidation.Payload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Missing assignments (%d):\n\n", len(payload.Missing))
	for _, record := range payload.Missing {
		due := record.DueDateParsed.String()
		if due == "" {
			due = "no due date"
		}
		fmt.Fprintf(&b, "- %s | %s | due %s", record.Class, record.Name, due)
		if record.Account != "" {
			fmt.Fprintf(&b, " (%s)", record.Account)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%d assignments still in progress.\n", len(payload.Assigned))
	if len(payload.Errors) > 0 {
		fmt.Fprintf(&b, "\nThe run hit %d errors, the lists above may be incomplete.\n", len(payload.Errors))
	}

	return b.String()
}
