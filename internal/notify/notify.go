// Package notify tells the administrator that a supervisor sent a report.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/config"
	"tarifario/internal/logging"
	"tarifario/internal/query"
)

// MailNotifier mails each report to the admin with its CSV attached.
type MailNotifier struct {
	sender  enmime.Sender
	from    string
	to      []string
	company string
}

func NewMailNotifier(sender enmime.Sender, from string, to []string, company string) *MailNotifier {
	return &MailNotifier{sender: sender, from: from, to: to, company: company}
}

// NewSMTPNotifier builds a MailNotifier from the SMTP settings in cfg.
func NewSMTPNotifier(cfg config.Config) (*MailNotifier, error) {
	if err := cfg.Require("SMTP_HOST", cfg.SMTPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("REPORT_NOTIFY_TO", cfg.ReportNotifyTo); err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return NewMailNotifier(enmime.NewSMTP(addr, auth), from, splitAddresses(cfg.ReportNotifyTo), cfg.CompanyName), nil
}

func (n *MailNotifier) NotifyReport(_ context.Context, r internal.Report) error {
	if len(n.to) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	b := enmime.Builder().
		From(n.company, n.from).
		Subject(fmt.Sprintf("Informe de %s (%s)", r.SupervisorName, r.ZoneFilter)).
		Text([]byte(body(r))).
		AddAttachment(query.WithBOM(r.CSVContent), "text/csv", query.ExportFileName(r.Type))
	for _, addr := range n.to {
		b = b.To("", addr)
	}
	if err := b.Send(n.sender); err != nil {
		return fmt.Errorf("send report %s: %w", r.ID, err)
	}
	return nil
}

func body(r internal.Report) string {
	return fmt.Sprintf("Supervisor: %s\nZona: %s\nTipo: %s\nFecha: %s\n", r.SupervisorName, r.ZoneFilter, r.Type, r.Date)
}

func splitAddresses(list string) []string {
	out := []string{}
	for _, a := range strings.Split(list, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// LogNotifier only logs the arrival. Used when SMTP is not configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.OrNop(logger)}
}

func (n *LogNotifier) NotifyReport(_ context.Context, r internal.Report) error {
	n.logger.Info("report received",
		zap.String("id", r.ID),
		zap.String("supervisor", r.SupervisorName),
		zap.String("zone", r.ZoneFilter),
		zap.String("type", string(r.Type)))
	return nil
}

// FromConfig picks the mail notifier when SMTP is configured and the log
// notifier otherwise.
func FromConfig(cfg config.Config, logger *zap.Logger) (query.Notifier, error) {
	if !cfg.SMTPEnabled() {
		return NewLogNotifier(logger), nil
	}
	return NewSMTPNotifier(cfg)
}
