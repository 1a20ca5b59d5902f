package connectors

import (
	"context"
	"fmt"
	"strings"

	"tarifario/internal"
)

const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// MailConnector pulls raw messages from a mailbox that receives the ERP
// catalog exports.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.MailMessage, error)
}

// NormalizeProvider lower-cases provider and rejects unknown names.
func NormalizeProvider(provider string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	switch p {
	case ProviderGmail, ProviderIMAP:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported mail provider: %s", provider)
	}
}
