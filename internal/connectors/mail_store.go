package connectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"tarifario/internal"
	"tarifario/internal/storage"
)

// Ledger records fetched messages.
type Ledger interface {
	UpsertInboundMail(ctx context.Context, provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.InboundMail, error)
}

// MailStoreService keeps each raw message once on disk, named by its
// content hash, and records it in the ledger as fetched.
type MailStoreService struct {
	ledger     Ledger
	rawMailDir string
}

func NewMailStoreService(ledger Ledger, rawMailDir string) *MailStoreService {
	return &MailStoreService{ledger: ledger, rawMailDir: rawMailDir}
}

func (s *MailStoreService) Store(ctx context.Context, msg internal.MailMessage) (internal.InboundMail, error) {
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.InboundMail{}, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.InboundMail{}, err
		}
	}

	return s.ledger.UpsertInboundMail(ctx, msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, storage.MailFetched)
}
