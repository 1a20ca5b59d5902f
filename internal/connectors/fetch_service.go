package connectors

import (
	"context"

	"go.uber.org/zap"

	"tarifario/internal/logging"
)

type FetchService struct {
	connector MailConnector
	store     *MailStoreService
	logger    *zap.Logger
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(ledger Ledger, rawMailDir string, connector MailConnector, logger *zap.Logger) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(ledger, rawMailDir),
		logger:    logging.OrNop(logger),
	}
}

// FetchAndStore pulls up to max messages from label and stores each one.
// It stops at the first storage error.
func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		row, err := s.store.Store(ctx, msg)
		if err != nil {
			return FetchResult{Fetched: len(messages), Stored: stored}, err
		}
		s.logger.Debug("mail stored", zap.Int("id", row.ID), zap.String("subject", row.Subject))
		stored++
	}

	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}
