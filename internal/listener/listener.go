// Package listener polls a mailbox for ERP catalog exports and imports them.
package listener

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tarifario/internal/config"
	"tarifario/internal/connectors"
	gmailconnector "tarifario/internal/connectors/gmail"
	imapconnector "tarifario/internal/connectors/imap"
	"tarifario/internal/logging"
)

const defaultInterval = 5 * time.Minute

type Processor interface {
	ProcessPending(ctx context.Context, limit int, provider string) (int, int, error)
}

// ConnectorFactory opens a mailbox connector for provider.
type ConnectorFactory func(ctx context.Context, provider string) (connectors.MailConnector, error)

type Service struct {
	ledger    connectors.Ledger
	processor Processor
	cfg       config.Config
	logger    *zap.Logger
	connect   ConnectorFactory
}

func NewService(ledger connectors.Ledger, processor Processor, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{
		ledger:    ledger,
		processor: processor,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
		connect:   ProviderConnectors(cfg),
	}
}

// WithConnectorFactory replaces how the mailbox is opened on each cycle.
func (s *Service) WithConnectorFactory(f ConnectorFactory) *Service {
	s.connect = f
	return s
}

// ProviderConnectors opens the Gmail or IMAP connector configured in cfg.
func ProviderConnectors(cfg config.Config) ConnectorFactory {
	return func(ctx context.Context, provider string) (connectors.MailConnector, error) {
		switch provider {
		case connectors.ProviderGmail:
			return gmailconnector.NewConnector(ctx, cfg)
		case connectors.ProviderIMAP:
			return imapconnector.NewConnector(cfg)
		default:
			return nil, fmt.Errorf("unsupported listener provider: %s", provider)
		}
	}
}

// Run repeats a fetch and import cycle until ctx is cancelled. Cycle errors
// are logged and the next cycle runs on schedule.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	s.logger.Info("listener started",
		zap.String("provider", s.cfg.MailListenerProvider),
		zap.Duration("interval", interval))

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("listener cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("listener stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

type CycleResult struct {
	Fetched   int
	Stored    int
	Processed int
	Rows      int
}

func (s *Service) RunOnce(ctx context.Context) (CycleResult, error) {
	provider, err := connectors.NormalizeProvider(s.cfg.MailListenerProvider)
	if err != nil {
		return CycleResult{}, err
	}
	mailConnector, err := s.connect(ctx, provider)
	if err != nil {
		return CycleResult{}, err
	}

	fetchService := connectors.NewFetchService(s.ledger, s.cfg.RawMailDir, mailConnector, s.logger)
	fetched, err := fetchService.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return CycleResult{}, err
	}

	processed, rows, err := s.processor.ProcessPending(ctx, s.cfg.MailListenerProcessBatch, provider)
	res := CycleResult{Fetched: fetched.Fetched, Stored: fetched.Stored, Processed: processed, Rows: rows}
	if err != nil {
		return res, err
	}

	s.logger.Info("listener cycle done",
		zap.String("provider", provider),
		zap.Int("fetched", res.Fetched),
		zap.Int("stored", res.Stored),
		zap.Int("processed", res.Processed),
		zap.Int("rows", res.Rows))
	return res, nil
}
