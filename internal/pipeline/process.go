package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/ingest"
	"tarifario/internal/logging"
	"tarifario/internal/storage"
)

// Ledger is the inbound-mail bookkeeping the processor reads and updates.
type Ledger interface {
	ListInboundByStatus(ctx context.Context, status, provider string, limit int) ([]internal.InboundMail, error)
	GetInboundByProviderMessageID(ctx context.Context, provider, messageID string) (*internal.InboundMail, error)
	UpdateInboundStatus(ctx context.Context, id int, status string) error
	InsertImportRun(ctx context.Context, traceID string, inboundID int, kind, fileName string, rowCount int, status, detail string) error
}

type Importer interface {
	Import(ctx context.Context, kind ingest.Kind, filename string, content []byte) (ingest.ImportResult, error)
}

const (
	runImported = "imported"
	runSkipped  = "skipped"
	runFailed   = "failed"
)

type ProcessingService struct {
	ledger   Ledger
	importer Importer
	logger   *zap.Logger
}

func NewProcessingService(ledger Ledger, importer Importer, logger *zap.Logger) *ProcessingService {
	return &ProcessingService{ledger: ledger, importer: importer, logger: logging.OrNop(logger)}
}

type ProcessResult struct {
	MailID   int
	Status   string
	Imported int
	Rows     int
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	mail, err := s.ledger.GetInboundByProviderMessageID(ctx, provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	if mail == nil {
		return ProcessResult{}, fmt.Errorf("message not found: %s/%s", provider, messageID)
	}
	return s.ProcessMail(ctx, *mail)
}

// ProcessPending handles up to limit fetched messages, optionally only those
// of provider. It returns how many messages were handled and how many rows
// were imported in total.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.ledger.ListInboundByStatus(ctx, storage.MailFetched, provider, limit)
	if err != nil {
		return 0, 0, err
	}
	mails, rows := 0, 0
	for _, mail := range pending {
		res, err := s.ProcessMail(ctx, mail)
		if err != nil {
			return mails, rows, err
		}
		mails++
		rows += res.Rows
	}
	return mails, rows, nil
}

// ProcessMail imports every readable catalog attachment of mail. The mail
// ends up imported when at least one attachment was loaded, failed when an
// import was attempted and none succeeded, and skipped otherwise.
func (s *ProcessingService) ProcessMail(ctx context.Context, mail internal.InboundMail) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(mail.RawRef)
	if err != nil {
		return s.fail(ctx, mail, err)
	}

	_, attachments, err := ExtractAttachments(raw)
	if err != nil {
		return s.fail(ctx, mail, err)
	}

	res := ProcessResult{MailID: mail.ID}
	attempted := 0
	for _, att := range attachments {
		detected := ingest.DetectKind(att.FileName, headerLine(att))
		if detected.Kind == "" {
			s.record(ctx, mail.ID, "", att.FileName, 0, runSkipped, detected.Reason)
			continue
		}

		attempted++
		out, err := s.importer.Import(ctx, detected.Kind, att.FileName, att.Content)
		if err != nil {
			s.logger.Warn("attachment import failed",
				zap.Int("mail", mail.ID),
				zap.String("file", att.FileName),
				zap.Error(err))
			s.record(ctx, mail.ID, string(detected.Kind), att.FileName, 0, runFailed, err.Error())
			continue
		}
		res.Imported++
		res.Rows += out.Count
		s.record(ctx, mail.ID, string(out.Kind), att.FileName, out.Count, runImported, detected.Reason)
	}

	switch {
	case res.Imported > 0:
		res.Status = storage.MailImported
	case attempted > 0:
		res.Status = storage.MailFailed
	default:
		res.Status = storage.MailSkipped
	}
	if err := s.ledger.UpdateInboundStatus(ctx, mail.ID, res.Status); err != nil {
		return ProcessResult{}, err
	}

	s.logger.Info("mail processed",
		zap.Int("mail", mail.ID),
		zap.String("status", res.Status),
		zap.Int("attachments", len(attachments)),
		zap.Int("rows", res.Rows),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// fail parks a mail that cannot be read at all so later batches move past it.
func (s *ProcessingService) fail(ctx context.Context, mail internal.InboundMail, cause error) (ProcessResult, error) {
	if err := s.ledger.UpdateInboundStatus(ctx, mail.ID, storage.MailFailed); err != nil {
		return ProcessResult{}, err
	}
	s.logger.Warn("mail not readable", zap.Int("mail", mail.ID), zap.Error(cause))
	s.record(ctx, mail.ID, "", "", 0, runFailed, cause.Error())
	return ProcessResult{MailID: mail.ID, Status: storage.MailFailed}, nil
}

func (s *ProcessingService) record(ctx context.Context, mailID int, kind, fileName string, rows int, status, detail string) {
	if err := s.ledger.InsertImportRun(ctx, uuid.NewString(), mailID, kind, fileName, rows, status, strings.TrimSpace(detail)); err != nil {
		s.logger.Warn("import run not recorded", zap.Int("mail", mailID), zap.Error(err))
	}
}
