package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/logging"
)

var ErrInvalidBackup = errors.New("invalid backup")

// DateLayout is how backup names and dates are written.
const DateLayout = "02/01/2006, 15:04:05"

type Store interface {
	GetAppData(ctx context.Context) (internal.AppData, error)
	SaveAllData(ctx context.Context, patch internal.AppDataPatch) error
	OverwriteAllData(ctx context.Context, data internal.AppData) error
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logging.OrNop(logger), now: time.Now}
}

// FileName is the download name of a full export.
func FileName(now time.Time) string {
	return fmt.Sprintf("backup_sistema_%s.json", now.Format("2006-01-02"))
}

// Export writes the full snapshot as indented JSON.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// Decode reads a snapshot and checks it carries the users and pos arrays.
func Decode(r io.Reader) (internal.AppData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return internal.AppData{}, err
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return internal.AppData{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, key := range []string{"users", "pos"} {
		v, ok := probe[key]
		if !ok || !isArray(v) {
			return internal.AppData{}, fmt.Errorf("%w: missing %q array", ErrInvalidBackup, key)
		}
	}

	var data internal.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return internal.AppData{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return data, nil
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}

// Restore replaces everything in the store with the snapshot read from r.
// An invalid snapshot leaves the store untouched.
func (s *Service) Restore(ctx context.Context, r io.Reader) error {
	data, err := Decode(r)
	if err != nil {
		return err
	}
	return s.restore(ctx, data)
}

func (s *Service) restore(ctx context.Context, data internal.AppData) error {
	if err := s.store.OverwriteAllData(ctx, data); err != nil {
		return err
	}
	s.logger.Info("snapshot restored",
		zap.Int("users", len(data.Users)),
		zap.Int("articles", len(data.Articles)),
		zap.Int("tariffs", len(data.Tariffs)))
	return nil
}

// Snapshot stores the current state as a named restore point at the head
// of the backup list. Earlier restore points are not nested inside it.
func (s *Service) Snapshot(ctx context.Context) (internal.Backup, error) {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return internal.Backup{}, err
	}

	now := s.now()
	existing := data.Backups
	data.Backups = nil
	b := internal.Backup{
		ID:   uuid.NewString(),
		Name: "Backup " + now.Format(DateLayout),
		Date: now.Format(DateLayout),
		Data: data,
	}

	backups := append([]internal.Backup{b}, existing...)
	if err := s.store.SaveAllData(ctx, internal.AppDataPatch{Backups: &backups}); err != nil {
		return internal.Backup{}, err
	}
	s.logger.Info("restore point created", zap.String("id", b.ID))
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]internal.Backup, error) {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Backups, nil
}

// RestorePoint overwrites the store with the restore point id. The backup
// list itself survives the restore.
func (s *Service) RestorePoint(ctx context.Context, id string) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	for _, b := range data.Backups {
		if b.ID == id {
			restored := b.Data
			restored.Backups = data.Backups
			return s.restore(ctx, restored)
		}
	}
	return fmt.Errorf("%w: restore point %s not found", ErrInvalidBackup, id)
}
