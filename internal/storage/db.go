package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tarifario/internal"
)

// Collection names, matching the snapshot keys.
const (
	colUsers    = "users"
	colPOS      = "pos"
	colArticles = "articulos"
	colTariffs  = "tarifas"
	colGroups   = "groups"
	colFamilies = "families"
	colReports  = "reports"
	colBackups  = "backups"
)

const (
	metaCompanyName = "companyName"
	metaLastUpdated = "lastUpdated"
)

// Inbound mail statuses.
const (
	MailFetched  = "fetched"
	MailImported = "imported"
	MailSkipped  = "skipped"
	MailFailed   = "failed"
)

var ErrReportNotFound = errors.New("report not found")

// DB is the SQLite persistence collaborator. Each top-level collection of
// the snapshot is stored whole as one JSON document, so every write
// replaces a collection and the last writer wins.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS collections (
  name TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inbound_mail (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS import_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  inboundId INTEGER,
  kind TEXT NOT NULL,
  fileName TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  status TEXT NOT NULL,
  detail TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(inboundId) REFERENCES inbound_mail(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// GetAppData reads the full snapshot. Missing collections come back as
// empty slices.
func (d *DB) GetAppData(ctx context.Context) (internal.AppData, error) {
	var data internal.AppData

	rows, err := d.conn.QueryContext(ctx, `SELECT name, payload FROM collections`)
	if err != nil {
		return data, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return data, err
		}
		target := collectionTarget(&data, name)
		if target == nil {
			continue
		}
		if err := json.Unmarshal([]byte(payload), target); err != nil {
			return data, fmt.Errorf("decode collection %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return data, err
	}

	if v, err := d.GetMetadata(ctx, metaCompanyName); err != nil {
		return data, err
	} else if v != nil {
		data.CompanyName = *v
	}
	if v, err := d.GetMetadata(ctx, metaLastUpdated); err != nil {
		return data, err
	} else if v != nil {
		data.LastUpdated = *v
	}

	fillEmpty(&data)
	return data, nil
}

// SaveAllData replaces every collection named in patch and stamps
// lastUpdated. Collections left nil are untouched.
func (d *DB) SaveAllData(ctx context.Context, patch internal.AppDataPatch) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for name, value := range patchCollections(patch) {
		if err := putCollection(ctx, tx, name, value); err != nil {
			return err
		}
	}
	if patch.CompanyName != nil {
		if err := putMetadata(ctx, tx, metaCompanyName, *patch.CompanyName); err != nil {
			return err
		}
	}
	if err := putMetadata(ctx, tx, metaLastUpdated, d.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// OverwriteAllData replaces the whole snapshot, dropping collections data
// does not carry.
func (d *DB) OverwriteAllData(ctx context.Context, data internal.AppData) error {
	fillEmpty(&data)

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collections`); err != nil {
		return err
	}
	full := internal.AppDataPatch{
		Users: &data.Users, POS: &data.POS, Articles: &data.Articles, Tariffs: &data.Tariffs,
		Groups: &data.Groups, Families: &data.Families, Reports: &data.Reports, Backups: &data.Backups,
	}
	for name, value := range patchCollections(full) {
		if err := putCollection(ctx, tx, name, value); err != nil {
			return err
		}
	}
	if err := putMetadata(ctx, tx, metaCompanyName, data.CompanyName); err != nil {
		return err
	}
	if err := putMetadata(ctx, tx, metaLastUpdated, d.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) ListReports(ctx context.Context) ([]internal.Report, error) {
	data, err := d.GetAppData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Reports, nil
}

// PrependReport puts r at the head of the inbox.
func (d *DB) PrependReport(ctx context.Context, r internal.Report) error {
	reports, err := d.ListReports(ctx)
	if err != nil {
		return err
	}
	reports = append([]internal.Report{r}, reports...)
	return d.SaveAllData(ctx, internal.AppDataPatch{Reports: &reports})
}

func (d *DB) MarkReportRead(ctx context.Context, id string) error {
	reports, err := d.ListReports(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range reports {
		if reports[i].ID == id {
			reports[i].Read = true
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return d.SaveAllData(ctx, internal.AppDataPatch{Reports: &reports})
}

func (d *DB) UnreadReports(ctx context.Context) (int, error) {
	reports, err := d.ListReports(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range reports {
		if !r.Read {
			n++
		}
	}
	return n, nil
}

func (d *DB) UpsertInboundMail(ctx context.Context, provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.InboundMail, error) {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO inbound_mail (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.InboundMail{}, err
	}

	row, err := d.GetInboundByProviderMessageID(ctx, provider, messageID)
	if err != nil {
		return internal.InboundMail{}, err
	}
	if row == nil {
		return internal.InboundMail{}, errors.New("failed to upsert inbound mail")
	}
	return *row, nil
}

const inboundColumns = `id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef`

func scanInbound(s interface{ Scan(...any) error }) (internal.InboundMail, error) {
	var row internal.InboundMail
	err := s.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef)
	return row, err
}

func (d *DB) GetInboundByProviderMessageID(ctx context.Context, provider, messageID string) (*internal.InboundMail, error) {
	row, err := scanInbound(d.conn.QueryRowContext(ctx,
		`SELECT `+inboundColumns+` FROM inbound_mail WHERE provider = ? AND messageId = ?`, provider, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetInboundByID(ctx context.Context, id int) (*internal.InboundMail, error) {
	row, err := scanInbound(d.conn.QueryRowContext(ctx,
		`SELECT `+inboundColumns+` FROM inbound_mail WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListInboundByStatus returns the oldest mails in status, at most limit of
// them. An empty provider matches every provider.
func (d *DB) ListInboundByStatus(ctx context.Context, status, provider string, limit int) ([]internal.InboundMail, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+inboundColumns+` FROM inbound_mail
WHERE status = ? AND (? = '' OR provider = ?)
ORDER BY receivedAt ASC, id ASC LIMIT ?`, status, provider, provider, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.InboundMail
	for rows.Next() {
		row, err := scanInbound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateInboundStatus(ctx context.Context, id int, status string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE inbound_mail SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// InsertImportRun records one attachment import attempt from the mailbox.
func (d *DB) InsertImportRun(ctx context.Context, traceID string, inboundID int, kind, fileName string, rowCount int, status, detail string) error {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO import_runs (traceId, inboundId, kind, fileName, rowCount, status, detail)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, traceID, inboundID, kind, fileName, rowCount, status, detail)
	return err
}

func (d *DB) CountImportRuns(ctx context.Context, inboundID int) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_runs WHERE inboundId = ?`, inboundID).Scan(&n)
	return n, err
}

func (d *DB) SetMetadata(ctx context.Context, key, value string) error {
	return putMetadata(ctx, d.conn, key, value)
}

func (d *DB) GetMetadata(ctx context.Context, key string) (*string, error) {
	var value string
	err := d.conn.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putCollection(ctx context.Context, ex execer, name string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}
	_, err = ex.ExecContext(ctx, `
INSERT INTO collections (name, payload) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updatedAt = CURRENT_TIMESTAMP
`, name, string(payload))
	return err
}

func putMetadata(ctx context.Context, ex execer, key, value string) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func patchCollections(p internal.AppDataPatch) map[string]any {
	out := map[string]any{}
	if p.Users != nil {
		out[colUsers] = *p.Users
	}
	if p.POS != nil {
		out[colPOS] = *p.POS
	}
	if p.Articles != nil {
		out[colArticles] = *p.Articles
	}
	if p.Tariffs != nil {
		out[colTariffs] = *p.Tariffs
	}
	if p.Groups != nil {
		out[colGroups] = *p.Groups
	}
	if p.Families != nil {
		out[colFamilies] = *p.Families
	}
	if p.Reports != nil {
		out[colReports] = *p.Reports
	}
	if p.Backups != nil {
		out[colBackups] = *p.Backups
	}
	// A nil slice behind a non-nil pointer still clears the collection.
	for k, v := range out {
		out[k] = emptyIfNil(v)
	}
	return out
}

func emptyIfNil(v any) any {
	switch s := v.(type) {
	case []internal.User:
		if s == nil {
			return []internal.User{}
		}
	case []internal.PointOfSale:
		if s == nil {
			return []internal.PointOfSale{}
		}
	case []internal.Article:
		if s == nil {
			return []internal.Article{}
		}
	case []internal.Tariff:
		if s == nil {
			return []internal.Tariff{}
		}
	case []internal.Group:
		if s == nil {
			return []internal.Group{}
		}
	case []internal.Family:
		if s == nil {
			return []internal.Family{}
		}
	case []internal.Report:
		if s == nil {
			return []internal.Report{}
		}
	case []internal.Backup:
		if s == nil {
			return []internal.Backup{}
		}
	}
	return v
}

func collectionTarget(data *internal.AppData, name string) any {
	switch name {
	case colUsers:
		return &data.Users
	case colPOS:
		return &data.POS
	case colArticles:
		return &data.Articles
	case colTariffs:
		return &data.Tariffs
	case colGroups:
		return &data.Groups
	case colFamilies:
		return &data.Families
	case colReports:
		return &data.Reports
	case colBackups:
		return &data.Backups
	default:
		return nil
	}
}

func fillEmpty(data *internal.AppData) {
	if data.Users == nil {
		data.Users = []internal.User{}
	}
	if data.POS == nil {
		data.POS = []internal.PointOfSale{}
	}
	if data.Articles == nil {
		data.Articles = []internal.Article{}
	}
	if data.Tariffs == nil {
		data.Tariffs = []internal.Tariff{}
	}
	if data.Groups == nil {
		data.Groups = []internal.Group{}
	}
	if data.Families == nil {
		data.Families = []internal.Family{}
	}
	if data.Reports == nil {
		data.Reports = []internal.Report{}
	}
	if data.Backups == nil {
		data.Backups = []internal.Backup{}
	}
}
