package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarifario/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "tarifario.db"))
	require.NoError(t, err)
	db.now = func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetAppDataEmptyStore(t *testing.T) {
	db := openTestDB(t)

	data, err := db.GetAppData(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, data.Users)
	assert.NotNil(t, data.POS)
	assert.Empty(t, data.Articles)
	assert.Empty(t, data.LastUpdated)
}

func TestSaveAllDataMergesCollections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	articles := []internal.Article{{Reference: "001", Description: "Jamón", Family: "05"}}
	tariffs := []internal.Tariff{{Store: "CH2", ArticleRef: "001", ListPrice: "5,00"}}
	name := "Cárnicas del Norte"
	require.NoError(t, db.SaveAllData(ctx, internal.AppDataPatch{Articles: &articles, Tariffs: &tariffs, CompanyName: &name}))

	pos := []internal.PointOfSale{{ID: "p1", Code: "1", Zone: "CH2", Group: "Norte"}}
	require.NoError(t, db.SaveAllData(ctx, internal.AppDataPatch{POS: &pos}))

	data, err := db.GetAppData(ctx)
	require.NoError(t, err)
	assert.Equal(t, articles, data.Articles)
	assert.Equal(t, tariffs, data.Tariffs)
	assert.Equal(t, pos, data.POS)
	assert.Equal(t, name, data.CompanyName)
	assert.Equal(t, "2026-10-15T08:00:00Z", data.LastUpdated)

	empty := []internal.Tariff{}
	require.NoError(t, db.SaveAllData(ctx, internal.AppDataPatch{Tariffs: &empty}))
	data, err = db.GetAppData(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Tariffs)
	assert.Len(t, data.Articles, 1)
}

func TestOverwriteAllDataDropsMissingCollections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	articles := []internal.Article{{Reference: "001"}}
	require.NoError(t, db.SaveAllData(ctx, internal.AppDataPatch{Articles: &articles}))

	require.NoError(t, db.OverwriteAllData(ctx, internal.AppData{
		Users: []internal.User{{ID: "u1", Name: "admin", Password: "x", Role: internal.RoleAdmin}},
		POS:   []internal.PointOfSale{},
	}))

	data, err := db.GetAppData(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Articles)
	require.Len(t, data.Users, 1)
	assert.Equal(t, internal.RoleAdmin, data.Users[0].Role)
}

func TestReportInbox(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.PrependReport(ctx, internal.Report{ID: "r1", SupervisorName: "Ana"}))
	require.NoError(t, db.PrependReport(ctx, internal.Report{ID: "r2", SupervisorName: "Luis"}))

	reports, err := db.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r2", reports[0].ID)

	n, err := db.UnreadReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.MarkReportRead(ctx, "r1"))
	n, err = db.UnreadReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, db.MarkReportRead(ctx, "nope"), ErrReportNotFound)
}

func TestInboundMailLedger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	row, err := db.UpsertInboundMail(ctx, "imap", "<m1@erp>", "Tarifas", "erp@example.com", "2026-10-14T10:00:00Z", "abc", "data/raw/abc.eml", MailFetched)
	require.NoError(t, err)
	assert.NotZero(t, row.ID)

	again, err := db.UpsertInboundMail(ctx, "imap", "<m1@erp>", "Tarifas (2)", "erp@example.com", "2026-10-14T10:00:00Z", "abc", "data/raw/abc.eml", MailFetched)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)
	assert.Equal(t, "Tarifas (2)", again.Subject)

	pending, err := db.ListInboundByStatus(ctx, MailFetched, "", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, db.InsertImportRun(ctx, "trace-1", row.ID, "tarifas", "Tarifas.xlsx", 120, MailImported, ""))
	runs, err := db.CountImportRuns(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	require.NoError(t, db.UpdateInboundStatus(ctx, row.ID, MailImported))
	got, err := db.GetInboundByID(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, MailImported, got.Status)

	missing, err := db.GetInboundByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v, err := db.GetMetadata(ctx, "imap_last_uid")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.SetMetadata(ctx, "imap_last_uid", "42"))
	v, err = db.GetMetadata(ctx, "imap_last_uid")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "42", *v)
}

func TestListInboundByStatusFiltersProvider(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, p := range []string{"gmail", "gmail", "imap"} {
		_, err := db.UpsertInboundMail(ctx, p, fmt.Sprintf("<%d@erp>", i), "s", "erp", fmt.Sprintf("2026-10-1%dT08:00:00Z", i), "h", "/raw", MailFetched)
		require.NoError(t, err)
	}

	got, err := db.ListInboundByStatus(ctx, MailFetched, "imap", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "imap", got[0].Provider)

	all, err := db.ListInboundByStatus(ctx, MailFetched, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "gmail", all[0].Provider)
}
