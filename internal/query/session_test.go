package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarifario/internal"
)

type memStore struct {
	data     internal.AppData
	readErr  error
	writeErr error
	writes   int
}

func (m *memStore) GetAppData(context.Context) (internal.AppData, error) {
	if m.readErr != nil {
		return internal.AppData{}, m.readErr
	}
	return m.data, nil
}

func (m *memStore) SaveAllData(_ context.Context, patch internal.AppDataPatch) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	if patch.Reports != nil {
		m.data.Reports = *patch.Reports
	}
	return nil
}

type stubNotifier struct {
	sent []internal.Report
	err  error
}

func (n *stubNotifier) NotifyReport(_ context.Context, r internal.Report) error {
	n.sent = append(n.sent, r)
	return n.err
}

func sessionStore() *memStore {
	articles, _ := fixtureCatalog()
	return &memStore{data: internal.AppData{
		Articles: articles,
		Tariffs: []internal.Tariff{
			{Store: "CH2", ArticleRef: "001", ListPrice: "5,00", OfferPrice: "3,50"},
			{Store: "AL1", ArticleRef: "002", ListPrice: "4,10"},
		},
		POS: []internal.PointOfSale{{Code: "1", Zone: "CH2"}, {Code: "2", Zone: "AL1"}},
		Reports: []internal.Report{
			{ID: "old", SupervisorName: "Ana", Read: true},
		},
	}}
}

func TestSessionLoadAndQuery(t *testing.T) {
	store := sessionStore()
	s := NewSession(store, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"CH2", "AL1"}, s.Zones())
	assert.Len(t, s.Results(), 5)

	s.SetState(State{Mode: SingleZone{Zone: "CH2"}})
	assert.Equal(t, []string{"001"}, refs(s.Results()))

	prices := s.Project("001")
	require.Len(t, prices, 1)
	assert.Equal(t, "3,50", prices[0].Price.Effective())
}

func TestSessionLoadFailureKeepsPreviousCatalog(t *testing.T) {
	store := sessionStore()
	s := NewSession(store, nil, nil)
	require.NoError(t, s.Load(context.Background()))
	s.Notes().Set("001", "Revisar stock")

	store.readErr = errors.New("connection refused")
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, s.Articles(), 5)
	assert.Equal(t, "Revisar stock", s.Notes().Get("001"))
}

func TestSessionReloadClearsNotes(t *testing.T) {
	s := NewSession(sessionStore(), nil, nil)
	require.NoError(t, s.Load(context.Background()))
	s.Notes().Set("001", "Revisar stock")

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Notes().Len())
}

func TestSessionReplaceCatalogRebuildsIndex(t *testing.T) {
	s := NewSession(sessionStore(), nil, nil)
	require.NoError(t, s.Load(context.Background()))

	s.ReplaceCatalog(
		[]internal.Article{{Reference: "900", Description: "Cecina"}},
		[]internal.Tariff{{Store: "CH2", ArticleRef: "900", ListPrice: "9,00"}},
	)
	assert.Equal(t, 1, s.Index().Len())
	assert.Equal(t, "9,00", ResolvePrice(s.Index(), "900", "CH2").List)
	assert.False(t, ResolvePrice(s.Index(), "001", "CH2").Found)
}

func TestSessionSubmitReportPrependsAndNotifies(t *testing.T) {
	store := sessionStore()
	notifier := &stubNotifier{}
	s := NewSession(store, notifier, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local) }
	require.NoError(t, s.Load(context.Background()))

	s.SetState(State{Mode: CompareZones{Zones: []string{"CH2", "AL1"}}})
	s.Notes().Set("002", "Revisar stock")

	r, err := s.SubmitReport(context.Background(), "Marta", internal.ReportNotesOnly)
	require.NoError(t, err)

	require.Len(t, store.data.Reports, 2)
	assert.Equal(t, r.ID, store.data.Reports[0].ID)
	assert.Equal(t, "old", store.data.Reports[1].ID)
	assert.Equal(t, "CH2, AL1", r.ZoneFilter)
	assert.Equal(t, "15/10/2026, 12:00:00", r.Date)
	assert.Equal(t, "Referencia;Descripción;Coste;CH2;AL1;Nota\n002;Chorizo ibérico;3,85;-;4,10;Revisar stock", r.CSVContent)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, r.ID, notifier.sent[0].ID)
}

func TestSessionSubmitReportSurvivesNotifierFailure(t *testing.T) {
	store := sessionStore()
	s := NewSession(store, &stubNotifier{err: errors.New("smtp down")}, nil)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.SubmitReport(context.Background(), "Marta", internal.ReportFull)
	require.NoError(t, err)
	assert.Equal(t, 1, store.writes)
}

func TestSessionSubmitReportWriteFailure(t *testing.T) {
	store := sessionStore()
	notifier := &stubNotifier{}
	s := NewSession(store, notifier, nil)
	require.NoError(t, s.Load(context.Background()))

	store.writeErr = errors.New("read-only database")
	_, err := s.SubmitReport(context.Background(), "Marta", internal.ReportFull)
	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}
