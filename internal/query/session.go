package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/catalog"
	"tarifario/internal/logging"
)

// Store is the persistence collaborator a session reads from and writes
// reports to.
type Store interface {
	GetAppData(ctx context.Context) (internal.AppData, error)
	SaveAllData(ctx context.Context, patch internal.AppDataPatch) error
}

// Notifier tells the admin a report arrived.
type Notifier interface {
	NotifyReport(ctx context.Context, report internal.Report) error
}

// Session is the stateful query engine of one supervisor: the loaded
// catalog, its index, the live filter state and the notes typed so far.
// It is not safe for concurrent use.
type Session struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	articles []internal.Article
	tariffs  []internal.Tariff
	pos      []internal.PointOfSale
	families []internal.Family
	idx      *catalog.Index

	state State
	notes *Notes
}

func NewSession(store Store, notifier Notifier, logger *zap.Logger) *Session {
	return &Session{
		store:    store,
		notifier: notifier,
		logger:   logging.OrNop(logger),
		now:      time.Now,
		idx:      catalog.BuildIndex(nil),
		state:    DefaultState(internal.AllZones),
		notes:    NewNotes(),
	}
}

// Load reads the catalog from the store. On failure the previous catalog
// stays in place.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.pos = data.POS
	s.families = data.Families
	s.ReplaceCatalog(data.Articles, data.Tariffs)
	s.logger.Debug("catalog loaded",
		zap.Int("articles", len(data.Articles)),
		zap.Int("tariffs", len(data.Tariffs)),
		zap.Int("references", s.idx.References()))
	return nil
}

// ReplaceCatalog swaps in fully parsed articles and tariffs together with
// a fresh index and drops every note.
func (s *Session) ReplaceCatalog(articles []internal.Article, tariffs []internal.Tariff) {
	idx := catalog.BuildIndex(tariffs)
	s.articles, s.tariffs, s.idx = articles, tariffs, idx
	s.notes.Clear()
}

func (s *Session) State() State { return s.state }

func (s *Session) SetState(st State) { s.state = st }

func (s *Session) Notes() *Notes { return s.notes }

func (s *Session) Index() *catalog.Index { return s.idx }

func (s *Session) Articles() []internal.Article { return s.articles }

func (s *Session) Families() []internal.Family { return s.families }

// Zones lists the zone of every point of sale, the choices offered for
// comparison.
func (s *Session) Zones() []string {
	out := make([]string, 0, len(s.pos))
	for _, p := range s.pos {
		out = append(out, p.Zone)
	}
	return out
}

// Results applies the current filter state.
func (s *Session) Results() []internal.Article {
	return Filter(s.articles, s.idx, s.state)
}

// Project prices ref across the current mode's zones.
func (s *Session) Project(ref string) []ZonePrice {
	return Project(s.idx, ref, s.state.Mode)
}

// Export serializes the current results.
func (s *Session) Export(exportMode internal.ReportType) string {
	return Serialize(s.Results(), exportMode, s.notes, s.idx, s.state.Mode)
}

// SubmitReport stores the current export at the head of the report inbox
// and then notifies the admin. A failed notification is logged; the report
// is already saved by then.
func (s *Session) SubmitReport(ctx context.Context, supervisor string, exportMode internal.ReportType) (internal.Report, error) {
	report := NewReport(supervisor, s.state.Mode, exportMode, s.Export(exportMode), s.now())

	current, err := s.store.GetAppData(ctx)
	if err != nil {
		return internal.Report{}, fmt.Errorf("read reports: %w", err)
	}
	reports := append([]internal.Report{report}, current.Reports...)
	if err := s.store.SaveAllData(ctx, internal.AppDataPatch{Reports: &reports}); err != nil {
		return internal.Report{}, fmt.Errorf("save report: %w", err)
	}
	s.logger.Info("report submitted",
		zap.String("id", report.ID),
		zap.String("supervisor", report.SupervisorName),
		zap.String("zones", report.ZoneFilter),
		zap.String("type", string(report.Type)))

	if s.notifier != nil {
		if err := s.notifier.NotifyReport(ctx, report); err != nil {
			s.logger.Warn("report notification failed", zap.String("id", report.ID), zap.Error(err))
		}
	}
	return report, nil
}
