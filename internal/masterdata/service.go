package masterdata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/logging"
)

// Store is the persistence collaborator used for master data.
type Store interface {
	GetAppData(ctx context.Context) (internal.AppData, error)
	SaveAllData(ctx context.Context, patch internal.AppDataPatch) error
}

// Service edits one master-data collection at a time: it loads the
// current snapshot, validates, applies and writes the collection back.
// Nothing is written when validation fails.
type Service struct {
	store  Store
	logger *zap.Logger
	newID  func() string
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logging.OrNop(logger), newID: uuid.NewString}
}

// SavePointOfSale creates p when its ID is empty, otherwise updates the
// store with that ID.
func (s *Service) SavePointOfSale(ctx context.Context, p internal.PointOfSale) (internal.PointOfSale, error) {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return p, err
	}

	p = NormalizePointOfSale(p)
	if err := ValidatePointOfSale(p, data.POS); err != nil {
		return p, err
	}

	updated, err := upsert(data.POS, p, func(x internal.PointOfSale) string { return x.ID }, func(x *internal.PointOfSale) { x.ID = s.newID() })
	if err != nil {
		return p, err
	}
	if p.ID == "" {
		p = updated[len(updated)-1]
	}

	if err := s.store.SaveAllData(ctx, internal.AppDataPatch{POS: &updated}); err != nil {
		return p, err
	}
	s.logger.Info("point of sale saved", zap.String("code", p.Code), zap.String("zone", p.Zone))
	return p, nil
}

func (s *Service) DeletePointOfSale(ctx context.Context, id string) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	updated, err := remove(data.POS, id, func(x internal.PointOfSale) string { return x.ID })
	if err != nil {
		return err
	}
	return s.store.SaveAllData(ctx, internal.AppDataPatch{POS: &updated})
}

// SaveFamily adds or renames a family. Family codes are chosen by the
// admin, so create and update are explicit.
func (s *Service) SaveFamily(ctx context.Context, f internal.Family, create bool) error {
	if err := ValidateFamily(f); err != nil {
		return err
	}
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}

	families := append([]internal.Family(nil), data.Families...)
	idx := -1
	for i, existing := range families {
		if existing.ID == f.ID {
			idx = i
			break
		}
	}
	switch {
	case create && idx >= 0:
		return fmt.Errorf("%w: El código %q ya existe", ErrDuplicateCode, f.ID)
	case create:
		families = append(families, f)
	case idx < 0:
		return fmt.Errorf("%w: familia %s", ErrNotFound, f.ID)
	default:
		families[idx] = f
	}
	SortFamilies(families)

	if err := s.store.SaveAllData(ctx, internal.AppDataPatch{Families: &families}); err != nil {
		return err
	}
	s.logger.Info("family saved", zap.String("id", f.ID), zap.Bool("created", create))
	return nil
}

func (s *Service) DeleteFamily(ctx context.Context, id string) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	updated, err := remove(data.Families, id, func(x internal.Family) string { return x.ID })
	if err != nil {
		return err
	}
	return s.store.SaveAllData(ctx, internal.AppDataPatch{Families: &updated})
}

func (s *Service) SaveGroup(ctx context.Context, g internal.Group) (internal.Group, error) {
	if err := ValidateGroup(g); err != nil {
		return g, err
	}
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return g, err
	}

	updated, err := upsert(data.Groups, g, func(x internal.Group) string { return x.ID }, func(x *internal.Group) { x.ID = s.newID() })
	if err != nil {
		return g, err
	}
	if g.ID == "" {
		g = updated[len(updated)-1]
	}
	return g, s.store.SaveAllData(ctx, internal.AppDataPatch{Groups: &updated})
}

func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	updated, err := remove(data.Groups, id, func(x internal.Group) string { return x.ID })
	if err != nil {
		return err
	}
	return s.store.SaveAllData(ctx, internal.AppDataPatch{Groups: &updated})
}

// SaveUser stores u. A user without a group inherits the group of the
// store serving their zone.
func (s *Service) SaveUser(ctx context.Context, u internal.User) (internal.User, error) {
	if err := ValidateUser(u); err != nil {
		return u, err
	}
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return u, err
	}

	if u.Role == "" {
		u.Role = internal.RoleNormal
	}
	if u.Group == "" {
		u.Group = GroupForZone(u.Zone, data.POS)
	}

	updated, err := upsert(data.Users, u, func(x internal.User) string { return x.ID }, func(x *internal.User) { x.ID = s.newID() })
	if err != nil {
		return u, err
	}
	if u.ID == "" {
		u = updated[len(updated)-1]
	}
	return u, s.store.SaveAllData(ctx, internal.AppDataPatch{Users: &updated})
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return err
	}
	updated, err := remove(data.Users, id, func(x internal.User) string { return x.ID })
	if err != nil {
		return err
	}
	return s.store.SaveAllData(ctx, internal.AppDataPatch{Users: &updated})
}

// ListUsers returns the users in store-code order.
func (s *Service) ListUsers(ctx context.Context) ([]internal.User, error) {
	data, err := s.store.GetAppData(ctx)
	if err != nil {
		return nil, err
	}
	users := append([]internal.User(nil), data.Users...)
	SortUsers(users, data.POS)
	return users, nil
}

// upsert appends item with a fresh ID when its ID is empty, otherwise
// replaces the element carrying the same ID.
func upsert[T any](items []T, item T, id func(T) string, assignID func(*T)) ([]T, error) {
	out := append([]T(nil), items...)
	if id(item) == "" {
		assignID(&item)
		return append(out, item), nil
	}
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id(item))
}

func remove[T any](items []T, target string, id func(T) string) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if id(it) != target {
			out = append(out, it)
		}
	}
	if len(out) == len(items) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	return out, nil
}
