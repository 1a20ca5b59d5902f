package masterdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarifario/internal"
)

type memStore struct {
	data   internal.AppData
	writes int
}

func (m *memStore) GetAppData(context.Context) (internal.AppData, error) { return m.data, nil }

func (m *memStore) SaveAllData(_ context.Context, p internal.AppDataPatch) error {
	m.writes++
	if p.POS != nil {
		m.data.POS = *p.POS
	}
	if p.Families != nil {
		m.data.Families = *p.Families
	}
	if p.Groups != nil {
		m.data.Groups = *p.Groups
	}
	if p.Users != nil {
		m.data.Users = *p.Users
	}
	return nil
}

func newTestService(store *memStore) *Service {
	s := NewService(store, nil)
	n := 0
	s.newID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	return s
}

func seeded() *memStore {
	return &memStore{data: internal.AppData{
		POS: []internal.PointOfSale{
			{ID: "a", Code: "1", Zone: "CH2", Group: "Norte"},
			{ID: "b", Code: "7", Zone: "AL1", Group: "Sur"},
		},
		Families: []internal.Family{{ID: "5", Name: "Embutidos"}, {ID: "13", Name: "Envases"}},
	}}
}

func TestSavePointOfSaleCreatesNormalized(t *testing.T) {
	store := seeded()
	svc := newTestService(store)

	p, err := svc.SavePointOfSale(context.Background(), internal.PointOfSale{Code: "1a0", Zone: " ma3 ", Group: "Centro"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "10", p.Code)
	assert.Equal(t, "MA3", p.Zone)
	assert.Len(t, store.data.POS, 3)
}

func TestSavePointOfSaleRejectsDuplicates(t *testing.T) {
	store := seeded()
	svc := newTestService(store)

	_, err := svc.SavePointOfSale(context.Background(), internal.PointOfSale{Code: "7", Zone: "ZZ1", Group: "Sur"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.Contains(t, err.Error(), `"7"`)

	_, err = svc.SavePointOfSale(context.Background(), internal.PointOfSale{Code: "9", Zone: "ch2", Group: "Sur"})
	assert.ErrorIs(t, err, ErrDuplicateZone)
	assert.Contains(t, err.Error(), "CH2")

	_, err = svc.SavePointOfSale(context.Background(), internal.PointOfSale{Code: "9", Zone: "XX1"})
	assert.ErrorIs(t, err, ErrMissingField)

	assert.Zero(t, store.writes)
}

func TestSavePointOfSaleEditKeepsOwnValues(t *testing.T) {
	store := seeded()
	svc := newTestService(store)

	_, err := svc.SavePointOfSale(context.Background(), internal.PointOfSale{ID: "a", Code: "1", Zone: "CH2", Group: "Centro", City: "Bilbao"})
	require.NoError(t, err)
	assert.Equal(t, "Centro", store.data.POS[0].Group)

	_, err = svc.SavePointOfSale(context.Background(), internal.PointOfSale{ID: "zz", Code: "3", Zone: "ZZ3", Group: "Sur"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidatePointOfSaleLimits(t *testing.T) {
	err := ValidatePointOfSale(internal.PointOfSale{Code: "123", Zone: "CH2", Group: "N"}, nil)
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = ValidatePointOfSale(internal.PointOfSale{Code: "12", Zone: "CH22", Group: "N"}, nil)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSaveFamilyKeepsNumericOrder(t *testing.T) {
	store := seeded()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.SaveFamily(ctx, internal.Family{ID: "7", Name: "Quesos"}, true))
	ids := []string{}
	for _, f := range store.data.Families {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"5", "7", "13"}, ids)

	err := svc.SaveFamily(ctx, internal.Family{ID: "7", Name: "Otra"}, true)
	assert.ErrorIs(t, err, ErrDuplicateCode)

	require.NoError(t, svc.SaveFamily(ctx, internal.Family{ID: "7", Name: "Quesos curados"}, false))
	assert.Equal(t, "Quesos curados", store.data.Families[1].Name)

	assert.ErrorIs(t, svc.SaveFamily(ctx, internal.Family{ID: "", Name: "x"}, true), ErrMissingField)
}

func TestGroupsAndDeletes(t *testing.T) {
	store := seeded()
	svc := newTestService(store)
	ctx := context.Background()

	g, err := svc.SaveGroup(ctx, internal.Group{Name: "Centro"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", g.ID)

	_, err = svc.SaveGroup(ctx, internal.Group{Name: "  "})
	assert.ErrorIs(t, err, ErrMissingField)

	require.NoError(t, svc.DeleteGroup(ctx, g.ID))
	assert.Empty(t, store.data.Groups)
	assert.ErrorIs(t, svc.DeleteGroup(ctx, g.ID), ErrNotFound)

	require.NoError(t, svc.DeletePointOfSale(ctx, "b"))
	assert.Len(t, store.data.POS, 1)
	require.NoError(t, svc.DeleteFamily(ctx, "13"))
	assert.Len(t, store.data.Families, 1)
}

func TestSaveUserInheritsGroupAndSorts(t *testing.T) {
	store := seeded()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.SaveUser(ctx, internal.User{Name: "Zoe", Password: "1", Zone: "AL1"})
	require.NoError(t, err)
	u, err := svc.SaveUser(ctx, internal.User{Name: "Álvaro", Password: "1", Zone: "AL1"})
	require.NoError(t, err)
	assert.Equal(t, "Sur", u.Group)
	assert.Equal(t, internal.RoleNormal, u.Role)
	_, err = svc.SaveUser(ctx, internal.User{Name: "Admin", Password: "1", Role: internal.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.SaveUser(ctx, internal.User{Name: "Luis", Password: "1", Zone: "ch2"})
	require.NoError(t, err)

	_, err = svc.SaveUser(ctx, internal.User{Name: "SinClave"})
	assert.ErrorIs(t, err, ErrMissingField)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, u := range users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Luis", "Álvaro", "Zoe", "Admin"}, names)
}
