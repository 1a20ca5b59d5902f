package masterdata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tarifario/internal"
	"tarifario/internal/util"
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrDuplicateCode = errors.New("duplicate store code")
	ErrDuplicateZone = errors.New("duplicate zone")
	ErrInvalidValue  = errors.New("invalid value")
	ErrNotFound      = errors.New("not found")
)

const maxZoneLen = 3

// NormalizePointOfSale applies the form input rules: digits only in the
// code and an upper-cased zone.
func NormalizePointOfSale(p internal.PointOfSale) internal.PointOfSale {
	p.Code = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, p.Code)
	p.Zone = strings.ToUpper(strings.TrimSpace(p.Zone))
	p.Group = strings.TrimSpace(p.Group)
	return p
}

// ValidatePointOfSale checks p against the other stores. A store being
// edited keeps its ID, so it never conflicts with itself.
func ValidatePointOfSale(p internal.PointOfSale, existing []internal.PointOfSale) error {
	if p.Code == "" || p.Zone == "" || p.Group == "" {
		return fmt.Errorf("%w: Código, Zona y Grupo son obligatorios", ErrMissingField)
	}
	if len(p.Code) > 2 {
		return fmt.Errorf("%w: el código %q debe tener como máximo 2 dígitos", ErrInvalidValue, p.Code)
	}
	if len([]rune(p.Zone)) > maxZoneLen {
		return fmt.Errorf("%w: la zona %q debe tener como máximo %d caracteres", ErrInvalidValue, p.Zone, maxZoneLen)
	}
	for _, other := range existing {
		if other.ID == p.ID {
			continue
		}
		if other.Code == p.Code {
			return fmt.Errorf("%w: El código %q ya está asignado a otra tienda", ErrDuplicateCode, p.Code)
		}
	}
	for _, other := range existing {
		if other.ID == p.ID {
			continue
		}
		if other.Zone == p.Zone {
			return fmt.Errorf("%w: La zona %q ya existe", ErrDuplicateZone, p.Zone)
		}
	}
	return nil
}

func ValidateFamily(f internal.Family) error {
	if strings.TrimSpace(f.ID) == "" || strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: código y nombre de familia", ErrMissingField)
	}
	return nil
}

func ValidateGroup(g internal.Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: nombre del grupo", ErrMissingField)
	}
	return nil
}

func ValidateUser(u internal.User) error {
	if u.Name == "" || u.Password == "" {
		return fmt.Errorf("%w: nombre y clave", ErrMissingField)
	}
	switch u.Role {
	case "", internal.RoleNormal, internal.RoleSupervisor, internal.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: rol %q", ErrInvalidValue, u.Role)
	}
}

// SortFamilies orders families by numeric code; non-numeric codes go last.
func SortFamilies(families []internal.Family) {
	sort.SliceStable(families, func(i, j int) bool {
		return numericKey(families[i].ID, 1<<31-1) < numericKey(families[j].ID, 1<<31-1)
	})
}

const unassignedStore = 99999

// SortUsers orders users by the code of the store serving their zone, then
// by name. Users without a store (admins) go last.
func SortUsers(users []internal.User, pos []internal.PointOfSale) {
	codeByZone := make(map[string]int, len(pos))
	for _, p := range pos {
		zone := strings.ToUpper(p.Zone)
		if _, seen := codeByZone[zone]; !seen {
			codeByZone[zone] = numericKey(p.Code, unassignedStore)
		}
	}
	storeCode := func(u internal.User) int {
		if c, ok := codeByZone[strings.ToUpper(u.Zone)]; ok {
			return c
		}
		return unassignedStore
	}

	col := collate.New(language.Spanish)
	sort.SliceStable(users, func(i, j int) bool {
		ci, cj := storeCode(users[i]), storeCode(users[j])
		if ci != cj {
			return ci < cj
		}
		return col.CompareString(users[i].Name, users[j].Name) < 0
	})
}

// GroupForZone is the group of the store serving zone, used to prefill a
// user's group.
func GroupForZone(zone string, pos []internal.PointOfSale) string {
	for _, p := range pos {
		if p.Zone == zone {
			return p.Group
		}
	}
	return ""
}

func numericKey(s string, fallback int) int {
	if n, ok := util.ParseLeadingInt(s); ok {
		return n
	}
	return fallback
}
