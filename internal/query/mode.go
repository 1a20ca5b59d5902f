package query

import (
	"strings"

	"tarifario/internal"
)

// Mode selects which zones a query prices against. It is either a
// SingleZone or a CompareZones value.
type Mode interface {
	// Columns are the zones resolved for each article, in display order.
	Columns() []string
	// Labels are the export header labels matching Columns.
	Labels() []string
	// Covers reports whether a tariff from store counts for the
	// offers-only clause.
	Covers(store string) bool
	// Descriptor is the zone filter recorded on a report.
	Descriptor() string
}

// SingleZone prices every article against one store. The zero value and
// internal.AllZones mean any store.
type SingleZone struct {
	Zone string
}

func (m SingleZone) zone() string {
	if strings.TrimSpace(m.Zone) == "" {
		return internal.AllZones
	}
	return m.Zone
}

// Concrete reports whether the mode names a real store.
func (m SingleZone) Concrete() bool { return m.zone() != internal.AllZones }

func (m SingleZone) Columns() []string { return []string{m.zone()} }

func (m SingleZone) Labels() []string { return []string{"PVP"} }

func (m SingleZone) Covers(store string) bool {
	return !m.Concrete() || store == m.zone()
}

func (m SingleZone) Descriptor() string { return m.zone() }

// CompareZones prices every article side by side across the chosen stores.
type CompareZones struct {
	Zones []string
}

func (m CompareZones) Columns() []string { return append([]string(nil), m.Zones...) }

func (m CompareZones) Labels() []string { return m.Columns() }

func (m CompareZones) Covers(store string) bool {
	for _, z := range m.Zones {
		if z == store {
			return true
		}
	}
	return false
}

func (m CompareZones) Descriptor() string { return strings.Join(m.Zones, ", ") }

// Toggle adds zone to the comparison set or removes it when present.
func (m CompareZones) Toggle(zone string) CompareZones {
	out := make([]string, 0, len(m.Zones)+1)
	found := false
	for _, z := range m.Zones {
		if z == zone {
			found = true
			continue
		}
		out = append(out, z)
	}
	if !found {
		out = append(out, zone)
	}
	return CompareZones{Zones: out}
}

// ToggleAll selects every zone, or clears the set when it already holds as
// many zones as there are stores.
func (m CompareZones) ToggleAll(all []string) CompareZones {
	if len(m.Zones) == len(all) {
		return CompareZones{}
	}
	return CompareZones{Zones: append([]string(nil), all...)}
}

// ZoneDescriptor is the zone filter text stored on a report.
func ZoneDescriptor(mode Mode) string {
	return modeOrDefault(mode).Descriptor()
}

func modeOrDefault(mode Mode) Mode {
	if mode == nil {
		return SingleZone{Zone: internal.AllZones}
	}
	return mode
}
