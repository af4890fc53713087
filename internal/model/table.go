package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Table states.  Transitions between them are driven by the order
// lifecycle (free→occupied on open, occupied→free on close/cancel)
// and by explicit reserve/release actions (free↔reserved).  Opening
// an order on a reserved table flips it straight to occupied.
const (
	TableStateFree     = "free"
	TableStateOccupied = "occupied"
	TableStateReserved = "reserved"
)

// ValidTableState reports whether s is one of the known table states.
func ValidTableState(s string) bool {
	switch s {
	case TableStateFree, TableStateOccupied, TableStateReserved:
		return true
	}
	return false
}

// Table describes a physical seating unit.  Tables are uniquely
// identified by their generated display name, which combines the
// initial letter of their section with a per-section sequence number.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique display name, e.g. "P3".
//  State     – occupancy state (free, occupied, reserved).
//  SectionID – section to which this table belongs.
type Table struct {
	ID        uint64 // dining_tables.id
	Name      string // dining_tables.name
	State     string // dining_tables.state
	SectionID uint64 // dining_tables.section_id
}

// SectionInitial returns the upper-cased first rune of a section name,
// or "M" when the name is empty.  The fallback mirrors the behaviour
// of earlier deployments where tables could outlive their section.
func SectionInitial(sectionName string) string {
	for _, r := range strings.TrimSpace(sectionName) {
		return string(unicode.ToUpper(r))
	}
	return "M"
}

// NextTableName generates the display name for a new table in a
// section: the section initial followed by one plus the highest
// sequence number found among the section's existing table names.
// Names whose trailing characters contain no digits are skipped.
func NextTableName(sectionName string, existing []string) string {
	max := 0
	for _, name := range existing {
		n, ok := trailingNumber(name)
		if ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", SectionInitial(sectionName), max+1)
}

// trailingNumber extracts the decimal number formed by the digit
// characters of a table name ("P12" -> 12).  It returns false when
// the name contains no digits.
func trailingNumber(name string) (int, bool) {
	n, found := 0, false
	for _, r := range name {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			found = true
		}
	}
	return n, found
}
