// Package access implements the per-user page-access model: a closed set of
// page keys mapped to booleans, replacing the legacy scheme that encoded the
// key name as "<page>:true" document fields.
package access

import (
	"strings"
)

// Page is one admin-console page key.
type Page string

const (
	PageDashboard       Page = "dashboard"
	PageVisitors        Page = "visitors"
	PageEvents          Page = "events"
	PageBadgeManagement Page = "badge-management"
	PageFormBuilder     Page = "form-builder"
	PageMessages        Page = "messages"
	PageEntryLog        Page = "entry-log"
	PageScanner         Page = "scanner"
	PageReports         Page = "reports"
	PageSetting         Page = "setting"
	PageProfile         Page = "profile"
)

// All is the closed enumeration of page keys. PageDashboard doubles as the
// backfill marker: a record carrying it is considered migrated.
var All = []Page{
	PageDashboard,
	PageVisitors,
	PageEvents,
	PageBadgeManagement,
	PageFormBuilder,
	PageMessages,
	PageEntryLog,
	PageScanner,
	PageReports,
	PageSetting,
	PageProfile,
}

// Valid reports whether p is a known page key.
func Valid(p Page) bool {
	for _, known := range All {
		if p == known {
			return true
		}
	}
	return false
}

// Set maps page keys to access booleans. A nil Set denies everything.
type Set map[Page]bool

// DefaultSet grants access to every page; applied at user creation unless an
// administrator overrides afterward.
func DefaultSet() Set {
	s := make(Set, len(All))
	for _, p := range All {
		s[p] = true
	}
	return s
}

// Allows reports whether the set grants access to page. An absent key denies,
// exactly like an explicit false.
func (s Set) Allows(page Page) bool {
	return s[page]
}

// Apply overlays overrides onto the set, ignoring unknown page keys, and
// returns the updated set. A nil receiver starts from empty (deny-all).
func (s Set) Apply(overrides map[Page]bool) Set {
	if s == nil {
		s = make(Set, len(overrides))
	}
	for p, v := range overrides {
		if Valid(p) {
			s[p] = v
		}
	}
	return s
}

// ToMap converts the set to its storage/JSON shape.
func (s Set) ToMap() map[string]bool {
	m := make(map[string]bool, len(s))
	for p, v := range s {
		m[string(p)] = v
	}
	return m
}

// FromMap builds a Set from its storage shape, dropping unknown keys.
func FromMap(m map[string]bool) Set {
	s := make(Set, len(m))
	for k, v := range m {
		if p := Page(k); Valid(p) {
			s[p] = v
		}
	}
	return s
}

// legacySuffix is the literal tail of the old field names. The suffix was part
// of the name, not a value encoding: "reports:true" = false meant no access.
const legacySuffix = ":true"

// ParseLegacyFields translates a legacy flag document ("dashboard:true" style
// field names) into a Set. Field names without the suffix are accepted too so
// partially migrated documents survive the translation.
func ParseLegacyFields(fields map[string]bool) Set {
	s := make(Set, len(fields))
	for name, v := range fields {
		key := strings.TrimSuffix(name, legacySuffix)
		if p := Page(key); Valid(p) {
			s[p] = v
		}
	}
	return s
}

// Backfill brings a pre-migration set up to the current model. It is
// idempotent: if the marker key (dashboard) is present the set is returned
// unchanged, otherwise every page is granted. changed reports whether the
// returned set differs from the input.
func Backfill(s Set) (Set, bool) {
	if _, migrated := s[PageDashboard]; migrated {
		return s, false
	}
	return DefaultSet(), true
}
