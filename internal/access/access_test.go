package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSetGrantsEveryPage(t *testing.T) {
	s := DefaultSet()
	require.Len(t, s, len(All))
	for _, p := range All {
		assert.True(t, s.Allows(p), "default set should allow %s", p)
	}
}

func TestAllowsDeniesAbsentKey(t *testing.T) {
	s := Set{PageDashboard: true}

	assert.True(t, s.Allows(PageDashboard))
	assert.False(t, s.Allows(PageReports), "absent key must deny")
	assert.False(t, Set{PageReports: false}.Allows(PageReports), "explicit false must deny")

	var nilSet Set
	assert.False(t, nilSet.Allows(PageDashboard), "nil set denies everything")
}

func TestApplyIgnoresUnknownKeys(t *testing.T) {
	s := DefaultSet().Apply(map[Page]bool{
		PageReports:   false,
		Page("bogus"): true,
		PageSetting:   false,
	})

	assert.False(t, s.Allows(PageReports))
	assert.False(t, s.Allows(PageSetting))
	assert.True(t, s.Allows(PageVisitors))
	_, present := s[Page("bogus")]
	assert.False(t, present)
}

func TestFromMapDropsUnknownKeys(t *testing.T) {
	s := FromMap(map[string]bool{
		"dashboard": true,
		"reports":   false,
		"made-up":   true,
	})

	assert.Len(t, s, 2)
	assert.True(t, s.Allows(PageDashboard))
	assert.False(t, s.Allows(PageReports))
}

func TestParseLegacyFields(t *testing.T) {
	s := ParseLegacyFields(map[string]bool{
		"dashboard:true": true,
		// the suffix was part of the field name, not the value
		"reports:true": false,
		"scanner":      true,
		"unknown:true": true,
	})

	assert.True(t, s.Allows(PageDashboard))
	assert.False(t, s.Allows(PageReports))
	assert.True(t, s.Allows(PageScanner))
	assert.Len(t, s, 3)
}

func TestBackfillGrantsAllForPreMigrationSet(t *testing.T) {
	got, changed := Backfill(Set{PageReports: true})
	assert.True(t, changed)
	assert.Equal(t, DefaultSet(), got)

	got, changed = Backfill(Set{})
	assert.True(t, changed)
	assert.Equal(t, DefaultSet(), got)
}

func TestBackfillIsIdempotent(t *testing.T) {
	first, changed := Backfill(Set{})
	require.True(t, changed)

	second, changed := Backfill(first)
	assert.False(t, changed)
	assert.Equal(t, first, second)

	// a migrated set with narrowed access stays narrowed
	narrowed := Set{PageDashboard: true, PageReports: false}
	got, changed := Backfill(narrowed)
	assert.False(t, changed)
	assert.Equal(t, narrowed, got)
}

func TestValid(t *testing.T) {
	for _, p := range All {
		assert.True(t, Valid(p))
	}
	assert.False(t, Valid(Page("dashboard:true")))
	assert.False(t, Valid(Page("")))
}
