package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitrack/backend/internal/models"
)

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Full Name,Email,Phone,Company,City,Designation",
		"Asha Rao,asha@example.com,9000000001,Acme,Mumbai,Manager",
		"Ben Kim,BEN@Example.com,,Globex,Pune,Engineer",
	}, "\n")

	res, err := Parse("visitors.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Records, 2)

	first := res.Records[0]
	assert.Equal(t, "Asha Rao", first.FullName)
	assert.Equal(t, "asha@example.com", first.Email)
	assert.Equal(t, "9000000001", first.PhoneNumber)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Mumbai", first.Location)
	assert.Equal(t, "Manager", first.Designation)

	// emails are lowercased for the per-tenant unique key
	assert.Equal(t, "ben@example.com", res.Records[1].Email)
}

func TestParseSkipsRowsWithoutIdentity(t *testing.T) {
	csv := strings.Join([]string{
		"Name,Email,Mobile,Company",
		"Asha Rao,asha@example.com,9000000001,Acme",
		",,,OnlyCompany",
		",,9000000002,",
		",,,",
	}, "\n")

	res, err := Parse("visitors.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)

	// blank row is not counted at all; the company-only row is counted and skipped
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "9000000002", res.Records[1].PhoneNumber)
}

func TestParseHeaderAliases(t *testing.T) {
	csv := strings.Join([]string{
		"visitor name,e-mail,mobile no,organisation,place,job title",
		"Asha Rao,asha@example.com,9000000001,Acme,Mumbai,Manager",
	}, "\n")

	res, err := Parse("a.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "Asha Rao", rec.FullName)
	assert.Equal(t, "asha@example.com", rec.Email)
	assert.Equal(t, "9000000001", rec.PhoneNumber)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "Mumbai", rec.Location)
	assert.Equal(t, "Manager", rec.Designation)
}

func TestParseClientMappingWinsOverAliases(t *testing.T) {
	csv := strings.Join([]string{
		"Attendee,Contact Email,Title",
		"Asha Rao,asha@example.com,Dr",
	}, "\n")

	// "title" normally maps to designation; the client remaps it to fullName's
	// column set here to prove precedence
	mapping := map[string]string{
		"attendee":      FieldFullName,
		"contact email": FieldEmail,
		"title":         FieldCompany,
	}
	res, err := Parse("a.csv", strings.NewReader(csv), mapping)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Asha Rao", res.Records[0].FullName)
	assert.Equal(t, "asha@example.com", res.Records[0].Email)
	assert.Equal(t, "Dr", res.Records[0].Company)
	assert.Empty(t, res.Records[0].Designation)
}

func TestParseUnknownHeadersDropped(t *testing.T) {
	csv := strings.Join([]string{
		"Name,Email,Favourite Color",
		"Asha Rao,asha@example.com,blue",
	}, "\n")

	res, err := Parse("a.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Asha Rao", res.Records[0].FullName)
	assert.Empty(t, res.Records[0].Company)
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("a.csv", strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Parse("a.csv", strings.NewReader("Name,Email\n"), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("a.pdf", strings.NewReader("x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseRaggedRows(t *testing.T) {
	csv := strings.Join([]string{
		"Name,Email,Phone",
		"Asha Rao,asha@example.com",
		"Ben Kim,ben@example.com,9000000002,extra-cell",
	}, "\n")

	res, err := Parse("a.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Records[0].PhoneNumber)
	assert.Equal(t, "9000000002", res.Records[1].PhoneNumber)
}

func TestParseKeepsEmailLessRowsDistinct(t *testing.T) {
	csv := strings.Join([]string{
		"Name,Phone",
		"Asha Rao,9000000001",
		"Ben Kim,9000000002",
		"Chitra Devi,9000000003",
	}, "\n")

	res, err := Parse("phones.csv", strings.NewReader(csv), nil)
	require.NoError(t, err)

	// phone-only contacts have no email key; each must survive as its own record
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Records, 3)
	for _, rec := range res.Records {
		assert.Empty(t, rec.Email)
	}
	assert.Equal(t, "Asha Rao", res.Records[0].FullName)
	assert.Equal(t, "Ben Kim", res.Records[1].FullName)
	assert.Equal(t, "Chitra Devi", res.Records[2].FullName)
}

func TestTruncateRowsCountsSkipped(t *testing.T) {
	res := &Result{
		Records: []models.DatasetRecord{
			{FullName: "a"}, {FullName: "b"}, {FullName: "c"}, {FullName: "d"}, {FullName: "e"},
		},
		Total:   6,
		Skipped: 1,
	}

	truncateRows(res, 3)

	require.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, res.Total, len(res.Records)+res.Skipped)

	// under the cap, and with no cap at all, nothing changes
	truncateRows(res, 10)
	truncateRows(res, 0)
	require.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.Skipped)
}

func TestResolveField(t *testing.T) {
	field, ok := ResolveField("  Full Name ", nil)
	assert.True(t, ok)
	assert.Equal(t, FieldFullName, field)

	_, ok = ResolveField("favourite color", nil)
	assert.False(t, ok)

	// client mapping entries with invalid targets are ignored
	field, ok = ResolveField("phone", map[string]string{"phone": "not-a-field"})
	assert.True(t, ok)
	assert.Equal(t, FieldPhoneNumber, field)
}
