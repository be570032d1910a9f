package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/visitrack/backend/internal/models"
)

// Canonical record field names a spreadsheet column can map to.
const (
	FieldFullName    = "fullName"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldCompany     = "company"
	FieldLocation    = "location"
	FieldDesignation = "designation"
)

// ErrEmptyFile is returned for files with no data rows.
var ErrEmptyFile = errors.New("file contains no data rows")

// ErrUnsupportedFormat is returned for extensions other than .csv and .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format: csv or xlsx required")

// headerAliases maps normalized spreadsheet headers to canonical fields.
// Lookup lowercases and trims the header first.
var headerAliases = map[string]string{
	"fullname":     FieldFullName,
	"full name":    FieldFullName,
	"name":         FieldFullName,
	"visitor name": FieldFullName,
	"email":        FieldEmail,
	"email id":     FieldEmail,
	"e-mail":       FieldEmail,
	"mail":         FieldEmail,
	"phonenumber":  FieldPhoneNumber,
	"phone number": FieldPhoneNumber,
	"phone":        FieldPhoneNumber,
	"mobile":       FieldPhoneNumber,
	"mobile no":    FieldPhoneNumber,
	"contact":      FieldPhoneNumber,
	"company":      FieldCompany,
	"organization": FieldCompany,
	"organisation": FieldCompany,
	"firm":         FieldCompany,
	"location":     FieldLocation,
	"city":         FieldLocation,
	"place":        FieldLocation,
	"designation":  FieldDesignation,
	"title":        FieldDesignation,
	"job title":    FieldDesignation,
	"role":         FieldDesignation,
}

// validTargets guards client-supplied mappings.
var validTargets = map[string]bool{
	FieldFullName:    true,
	FieldEmail:       true,
	FieldPhoneNumber: true,
	FieldCompany:     true,
	FieldLocation:    true,
	FieldDesignation: true,
}

// ResolveField maps a spreadsheet header to a canonical field. The client
// mapping wins over the built-in aliases; headers neither maps know are
// dropped.
func ResolveField(header string, mapping map[string]string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(header))
	if mapping != nil {
		if target, ok := mapping[key]; ok && validTargets[target] {
			return target, true
		}
	}
	target, ok := headerAliases[key]
	return target, ok
}

// Result summarizes one parsed file. Skipped counts data rows dropped for
// having no name, email or phone.
type Result struct {
	Records []models.DatasetRecord
	Total   int
	Skipped int
}

// Parse reads a CSV or XLSX file, chosen by extension, into dataset records.
// mapping optionally remaps headers (lowercased header -> canonical field).
func Parse(filename string, r io.Reader, mapping map[string]string) (*Result, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return parseCSV(r, mapping)
	case ".xlsx":
		return parseXLSX(r, mapping)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(r io.Reader, mapping map[string]string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	res := &Result{Records: []models.DatasetRecord{}}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		collectRow(res, header, row, mapping)
	}
	if res.Total == 0 {
		return nil, ErrEmptyFile
	}
	return res, nil
}

func parseXLSX(r io.Reader, mapping map[string]string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	res := &Result{Records: []models.DatasetRecord{}}
	for _, row := range rows[1:] {
		collectRow(res, header, row, mapping)
	}
	if res.Total == 0 {
		return nil, ErrEmptyFile
	}
	return res, nil
}

// collectRow maps one data row onto a record and appends it, or counts it as
// skipped when it carries none of name, email and phone.
func collectRow(res *Result, header, row []string, mapping map[string]string) {
	if isBlank(row) {
		return
	}
	res.Total++

	var rec models.DatasetRecord
	for i, h := range header {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		field, ok := ResolveField(h, mapping)
		if !ok {
			continue
		}
		switch field {
		case FieldFullName:
			rec.FullName = value
		case FieldEmail:
			rec.Email = strings.ToLower(value)
		case FieldPhoneNumber:
			rec.PhoneNumber = value
		case FieldCompany:
			rec.Company = value
		case FieldLocation:
			rec.Location = value
		case FieldDesignation:
			rec.Designation = value
		}
	}

	if rec.FullName == "" && rec.Email == "" && rec.PhoneNumber == "" {
		res.Skipped++
		return
	}
	res.Records = append(res.Records, rec)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
