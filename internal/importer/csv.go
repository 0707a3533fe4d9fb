// Package importer parses uploaded member CSV files into rows and
// aggregates per-row validation errors. It never persists anything;
// commit decisions belong to the invitation orchestrator.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foreningshub/backend/pkg/validate"
)

// Recognized column headers. Unknown headers are kept in Extra so a
// later commit can retain them in the invitation's member_data.
const (
	FieldEmail     = "email"
	FieldFullName  = "full_name"
	FieldPhone     = "phone"
	FieldBirthDate = "birth_date"
)

// Row messages shown to the user, one per failing field.
const (
	MsgEmailMissing     = "E-postadress saknas"
	MsgEmailInvalid     = "Ogiltig e-postadress"
	MsgPhoneInvalid     = "Ogiltigt telefonnummer"
	MsgBirthDateInvalid = "Ogiltigt födelsedatum"
)

// ImportRow is one data row of an uploaded CSV, numbered 1-based over
// data rows (the header row is not counted).
type ImportRow struct {
	RowNumber int               `json:"row_number"`
	Email     string            `json:"email"`
	FullName  string            `json:"full_name,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	BirthDate string            `json:"birth_date,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Fields flattens the row back into a header-keyed map, recognized
// columns first, retained extra columns after.
func (r ImportRow) Fields() map[string]string {
	fields := make(map[string]string, 4+len(r.Extra))
	fields[FieldEmail] = r.Email
	if r.FullName != "" {
		fields[FieldFullName] = r.FullName
	}
	if r.Phone != "" {
		fields[FieldPhone] = r.Phone
	}
	if r.BirthDate != "" {
		fields[FieldBirthDate] = r.BirthDate
	}
	for k, v := range r.Extra {
		fields[k] = v
	}
	return fields
}

// ImportError is a single field-level failure attributed to a row.
type ImportError struct {
	RowNumber int    `json:"row"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

func (e ImportError) String() string {
	return fmt.Sprintf("Rad %d: %s - %s", e.RowNumber, e.Field, e.Message)
}

// Parse reads header-indexed CSV data into rows and validation errors.
// A malformed file produces a non-nil error and no rows; row-level
// problems are reported through the returned ImportError slice, ordered
// by row and, within a row, email before phone before birth_date.
func Parse(r io.Reader) ([]ImportRow, []ImportError, error) {
	return ParseAt(r, time.Now())
}

// ParseAt is Parse with an explicit reference time for birth-date
// validation.
func ParseAt(r io.Reader, now time.Time) ([]ImportRow, []ImportError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("läsning av CSV-fil misslyckades: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV-filen saknar rubrikrad")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var (
		rows   []ImportRow
		errors []ImportError
	)

	rowNumber := 0
	for _, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		rowNumber++

		row := ImportRow{RowNumber: rowNumber}
		for i, value := range record {
			if i >= len(headers) {
				break
			}
			value = strings.TrimSpace(value)
			switch headers[i] {
			case FieldEmail:
				row.Email = value
			case FieldFullName:
				row.FullName = value
			case FieldPhone:
				row.Phone = value
			case FieldBirthDate:
				row.BirthDate = value
			case "":
				// Unnamed column, nothing to key it by.
			default:
				if row.Extra == nil {
					row.Extra = make(map[string]string)
				}
				row.Extra[headers[i]] = value
			}
		}

		errors = append(errors, validateRow(row, now)...)
		rows = append(rows, row)
	}

	return rows, errors, nil
}

// ValidateRows re-runs field validation over rows that were parsed
// earlier, for callers that receive rows back from a client instead of
// a fresh file.
func ValidateRows(rows []ImportRow, now time.Time) []ImportError {
	var errs []ImportError
	for _, row := range rows {
		errs = append(errs, validateRow(row, now)...)
	}
	return errs
}

func validateRow(row ImportRow, now time.Time) []ImportError {
	var errs []ImportError

	if row.Email == "" {
		errs = append(errs, ImportError{RowNumber: row.RowNumber, Field: FieldEmail, Message: MsgEmailMissing})
	} else if !validate.Email(row.Email) {
		errs = append(errs, ImportError{RowNumber: row.RowNumber, Field: FieldEmail, Message: MsgEmailInvalid})
	}

	if row.Phone != "" && !validate.Phone(row.Phone) {
		errs = append(errs, ImportError{RowNumber: row.RowNumber, Field: FieldPhone, Message: MsgPhoneInvalid})
	}

	if row.BirthDate != "" && !validate.PastDateAt(row.BirthDate, now) {
		errs = append(errs, ImportError{RowNumber: row.RowNumber, Field: FieldBirthDate, Message: MsgBirthDateInvalid})
	}

	return errs
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
