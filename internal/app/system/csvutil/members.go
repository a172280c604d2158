// internal/app/system/csvutil/members.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/attendease/attendease/internal/app/system/inputval"
)

// ErrTooManyRows is returned when the file exceeds ParseOptions.MaxRows.
var ErrTooManyRows = errors.New("csv has too many rows")

// ParseOptions controls parsing limits. MaxRows of 0 means unlimited.
type ParseOptions struct {
	MaxRows int
}

// DefaultParseOptions returns the options used by the import endpoints.
func DefaultParseOptions() ParseOptions { return ParseOptions{} }

// MemberCSVRow is one normalized row of a member import file:
// a full name and an email address.
type MemberCSVRow struct {
	FullName string
	Email    string
}

// RowError describes one rejected row. Line is 1-based and counts data
// rows, not the header.
type RowError struct {
	Line   int
	Reason string
	Raw    []string
}

// ParseResult holds the accepted rows and any per-row failures. Parsing
// never writes to the database; callers check HasErrors before any
// mutation so an import is all-or-nothing.
type ParseResult struct {
	Rows   []MemberCSVRow
	Errors []RowError
}

// HasErrors reports whether any row was rejected.
func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// FormatErrors renders up to maxShow row failures as a user-facing
// message, or "" when there are none.
func (r *ParseResult) FormatErrors(maxShow int) string {
	if len(r.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Upload rejected: %d row(s) are invalid. Each row must have a Full Name and an Email.\n", len(r.Errors))

	show := len(r.Errors)
	if maxShow > 0 && show > maxShow {
		show = maxShow
	}
	for i := 0; i < show; i++ {
		e := r.Errors[i]
		fmt.Fprintf(&b, "line %d: %s (%s)\n", e.Line, e.Reason, strings.Join(e.Raw, " | "))
	}
	if rest := len(r.Errors) - show; rest > 0 {
		fmt.Fprintf(&b, "...and %d more\n", rest)
	}
	return b.String()
}

// ParseMemberCSV reads a member import file: rows of (Full Name, Email)
// with an optional header and an optional UTF-8 BOM. Emails are
// lowercased; duplicates within the file are rejected.
func ParseMemberCSV(r io.Reader, opts ParseOptions) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ParseResult{}
	seen := make(map[string]bool)
	line := 0

	addRow := func(rec []string) error {
		// Skip blank rows.
		empty := true
		for _, f := range rec {
			if strings.TrimSpace(f) != "" {
				empty = false
				break
			}
		}
		if empty {
			return nil
		}

		line++
		if opts.MaxRows > 0 && line > opts.MaxRows {
			return ErrTooManyRows
		}

		var name, email string
		if len(rec) > 0 {
			name = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			email = strings.ToLower(strings.TrimSpace(rec[1]))
		}

		switch {
		case name == "":
			result.Errors = append(result.Errors, RowError{Line: line, Reason: "missing full name", Raw: rec})
		case email == "":
			result.Errors = append(result.Errors, RowError{Line: line, Reason: "missing email", Raw: rec})
		case !inputval.IsValidEmail(email):
			result.Errors = append(result.Errors, RowError{Line: line, Reason: "invalid email", Raw: rec})
		case seen[email]:
			result.Errors = append(result.Errors, RowError{Line: line, Reason: "duplicate email in file", Raw: rec})
		default:
			seen[email] = true
			result.Rows = append(result.Rows, MemberCSVRow{FullName: name, Email: email})
		}
		return nil
	}

	first, err := reader.Read()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\uFEFF")
		if !isMemberHeader(first) {
			if err := addRow(first); err != nil {
				return nil, err
			}
		}
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged or malformed record; count it as a bad row.
			line++
			result.Errors = append(result.Errors, RowError{Line: line, Reason: "malformed row"})
			continue
		}
		if err := addRow(rec); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func isMemberHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	c0 := strings.ToLower(strings.TrimSpace(rec[0]))
	c1 := strings.ToLower(strings.TrimSpace(rec[1]))
	return (c0 == "full name" || c0 == "name") && c1 == "email"
}
