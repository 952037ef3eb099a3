package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RawRecord is one parsed, untyped row of an upload: column name to
// raw string value. Row is 1-based and header-relative, so the first
// data line is row 1.
type RawRecord struct {
	Row    int
	Fields map[string]string
}

// Get returns the raw value of a column, "" when the column is absent.
func (r RawRecord) Get(column string) string {
	return r.Fields[column]
}

// Reader yields RawRecords from a delimited upload. Single pass, not
// restartable; rows are produced lazily as Next is called.
type Reader struct {
	read    func() ([]string, error)
	headers []string
	peeked  []string
	hasPeek bool
	row     int
}

// NewReader parses CSV input. The header line is consumed immediately
// and checked against the required column list; ErrEmptyInput and
// MissingColumnsError surface here, before any row is produced.
func NewReader(r io.Reader, required []string) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// Hand-edited files routinely carry stray quotes mid-field.
	cr.LazyQuotes = true

	return newReader(cr.Read, required)
}

// NewRowsReader adapts already-tokenized rows (spreadsheet sheets) to
// the same header contract and record semantics as NewReader.
func NewRowsReader(rows [][]string, required []string) (*Reader, error) {
	i := 0
	read := func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	}
	return newReader(read, required)
}

func newReader(read func() ([]string, error), required []string) (*Reader, error) {
	headers, err := read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if len(headers) > 0 {
		// Excel prepends a BOM to UTF-8 CSV exports.
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	if missing := missingColumns(headers, required); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	r := &Reader{read: read, headers: headers}

	// At least one data line must exist for the upload to mean anything.
	first, err := read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read row 1: %w", err)
	}
	r.peeked = first
	r.hasPeek = true

	return r, nil
}

// Headers returns the discovered header names in column order.
func (r *Reader) Headers() []string {
	return r.headers
}

// Next returns the next non-blank record, or io.EOF when the input is
// exhausted. Rows shorter than the header pad missing trailing columns
// with ""; tokens beyond the header count are dropped. Blank rows are
// skipped but still advance the row counter so numbers keep matching
// the source file.
func (r *Reader) Next() (RawRecord, error) {
	for {
		var rec []string
		if r.hasPeek {
			rec = r.peeked
			r.peeked = nil
			r.hasPeek = false
		} else {
			var err error
			rec, err = r.read()
			if err == io.EOF {
				return RawRecord{}, io.EOF
			}
			if err != nil {
				return RawRecord{}, fmt.Errorf("read row %d: %w", r.row+1, err)
			}
		}

		r.row++
		if isBlankRow(rec) {
			continue
		}

		fields := make(map[string]string, len(r.headers))
		for i, name := range r.headers {
			if i < len(rec) {
				fields[name] = rec[i]
			} else {
				fields[name] = ""
			}
		}
		return RawRecord{Row: r.row, Fields: fields}, nil
	}
}

// ReadAll drains the reader. Fatal mid-stream parse errors abort with
// the rows read so far discarded.
func ReadAll(r *Reader) ([]RawRecord, error) {
	var records []RawRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func isBlankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func missingColumns(headers, required []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
