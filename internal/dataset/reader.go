package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// contextCheckInterval is how many rows to parse between context checks
// during a load.
const contextCheckInterval = 100

// Reader streams records from character-separated text. The first row read
// at construction establishes the field names; every subsequent row becomes
// one Record keyed by those names.
//
// The sequence is lazy, finite and non-restartable: rows are decoded one
// Next call at a time, and a Reader cannot be rewound.
//
// Quoting follows RFC 4180 strictly: quoted fields may contain the delimiter
// or line breaks, and a quoting violation ends the stream with
// ErrMalformedRow. Rows with a different field count than the header are
// delivered as-is and shaped by NewRecord (short rows lack trailing fields,
// long rows are truncated). Blank lines are skipped by the underlying CSV
// parser and never become records.
type Reader struct {
	csv    *csv.Reader
	header []string
	cur    Record
	err    error
	done   bool
}

// NewReader reads the header row from r and returns a Reader positioned at
// the first data row. comma is the field delimiter. An empty input has no
// header to establish field names and fails with ErrMalformedRow.
func NewReader(r io.Reader, comma rune) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	// Ragged rows are a policy decision made above, not a parse error.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty source, no header row", ErrMalformedRow)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &Reader{csv: cr, header: header}, nil
}

// Header returns the field names established by the header row.
func (r *Reader) Header() []string {
	return r.header
}

// Next advances to the next record. It returns false at end of input or on
// the first error; check Err to distinguish the two.
func (r *Reader) Next() bool {
	if r.err != nil || r.done {
		return false
	}
	row, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.done = true
		} else {
			r.err = classify(err)
		}
		return false
	}
	r.cur = NewRecord(r.header, row)
	return true
}

// Record returns the record produced by the most recent successful Next.
func (r *Reader) Record() Record {
	return r.cur
}

// Err returns the error that ended the stream, or nil after a clean end of
// input.
func (r *Reader) Err() error {
	return r.err
}

// classify wraps a csv read error in the matching sentinel: parse errors are
// malformed input, anything else is the underlying stream failing.
func classify(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}

// Loader produces one complete dataset. Load blocks until the whole source
// has been consumed and returns the full ordered result, or the first error;
// it never returns partial data.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileLoader loads a delimited text file from the local filesystem. It
// implements the collect-then-publish half of the pipeline: the file is
// streamed record by record, and the accumulated dataset is returned only
// once end of input is reached.
type FileLoader struct {
	// Path is the source file location.
	Path string

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Load parses the file into a dataset. The file is decoded incrementally,
// never slurped; ctx is checked every contextCheckInterval rows so a
// cancelled or expired context aborts a long parse promptly.
//
// Errors wrap ErrSourceUnavailable when the file cannot be opened or read,
// and ErrMalformedRow when the format is violated. A malformed row aborts
// the whole load; the policy is uniform, rows are never skipped.
func (l *FileLoader) Load(ctx context.Context) (*Dataset, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()

	comma := l.Comma
	if comma == 0 {
		comma = ','
	}

	stream := newDecodeReader(f)
	r, err := NewReader(stream, comma)
	if err != nil {
		return nil, err
	}

	var records []Record
	for r.Next() {
		records = append(records, r.Record())
		if len(records)%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	d := New(r.Header(), records)
	d.bytes = stream.bytes
	return d, nil
}
