package dataset

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one parsed data row: the header's field names paired with this
// row's string values. No type coercion is applied.
//
// Field order is the header's order. A row shorter than the header simply
// lacks the trailing fields; a row longer than the header has the extra
// values discarded.
type Record struct {
	names  []string // shared with the dataset header
	values []string
}

// NewRecord pairs a row of values with the given field names. Values beyond
// the last name are dropped.
func NewRecord(names []string, values []string) Record {
	if len(values) > len(names) {
		values = values[:len(names)]
	}
	return Record{names: names, values: values}
}

// Get returns the value for the named field. The second return is false when
// the field is absent, either because the name is not in the header or
// because this row was shorter than the header.
func (r Record) Get(name string) (string, bool) {
	for i, v := range r.values {
		if r.names[i] == name {
			return v, true
		}
	}
	return "", false
}

// Fields returns the field names present in this record, in header order.
// The slice is a copy; the header backing it is shared by every record and
// must never be written through.
func (r Record) Fields() []string {
	out := make([]string, len(r.values))
	copy(out, r.names[:len(r.values)])
	return out
}

// Len returns the number of fields present in this record.
func (r Record) Len() int {
	return len(r.values)
}

// MarshalJSON writes the record as a JSON object with keys in header order.
// Go maps do not keep insertion order, so the object is emitted by hand.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range r.values {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.names[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is the full ordered sequence of records parsed from one source
// file, header row excluded. It is immutable once published: the publisher
// writes it exactly once and every reader sees the same value.
type Dataset struct {
	header   []string
	records  []Record
	loadID   string
	loadedAt time.Time
	bytes    int64
}

// New builds a dataset from a header and its records. A fresh load ID is
// minted so each published dataset is distinguishable, for example as an
// HTTP ETag.
func New(header []string, records []Record) *Dataset {
	return &Dataset{
		header:   header,
		records:  records,
		loadID:   uuid.New().String(),
		loadedAt: time.Now().UTC(),
	}
}

// Header returns a copy of the field names, in source order.
func (d *Dataset) Header() []string {
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the i-th record, in source row order.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Records returns all records in source row order. The returned slice is a
// copy; the records themselves are shared and must not be modified.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// LoadID returns the unique ID minted when this dataset was built.
func (d *Dataset) LoadID() string {
	return d.loadID
}

// LoadedAt returns when this dataset was built, in UTC.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// SourceBytes returns how many bytes were read from the source file, or 0
// when the dataset was built directly from records.
func (d *Dataset) SourceBytes() int64 {
	return d.bytes
}

// MarshalJSON writes the dataset as a JSON array of records, preserving row
// order. An empty dataset serializes as [], never null.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	if len(d.records) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(d.records)
}
