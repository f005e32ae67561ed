package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readAll drains a Reader, failing the test on a stream error.
func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	var records []Record
	for r.Next() {
		records = append(records, r.Record())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	return records
}

func TestReaderBasic(t *testing.T) {
	r, err := NewReader(strings.NewReader("name,count\ngold,5\nsilver,3\n"), ',')
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	header := r.Header()
	if len(header) != 2 || header[0] != "name" || header[1] != "count" {
		t.Fatalf("Header() = %v, want [name count]", header)
	}

	records := readAll(t, r)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	want := []map[string]string{
		{"name": "gold", "count": "5"},
		{"name": "silver", "count": "3"},
	}
	for i, w := range want {
		for field, value := range w {
			got, found := records[i].Get(field)
			if !found {
				t.Errorf("record %d missing field %q", i, field)
				continue
			}
			if got != value {
				t.Errorf("record %d field %q = %q, want %q", i, field, got, value)
			}
		}
	}
}

func TestReaderRowShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		records int
		check   func(t *testing.T, records []Record)
	}{
		{
			name:    "quoted field with embedded delimiter",
			input:   "name,desc\nwidget,\"small, round\"\n",
			records: 1,
			check: func(t *testing.T, records []Record) {
				if v, _ := records[0].Get("desc"); v != "small, round" {
					t.Errorf("desc = %q, want %q", v, "small, round")
				}
			},
		},
		{
			name:    "quoted field with embedded newline",
			input:   "name,desc\nwidget,\"line one\nline two\"\n",
			records: 1,
			check: func(t *testing.T, records []Record) {
				if v, _ := records[0].Get("desc"); v != "line one\nline two" {
					t.Errorf("desc = %q, want %q", v, "line one\nline two")
				}
			},
		},
		{
			name:    "escaped quote inside quoted field",
			input:   "name,desc\nwidget,\"say \"\"hi\"\"\"\n",
			records: 1,
			check: func(t *testing.T, records []Record) {
				if v, _ := records[0].Get("desc"); v != `say "hi"` {
					t.Errorf("desc = %q, want %q", v, `say "hi"`)
				}
			},
		},
		{
			name:    "CRLF line endings",
			input:   "name,count\r\ngold,5\r\nsilver,3\r\n",
			records: 2,
			check: func(t *testing.T, records []Record) {
				if v, _ := records[1].Get("count"); v != "3" {
					t.Errorf("count = %q, want %q", v, "3")
				}
			},
		},
		{
			name:    "blank lines are skipped",
			input:   "name,count\n\ngold,5\n\n",
			records: 1,
			check:   func(t *testing.T, records []Record) {},
		},
		{
			name:    "no trailing newline",
			input:   "name,count\ngold,5",
			records: 1,
			check:   func(t *testing.T, records []Record) {},
		},
		{
			name:    "short row yields missing keys",
			input:   "a,b,c\n1,2\n",
			records: 1,
			check: func(t *testing.T, records []Record) {
				if _, found := records[0].Get("c"); found {
					t.Error("short row should not have field c")
				}
				if v, _ := records[0].Get("b"); v != "2" {
					t.Errorf("b = %q, want %q", v, "2")
				}
			},
		},
		{
			name:    "long row discards extra values",
			input:   "a,b\n1,2,3,4\n",
			records: 1,
			check: func(t *testing.T, records []Record) {
				if records[0].Len() != 2 {
					t.Errorf("Len() = %d, want 2", records[0].Len())
				}
			},
		},
		{
			name:    "header only",
			input:   "a,b\n",
			records: 0,
			check:   func(t *testing.T, records []Record) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input), ',')
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			records := readAll(t, r)
			if len(records) != tt.records {
				t.Fatalf("got %d records, want %d", len(records), tt.records)
			}
			tt.check(t, records)
		})
	}
}

func TestReaderMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unterminated quote",
			input: "name,count\n\"gold,5\n",
		},
		{
			name:  "bare quote in field",
			input: "name,count\ngo\"ld,5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input), ',')
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			for r.Next() {
			}
			if err := r.Err(); !errors.Is(err, ErrMalformedRow) {
				t.Errorf("Err() = %v, want ErrMalformedRow", err)
			}
			// The stream stays ended after an error.
			if r.Next() {
				t.Error("Next() = true after a stream error")
			}
		})
	}
}

func TestReaderEmptyInput(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), ',')
	if !errors.Is(err, ErrMalformedRow) {
		t.Errorf("NewReader() error = %v, want ErrMalformedRow", err)
	}
}

func TestReaderCustomDelimiter(t *testing.T) {
	r, err := NewReader(strings.NewReader("name;count\ngold;5\n"), ';')
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	records := readAll(t, r)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if v, _ := records[0].Get("count"); v != "5" {
		t.Errorf("count = %q, want %q", v, "5")
	}
}

// writeSource writes content to a temp file and returns its path.
func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing source file: %v", err)
	}
	return path
}

func TestFileLoader(t *testing.T) {
	loader := &FileLoader{Path: writeSource(t, "name,count\ngold,5\nsilver,3\n")}

	d, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	if h := d.Header(); len(h) != 2 || h[0] != "name" {
		t.Errorf("Header() = %v, want [name count]", h)
	}
	if v, _ := d.Record(0).Get("name"); v != "gold" {
		t.Errorf("record 0 name = %q, want %q", v, "gold")
	}
	if d.SourceBytes() == 0 {
		t.Error("SourceBytes() = 0, want > 0")
	}
	if d.LoadID() == "" {
		t.Error("LoadID() is empty")
	}
}

func TestFileLoaderBOM(t *testing.T) {
	content := string([]byte{0xEF, 0xBB, 0xBF}) + "name,count\ngold,5\n"
	loader := &FileLoader{Path: writeSource(t, content)}

	d, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if h := d.Header(); h[0] != "name" {
		t.Errorf("first header field = %q, want %q (BOM must be stripped)", h[0], "name")
	}
}

func TestFileLoaderHeaderOnly(t *testing.T) {
	loader := &FileLoader{Path: writeSource(t, "name,count\n")}

	d, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestFileLoaderDelimiter(t *testing.T) {
	loader := &FileLoader{Path: writeSource(t, "name|count\ngold|5\n"), Comma: '|'}

	d, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, _ := d.Record(0).Get("count"); v != "5" {
		t.Errorf("count = %q, want %q", v, "5")
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	loader := &FileLoader{Path: filepath.Join(t.TempDir(), "absent.csv")}

	_, err := loader.Load(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Load() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestFileLoaderMalformed(t *testing.T) {
	loader := &FileLoader{Path: writeSource(t, "name,count\n\"gold,5\n")}

	_, err := loader.Load(context.Background())
	if !errors.Is(err, ErrMalformedRow) {
		t.Errorf("Load() error = %v, want ErrMalformedRow", err)
	}
}

func TestFileLoaderEmptyFile(t *testing.T) {
	loader := &FileLoader{Path: writeSource(t, "")}

	_, err := loader.Load(context.Background())
	if !errors.Is(err, ErrMalformedRow) {
		t.Errorf("Load() error = %v, want ErrMalformedRow", err)
	}
}

func TestFileLoaderCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,count\n")
	for i := 0; i < contextCheckInterval*3; i++ {
		sb.WriteString("gold,5\n")
	}
	loader := &FileLoader{Path: writeSource(t, sb.String())}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestFileLoaderRecordCount(t *testing.T) {
	// Record count must equal the number of non-header data lines.
	const rows = 257
	var sb strings.Builder
	sb.WriteString("id,value\n")
	for i := 0; i < rows; i++ {
		sb.WriteString("x,y\n")
	}
	loader := &FileLoader{Path: writeSource(t, sb.String())}

	d, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Len() != rows {
		t.Errorf("Len() = %d, want %d", d.Len(), rows)
	}
}
