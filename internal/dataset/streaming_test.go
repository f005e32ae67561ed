package dataset

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "file with BOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,count")...),
			want:  "name,count",
		},
		{
			name:  "file without BOM",
			input: []byte("name,count"),
			want:  "name,count",
		},
		{
			name:  "empty file",
			input: []byte{},
			want:  "",
		},
		{
			name:  "only BOM",
			input: []byte{0xEF, 0xBB, 0xBF},
			want:  "",
		},
		{
			name:  "partial BOM at start",
			input: []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			want:  string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
		{
			name:  "file shorter than BOM",
			input: []byte{'a', 'b'},
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &bomReader{r: bytes.NewReader(tt.input)}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "valid ASCII",
			input: []byte("name,count"),
			want:  "name,count",
		},
		{
			name:  "valid multibyte",
			input: []byte("stück,5"),
			want:  "stück,5",
		},
		{
			name:  "invalid byte replaced",
			input: []byte{'g', 'o', 0x80, 'l', 'd'},
			want:  "go?ld",
		},
		{
			name:  "truncated rune at end of input",
			input: []byte{'g', 'o', 0xE4, 0xB8},
			want:  "go??",
		},
		{
			name:  "empty input",
			input: []byte{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &utf8Sanitizer{r: bytes.NewReader(tt.input)}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", string(got), tt.want)
			}
		})
	}
}

// chunkReader delivers its input in fixed-size pieces so multi-byte runes
// can be split across Read calls.
type chunkReader struct {
	data []byte
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.size
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	n = copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestUTF8SanitizerSplitRune(t *testing.T) {
	// "日" is 3 bytes; a 2-byte chunk size forces it across a read boundary.
	input := []byte("a日b")
	r := &utf8Sanitizer{r: &chunkReader{data: input, size: 2}}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "a日b" {
		t.Errorf("got %q, want %q", string(got), "a日b")
	}
}

func TestUTF8SanitizerShortBuffer(t *testing.T) {
	// "日" is 3 bytes; 2-byte chunks force a hold-back, and a 2-byte caller
	// buffer can never complete it. The reader must fail, not spin.
	r := &utf8Sanitizer{r: &chunkReader{data: []byte("日x"), size: 2}}

	p := make([]byte, 2)
	var err error
	for i := 0; i < 4 && err == nil; i++ {
		_, err = r.Read(p)
	}
	if err != io.ErrShortBuffer {
		t.Errorf("err = %v, want io.ErrShortBuffer", err)
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	r := &countingReader{r: strings.NewReader(input)}

	buf := make([]byte, 100)
	total := 0
	for {
		n, err := r.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if total != len(input) {
		t.Errorf("total read = %d, want %d", total, len(input))
	}
	if r.bytes != int64(len(input)) {
		t.Errorf("bytes = %d, want %d", r.bytes, len(input))
	}
}

func TestDecodeReader(t *testing.T) {
	// BOM plus an invalid byte: the BOM must be stripped and the byte replaced.
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'g', 'o', 0x80, 'l', 'd'}...)

	r := newDecodeReader(bytes.NewReader(input))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(got) != "go?ld" {
		t.Errorf("got %q, want %q", string(got), "go?ld")
	}
	if r.bytes == 0 {
		t.Error("bytes should be > 0")
	}
}
