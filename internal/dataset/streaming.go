package dataset

// streaming.go holds the io.Reader layers applied to a source file before
// CSV parsing. They keep memory usage at O(buffer) regardless of file size:
//
//   - bomReader strips a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - countingReader tracks bytes consumed for post-load reporting
//
// newDecodeReader composes them in that order.

import (
	"io"
	"unicode/utf8"
)

// newDecodeReader wraps r with the transforms a source stream needs before
// it reaches the CSV parser. BOM stripping must come first; counting sits on
// the outside so it sees the sanitized stream.
func newDecodeReader(r io.Reader) *countingReader {
	return &countingReader{r: &utf8Sanitizer{r: &bomReader{r: r}}}
}

// bomReader skips the UTF-8 byte order mark if the stream starts with one.
// Windows tools commonly prepend it and encoding/csv would otherwise treat
// it as part of the first header name.
type bomReader struct {
	r       io.Reader
	checked bool
	buf     []byte // head bytes held back when no BOM was found
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			// BOM consumed, nothing to hold back.
		} else {
			b.buf = head[:n]
		}
	}
	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' as the stream is read.
// A multi-byte rune split across two reads is held back until the next call
// so it is not misreported as invalid. A buffer too small to ever complete a
// held-back rune fails with io.ErrShortBuffer instead of stalling; any
// buffer of utf8.UTFMax bytes or more is always safe.
//
// '?' is used instead of U+FFFD because it is a single byte: the sanitized
// stream never grows, so it can be rewritten in the caller's buffer in place.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := 0
	if len(s.pending) > 0 {
		// The held-back rune plus at least one fresh byte must fit, or no
		// call with this buffer can ever complete it.
		if len(p) <= len(s.pending) {
			return 0, io.ErrShortBuffer
		}
		off = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	// Fast path: most delimited data is plain ASCII.
	if allASCII(p[:n]) {
		return n, err
	}

	return s.scrub(p[:n], err == io.EOF), err
}

// scrub rewrites data in place, replacing invalid bytes with '?', and
// returns the number of bytes to hand to the caller. Unless atEOF, a
// trailing partial rune is moved to pending instead of being replaced.
//
// A fully valid buffer cannot end mid-rune (utf8.Valid would reject it), so
// the boundary case only arises on the byte-by-byte path.
func (s *utf8Sanitizer) scrub(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		return len(data)
	}

	w := 0
	for i := 0; i < len(data); {
		if !atEOF && startsPartialRune(data[i:]) {
			s.pending = append(s.pending, data[i:]...)
			return w
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		copy(data[w:], data[i:i+size])
		w += size
		i += size
	}
	return w
}

// allASCII reports whether every byte is below 0x80.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// startsPartialRune reports whether data opens a multi-byte sequence that is
// longer than data itself.
func startsPartialRune(data []byte) bool {
	return len(data) > 0 && seqLen(data[0]) > len(data)
}

// seqLen returns the declared length of a UTF-8 sequence whose first byte is
// b, or 0 for a bare continuation byte.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// countingReader tracks how many bytes were consumed from the stream.
type countingReader struct {
	r     io.Reader
	bytes int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.bytes += int64(n)
	return n, err
}
