package tabular

// stream.go provides reader wrappers applied before parsing:
//
//   - bomSkipper: drops a UTF-8 BOM (0xEF 0xBB 0xBF) that Windows tools
//     prepend to exported files
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?' on the fly
//
// WrapReader applies both in the required order (BOM first) so the parser
// always sees clean UTF-8 with constant memory overhead.

import (
	"io"
	"unicode/utf8"
)

// WrapReader wraps r with BOM skipping and UTF-8 sanitization.
func WrapReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkipper(r))
}

// bomSkipper removes the UTF-8 byte order mark from the start of a stream,
// if present. Bytes read during the check that are not a BOM are replayed.
type bomSkipper struct {
	r       io.Reader
	checked bool
	held    []byte
	buf     [3]byte
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{r: r}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		n, err := io.ReadFull(b.r, b.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n == 3 && b.buf[0] == 0xEF && b.buf[1] == 0xBB && b.buf[2] == 0xBF {
			// BOM found, swallow it
		} else {
			b.held = b.buf[:n]
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(b.held) > 0 {
		n := copy(p, b.held)
		b.held = b.held[n:]
		return n, nil
	}

	return b.r.Read(p)
}

// utf8Sanitizer replaces bytes that are not part of a valid UTF-8 sequence
// with '?'. A single replacement byte keeps the output no longer than the
// input, so sanitization happens in place within the read buffer.
//
// Multi-byte sequences split across reads are carried over in pending and
// prepended to the next read.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	atEOF := err == io.EOF
	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], atEOF), err
}

// sanitize rewrites data in place and returns the number of bytes kept.
// When not at EOF, an incomplete trailing sequence is saved for the next
// read instead of being replaced.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && seqLen(data[read]) > len(data)-read {
				// Possibly the start of a sequence cut off by the buffer.
				s.pending = append(s.pending, data[read:]...)
				return write
			}
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// allASCII is the fast path: most delimited exports are pure ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// seqLen returns the expected byte length of a UTF-8 sequence starting with
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
