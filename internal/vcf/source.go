package vcf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxLineLength is the default upper bound on a single line, terminator excluded.
const MaxLineLength = 1000000

// Magic numbers used to detect the compression of an input stream.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// LineSource yields the lines of a (possibly compressed) byte stream.
type LineSource struct {
	scanner    *bufio.Scanner
	closers    []io.Closer
	maxLength  int
	lineNumber int
}

// OpenSource opens path for line reading. Use "-" for stdin.
// gzip (including bgzip), zstd and lz4 frame streams are detected by their
// magic bytes; anything else is read as plain text.
func OpenSource(path string, maxLineLength int) (*LineSource, error) {
	var file *os.File
	if path == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, &ParseError{Kind: ErrCannotOpen, Message: err.Error()}
		}
		file = f
	}

	s, err := newDecompressedSource(file, maxLineLength)
	if err != nil {
		if file != os.Stdin {
			file.Close()
		}
		return nil, &ParseError{Kind: ErrCannotOpen, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if file != os.Stdin {
		s.closers = append(s.closers, file)
	}
	return s, nil
}

// NewSource reads lines from r, decompressing it if a known magic number is found.
func NewSource(r io.Reader, maxLineLength int) (*LineSource, error) {
	s, err := newDecompressedSource(r, maxLineLength)
	if err != nil {
		return nil, &ParseError{Kind: ErrCannotOpen, Message: err.Error()}
	}
	return s, nil
}

func newDecompressedSource(r io.Reader, maxLineLength int) (*LineSource, error) {
	if maxLineLength <= 0 {
		maxLineLength = MaxLineLength
	}
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read magic bytes: %w", err)
	}

	s := &LineSource{maxLength: maxLineLength}
	var stream io.Reader
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		s.closers = append(s.closers, gz)
		stream = gz
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		rc := zr.IOReadCloser()
		s.closers = append(s.closers, rc)
		stream = rc
	case bytes.HasPrefix(magic, lz4Magic):
		stream = lz4.NewReader(br)
	default:
		stream = br
	}

	sc := bufio.NewScanner(stream)
	// Room for one over-long line plus a CRLF so the length check in Next
	// sees it instead of the scanner's generic ErrTooLong.
	limit := maxLineLength + 3
	sc.Buffer(make([]byte, 0, min(limit, 64*1024)), limit)
	sc.Split(scanLines)
	s.scanner = sc
	return s, nil
}

// scanLines is a bufio.SplitFunc ending lines at "\n", "\r" or "\r\n".
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Lone trailing '\r': need one more byte to tell "\r" from "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Next returns the next line without its terminator, or io.EOF.
func (s *LineSource) Next() (string, error) {
	if !s.scanner.Scan() {
		err := s.scanner.Err()
		if err == nil {
			return "", io.EOF
		}
		if errors.Is(err, bufio.ErrTooLong) {
			return "", newParseError(s.lineNumber+1, ErrMalformedToken,
				"line exceeds maximum length of %d characters", s.maxLength)
		}
		return "", fmt.Errorf("read line %d: %w", s.lineNumber+1, err)
	}
	s.lineNumber++
	line := s.scanner.Bytes()
	if len(line) > s.maxLength {
		return "", newParseError(s.lineNumber, ErrMalformedToken,
			"line exceeds maximum length of %d characters", s.maxLength)
	}
	return string(line), nil
}

// LineNumber returns the 1-based number of the last line returned by Next.
func (s *LineSource) LineNumber() int {
	return s.lineNumber
}

// Close releases the decompressor and the underlying file.
func (s *LineSource) Close() error {
	var err error
	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	s.closers = nil
	return err
}
