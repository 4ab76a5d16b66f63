// Package vcf reads gzip/bgzip-compressed VCF files into a dense
// variants x samples genotype matrix.
package vcf

import (
	"io"

	"go.uber.org/zap"
)

// Reader turns a VCF stream into a Matrix in a single synchronous pass.
type Reader struct {
	maxLineLength int
	logger        *zap.Logger
}

// NewReader creates a Reader with the default line length limit.
func NewReader() *Reader {
	return &Reader{
		maxLineLength: MaxLineLength,
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger for debug and info messages.
func (r *Reader) SetLogger(l *zap.Logger) {
	r.logger = l
}

// SetMaxLineLength overrides MaxLineLength. Values <= 0 restore the default.
func (r *Reader) SetMaxLineLength(n int) {
	if n <= 0 {
		n = MaxLineLength
	}
	r.maxLineLength = n
}

// ReadVCF reads the VCF file at path with default settings.
func ReadVCF(path string) (*Matrix, error) {
	return NewReader().Read(path)
}

// Read opens path ("-" for stdin) and builds its genotype matrix.
// On any error no matrix is returned.
func (r *Reader) Read(path string) (*Matrix, error) {
	src, err := OpenSource(path, r.maxLineLength)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return r.build(src, r.logger.With(zap.String("path", path)))
}

// ReadFrom builds a genotype matrix from a compressed or plain stream.
func (r *Reader) ReadFrom(in io.Reader) (*Matrix, error) {
	src, err := NewSource(in, r.maxLineLength)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return r.build(src, r.logger)
}

func (r *Reader) build(src *LineSource, log *zap.Logger) (*Matrix, error) {
	b := NewBuilder()
	for {
		line, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		before := b.State()
		if err := b.Feed(line); err != nil {
			return nil, err
		}
		if before == StateAwaitingHeader && b.State() == StateHeaderSeen {
			log.Debug("found column header",
				zap.Int("line", src.LineNumber()),
				zap.Int("samples", len(b.SampleIDs())),
				zap.Int("meta_lines", len(b.MetaLines())))
		}
	}

	m, err := b.Finish()
	if err != nil {
		return nil, err
	}
	log.Info("read vcf",
		zap.Int("variants", m.Rows),
		zap.Int("samples", m.Cols))
	return m, nil
}
