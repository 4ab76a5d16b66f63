package vcf

import "errors"

// Fixed VCF columns preceding the per-sample genotype columns.
const (
	colChrom    = 0
	colPos      = 1
	colRef      = 3
	colAlt      = 4
	fixedFields = 9 // CHROM..FORMAT
)

// BuilderState is the position of a Builder in its life cycle.
type BuilderState int

const (
	StateAwaitingHeader BuilderState = iota // only meta lines seen so far
	StateHeaderSeen                         // sample IDs known, no variants yet
	StateAccumulating                       // at least one variant appended
	StateDone                               // matrix assembled
	StateFailed                             // a line was rejected
)

func (s BuilderState) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting-header"
	case StateHeaderSeen:
		return "header-seen"
	case StateAccumulating:
		return "accumulating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var errBuilderClosed = errors.New("builder no longer accepts input")

// Builder folds VCF lines into a flat genotype buffer and assembles the
// Matrix once input ends. It is not safe for concurrent use.
type Builder struct {
	state      BuilderState
	lineNumber int
	meta       []string
	samples    []string
	variants   []string
	codes      []int8 // row-major, len(variants)*len(samples)
	err        error
}

// NewBuilder returns a Builder awaiting the column header.
func NewBuilder() *Builder {
	return &Builder{state: StateAwaitingHeader}
}

// State returns the current state.
func (b *Builder) State() BuilderState {
	return b.state
}

// MetaLines returns the "##" lines seen so far.
func (b *Builder) MetaLines() []string {
	return b.meta
}

// SampleIDs returns the sample IDs from the column header.
func (b *Builder) SampleIDs() []string {
	return b.samples
}

// VariantCount returns the number of data lines accepted.
func (b *Builder) VariantCount() int {
	return len(b.variants)
}

// Feed consumes one line (terminator already stripped). The first error
// is sticky: every later call returns it.
func (b *Builder) Feed(line string) error {
	if b.err != nil {
		return b.err
	}
	if b.state == StateDone {
		return errBuilderClosed
	}
	b.lineNumber++

	var err error
	switch Classify(line) {
	case LineMeta:
		b.meta = append(b.meta, line)
	case LineColumnHeader:
		err = b.header(line)
	case LineData:
		err = b.data(line)
	}
	if err != nil {
		b.fail(err)
	}
	return err
}

func (b *Builder) header(line string) error {
	if b.state != StateAwaitingHeader {
		return newParseError(b.lineNumber, ErrSchemaMismatch, "duplicate column header line")
	}
	toks := Tokenize(line)
	if len(toks) < fixedFields {
		return newParseError(b.lineNumber, ErrSchemaMismatch,
			"column header has %d fields, expected at least %d", len(toks), fixedFields)
	}
	b.samples = append(make([]string, 0, len(toks)-fixedFields), toks[fixedFields:]...)
	b.state = StateHeaderSeen
	return nil
}

func (b *Builder) data(line string) error {
	if b.state == StateAwaitingHeader {
		return newParseError(b.lineNumber, ErrMissingHeader, "data line before column header")
	}
	toks := Tokenize(line)
	if want := fixedFields + len(b.samples); len(toks) != want {
		return newParseError(b.lineNumber, ErrSchemaMismatch,
			"expected %d fields (%d samples), found %d", want, len(b.samples), len(toks))
	}

	// Decode into the buffer first so a bad token leaves no partial row.
	n := len(b.codes)
	for j, tok := range toks[fixedFields:] {
		code, reason := decodeGenotype(tok)
		if reason != "" {
			b.codes = b.codes[:n]
			return newParseError(b.lineNumber, ErrMalformedToken, "sample %s: %s", b.samples[j], reason)
		}
		b.codes = append(b.codes, code)
	}
	b.variants = append(b.variants, VariantID(toks[colChrom], toks[colPos], toks[colRef], toks[colAlt]))
	b.state = StateAccumulating
	return nil
}

func (b *Builder) fail(err error) {
	b.err = err
	b.state = StateFailed
}

// Finish ends input and assembles the matrix. Missing codes become NA.
func (b *Builder) Finish() (*Matrix, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.state == StateDone {
		return nil, errBuilderClosed
	}
	if b.state == StateAwaitingHeader {
		err := newParseError(b.lineNumber, ErrMissingHeader, "no #CHROM header line found")
		b.fail(err)
		return nil, err
	}
	b.state = StateDone

	rows, cols := len(b.variants), len(b.samples)
	m := &Matrix{
		Rows:      rows,
		Cols:      cols,
		Data:      make([]int32, rows*cols),
		RowLabels: b.variants,
		ColLabels: b.samples,
	}
	for k, code := range b.codes {
		if code == Missing {
			m.Data[k] = NA
		} else {
			m.Data[k] = int32(code)
		}
	}
	b.codes = nil
	return m, nil
}

// VariantID formats a row label as CHROM:POS:REF:ALT.
func VariantID(chrom, pos, ref, alt string) string {
	return chrom + ":" + pos + ":" + ref + ":" + alt
}
