// Package output provides genotype matrix output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/inodb/vcfmatrix/internal/vcf"
)

// DefaultNA is written for missing genotype calls.
const DefaultNA = "NA"

// TabWriter writes a genotype matrix in tab-delimited format: one header
// line with the sample IDs, then one line per variant.
type TabWriter struct {
	w  *bufio.Writer
	na string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w:  bufio.NewWriter(w),
		na: DefaultNA,
	}
}

// SetNA sets the text written for missing calls.
func (tw *TabWriter) SetNA(na string) {
	tw.na = na
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader(m *vcf.Matrix) error {
	tw.w.WriteString("#Variant")
	for _, s := range m.ColLabels {
		tw.w.WriteByte('\t')
		tw.w.WriteString(s)
	}
	return tw.w.WriteByte('\n')
}

// WriteRow writes row i of m.
func (tw *TabWriter) WriteRow(m *vcf.Matrix, i int) error {
	tw.w.WriteString(m.RowLabels[i])
	var num [12]byte
	for _, v := range m.Row(i) {
		tw.w.WriteByte('\t')
		if v == vcf.NA {
			tw.w.WriteString(tw.na)
			continue
		}
		tw.w.Write(strconv.AppendInt(num[:0], int64(v), 10))
	}
	return tw.w.WriteByte('\n')
}

// WriteMatrix writes the header and every row, then flushes.
func (tw *TabWriter) WriteMatrix(m *vcf.Matrix) error {
	if err := tw.WriteHeader(m); err != nil {
		return err
	}
	for i := range m.Rows {
		if err := tw.WriteRow(m, i); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
