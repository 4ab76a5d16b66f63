package vcf

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// NA is the cell value of a missing genotype. It matches R's NA_integer_.
const NA int32 = math.MinInt32

// Matrix is a variants x samples genotype matrix stored row-major.
type Matrix struct {
	Rows      int
	Cols      int
	Data      []int32  // len Rows*Cols
	RowLabels []string // CHROM:POS:REF:ALT, file order, not necessarily unique
	ColLabels []string // sample IDs, header order
}

// NewMatrix allocates a rows x cols matrix with every cell set to NA.
func NewMatrix(rows, cols int) *Matrix {
	m := &Matrix{
		Rows:      rows,
		Cols:      cols,
		Data:      make([]int32, rows*cols),
		RowLabels: make([]string, rows),
		ColLabels: make([]string, cols),
	}
	for i := range m.Data {
		m.Data[i] = NA
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	return m.Rows, m.Cols
}

// At returns the allele sum at (i, j) and false if the call is missing.
func (m *Matrix) At(i, j int) (int, bool) {
	v := m.Data[i*m.Cols+j]
	if v == NA {
		return 0, false
	}
	return int(v), true
}

// IsNA reports whether the cell at (i, j) is missing.
func (m *Matrix) IsNA(i, j int) bool {
	return m.Data[i*m.Cols+j] == NA
}

// Row returns row i. The slice aliases the matrix storage.
func (m *Matrix) Row(i int) []int32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Equal reports whether both matrices have the same shape, labels and cells.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	return slices.Equal(m.RowLabels, o.RowLabels) &&
		slices.Equal(m.ColLabels, o.ColLabels) &&
		slices.Equal(m.Data, o.Data)
}

// Checksum hashes the shape, labels and cells with xxhash.
func (m *Matrix) Checksum() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(m.Rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.Cols))
	d.Write(buf[:])
	for _, l := range m.ColLabels {
		d.WriteString(l)
		d.Write([]byte{0})
	}
	for _, l := range m.RowLabels {
		d.WriteString(l)
		d.Write([]byte{0})
	}
	for _, v := range m.Data {
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
		d.Write(buf[:4])
	}
	return d.Sum64()
}
