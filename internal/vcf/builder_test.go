package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, b *Builder, lines ...string) {
	t.Helper()
	for _, l := range lines {
		require.NoError(t, b.Feed(l))
	}
}

func TestBuilder_StateTransitions(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, StateAwaitingHeader, b.State())

	feedAll(t, b, "##fileformat=VCFv4.2", "##source=test")
	assert.Equal(t, StateAwaitingHeader, b.State())
	assert.Len(t, b.MetaLines(), 2)

	feedAll(t, b, testHeader+"\tS1\tS2")
	assert.Equal(t, StateHeaderSeen, b.State())
	assert.Equal(t, []string{"S1", "S2"}, b.SampleIDs())

	feedAll(t, b, "1\t10\t.\tA\tC\t.\t.\t.\tGT\t0/0\t1/1")
	assert.Equal(t, StateAccumulating, b.State())
	assert.Equal(t, 1, b.VariantCount())

	m, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, StateDone, b.State())
	assert.Equal(t, []int32{0, 2}, m.Data)

	assert.Error(t, b.Feed("1\t11\t.\tA\tC\t.\t.\t.\tGT\t0/0\t1/1"))
	_, err = b.Finish()
	assert.Error(t, err)
}

func TestBuilder_HeaderOnly(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, testHeader+"\tS1")

	m, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rows)
	assert.Equal(t, 1, m.Cols)
	assert.Empty(t, m.Data)
	assert.Equal(t, []string{"S1"}, m.ColLabels)
}

func TestBuilder_ZeroSamples(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b,
		testHeader,
		"1\t10\t.\tA\tC\t.\t.\t.\tGT",
		"1\t20\t.\tG\tT\t.\t.\t.\tGT",
	)

	m, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 0, m.Cols)
	assert.Empty(t, m.Data)
	assert.Equal(t, []string{"1:10:A:C", "1:20:G:T"}, m.RowLabels)
}

func TestBuilder_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"one field short", "1\t10\t.\tA\tC\t.\t.\t.\tGT\t0/1"},
		{"one field extra", "1\t10\t.\tA\tC\t.\t.\t.\tGT\t0/1\t0/1\t0/1"},
		{"space separated", "1 10 . A C . . . GT 0/1 0/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			feedAll(t, b, "##fileformat=VCFv4.2", testHeader+"\tS1\tS2")

			err := b.Feed(tt.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 3, pe.Line)
			assert.Contains(t, pe.Message, "expected 11 fields")
			assert.Equal(t, StateFailed, b.State())

			m, err := b.Finish()
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestBuilder_DataBeforeHeader(t *testing.T) {
	b := NewBuilder()
	err := b.Feed("1\t10\t.\tA\tC\t.\t.\t.\tGT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestBuilder_NoHeaderAtAll(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, "##fileformat=VCFv4.2")

	m, err := b.Finish()
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestBuilder_DuplicateHeader(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, testHeader+"\tS1")

	err := b.Feed(testHeader + "\tS2")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestBuilder_ShortHeader(t *testing.T) {
	b := NewBuilder()
	err := b.Feed("#CHROM\tPOS\tID\tREF\tALT")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestBuilder_MalformedGenotype(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, testHeader+"\tS1\tS2")

	err := b.Feed("1\t10\t.\tA\tC\t.\t.\t.\tGT\t0/1\t0/10")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedToken)
	assert.Contains(t, err.Error(), "sample S2")

	// The error is sticky, later lines are refused.
	assert.ErrorIs(t, b.Feed("1\t11\t.\tA\tC\t.\t.\t.\tGT\t0/1\t0/1"), ErrMalformedToken)
}

func TestBuilder_BlankDataLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"tabs only", "\t\t\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			feedAll(t, b, testHeader+"\tS1", "1\t10\t.\tA\tC\t.\t.\t.\tGT\t0/1")

			err := b.Feed(tt.line)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
			assert.Equal(t, StateFailed, b.State())

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 3, pe.Line)
		})
	}
}

func TestBuilder_BlankLineBeforeHeader(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.Feed(""), ErrMissingHeader)
}

func TestBuilder_ZeroSampleRowOfEmptyFields(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, testHeader, "\t\t\t\t\t\t\t\t\t")

	m, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Rows)
	assert.Equal(t, 0, m.Cols)
	assert.Equal(t, []string{":::"}, m.RowLabels)
}

func TestBuilder_MissingMapsToNA(t *testing.T) {
	b := NewBuilder()
	feedAll(t, b, testHeader+"\tS1\tS2\tS3", "1\t10\t.\tA\tC\t.\t.\t.\tGT\t./.\t0/1\t.")

	m, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, []int32{NA, 1, NA}, m.Data)
}

func TestVariantID(t *testing.T) {
	assert.Equal(t, "20:100:A:T", VariantID("20", "100", "A", "T"))
	assert.Equal(t, "chrX:5:AT:A,ATT", VariantID("chrX", "5", "AT", "A,ATT"))
}
