package output

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/inodb/vcfmatrix/internal/vcf"
)

// WriteTable renders rows under header as a borderless aligned table.
func WriteTable(w io.Writer, header []string, rows [][]any) error {
	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}

	t := table.NewWriter()
	t.AppendHeader(headerRow)
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// WriteMatrixTable renders m as a table, writing na for missing calls.
func WriteMatrixTable(w io.Writer, m *vcf.Matrix, na string) error {
	header := append([]string{"Variant"}, m.ColLabels...)
	rows := make([][]any, m.Rows)
	for i := range m.Rows {
		row := make([]any, 0, m.Cols+1)
		row = append(row, m.RowLabels[i])
		for _, v := range m.Row(i) {
			if v == vcf.NA {
				row = append(row, na)
			} else {
				row = append(row, strconv.Itoa(int(v)))
			}
		}
		rows[i] = row
	}
	return WriteTable(w, header, rows)
}
