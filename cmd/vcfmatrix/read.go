package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vcfmatrix/internal/output"
	"github.com/inodb/vcfmatrix/internal/vcf"
)

func newReadCmd() *cobra.Command {
	var (
		outputFile string
		format     string
		checksum   bool
	)

	cmd := &cobra.Command{
		Use:   "read <vcf-file>",
		Short: "Read a VCF file and write its genotype matrix as TSV",
		Long: `Read a gzip/bgzip-compressed VCF file (use '-' for stdin) and write the
variants x samples genotype matrix as tab-separated text. Row labels are
CHROM:POS:REF:ALT, column labels are sample IDs.`,
		Example: `  vcfmatrix read calls.vcf.gz
  vcfmatrix read -o matrix.tsv calls.vcf.gz
  vcfmatrix read --checksum calls.vcf.gz
  zcat calls.vcf.gz | vcfmatrix read -`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMatrixReader().Read(args[0])
			if err != nil {
				return err
			}
			if checksum {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%016x\n", m.Rows, m.Cols, m.Checksum())
				return nil
			}
			return writeMatrix(cmd.OutOrStdout(), outputFile, format, m)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format: tsv, table")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "Print rows, columns and checksum instead of the matrix")

	return cmd
}

// newMatrixReader returns a reader with the configured settings.
func newMatrixReader() *vcf.Reader {
	r := vcf.NewReader()
	r.SetLogger(logger)
	r.SetMaxLineLength(viper.GetInt("read.max_line_length"))
	return r
}

// writeMatrix writes m to outputFile, or to stdout when it is empty.
func writeMatrix(stdout io.Writer, outputFile, format string, m *vcf.Matrix) error {
	if format != "tsv" && format != "table" {
		return &usageError{fmt.Errorf("unknown output format %q", format)}
	}

	out := stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	na := viper.GetString("output.na")
	if format == "table" {
		return output.WriteMatrixTable(out, m, na)
	}

	w := output.NewTabWriter(out)
	w.SetNA(na)
	if err := w.WriteMatrix(m); err != nil {
		return fmt.Errorf("writing matrix: %w", err)
	}
	return nil
}
