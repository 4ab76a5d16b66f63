package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vcfmatrix/internal/duckdb"
	"github.com/inodb/vcfmatrix/internal/output"
	"github.com/inodb/vcfmatrix/internal/vcf"
)

func newLoadCmd() *cobra.Command {
	var (
		force   bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "load <vcf-file>...",
		Short: "Read VCF files and store their genotype matrices in DuckDB",
		Long: `Read one or more VCF files and store each matrix in the DuckDB database.
Files whose size and modification time match the stored copy are skipped
unless --force is given. Several files are read concurrently.`,
		Example: `  vcfmatrix load calls.vcf.gz
  vcfmatrix load --db /data/gt.duckdb --force chr*.vcf.gz`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return &usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args, force, workers)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reload even if the stored matrix is current")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Files read in parallel (default: number of CPUs)")

	return cmd
}

func runLoad(paths []string, force bool, workers int) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		toRead []string
		fps    []duckdb.FileFingerprint
	)
	for _, path := range paths {
		fp, err := duckdb.StatFile(path)
		if err != nil {
			return fmt.Errorf("stat vcf file: %w", err)
		}
		if !force {
			current, err := store.IsCurrent(fp)
			if err != nil {
				return err
			}
			if current {
				logger.Info("stored matrix is current, skipping", zap.String("source", fp.Path))
				fmt.Fprintf(os.Stderr, "%s is already loaded (use --force to reload)\n", path)
				continue
			}
		}
		toRead = append(toRead, path)
		fps = append(fps, fp)
	}

	results := newMatrixReader().ParallelRead(vcf.ReadItems(toRead), workers)
	return vcf.OrderedCollect(results, func(r vcf.ReadResult) error {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Path, r.Err)
		}
		fp := fps[r.Seq]
		if err := store.WriteMatrix(fp, r.Matrix); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Loaded %d variants x %d samples from %s (%s)\n",
			r.Matrix.Rows, r.Matrix.Cols, r.Path, formatSize(fp.Size))
		return nil
	})
}

func newShowCmd() *cobra.Command {
	var outputFile, format string

	cmd := &cobra.Command{
		Use:   "show <vcf-file>",
		Short: "Print a genotype matrix stored in DuckDB",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := store.LoadMatrix(abs)
			if err != nil {
				return err
			}
			return writeMatrix(cmd.OutOrStdout(), outputFile, format, m)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format: tsv, table")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List genotype matrices stored in DuckDB",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sources, err := store.ListSources()
			if err != nil {
				return err
			}

			rows := make([][]any, len(sources))
			for i, s := range sources {
				rows[i] = []any{s.Path, s.Variants, s.Samples, formatSize(s.Size), fmt.Sprintf("%016x", s.Checksum)}
			}
			return output.WriteTable(cmd.OutOrStdout(),
				[]string{"Source", "Variants", "Samples", "Size", "Checksum"}, rows)
		},
	}
}

func openStore() (*duckdb.Store, error) {
	store, err := duckdb.Open(dbPath())
	if err != nil {
		return nil, err
	}
	store.SetLogger(logger)
	return store, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
