// Package main provides the vcfmatrix command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vcfmatrix/internal/vcf"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is built from --verbose before any subcommand runs.
var logger = zap.NewNop()

// usageError marks errors caused by bad arguments or flags.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	defer func() { logger.Sync() }()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		if errors.Is(err, vcf.ErrCannotOpen) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "vcfmatrix",
		Short: "Read compressed VCF files into genotype matrices",
		Long: `vcfmatrix reads a gzip/bgzip-compressed VCF file into a variants x samples
matrix of GT allele sums (0, 1, 2, or NA for missing calls).`,
		Example: `  vcfmatrix read calls.vcf.gz                 # matrix as TSV on stdout
  vcfmatrix read --checksum calls.vcf.gz      # dimensions and checksum
  vcfmatrix load calls.vcf.gz                 # store in DuckDB
  vcfmatrix show calls.vcf.gz                 # print a stored matrix`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(viper.GetBool("log.verbose"))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.vcfmatrix.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Int("max-line-length", vcf.MaxLineLength, "Maximum VCF line length in characters")
	pf.String("na", "NA", "Text written for missing genotype calls")
	pf.String("db", "", "DuckDB database path (default: ~/.vcfmatrix/matrix.duckdb)")

	viper.BindPFlag("log.verbose", pf.Lookup("verbose"))
	viper.BindPFlag("read.max_line_length", pf.Lookup("max-line-length"))
	viper.BindPFlag("output.na", pf.Lookup("na"))
	viper.BindPFlag("db.path", pf.Lookup("db"))

	root.AddCommand(newReadCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vcfmatrix version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// initConfig loads ~/.vcfmatrix.yaml (or cfgFile) and VCFMATRIX_* env vars.
func initConfig(cfgFile string) error {
	viper.SetDefault("read.max_line_length", vcf.MaxLineLength)
	viper.SetDefault("output.na", "NA")
	viper.SetDefault("db.path", defaultDBPath())

	viper.SetEnvPrefix("VCFMATRIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".vcfmatrix")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultDBPath returns ~/.vcfmatrix/matrix.duckdb.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "matrix.duckdb"
	}
	return filepath.Join(home, ".vcfmatrix", "matrix.duckdb")
}

// dbPath returns the configured database path with a leading ~ expanded.
func dbPath() string {
	p := viper.GetString("db.path")
	if p == "" {
		return defaultDBPath()
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
