package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vcfmatrix/internal/vcf"
)

const testVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
20	100	.	A	T	.	.	.	GT	0/1	./.
20	200	rs7	G	C	.	PASS	.	GT	1|1	0/0
`

// setupHome points HOME at a temp dir so no user config is read, and
// clears viper state left by earlier commands.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func writeVCF(t *testing.T, dir, content string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "calls.vcf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReadCommand(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)

	out, err := execute(t, "read", path)
	require.NoError(t, err)
	assert.Equal(t, "#Variant\tS1\tS2\n20:100:A:T\t1\tNA\n20:200:G:C\t2\t0\n", out)
}

func TestReadCommand_OutputFile(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)
	outPath := filepath.Join(home, "matrix.tsv")

	out, err := execute(t, "read", "-o", outPath, "--na", ".", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "20:100:A:T\t1\t.\n")
}

func TestReadCommand_Checksum(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)

	m, err := vcf.ReadVCF(path)
	require.NoError(t, err)

	out, err := execute(t, "read", "--checksum", path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("2\t2\t%016x\n", m.Checksum()), out)
}

func TestReadCommand_TableFormat(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)

	out, err := execute(t, "read", "-f", "table", path)
	require.NoError(t, err)
	assert.Contains(t, out, "20:200:G:C")

	_, err = execute(t, "read", "-f", "xml", path)
	require.Error(t, err)
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestReadCommand_SchemaMismatch(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF+"20\t300\t.\tC\tT\t.\t.\t.\tGT\t0/1\n")

	out, err := execute(t, "read", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, vcf.ErrSchemaMismatch)
	assert.NotContains(t, out, "20:100:A:T", "no partial matrix")
}

func TestLoadShowList(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)
	db := filepath.Join(home, "db", "gt.duckdb")

	_, err := execute(t, "load", "--db", db, path)
	require.NoError(t, err)

	// Unchanged file is skipped, --force reloads.
	_, err = execute(t, "load", "--db", db, path)
	require.NoError(t, err)
	_, err = execute(t, "load", "--db", db, "--force", path)
	require.NoError(t, err)

	direct, err := execute(t, "read", path)
	require.NoError(t, err)
	stored, err := execute(t, "show", "--db", db, path)
	require.NoError(t, err)
	assert.Equal(t, direct, stored)

	list, err := execute(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, list, "calls.vcf.gz")
	assert.Equal(t, 1, strings.Count(list, "calls.vcf.gz"))
}

func TestShowNotLoaded(t *testing.T) {
	home := setupHome(t)
	db := filepath.Join(home, "gt.duckdb")

	_, err := execute(t, "show", "--db", db, filepath.Join(home, "never.vcf.gz"))
	assert.Error(t, err)
}

func TestConfigGetDefault(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "config", "get", "output.na")
	require.NoError(t, err)
	assert.Equal(t, "NA\n", out)
}

func TestConfigSet(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, "config", "set", "read.max_line_length", "4096")
	require.NoError(t, err)
	assert.Contains(t, out, "read.max_line_length = 4096")

	data, err := os.ReadFile(filepath.Join(home, ".vcfmatrix.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_line_length: 4096")
}

func TestConfigSetRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "no.such", "1"}},
		{"non-numeric length", []string{"config", "set", "read.max_line_length", "big"}},
		{"zero length", []string{"config", "set", "read.max_line_length", "0"}},
		{"bad switch", []string{"config", "set", "log.verbose", "maybe"}},
		{"unknown get", []string{"config", "get", "no.such"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)
			_, err := execute(t, tt.args...)
			var ue *usageError
			assert.ErrorAs(t, err, &ue)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vcfmatrix version dev")
}

func TestRunExitCodes(t *testing.T) {
	home := setupHome(t)
	path := writeVCF(t, home, testVCF)

	assert.Equal(t, ExitUsage, run([]string{"read"}))
	assert.Equal(t, ExitUsage, run([]string{"read", "--no-such-flag", path}))
	assert.Equal(t, ExitError, run([]string{"read", filepath.Join(home, "missing.vcf.gz")}))
	assert.Equal(t, ExitSuccess, run([]string{"read", "--checksum", path}))
}
