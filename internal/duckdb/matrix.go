package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/vcfmatrix/internal/vcf"
)

// ErrNotFound is returned when no matrix is stored for a source path.
var ErrNotFound = errors.New("matrix not found")

// WriteMatrix stores m under fp.Path, replacing any earlier copy.
// Sample and variant labels keep their order; missing calls are not stored.
// The replace runs in one transaction: on failure the earlier copy remains.
func (s *Store) WriteMatrix(fp FileFingerprint, m *vcf.Matrix) (err error) {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
				s.logger.Warn("rollback failed", zap.String("source", fp.Path), zap.Error(rbErr))
			}
		}
	}()

	if err := deleteSource(ctx, conn, fp.Path); err != nil {
		return err
	}

	stored, err := appendMatrix(conn, fp, m)
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("stored matrix",
		zap.String("source", fp.Path),
		zap.Int("variants", m.Rows),
		zap.Int("samples", m.Cols),
		zap.Int("calls", stored))
	return nil
}

// appendMatrix appends the labels, calls and source row of m on conn and
// returns the number of calls stored.
func appendMatrix(conn *sql.Conn, fp FileFingerprint, m *vcf.Matrix) (int, error) {
	if err := appendRows(conn, "samples", len(m.ColLabels), func(a *goduckdb.Appender, j int) error {
		return a.AppendRow(fp.Path, int32(j), m.ColLabels[j])
	}); err != nil {
		return 0, fmt.Errorf("append samples: %w", err)
	}

	if err := appendRows(conn, "variants", len(m.RowLabels), func(a *goduckdb.Appender, i int) error {
		return a.AppendRow(fp.Path, int64(i), m.RowLabels[i])
	}); err != nil {
		return 0, fmt.Errorf("append variants: %w", err)
	}

	stored := 0
	if err := appendRows(conn, "genotypes", len(m.Data), func(a *goduckdb.Appender, k int) error {
		v := m.Data[k]
		if v == vcf.NA {
			return nil
		}
		stored++
		return a.AppendRow(fp.Path, int64(k/m.Cols), int32(k%m.Cols), v)
	}); err != nil {
		return 0, fmt.Errorf("append genotypes: %w", err)
	}

	if err := appendRows(conn, "sources", 1, func(a *goduckdb.Appender, _ int) error {
		return a.AppendRow(fp.Path, fp.Size, fp.ModTime.UnixNano(), m.Checksum(), int64(m.Rows), int64(m.Cols))
	}); err != nil {
		return 0, fmt.Errorf("append source: %w", err)
	}
	return stored, nil
}

// appendRows runs fn for indices [0, n) against an Appender on table.
func appendRows(conn *sql.Conn, table string, n int, fn func(a *goduckdb.Appender, i int) error) error {
	if n == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := range n {
		if err := fn(appender, i); err != nil {
			return err
		}
	}
	return appender.Flush()
}

// DeleteSource removes every stored row of a source.
func (s *Store) DeleteSource(path string) error {
	return deleteSource(context.Background(), s.db, path)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteSource(ctx context.Context, db execer, path string) error {
	for _, table := range []string{"genotypes", "variants", "samples", "sources"} {
		col := "source"
		if table == "sources" {
			col = "path"
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+col+"=?", path); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// Source returns the stored description of a source, or ErrNotFound.
func (s *Store) Source(path string) (SourceInfo, error) {
	row := s.db.QueryRow(`SELECT path, size, mod_time_ns, checksum, n_variants, n_samples
		FROM sources WHERE path=?`, path)
	info, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceInfo{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return info, err
}

// IsCurrent reports whether a matrix for fp is stored and the file has not
// changed size or modification time since.
func (s *Store) IsCurrent(fp FileFingerprint) (bool, error) {
	info, err := s.Source(fp.Path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size == fp.Size && info.ModTime.Equal(fp.ModTime), nil
}

// ListSources returns every stored source ordered by path.
func (s *Store) ListSources() ([]SourceInfo, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time_ns, checksum, n_variants, n_samples
		FROM sources ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var infos []SourceInfo
	for rows.Next() {
		info, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return infos, nil
}

func scanSource(row interface{ Scan(dest ...any) error }) (SourceInfo, error) {
	var info SourceInfo
	var modNS, nVariants, nSamples int64
	if err := row.Scan(&info.Path, &info.Size, &modNS, &info.Checksum, &nVariants, &nSamples); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, err
		}
		return info, fmt.Errorf("scan source: %w", err)
	}
	info.ModTime = time.Unix(0, modNS)
	info.Variants = int(nVariants)
	info.Samples = int(nSamples)
	return info, nil
}

// LoadMatrix rebuilds the matrix stored for path. Cells with no stored
// call are NA.
func (s *Store) LoadMatrix(path string) (*vcf.Matrix, error) {
	info, err := s.Source(path)
	if err != nil {
		return nil, err
	}

	m := vcf.NewMatrix(info.Variants, info.Samples)

	if err := s.loadLabels(`SELECT idx, sample_id FROM samples WHERE source=? ORDER BY idx`, path, m.ColLabels); err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	if err := s.loadLabels(`SELECT idx, variant_id FROM variants WHERE source=? ORDER BY idx`, path, m.RowLabels); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}

	rows, err := s.db.Query(`SELECT variant_idx, sample_idx, genotype FROM genotypes WHERE source=?`, path)
	if err != nil {
		return nil, fmt.Errorf("query genotypes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i int64
		var j, v int32
		if err := rows.Scan(&i, &j, &v); err != nil {
			return nil, fmt.Errorf("scan genotype: %w", err)
		}
		if int(i) >= m.Rows || int(j) >= m.Cols {
			return nil, fmt.Errorf("genotype (%d,%d) outside %dx%d matrix", i, j, m.Rows, m.Cols)
		}
		m.Data[int(i)*m.Cols+int(j)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotypes: %w", err)
	}

	if got := m.Checksum(); got != info.Checksum {
		s.logger.Warn("stored matrix checksum mismatch",
			zap.String("source", path),
			zap.Uint64("want", info.Checksum),
			zap.Uint64("got", got))
	}
	return m, nil
}

func (s *Store) loadLabels(query, path string, dst []string) error {
	rows, err := s.db.Query(query, path)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int64
		var label string
		if err := rows.Scan(&idx, &label); err != nil {
			return err
		}
		if int(idx) >= len(dst) {
			return fmt.Errorf("label index %d out of range %d", idx, len(dst))
		}
		dst[idx] = label
	}
	return rows.Err()
}
