// Package sqlite exports a built catalog into a SQLite database with the
// ref_peak, ref_region and ref_link tables. Each write replaces the
// previous contents of its table in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/peakmap/internal/utils/ptr"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/regions"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS ref_peak (
	peak_id                 TEXT PRIMARY KEY,
	peak_name               TEXT NOT NULL,
	alt_names               TEXT,
	height                  INTEGER,
	location                TEXT,
	approximate_coordinates TEXT,
	longitude               REAL,
	latitude                REAL,
	dms_longitude           TEXT,
	dms_latitude            TEXT,
	coordinate_notes        TEXT,
	region_id               TEXT
);
CREATE INDEX IF NOT EXISTS idx_ref_peak_region ON ref_peak(region_id);

CREATE TABLE IF NOT EXISTS ref_region (
	region_id        TEXT PRIMARY KEY,
	parent_region_id TEXT,
	shadowed         INTEGER NOT NULL,
	area             REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS ref_link (
	pair        TEXT NOT NULL,
	source_id   TEXT NOT NULL,
	target_id   TEXT,
	target_name TEXT,
	similarity  REAL,
	origin      TEXT NOT NULL,
	PRIMARY KEY (pair, source_id)
);
`

// Store is an open export database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &errors.ValidationError{Field: "path", Message: "database path is empty"}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("mkdir", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WritePeaks replaces the ref_peak table.
func (s *Store) WritePeaks(ctx context.Context, peaks []catalog.Peak) error {
	return s.replace(ctx, "ref_peak", "DELETE FROM ref_peak", `
		INSERT INTO ref_peak (peak_id, peak_name, alt_names, height, location,
			approximate_coordinates, longitude, latitude, dms_longitude,
			dms_latitude, coordinate_notes, region_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(peaks), func(i int) []any {
			p := &peaks[i]
			return []any{
				p.ID, p.Name, nullable(strings.Join(p.AltNames, ",")), ptr.Value(p.Height),
				nullable(p.Location), nullable(ptr.Flag(p.Approximate)),
				ptr.Value(p.Longitude), ptr.Value(p.Latitude), nullable(p.DMSLongitude),
				nullable(p.DMSLatitude), nullable(p.CoordinateNotes), nullable(p.RegionID),
			}
		})
}

// WriteRegions replaces the ref_region table.
func (s *Store) WriteRegions(ctx context.Context, rs []regions.Region) error {
	return s.replace(ctx, "ref_region", "DELETE FROM ref_region", `
		INSERT INTO ref_region (region_id, parent_region_id, shadowed, area)
		VALUES (?, ?, ?, ?)`,
		len(rs), func(i int) []any {
			shadowed := 0
			if rs[i].Shadowed {
				shadowed = 1
			}
			return []any{rs[i].ID, nullable(rs[i].ParentID), shadowed, rs[i].Area}
		})
}

// WriteLinks replaces the ref_link rows of one source pair.
func (s *Store) WriteLinks(ctx context.Context, pair string, links linkage.LinkMap) error {
	sorted := links.Sorted()
	return s.replace(ctx, "ref_link", "DELETE FROM ref_link WHERE pair = ?", `
		INSERT INTO ref_link (pair, source_id, target_id, target_name, similarity, origin)
		VALUES (?, ?, ?, ?, ?, ?)`,
		len(sorted), func(i int) []any {
			l := &sorted[i]
			var sim any
			if l.Origin == linkage.OriginMatch {
				sim = l.Similarity
			}
			return []any{pair, l.SourceID, nullable(l.TargetID), nullable(l.TargetName), sim, string(l.Origin)}
		}, pair)
}

// Count returns the number of rows in one of the export tables.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case "ref_peak", "ref_region", "ref_link":
	default:
		return 0, &errors.ValidationError{Field: "table", Value: table, Message: "unknown table"}
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, errors.WrapIO("query", s.path, err)
}

// PeakRegion returns the region_id stored for a peak.
func (s *Store) PeakRegion(ctx context.Context, peakID string) (string, error) {
	var region sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT region_id FROM ref_peak WHERE peak_id = ?", peakID).Scan(&region)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NewNotFoundError("peak", peakID)
	}
	if err != nil {
		return "", errors.WrapIO("query", s.path, err)
	}
	return region.String, nil
}

// replace runs clear and one insert per row in a single transaction.
func (s *Store) replace(ctx context.Context, table, clear, insert string, n int, row func(int) []any, clearArgs ...any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", s.path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, clear, clearArgs...); err != nil {
		return errors.WrapIO("clear "+table, s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.WrapIO("prepare "+table, s.path, err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return errors.WrapIO("insert "+table, s.path, err)
		}
	}

	return errors.WrapIO("commit", s.path, tx.Commit())
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
