// Package catalog keeps a ledger of pipeline runs in SQLite or Postgres.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/notargets/gofoam/geometry3D/brep"
)

// Run is one executed command.
type Run struct {
	ID          int64
	Step        string // walls, finalize, mesh
	Input       string
	Outputs     []string
	Counts      map[string]int // entity counts of the primary output, by kind name
	Fingerprint string         // of the primary output
	Duration    time.Duration
	Created     time.Time
}

// CountsOf returns the entity counts of s keyed by kind name.
func CountsOf(s *brep.Store) map[string]int {
	counts := make(map[string]int)
	for k, n := range s.Counts() {
		counts[k.String()] = n
	}
	return counts
}

type dialect struct {
	driver   string
	idColumn string
}

func (d dialect) placeholder(i int) string {
	if d.driver == "pgx" {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

var (
	sqliteDialect   = dialect{driver: "sqlite", idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	postgresDialect = dialect{driver: "pgx", idColumn: "BIGSERIAL PRIMARY KEY"}
)

type Catalog struct {
	db *sql.DB
	d  dialect
}

// Open connects to a postgres:// DSN, or else to a SQLite file at dsn, and
// creates the runs table when missing.
func Open(ctx context.Context, dsn string) (*Catalog, error) {
	d := sqliteDialect
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		d = postgresDialect
	} else if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS runs (
		id ` + d.idColumn + `,
		step TEXT NOT NULL,
		input TEXT NOT NULL,
		outputs TEXT NOT NULL,
		counts TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		duration_ns BIGINT NOT NULL,
		created TEXT NOT NULL
	)`
	if _, err = db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Catalog{db: db, d: d}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts r and returns its id. A zero Created is set to now.
func (c *Catalog) Record(ctx context.Context, r Run) (int64, error) {
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	outputs, err := json.Marshal(r.Outputs)
	if err != nil {
		return 0, err
	}
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return 0, err
	}
	ph := make([]string, 7)
	for i := range ph {
		ph[i] = c.d.placeholder(i + 1)
	}
	q := `INSERT INTO runs (step, input, outputs, counts, fingerprint, duration_ns, created)
		VALUES (` + strings.Join(ph, ", ") + `) RETURNING id`
	var id int64
	err = c.db.QueryRowContext(ctx, q, r.Step, r.Input, string(outputs), string(counts),
		r.Fingerprint, int64(r.Duration), r.Created.UTC().Format(time.RFC3339Nano)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// List returns the runs of a step, or of every step when step is empty,
// oldest first.
func (c *Catalog) List(ctx context.Context, step string) ([]Run, error) {
	q := `SELECT id, step, input, outputs, counts, fingerprint, duration_ns, created FROM runs`
	var args []interface{}
	if step != "" {
		q += ` WHERE step = ` + c.d.placeholder(1)
		args = append(args, step)
	}
	rows, err := c.db.QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []Run
	for rows.Next() {
		var (
			r               Run
			outputs, counts string
			created         string
			ns              int64
		)
		if err = rows.Scan(&r.ID, &r.Step, &r.Input, &outputs, &counts, &r.Fingerprint, &ns, &created); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err = json.Unmarshal([]byte(outputs), &r.Outputs); err != nil {
			return nil, fmt.Errorf("run %d outputs: %w", r.ID, err)
		}
		if err = json.Unmarshal([]byte(counts), &r.Counts); err != nil {
			return nil, fmt.Errorf("run %d counts: %w", r.ID, err)
		}
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d created: %w", r.ID, err)
		}
		r.Duration = time.Duration(ns)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
