package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/lib/pq"              // PostgreSQL driver ("postgres")
	_ "github.com/mattn/go-sqlite3"    // SQLite driver ("sqlite3")
)

// Supported database/sql driver names.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Schema creates the snapshot tables read by SQLSource. It is valid for both
// PostgreSQL and SQLite.
const Schema = `CREATE TABLE IF NOT EXISTS sih_bundle (
	entity_type VARCHAR(255) NOT NULL,
	bundle      VARCHAR(255) NOT NULL,
	class       VARCHAR(1024),
	weight      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (entity_type, bundle)
);

CREATE TABLE IF NOT EXISTS sih_field (
	entity_type  VARCHAR(255) NOT NULL,
	bundle       VARCHAR(255) NOT NULL,
	field_name   VARCHAR(255) NOT NULL,
	field_type   VARCHAR(255) NOT NULL,
	list_class   VARCHAR(1024),
	label        VARCHAR(1024),
	required     BOOLEAN NOT NULL DEFAULT FALSE,
	configurable BOOLEAN NOT NULL DEFAULT FALSE,
	weight       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (entity_type, bundle, field_name)
);`

// SQLSource reads a metadata snapshot from two tables:
//
//	sih_bundle(entity_type, bundle, class, weight)
//	sih_field(entity_type, bundle, field_name, field_type, list_class,
//	          label, required, configurable, weight)
//
// Rows are returned ordered by weight, then by name, which is the iteration
// order the site's registries report.
type SQLSource struct {
	db     *sql.DB
	driver string
}

// NewSQLSource wraps an open database handle. The driver name selects the
// placeholder style.
func NewSQLSource(db *sql.DB, driver string) *SQLSource {
	return &SQLSource{db: db, driver: driver}
}

// OpenDatabase opens a snapshot database. An empty driver is inferred from
// the DSN: postgres:// and postgresql:// URLs use pgx, everything else is
// treated as a SQLite file.
func OpenDatabase(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database source requires a DSN")
	}
	if driver == "" {
		driver = inferDriver(dsn)
	}

	switch driver {
	case DriverPgx, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewSQLSource(db, driver), nil
}

func inferDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPgx
	}
	return DriverSQLite
}

// Close closes the underlying database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// placeholder returns the nth (1-based) bind parameter for the driver.
func (s *SQLSource) placeholder(n int) string {
	if s.driver == DriverSQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// BundleInfo implements BundleInfo.
func (s *SQLSource) BundleInfo(ctx context.Context, entityType EntityTypeID) ([]Bundle, error) {
	query := fmt.Sprintf(
		"SELECT bundle, COALESCE(class, '') FROM sih_bundle WHERE entity_type = %s ORDER BY weight, bundle",
		s.placeholder(1),
	)

	rows, err := s.db.QueryContext(ctx, query, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to query bundles of %q: %w", entityType, err)
	}
	defer rows.Close()

	bundles := []Bundle{}
	for rows.Next() {
		var b Bundle
		if err := rows.Scan(&b.Name, &b.Class); err != nil {
			return nil, fmt.Errorf("failed to scan bundle row: %w", err)
		}
		bundles = append(bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bundles of %q: %w", entityType, err)
	}

	return bundles, nil
}

// FieldDefinitions implements FieldDefinitions.
func (s *SQLSource) FieldDefinitions(ctx context.Context, entityType EntityTypeID, bundle string) ([]FieldDefinition, error) {
	query := fmt.Sprintf(
		`SELECT field_name, field_type, COALESCE(list_class, ''), COALESCE(label, ''), required, configurable
FROM sih_field WHERE entity_type = %s AND bundle = %s ORDER BY weight, field_name`,
		s.placeholder(1), s.placeholder(2),
	)

	rows, err := s.db.QueryContext(ctx, query, entityType, bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields of %s.%s: %w", entityType, bundle, err)
	}
	defer rows.Close()

	defs := []FieldDefinition{}
	for rows.Next() {
		var f ManifestField
		if err := rows.Scan(&f.Name, &f.Type, &f.ListClass, &f.Label, &f.Required, &f.Configurable); err != nil {
			return nil, fmt.Errorf("failed to scan field row: %w", err)
		}
		defs = append(defs, f.Definition(bundle))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fields of %s.%s: %w", entityType, bundle, err)
	}

	return defs, nil
}
