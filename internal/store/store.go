package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/provisioning"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a machine or record does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite backed machine store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the database at path and applies all
// pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer keeps SQLite locking trivial for a CLI.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveMachine inserts or replaces the machine spec.
func (s *Store) SaveMachine(ctx context.Context, spec *provisioning.MachineSpec) error {
	query := `
		INSERT INTO machines (name, machine_id, driver_url, driver_version, server_id, creator, allocated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			machine_id = excluded.machine_id,
			driver_url = excluded.driver_url,
			driver_version = excluded.driver_version,
			server_id = excluded.server_id,
			creator = excluded.creator,
			allocated_at = excluded.allocated_at,
			updated_at = excluded.updated_at
	`

	var driverURL, driverVersion, serverID, creator, allocatedAt sql.NullString
	if loc := spec.Location; loc != nil {
		driverURL = nullString(loc.DriverURL)
		driverVersion = nullString(loc.DriverVersion)
		serverID = nullString(loc.ServerID)
		creator = sql.NullString{String: loc.Creator, Valid: true}
		allocatedAt = nullString(formatTime(loc.AllocatedAt))
	}

	_, err := s.db.ExecContext(ctx, query,
		spec.Name,
		spec.ID,
		driverURL,
		driverVersion,
		serverID,
		creator,
		allocatedAt,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save machine %s: %w", spec.Name, err)
	}
	return nil
}

// LoadMachine returns the stored spec for name.
func (s *Store) LoadMachine(ctx context.Context, name string) (*provisioning.MachineSpec, error) {
	query := `
		SELECT name, machine_id, driver_url, driver_version, server_id, creator, allocated_at
		FROM machines
		WHERE name = ?
	`
	spec, err := scanMachine(s.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("machine %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load machine %s: %w", name, err)
	}
	return spec, nil
}

// ListMachines returns every stored machine ordered by name.
func (s *Store) ListMachines(ctx context.Context) ([]*provisioning.MachineSpec, error) {
	query := `
		SELECT name, machine_id, driver_url, driver_version, server_id, creator, allocated_at
		FROM machines
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	var specs []*provisioning.MachineSpec
	for rows.Next() {
		spec, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating machines: %w", err)
	}
	return specs, nil
}

// DeleteMachine removes the machine. Deleting a missing machine is not an error.
func (s *Store) DeleteMachine(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM machines WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete machine %s: %w", name, err)
	}
	return nil
}

// SaveBootstrap records the resolved bootstrap options of a machine.
func (s *Store) SaveBootstrap(ctx context.Context, machine string, opts config.BootstrapOptions) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to marshal bootstrap options: %w", err)
	}

	query := `
		INSERT INTO bootstrap_records (machine_name, options, resolved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(machine_name) DO UPDATE SET
			options = excluded.options,
			resolved_at = excluded.resolved_at
	`
	if _, err := s.db.ExecContext(ctx, query, machine, string(data), formatTime(s.now())); err != nil {
		return fmt.Errorf("failed to save bootstrap record for %s: %w", machine, err)
	}
	return nil
}

// LoadBootstrap returns the recorded bootstrap options of a machine.
func (s *Store) LoadBootstrap(ctx context.Context, machine string) (config.BootstrapOptions, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT options FROM bootstrap_records WHERE machine_name = ?`, machine).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return config.BootstrapOptions{}, fmt.Errorf("bootstrap record %s: %w", machine, ErrNotFound)
	}
	if err != nil {
		return config.BootstrapOptions{}, fmt.Errorf("failed to load bootstrap record for %s: %w", machine, err)
	}

	var opts config.BootstrapOptions
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		return config.BootstrapOptions{}, fmt.Errorf("failed to unmarshal bootstrap options: %w", err)
	}
	return opts, nil
}

// DeleteBootstrap removes a machine's bootstrap record, if any.
func (s *Store) DeleteBootstrap(ctx context.Context, machine string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bootstrap_records WHERE machine_name = ?`, machine); err != nil {
		return fmt.Errorf("failed to delete bootstrap record for %s: %w", machine, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMachine(row rowScanner) (*provisioning.MachineSpec, error) {
	var (
		spec                               provisioning.MachineSpec
		driverURL, driverVersion, serverID sql.NullString
		creator, allocatedAt               sql.NullString
	)
	if err := row.Scan(&spec.Name, &spec.ID, &driverURL, &driverVersion, &serverID, &creator, &allocatedAt); err != nil {
		return nil, err
	}

	if serverID.Valid {
		at, err := parseTime(allocatedAt.String)
		if err != nil {
			return nil, err
		}
		spec.Location = &provisioning.Location{
			DriverURL:     driverURL.String,
			DriverVersion: driverVersion.String,
			ServerID:      serverID.String,
			Creator:       creator.String,
			AllocatedAt:   at,
		}
	}
	return &spec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
