package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"netseg/internal/domain"
	"netseg/internal/prefs"
	"netseg/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db    *sql.DB
	prefs *PreferenceStore
}

// New creates a new SQLite repository. ":memory:" opens a private
// in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, prefs: &PreferenceStore{db: db}}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS designs (
		name TEXT PRIMARY KEY,
		node_count INTEGER NOT NULL DEFAULT 0,
		link_count INTEGER NOT NULL DEFAULT 0,
		saved_at INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		vlan_id INTEGER NOT NULL,
		data JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS virtual_hosts (
		id TEXT PRIMARY KEY,
		hostname TEXT NOT NULL,
		department TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		data JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS test_results (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		ts INTEGER NOT NULL,
		data JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_virtual_hosts_department ON virtual_hosts(department);
	CREATE INDEX IF NOT EXISTS idx_test_results_ts ON test_results(ts);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

// Preferences returns the key/value store backed by the preferences table
func (r *Repository) Preferences() prefs.Store {
	return r.prefs
}

// ============================================================================
// Designs
// ============================================================================

// SaveDesign inserts or replaces a design by name
func (r *Repository) SaveDesign(ctx context.Context, design *domain.Design) error {
	data, err := json.Marshal(design)
	if err != nil {
		return fmt.Errorf("failed to marshal design: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO designs (name, node_count, link_count, saved_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			node_count = excluded.node_count,
			link_count = excluded.link_count,
			saved_at = excluded.saved_at,
			data = excluded.data
	`, design.Name, len(design.Nodes), len(design.Links), timeToUnix(design.SavedAt), data)
	if err != nil {
		return fmt.Errorf("failed to save design: %w", err)
	}
	return nil
}

// GetDesign loads a design by name
func (r *Repository) GetDesign(ctx context.Context, name string) (*domain.Design, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM designs WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query design: %w", err)
	}

	design := &domain.Design{}
	if err := json.Unmarshal(data, design); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design: %w", err)
	}
	return design, nil
}

// ListDesigns returns summaries of all designs, most recently saved first
func (r *Repository) ListDesigns(ctx context.Context) ([]domain.DesignSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, node_count, link_count, saved_at
		FROM designs ORDER BY saved_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query designs: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.DesignSummary, 0)
	for rows.Next() {
		var (
			s       domain.DesignSummary
			savedAt int64
		)
		if err := rows.Scan(&s.Name, &s.NodeCount, &s.LinkCount, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		s.SavedAt = unixToTime(savedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating designs: %w", err)
	}
	return summaries, nil
}

// DeleteDesign removes a design by name
func (r *Repository) DeleteDesign(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete design: %w", err)
	}
	return nil
}

// ============================================================================
// Departments
// ============================================================================

// ListDepartments returns all department zones ordered by VLAN id
func (r *Repository) ListDepartments(ctx context.Context) ([]domain.DepartmentZone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM departments ORDER BY vlan_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	zones := make([]domain.DepartmentZone, 0)
	for rows.Next() {
		var zone domain.DepartmentZone
		if err := scanJSON(rows, &zone); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return zones, nil
}

// GetDepartment retrieves a single department zone by id
func (r *Repository) GetDepartment(ctx context.Context, id string) (*domain.DepartmentZone, error) {
	zone := &domain.DepartmentZone{}
	err := scanJSON(r.db.QueryRowContext(ctx, `SELECT data FROM departments WHERE id = ?`, id), zone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return zone, nil
}

// UpsertDepartment inserts or updates a department zone
func (r *Repository) UpsertDepartment(ctx context.Context, zone *domain.DepartmentZone) error {
	data, err := json.Marshal(zone)
	if err != nil {
		return fmt.Errorf("failed to marshal department: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, vlan_id, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			vlan_id = excluded.vlan_id,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, zone.ID, zone.Name, zone.VLANID, data)
	if err != nil {
		return fmt.Errorf("failed to upsert department: %w", err)
	}
	return nil
}

// ============================================================================
// Virtual hosts
// ============================================================================

// ListHosts returns all virtual hosts in creation order
func (r *Repository) ListHosts(ctx context.Context) ([]domain.VirtualHost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM virtual_hosts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hosts: %w", err)
	}
	defer rows.Close()

	hosts := make([]domain.VirtualHost, 0)
	for rows.Next() {
		var host domain.VirtualHost
		if err := scanJSON(rows, &host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hosts: %w", err)
	}
	return hosts, nil
}

// GetHost retrieves a single virtual host by id
func (r *Repository) GetHost(ctx context.Context, id string) (*domain.VirtualHost, error) {
	host := &domain.VirtualHost{}
	err := scanJSON(r.db.QueryRowContext(ctx, `SELECT data FROM virtual_hosts WHERE id = ?`, id), host)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query host: %w", err)
	}
	return host, nil
}

// UpsertHost inserts or updates a virtual host
func (r *Repository) UpsertHost(ctx context.Context, host *domain.VirtualHost) error {
	data, err := json.Marshal(host)
	if err != nil {
		return fmt.Errorf("failed to marshal host: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO virtual_hosts (id, hostname, department, ip_address, status, created_at, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			hostname = excluded.hostname,
			department = excluded.department,
			ip_address = excluded.ip_address,
			status = excluded.status,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, host.ID, host.Hostname, string(host.Department), host.IPAddress, string(host.Status),
		timeToUnix(host.CreatedAt), data)
	if err != nil {
		return fmt.Errorf("failed to upsert host: %w", err)
	}
	return nil
}

// DeleteHost removes a virtual host
func (r *Repository) DeleteHost(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM virtual_hosts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete host: %w", err)
	}
	return nil
}

// ============================================================================
// Test results
// ============================================================================

// AddTestResults appends results in one transaction
func (r *Repository) AddTestResults(ctx context.Context, results ...domain.TestResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO test_results (id, source, destination, type, status, ts, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal test result: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, res.ID, res.Source, res.Destination,
			string(res.Type), string(res.Status), timeToUnix(res.Timestamp), data); err != nil {
			return fmt.Errorf("failed to insert test result %s: %w", res.ID, err)
		}
	}

	return tx.Commit()
}

// ListTestResults returns results newest first
func (r *Repository) ListTestResults(ctx context.Context, limit int) ([]domain.TestResult, error) {
	query := `SELECT data FROM test_results ORDER BY ts DESC, seq DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results: %w", err)
	}
	defer rows.Close()

	results := make([]domain.TestResult, 0)
	for rows.Next() {
		var res domain.TestResult
		if err := scanJSON(rows, &res); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test results: %w", err)
	}
	return results, nil
}

// ClearTestResults deletes every stored result
func (r *Repository) ClearTestResults(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM test_results`); err != nil {
		return fmt.Errorf("failed to clear test results: %w", err)
	}
	return nil
}

// ============================================================================
// Preferences
// ============================================================================

// PreferenceStore implements prefs.Store on the preferences table
type PreferenceStore struct {
	db *sql.DB
}

var _ prefs.Store = (*PreferenceStore)(nil)

func (p *PreferenceStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference: %w", err)
	}
	return value, true, nil
}

func (p *PreferenceStore) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

func (p *PreferenceStore) Remove(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove preference: %w", err)
	}
	return nil
}
