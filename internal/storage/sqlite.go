package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for user profiles, feedback,
// progress rows, and the audit log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "fitcoach.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- User Profiles ---

// SaveProfile upserts the full profile document for a user. Profiles are
// keyed by the user-supplied name; saving replaces the whole document.
func (s *Store) SaveProfile(name string, doc []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO user_profiles (name, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		name, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetProfile returns the stored profile document for a user, or ErrNotFound.
func (s *Store) GetProfile(name string) ([]byte, error) {
	var doc string
	err := s.db.QueryRow("SELECT doc FROM user_profiles WHERE name = ?", name).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// ListProfiles returns all stored profile names in alphabetical order.
func (s *Store) ListProfiles() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM user_profiles ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// --- Feedback ---

// AppendFeedback appends one feedback entry. The entry is written exactly
// once, with its processed flag and action tag already set.
func (s *Store) AppendFeedback(e FeedbackEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO feedback_entries (id, user_id, text, created_at, processed, action)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Text, e.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(e.Processed), e.Action,
	)
	return err
}

// ListFeedback returns a user's feedback entries in append order.
func (s *Store) ListFeedback(userID string) ([]FeedbackEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, text, created_at, processed, action
		FROM feedback_entries WHERE user_id = ? ORDER BY created_at ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FeedbackEntry
	for rows.Next() {
		var e FeedbackEntry
		var createdAt string
		var processed int
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &createdAt, &processed, &e.Action); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		e.CreatedAt = t
		e.Processed = processed != 0
		results = append(results, e)
	}
	return results, rows.Err()
}

// --- Progress ---

// AppendProgress appends one immutable progress row.
func (s *Store) AppendProgress(e ProgressEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO progress_entries (id, user_id, created_at, day, weight, height, workout_completed, duration_min, calories_burned, waist, chest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Day,
		nullable(e.Weight), nullable(e.Height), boolToInt(e.WorkoutCompleted),
		nullable(e.DurationMin), nullable(e.CaloriesBurned), nullable(e.Waist), nullable(e.Chest),
	)
	return err
}

// ListProgress returns a user's progress rows in append order.
func (s *Store) ListProgress(userID string) ([]ProgressEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, created_at, day, weight, height, workout_completed, duration_min, calories_burned, waist, chest
		FROM progress_entries WHERE user_id = ? ORDER BY created_at ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ProgressEntry
	for rows.Next() {
		var e ProgressEntry
		var createdAt string
		var completed int
		var weight, height, duration, calories, waist, chest sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.UserID, &createdAt, &e.Day, &weight, &height, &completed, &duration, &calories, &waist, &chest); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		e.CreatedAt = t
		e.WorkoutCompleted = completed != 0
		e.Weight = fromNull(weight)
		e.Height = fromNull(height)
		e.DurationMin = fromNull(duration)
		e.CaloriesBurned = fromNull(calories)
		e.Waist = fromNull(waist)
		e.Chest = fromNull(chest)
		results = append(results, e)
	}
	return results, rows.Err()
}

// UsedDays returns the distinct day numbers a user has logged, ascending.
func (s *Store) UsedDays(userID string) ([]int, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT day FROM progress_entries WHERE user_id = ? ORDER BY day ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// --- Audit Log ---

// AppendAudit appends one decision record to the audit log.
func (s *Store) AppendAudit(r AuditRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (id, created_at, agent, action, user_id, reason, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Agent, r.Action,
		r.UserID, r.Reason, r.Metadata,
	)
	return err
}

// ListAudit returns the most recent audit records, newest first. When userID
// is non-empty only that user's records are returned.
func (s *Store) ListAudit(userID string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, created_at, agent, action, user_id, reason, metadata
		FROM audit_log`
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AuditRecord
	for rows.Next() {
		var r AuditRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.Agent, &r.Action, &r.UserID, &r.Reason, &r.Metadata); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.CreatedAt = t
		results = append(results, r)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func fromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
