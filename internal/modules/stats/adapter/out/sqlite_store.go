package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flowrpg/internal/modules/stats/domain"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the journal is tiny and serialized writes avoid SQLITE_BUSY
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS focus_sessions (
  id TEXT PRIMARY KEY,
  day TEXT NOT NULL,
  recorded_at TEXT NOT NULL,
  focus_seconds INTEGER NOT NULL,
  kind TEXT NOT NULL,
  completed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS focus_sessions_day ON focus_sessions(day);
CREATE TABLE IF NOT EXISTS journal (
  id TEXT PRIMARY KEY,
  at TEXT NOT NULL,
  kind TEXT NOT NULL,
  level INTEGER NOT NULL,
  detail TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS achievements (
  id TEXT PRIMARY KEY,
  unlocked_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create stats tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertSession(ctx context.Context, record domain.SessionRecord) error {
	const stmt = `
INSERT INTO focus_sessions (id, day, recorded_at, focus_seconds, kind, completed)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  recorded_at=excluded.recorded_at,
  focus_seconds=excluded.focus_seconds,
  kind=excluded.kind,
  completed=MAX(focus_sessions.completed, excluded.completed);
`
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.Day,
		record.RecordedAt.Format(timeLayout),
		record.FocusSeconds,
		record.Kind,
		boolInt(record.Completed),
	)
	if err != nil {
		return fmt.Errorf("insert focus session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CompleteSession(ctx context.Context, id string, focusSeconds int, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE focus_sessions SET kind='deep', completed=1, focus_seconds=?, recorded_at=? WHERE id=?`,
		focusSeconds, at.Format(timeLayout), id,
	)
	if err != nil {
		return false, fmt.Errorf("complete focus session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete focus session: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal (id, at, kind, level, detail) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.At.Format(timeLayout), entry.Kind, entry.Level, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentJournal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, kind, level, detail FROM journal ORDER BY at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		var at string
		if err := rows.Scan(&entry.ID, &at, &entry.Kind, &entry.Level, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		entry.At, _ = time.Parse(timeLayout, at)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountCompleted(ctx context.Context, sinceDay string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM focus_sessions WHERE completed=1 AND day >= ?`, sinceDay).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CompletedDays(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT day FROM focus_sessions WHERE completed=1 ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("query completed days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *SQLiteStore) AverageCompletedSeconds(ctx context.Context) (int, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(focus_seconds) FROM focus_sessions WHERE completed=1`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average session length: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return int(avg.Float64), nil
}

func (s *SQLiteStore) FocusSecondsSince(ctx context.Context, sinceDay string) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(focus_seconds) FROM focus_sessions WHERE day >= ?`, sinceDay).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum focus seconds: %w", err)
	}
	return int(total.Int64), nil
}

func (s *SQLiteStore) LastSessionAt(ctx context.Context) (time.Time, bool, error) {
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT recorded_at FROM focus_sessions ORDER BY recorded_at DESC LIMIT 1`).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last session: %w", err)
	}
	parsed, err := time.Parse(timeLayout, at)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last session time: %w", err)
	}
	return parsed, true, nil
}

// CountBossesDefeated counts defeat runs: consecutive boss_defeated entries
// with no boss_spawned between them belong to the same boss.
func (s *SQLiteStore) CountBossesDefeated(ctx context.Context) (int, error) {
	const query = `
SELECT COUNT(*) FROM (
  SELECT kind, LAG(kind) OVER (ORDER BY rowid) AS prev
  FROM journal WHERE kind IN (?, ?)
) WHERE kind = ? AND (prev IS NULL OR prev <> ?)`
	var n int
	err := s.db.QueryRowContext(ctx, query,
		domain.JournalBossDefeated, domain.JournalBossSpawned,
		domain.JournalBossDefeated, domain.JournalBossDefeated,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bosses defeated: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Unlocked(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, unlocked_at FROM achievements`)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out[id], _ = time.Parse(timeLayout, at)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Unlock(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO achievements (id, unlocked_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		id, at.Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	for _, table := range []string{"focus_sessions", "journal", "achievements"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
