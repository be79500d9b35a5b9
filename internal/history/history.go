// Package history manages the watch history in a local SQLite database.
// One row is kept per detail page and episode; saving the same pair again
// updates the position and moves it to the top of the list.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"asia2tv/internal/media"
)

const busyTimeout = 5000 // milliseconds

const schema = `CREATE TABLE IF NOT EXISTS history (
	detail_url   TEXT    NOT NULL,
	episode_url  TEXT    NOT NULL,
	title        TEXT    NOT NULL,
	kind         TEXT    NOT NULL,
	episode_name TEXT    NOT NULL DEFAULT '',
	season       INTEGER NOT NULL DEFAULT 0,
	episode      INTEGER NOT NULL DEFAULT 0,
	position     REAL    NOT NULL DEFAULT 0 CHECK(position >= 0),
	duration     REAL    NOT NULL DEFAULT 0 CHECK(duration >= 0),
	updated_at   INTEGER NOT NULL,
	PRIMARY KEY (detail_url, episode_url)
);
CREATE INDEX IF NOT EXISTS idx_history_updated ON history(updated_at DESC);`

const columns = `detail_url, episode_url, title, kind, episode_name, season, episode, position, duration`

// Store is an open history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes or updates an entry.
func (s *Store) Save(ctx context.Context, e media.HistoryEntry) error {
	if e.DetailURL == "" {
		return errors.New("history entry without detail URL")
	}
	if e.EpisodeURL == "" {
		e.EpisodeURL = e.DetailURL
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO history (`+columns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(detail_url, episode_url) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			episode_name = excluded.episode_name,
			season = excluded.season,
			episode = excluded.episode,
			position = excluded.position,
			duration = excluded.duration,
			updated_at = excluded.updated_at`,
		e.DetailURL, e.EpisodeURL, e.Title, e.Kind.String(), e.EpisodeName,
		e.Season, e.Episode, e.Position, e.Duration, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// List returns all entries, most recently watched first.
func (s *Store) List(ctx context.Context) ([]media.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM history ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Find returns the most recent entry of a detail page.
func (s *Store) Find(ctx context.Context, detailURL string) (media.HistoryEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM history
		WHERE detail_url = ? ORDER BY updated_at DESC LIMIT 1`, detailURL)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return media.HistoryEntry{}, false, nil
	}
	if err != nil {
		return media.HistoryEntry{}, false, fmt.Errorf("reading history: %w", err)
	}
	return e, true, nil
}

// Remove deletes an entry. An empty episodeURL removes every entry of the detail page.
func (s *Store) Remove(ctx context.Context, detailURL, episodeURL string) error {
	var err error
	if episodeURL == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE detail_url = ?`, detailURL)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE detail_url = ? AND episode_url = ?`, detailURL, episodeURL)
	}
	if err != nil {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (media.HistoryEntry, error) {
	var (
		e    media.HistoryEntry
		kind string
	)
	err := r.Scan(&e.DetailURL, &e.EpisodeURL, &e.Title, &kind, &e.EpisodeName,
		&e.Season, &e.Episode, &e.Position, &e.Duration)
	if err != nil {
		return media.HistoryEntry{}, err
	}
	e.Kind = media.ParseKind(kind)
	return e, nil
}

// FormatForDisplay creates display strings for the picker from history entries.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	var items []string
	for _, e := range entries {
		var display string
		switch {
		case e.Kind == media.Series && e.Season > 0:
			display = fmt.Sprintf("%s S%02dE%02d", e.Title, e.Season, e.Episode)
		case e.Kind == media.Series && e.EpisodeName != "":
			display = fmt.Sprintf("%s - %s", e.Title, e.EpisodeName)
		default:
			display = e.Title
		}
		if e.Position > 0 {
			pct := 0.0
			if e.Duration > 0 {
				pct = (e.Position / e.Duration) * 100
			}
			display += fmt.Sprintf(" [%.0f%%]", pct)
		}
		items = append(items, display)
	}
	return items
}
