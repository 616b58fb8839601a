package modelstore

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/usermodel"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

var (
	_ usermodel.Persistence = (*Store)(nil)
	_ ports.BookmarkStore   = (*Store)(nil)
)

// Store keeps user-model snapshots and bookmarks in one sqlite file.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("model store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("model store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create model store directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite model store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite model store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("model store is closed")
	}
	return s.db.PingContext(ctx)
}

func normalizeUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "default"
	}
	return userID
}

// LoadModel returns nil, nil when nothing is stored for userID.
func (s *Store) LoadModel(ctx context.Context, userID string) (*usermodel.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = normalizeUser(userID)

	snap := &usermodel.Snapshot{
		UserID:    userID,
		Files:     make(map[string]usermodel.FileInteraction),
		Languages: make(map[string]usermodel.LanguagePreference),
	}

	err := s.withRetry("load model version", func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT version, saved_at_ms FROM model_versions WHERE user_id = ?`, userID,
		).Scan(&snap.Version, &snap.SavedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	err = s.withRetry("load file interactions", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT path, click_count, edit_count, total_time_ms, last_access_ms, language
FROM file_interactions WHERE user_id = ?`, userID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			path string
			rec  usermodel.FileInteraction
		)
		if err := rows.Scan(&path, &rec.ClickCount, &rec.EditCount, &rec.TotalTime, &rec.LastAccess, &rec.Language); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan file interaction row: %w", err)
		}
		snap.Files[path] = rec
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate file interaction rows: %w", err)
	}
	rows.Close()

	err = s.withRetry("load language preferences", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT language, usage_score, file_count, total_time_ms
FROM language_preferences WHERE user_id = ?`, userID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			lang string
			pref usermodel.LanguagePreference
		)
		if err := rows.Scan(&lang, &pref.UsageScore, &pref.FileCount, &pref.TotalTime); err != nil {
			return nil, fmt.Errorf("scan language preference row: %w", err)
		}
		snap.Languages[lang] = pref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate language preference rows: %w", err)
	}
	return snap, nil
}

// SaveModel replaces everything stored for the snapshot's user. Snapshots
// older than the stored version are ignored.
func (s *Store) SaveModel(ctx context.Context, snap usermodel.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := normalizeUser(snap.UserID)
	if snap.SavedAt == 0 {
		snap.SavedAt = s.now().UnixMilli()
	}

	return s.withRetry("save model", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var stored uint64
		err = tx.QueryRowContext(ctx, `SELECT version FROM model_versions WHERE user_id = ?`, userID).Scan(&stored)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("read stored version: %w", err)
		case stored > snap.Version:
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM file_interactions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear file interactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM language_preferences WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear language preferences: %w", err)
		}

		fileStmt, err := tx.PrepareContext(ctx, `
INSERT INTO file_interactions (user_id, path, click_count, edit_count, total_time_ms, last_access_ms, language)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare file insert: %w", err)
		}
		defer fileStmt.Close()
		for path, rec := range snap.Files {
			if _, err := fileStmt.ExecContext(ctx, userID, path, rec.ClickCount, rec.EditCount, rec.TotalTime, rec.LastAccess, rec.Language); err != nil {
				return fmt.Errorf("insert file interaction %q: %w", path, err)
			}
		}

		langStmt, err := tx.PrepareContext(ctx, `
INSERT INTO language_preferences (user_id, language, usage_score, file_count, total_time_ms)
VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare language insert: %w", err)
		}
		defer langStmt.Close()
		for lang, pref := range snap.Languages {
			if _, err := langStmt.ExecContext(ctx, userID, lang, pref.UsageScore, pref.FileCount, pref.TotalTime); err != nil {
				return fmt.Errorf("insert language preference %q: %w", lang, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO model_versions (user_id, version, saved_at_ms) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET version=excluded.version, saved_at_ms=excluded.saved_at_ms`,
			userID, snap.Version, snap.SavedAt); err != nil {
			return fmt.Errorf("record model version: %w", err)
		}
		return tx.Commit()
	})
}

// ListBookmarks returns a user's bookmarks, oldest first.
func (s *Store) ListBookmarks(ctx context.Context, userID string) ([]ports.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = normalizeUser(userID)

	var rows *sql.Rows
	err := s.withRetry("list bookmarks", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT id, user_id, path, name, note, created_at_ms
FROM bookmarks WHERE user_id = ? ORDER BY created_at_ms ASC, id ASC`, userID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.Bookmark, 0)
	for rows.Next() {
		var b ports.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.Path, &b.Name, &b.Note, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmark rows: %w", err)
	}
	return out, nil
}

// SaveBookmark inserts b, or updates the name and note of the user's existing
// bookmark on the same path.
func (s *Store) SaveBookmark(ctx context.Context, b ports.Bookmark) error {
	b.UserID = normalizeUser(b.UserID)
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid bookmark: %w", err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = s.now().UnixMilli()
	}
	if b.Name == "" {
		b.Name = filepath.Base(b.Path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("save bookmark", func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO bookmarks (id, user_id, path, name, note, created_at_ms) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, path) DO UPDATE SET name=excluded.name, note=excluded.note`,
			b.ID, b.UserID, b.Path, b.Name, b.Note, b.CreatedAt)
		return err
	})
}

// DeleteBookmark removes a bookmark by id or by path.
func (s *Store) DeleteBookmark(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = normalizeUser(userID)

	var affected int64
	err := s.withRetry("delete bookmark", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ? AND (id = ? OR path = ?)`, userID, id, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	return nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	if errors.Is(lastErr, sql.ErrNoRows) {
		return lastErr
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
