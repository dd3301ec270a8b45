package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"smartscribe/internal/apperr"
)

// SQLiteStore persists notes and user profiles. List queries carry no ORDER BY
// on purpose: display ordering is a presentation concern.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        uid TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        name TEXT NOT NULL,
        avatar_url TEXT,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS notes (
        id TEXT PRIMARY KEY, -- UUID
        owner_id TEXT NOT NULL,
        title TEXT NOT NULL,
        original_text TEXT NOT NULL,
        summary TEXT NOT NULL,
        type TEXT NOT NULL CHECK (type IN ('text', 'file')),
        file_url TEXT,
        timestamp INTEGER NOT NULL, -- epoch milliseconds
        FOREIGN KEY (owner_id) REFERENCES users (uid)
    );

    CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes (owner_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(ctx context.Context, user *UserProfile) error {
	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	user.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (uid, email, name, avatar_url, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.UID, user.Email, user.Name, nullable(user.AvatarURL), user.PasswordHash, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperr.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*UserProfile, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT uid, email, name, avatar_url, password_hash, created_at FROM users WHERE email = ?", email))
}

func (s *SQLiteStore) GetUserByUID(ctx context.Context, uid string) (*UserProfile, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT uid, email, name, avatar_url, password_hash, created_at FROM users WHERE uid = ?", uid))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*UserProfile, error) {
	var user UserProfile
	var avatarURL sql.NullString
	err := row.Scan(&user.UID, &user.Email, &user.Name, &avatarURL, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}
	return &user, nil
}

func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, uid string, patch UserPatch) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *patch.AvatarURL)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, uid)

	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE uid = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Note methods

func (s *SQLiteStore) CreateNote(ctx context.Context, note *Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, owner_id, title, original_text, summary, type, file_url, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		note.ID, note.OwnerID, note.Title, note.OriginalText, note.Summary, string(note.Type), nullable(note.FileURL), note.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetNoteByID(ctx context.Context, id string) (*Note, error) {
	var note Note
	var fileURL sql.NullString
	var noteType string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, title, original_text, summary, type, file_url, timestamp FROM notes WHERE id = ?", id).
		Scan(&note.ID, &note.OwnerID, &note.Title, &note.OriginalText, &note.Summary, &noteType, &fileURL, &note.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	note.Type = NoteType(noteType)
	if fileURL.Valid {
		note.FileURL = fileURL.String
	}
	return &note, nil
}

func (s *SQLiteStore) ListNotesByOwner(ctx context.Context, ownerID string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner_id, title, original_text, summary, type, file_url, timestamp FROM notes WHERE owner_id = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var note Note
		var fileURL sql.NullString
		var noteType string
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.OriginalText, &note.Summary, &noteType, &fileURL, &note.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		note.Type = NoteType(noteType)
		if fileURL.Valid {
			note.FileURL = fileURL.String
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) UpdateNote(ctx context.Context, id string, patch NotePatch) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.OriginalText != nil {
		sets = append(sets, "original_text = ?")
		args = append(args, *patch.OriginalText)
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.FileURL != nil {
		sets = append(sets, "file_url = ?")
		args = append(args, *patch.FileURL)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteNote removes a note record. Deleting an id that does not exist is a
// no-op, which keeps delete idempotent for callers.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
