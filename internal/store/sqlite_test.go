package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartscribe/internal/apperr"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &UserProfile{Email: "a@example.com", Name: "A", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.UID)

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.UID, byEmail.UID)

	byUID, err := s.GetUserByUID(ctx, user.UID)
	require.NoError(t, err)
	require.NotNil(t, byUID)
	assert.Equal(t, "a@example.com", byUID.Email)

	missing, err := s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &UserProfile{Email: "dup@example.com", Name: "A", PasswordHash: "h"}))
	err := s.CreateUser(ctx, &UserProfile{Email: "dup@example.com", Name: "B", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestUpdateUserProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &UserProfile{Email: "a@example.com", Name: "Old", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.UpdateUserProfile(ctx, user.UID, UserPatch{
		Name:      strPtr("New"),
		AvatarURL: strPtr("https://cdn.example.com/a.png"),
	}))

	got, err := s.GetUserByUID(ctx, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "https://cdn.example.com/a.png", got.AvatarURL)
	assert.Equal(t, "a@example.com", got.Email)

	assert.ErrorIs(t, s.UpdateUserProfile(ctx, "missing-uid", UserPatch{Name: strPtr("x")}), apperr.ErrNotFound)
	assert.NoError(t, s.UpdateUserProfile(ctx, user.UID, UserPatch{}), "empty patch is a no-op")
}

func TestNoteCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := &Note{
		OwnerID:      "user1",
		Title:        "Q3 roadmap",
		OriginalText: "The meeting was about the Q3 roadmap",
		Summary:      "Roadmap meeting summary",
		Type:         NoteTypeText,
		Timestamp:    1000,
	}
	require.NoError(t, s.CreateNote(ctx, note))
	require.NotEmpty(t, note.ID)

	got, err := s.GetNoteByID(ctx, note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *note, *got)
	assert.Empty(t, got.FileURL)

	require.NoError(t, s.UpdateNote(ctx, note.ID, NotePatch{
		Title:   strPtr("Renamed"),
		Summary: strPtr("New summary"),
	}))

	got, err = s.GetNoteByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "New summary", got.Summary)
	assert.Equal(t, "The meeting was about the Q3 roadmap", got.OriginalText, "unpatched fields are untouched")
	assert.Equal(t, NoteTypeText, got.Type)
	assert.Equal(t, int64(1000), got.Timestamp)

	require.NoError(t, s.DeleteNote(ctx, note.ID))
	got, err = s.GetNoteByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Idempotent at the store layer too.
	assert.NoError(t, s.DeleteNote(ctx, note.ID))
}

func TestNoteFileURLRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := &Note{
		OwnerID:      "user1",
		Title:        "Receipt",
		OriginalText: "Content from file: receipt.pdf",
		Summary:      "A receipt",
		Type:         NoteTypeFile,
		FileURL:      "http://localhost:8080/files/user-uploads/user1/1-receipt.pdf",
		Timestamp:    2000,
	}
	require.NoError(t, s.CreateNote(ctx, note))

	got, err := s.GetNoteByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.FileURL, got.FileURL)
	assert.Equal(t, NoteTypeFile, got.Type)
}

func TestListNotesByOwnerIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, owner := range []string{"userA", "userA", "userB"} {
		require.NoError(t, s.CreateNote(ctx, &Note{
			OwnerID:      owner,
			Title:        "t",
			OriginalText: "o",
			Summary:      "s",
			Type:         NoteTypeText,
			Timestamp:    int64(i),
		}))
	}

	notesA, err := s.ListNotesByOwner(ctx, "userA")
	require.NoError(t, err)
	require.Len(t, notesA, 2)
	for _, n := range notesA {
		assert.Equal(t, "userA", n.OwnerID)
	}

	notesC, err := s.ListNotesByOwner(ctx, "userC")
	require.NoError(t, err)
	assert.Empty(t, notesC)
}

func TestUpdateNoteMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateNote(context.Background(), "missing-id", NotePatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
