package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"smartscribe/internal/apperr"
	"smartscribe/internal/store"
)

const (
	untitledNoteTitle = "Untitled Note"
	titleWordCount    = 5
)

// NoteStore is the document-store contract the lifecycle manager depends on.
type NoteStore interface {
	CreateNote(ctx context.Context, note *store.Note) error
	GetNoteByID(ctx context.Context, id string) (*store.Note, error)
	ListNotesByOwner(ctx context.Context, ownerID string) ([]store.Note, error)
	UpdateNote(ctx context.Context, id string, patch store.NotePatch) error
	DeleteNote(ctx context.Context, id string) error
}

// FileStore is the blob-store contract for uploaded note files.
type FileStore interface {
	Upload(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, fileURL string) error
}

// FilePayload is a pending, not-yet-uploaded file attached to a draft or
// patch. The data URI carries its own MIME type.
type FilePayload struct {
	FileName    string
	FileDataURI string
}

// NewNoteDraft is a candidate note that has no identity yet. A draft with an
// id is a different thing entirely; see NotePatch.
type NewNoteDraft struct {
	Title        string
	OriginalText string
	Summary      string
	Type         store.NoteType
	File         *FilePayload
	Timestamp    int64 // optional; epoch ms, defaults to now
}

func (d NewNoteDraft) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Summary, validation.Required.Error("is required"), validation.By(notBlank)),
		validation.Field(&d.Type, validation.Required.Error("is required"),
			validation.In(store.NoteTypeText, store.NoteTypeFile).Error("must be text or file")),
		validation.Field(&d.File,
			validation.Required.When(d.Type == store.NoteTypeFile).Error("is required for file notes")),
	)
	if err != nil {
		return asValidation(err)
	}
	return nil
}

// NotePatch is a partial update to an existing note. Nil fields are left
// untouched; File triggers a re-upload that replaces the note's fileUrl.
type NotePatch struct {
	Title        *string
	OriginalText *string
	Summary      *string
	File         *FilePayload
}

// NoteService is the single authoritative entry point for mutating note
// state. It guarantees that no note without a summary is persisted, that
// callers only touch their own notes, and that file uploads are reconciled
// with note records. Mutating operations return the authoritative record from
// the store; callers must not assume local state matches without it.
type NoteService struct {
	notes NoteStore
	files FileStore
	log   zerolog.Logger
}

func NewNoteService(notes NoteStore, files FileStore, log zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, files: files, log: log}
}

// CreateNote validates the draft, uploads a pending file first when present
// (two-phase: the blob write happens before the record write, so a record
// never points at a missing blob), then persists the note. The store assigns
// the id; timestamp defaults to now.
func (s *NoteService) CreateNote(ctx context.Context, ownerID string, draft NewNoteDraft) (*store.Note, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperr.Validation("ownerId", "is required")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var fileURL string
	if draft.Type == store.NoteTypeFile && draft.File != nil {
		url, err := s.uploadPayload(ctx, ownerID, draft.File)
		if err != nil {
			return nil, err
		}
		fileURL = url
	}

	originalText := draft.OriginalText
	if strings.TrimSpace(originalText) == "" && draft.File != nil {
		originalText = "Content from file: " + draft.File.FileName
	}

	timestamp := draft.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	note := &store.Note{
		OwnerID:      ownerID,
		Title:        deriveTitle(draft.Title, originalText),
		OriginalText: originalText,
		Summary:      draft.Summary,
		Type:         draft.Type,
		FileURL:      fileURL,
		Timestamp:    timestamp,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// UpdateNote applies a partial merge to a note the caller owns and returns
// the re-fetched record. A replacement file is uploaded before the record is
// touched; the prior blob stays in the file store (accepted leak, the user
// may still reference it from an open tab).
func (s *NoteService) UpdateNote(ctx context.Context, ownerID, noteID string, patch NotePatch) (*store.Note, error) {
	existing, err := s.getOwned(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if patch.Summary != nil && strings.TrimSpace(*patch.Summary) == "" {
		return nil, apperr.Validation("summary", "must not be empty")
	}

	sp := store.NotePatch{
		Title:        patch.Title,
		OriginalText: patch.OriginalText,
		Summary:      patch.Summary,
	}

	if patch.File != nil {
		if existing.Type != store.NoteTypeFile {
			return nil, apperr.Validation("file", "cannot attach a file to a text note")
		}
		url, err := s.uploadPayload(ctx, ownerID, patch.File)
		if err != nil {
			return nil, err
		}
		sp.FileURL = &url
	}

	if sp.Title == nil && sp.OriginalText == nil && sp.Summary == nil && sp.FileURL == nil {
		return existing, nil
	}

	if err := s.notes.UpdateNote(ctx, noteID, sp); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	updated, err := s.notes.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("reload note: %w", err)
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}
	return updated, nil
}

// DeleteNote removes the record, then attempts to remove the associated blob.
// Blob cleanup is best-effort: a failure is logged as an orphaned-resource
// warning and never surfaced to the caller. Deleting an id that no longer
// exists is a clean no-op.
func (s *NoteService) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	existing, err := s.getOwned(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.notes.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if existing.FileURL != "" {
		if err := s.files.Remove(ctx, existing.FileURL); err != nil {
			s.log.Warn().
				Str("noteId", noteID).
				Str("fileUrl", existing.FileURL).
				Err(err).
				Msg("orphaned blob: file cleanup failed after note delete")
		}
	}
	return nil
}

// GetNote fetches a single note the caller owns.
func (s *NoteService) GetNote(ctx context.Context, ownerID, noteID string) (*store.Note, error) {
	return s.getOwned(ctx, ownerID, noteID)
}

// ListNotesForOwner returns every note for the owner. The store layer leaves
// the result unordered; display ordering belongs to the presentation side.
func (s *NoteService) ListNotesForOwner(ctx context.Context, ownerID string) ([]store.Note, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperr.Validation("ownerId", "is required")
	}
	notes, err := s.notes.ListNotesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// getOwned loads a note and verifies ownership at the service boundary.
// A note owned by someone else reports as not found so the id's existence
// does not leak.
func (s *NoteService) getOwned(ctx context.Context, ownerID, noteID string) (*store.Note, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperr.Validation("ownerId", "is required")
	}
	if strings.TrimSpace(noteID) == "" {
		return nil, apperr.Validation("noteId", "is required")
	}
	note, err := s.notes.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if note == nil || note.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	return note, nil
}

func (s *NoteService) uploadPayload(ctx context.Context, ownerID string, payload *FilePayload) (string, error) {
	if strings.TrimSpace(payload.FileName) == "" {
		return "", apperr.Validation("fileName", "is required")
	}
	mimeType, data, err := parseDataURI(payload.FileDataURI)
	if err != nil {
		return "", err
	}
	url, err := s.files.Upload(ctx, ownerID, payload.FileName, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return url, nil
}

// deriveTitle falls back to the first few words of the original text, then to
// a fixed placeholder.
func deriveTitle(title, originalText string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	words := strings.Fields(originalText)
	if len(words) == 0 {
		return untitledNoteTitle
	}
	if len(words) > titleWordCount {
		words = words[:titleWordCount]
	}
	return strings.Join(words, " ")
}

// notBlank rejects whitespace-only strings that Required alone would accept.
func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

// asValidation converts an ozzo validation result into the apperr taxonomy so
// handlers can map it without importing ozzo.
func asValidation(err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		f := fields[0]
		return apperr.Validation(f, errs[f].Error())
	}
	return apperr.Validation("input", err.Error())
}
