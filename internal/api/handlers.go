package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"smartscribe/internal/apperr"
	"smartscribe/internal/auth"
	"smartscribe/internal/core"
	"smartscribe/internal/store"
)

const maxBodyBytes = 25 << 20 // data URIs for image/PDF uploads are large

// Handler holds the API route handlers.
type Handler struct {
	notes      *core.NoteService
	users      *core.UserService
	summarizer core.Summarizer
	tokens     *auth.Manager
	log        zerolog.Logger
}

func NewHandler(notes *core.NoteService, users *core.UserService, summarizer core.Summarizer, tokens *auth.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		notes:      notes,
		users:      users,
		summarizer: summarizer,
		tokens:     tokens,
		log:        log,
	}
}

// writeError maps the apperr taxonomy onto HTTP statuses. Anything unmapped
// is an internal error: logged with its cause, reported without it.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody(ve.Error()))
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid credentials"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody("email already registered"))
	case errors.Is(err, apperr.ErrSummarization):
		h.log.Error().Str("path", r.URL.Path).Err(err).Msg("summarization failed")
		writeJSON(w, http.StatusBadGateway, errorBody("summarization failed, please retry"))
	default:
		h.log.Error().Str("path", r.URL.Path).Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// Users

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.users.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  *store.UserProfile `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), ownerID(r), core.ProfilePatch{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Summarization

type summarizeTextRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (h *Handler) SummarizeText(w http.ResponseWriter, r *http.Request) {
	var req summarizeTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	summary, err := h.summarizer.SummarizeText(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

type summarizeFileRequest struct {
	FileDataURI string `json:"fileDataUri"`
}

func (h *Handler) SummarizeFile(w http.ResponseWriter, r *http.Request) {
	var req summarizeFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	summary, err := h.summarizer.SummarizeFile(r.Context(), req.FileDataURI)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

// Notes

type filePayload struct {
	FileName    string `json:"fileName"`
	FileDataURI string `json:"fileDataUri"`
}

func (p *filePayload) toCore() *core.FilePayload {
	if p == nil {
		return nil
	}
	return &core.FilePayload{FileName: p.FileName, FileDataURI: p.FileDataURI}
}

type createNoteRequest struct {
	Title        string       `json:"title"`
	OriginalText string       `json:"originalText"`
	Summary      string       `json:"summary"`
	Type         string       `json:"type"`
	Timestamp    int64        `json:"timestamp,omitempty"`
	File         *filePayload `json:"file,omitempty"`
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.notes.CreateNote(r.Context(), ownerID(r), core.NewNoteDraft{
		Title:        req.Title,
		OriginalText: req.OriginalText,
		Summary:      req.Summary,
		Type:         store.NoteType(req.Type),
		File:         req.File.toCore(),
		Timestamp:    req.Timestamp,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListNotes applies the optional substring filter and the timestamp-desc
// display sort here, on the presentation side; the store hands back the
// owner's notes unordered.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListNotesForOwner(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	notes = core.FilterNotes(notes, r.URL.Query().Get("q"))
	core.SortNotesByTimestampDesc(notes)

	if notes == nil {
		notes = []store.Note{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"total": len(notes),
	})
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetNote(r.Context(), ownerID(r), chi.URLParam(r, "noteID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	Title        *string      `json:"title,omitempty"`
	OriginalText *string      `json:"originalText,omitempty"`
	Summary      *string      `json:"summary,omitempty"`
	File         *filePayload `json:"file,omitempty"`
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.notes.UpdateNote(r.Context(), ownerID(r), chi.URLParam(r, "noteID"), core.NotePatch{
		Title:        req.Title,
		OriginalText: req.OriginalText,
		Summary:      req.Summary,
		File:         req.File.toCore(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteNote(r.Context(), ownerID(r), chi.URLParam(r, "noteID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
