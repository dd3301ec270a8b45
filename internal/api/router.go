package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter wires up the API routes and the public /files/ space serving
// uploaded blobs from filesRoot.
func NewRouter(h *Handler, filesRoot string, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)

			r.Post("/summarize/text", h.SummarizeText)
			r.Post("/summarize/file", h.SummarizeFile)

			r.Post("/notes", h.CreateNote)
			r.Get("/notes", h.ListNotes)
			r.Get("/notes/{noteID}", h.GetNote)
			r.Patch("/notes/{noteID}", h.UpdateNote)
			r.Delete("/notes/{noteID}", h.DeleteNote)
		})
	})

	// Stored uploads. FileServer rejects traversal outside the root.
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(filesRoot))))

	return r
}
