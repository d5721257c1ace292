package notes

import (
	"errors"
	"log/slog"
	"net/http"

	"noteful/internal/domain"
	"noteful/internal/httputil"
	"noteful/views/models"
	"noteful/views/pages"
)

type Handler struct {
	svc     *Service
	log     *slog.Logger
	maxBody int64
}

func NewHandler(svc *Service, log *slog.Logger, maxBody int64) *Handler {
	return &Handler{svc: svc, log: log, maxBody: maxBody}
}

// Register mounts the JSON API under /api/notes and the read-only
// preview pages under /notes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("PUT /api/notes/{id}", h.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)

	mux.HandleFunc("GET /notes", h.IndexPage)
	mux.HandleFunc("GET /notes/{id}", h.NotePage)
}

// --- REST API Handlers ---

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		SearchTerm: r.URL.Query().Get("searchTerm"),
		FolderID:   r.URL.Query().Get("folderId"),
		TagID:      r.URL.Query().Get("tagId"),
	}

	notes, err := h.svc.List(r.Context(), q)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// GetNote handles GET /api/notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input CreateNoteInput
	if err := httputil.ParseJSON(w, r, &input, h.maxBody); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	note, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondCreated(w, "/api/notes/"+note.ID.Hex(), note)
}

// UpdateNote handles PUT /api/notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := domain.ParseID(id); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	var input UpdateNoteInput
	if err := httputil.ParseJSON(w, r, &input, h.maxBody); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	note, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Preview pages ---

// IndexPage handles GET /notes
func (h *Handler) IndexPage(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("searchTerm")

	notes, err := h.svc.List(r.Context(), ListQuery{SearchTerm: term})
	if err != nil {
		h.log.Error("failed to list notes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	links := make([]models.NoteLink, len(notes))
	for i, n := range notes {
		links[i] = models.NoteLink{ID: n.ID.Hex(), Title: n.Title}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.NoteIndexPage(term, links).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render page", "error", err)
	}
}

// NotePage handles GET /notes/{id}
func (h *Handler) NotePage(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		pages.NotFoundPage().Render(r.Context(), w)
		return
	case err != nil:
		h.log.Error("failed to get note", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.NotePage(h.toView(detail)).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render page", "error", err)
	}
}

func (h *Handler) toView(d *Detail) models.NoteView {
	view := models.NoteView{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		HTML:      h.svc.RenderMarkdown(d.Content),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Expanded.Folder != nil {
		view.Folder = d.Expanded.Folder.Name
	}
	for _, t := range d.Expanded.Tags {
		view.Tags = append(view.Tags, t.Name)
	}
	return view
}
