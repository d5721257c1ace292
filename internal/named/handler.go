package named

import (
	"log/slog"
	"net/http"

	"noteful/internal/domain"
	"noteful/internal/httputil"
)

type Handler struct {
	svc     *Service
	log     *slog.Logger
	maxBody int64
}

func NewHandler(svc *Service, log *slog.Logger, maxBody int64) *Handler {
	return &Handler{svc: svc, log: log, maxBody: maxBody}
}

// List handles GET /api/{folders,tags}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		SearchTerm: r.URL.Query().Get("searchTerm"),
		Sort:       r.URL.Query().Get("sort"),
	}

	items, err := h.svc.List(r.Context(), q)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// Get handles GET /api/{folders,tags}/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, res)
}

// Create handles POST /api/{folders,tags}
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.ParseJSON(w, r, &in, h.maxBody); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	res, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondCreated(w, h.svc.Kind().Route+"/"+res.ID.Hex(), res)
}

// Update handles PUT /api/{folders,tags}/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := domain.ParseID(id); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	var in Input
	if err := httputil.ParseJSON(w, r, &in, h.maxBody); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	res, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, res)
}

// Delete handles DELETE /api/{folders,tags}/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httputil.HandleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the five routes under the kind's route prefix.
func (h *Handler) Register(mux *http.ServeMux) {
	route := h.svc.Kind().Route
	mux.HandleFunc("GET "+route, h.List)
	mux.HandleFunc("POST "+route, h.Create)
	mux.HandleFunc("GET "+route+"/{id}", h.Get)
	mux.HandleFunc("PUT "+route+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+route+"/{id}", h.Delete)
}
