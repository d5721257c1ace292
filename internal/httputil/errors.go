package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"noteful/internal/domain"
)

// HandleError maps the domain error taxonomy to an HTTP response.
// Unexpected errors are logged unchanged and reported as a bare 500.
func HandleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		verr *domain.ValidationError
		cerr *domain.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		RespondError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &cerr):
		RespondError(w, http.StatusBadRequest, cerr.Message)
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, r)
	default:
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
