package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"noteful/internal/domain"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// ParseJSON decodes the request body into dest. An empty body decodes to
// the zero value so that presence checks downstream report the missing
// field instead of a JSON error.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.Invalid("Invalid JSON in request body")
	}
	return nil
}
