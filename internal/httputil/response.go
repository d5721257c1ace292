package httputil

import (
	"encoding/json"
	"net/http"
)

// MessageBody is the error body shape returned to clients.
type MessageBody struct {
	Message string `json:"message"`
}

// RespondJSON writes a JSON response with the given status code.
// It marshals first so an encoding failure never leaves a partial body.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondCreated writes a 201 with a Location header pointing at the new resource.
func RespondCreated(w http.ResponseWriter, location string, data any) {
	w.Header().Set("Location", location)
	RespondJSON(w, http.StatusCreated, data)
}

// RespondError writes {"message": msg} with the given status.
func RespondError(w http.ResponseWriter, status int, msg string) {
	payload, _ := json.Marshal(MessageBody{Message: msg})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// NotFound is the fallthrough handler for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}
