package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorsort/internal/api/apierr"
	"github.com/mcoot/colorsort/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

func parseSessionID(raw string) (model.SessionID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, NewInvalidRequestError("invalid session id")
	}
	return model.SessionID(id), nil
}

// sessionIDFromPath reads {id} from the route
func sessionIDFromPath(r *http.Request) (model.SessionID, error) {
	return parseSessionID(mux.Vars(r)["id"])
}

// sessionIDFromQuery reads ?game_id= for legacy routes
func sessionIDFromQuery(r *http.Request) (model.SessionID, error) {
	raw := r.URL.Query().Get("game_id")
	if raw == "" {
		return 0, NewInvalidRequestError("game_id is required")
	}
	return parseSessionID(raw)
}
