// Package api holds the HTTP handlers of the four statushub servers. Each
// handler translates paths and bodies into service calls and maps the model
// sentinel errors back onto HTTP statuses in one place (handleError).
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleError is the single sentinel-to-status translation point.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrBadRequest):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrTokenInvalid):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, model.ErrNotImplemented):
		w.WriteHeader(http.StatusNotImplemented)
	case errors.Is(err, model.ErrUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		log.Error("internal error", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// badRequest backs the prefix registrations that catch requests with missing
// or surplus path parameters.
func badRequest(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}

// decodeProperties reads a JSON object of entity properties. Values are
// strings on the wire; any other well-formed JSON value is kept in its
// serialized form.
func decodeProperties(r io.Reader) (model.Properties, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, model.ErrBadRequest
	}

	props := make(model.Properties, len(raw))
	for name, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			s = string(value)
		}
		props[name] = s
	}
	return props, nil
}

// decodePassword enforces the credential body contract: exactly one
// property named Password with a string value.
func decodePassword(r io.Reader) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return "", model.ErrBadRequest
	}
	if len(raw) != 1 {
		return "", model.ErrBadRequest
	}
	value, ok := raw[model.PropPassword]
	if !ok {
		return "", model.ErrBadRequest
	}
	var password string
	if err := json.Unmarshal(value, &password); err != nil {
		return "", model.ErrBadRequest
	}
	return password, nil
}

// entityJSON flattens an entity into the wire shape used by list responses:
// the properties plus Partition and Row keys.
func entityJSON(e model.Entity) map[string]string {
	out := make(map[string]string, len(e.Properties)+2)
	for name, value := range e.Properties {
		out[name] = value
	}
	out["Partition"] = e.Partition
	out["Row"] = e.Row
	return out
}
