package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Error codes of the backend's error envelope.
const (
	codeValidation = "validation_error"
	codeAuth       = "auth_error"
	codeForbidden  = "forbidden"
	codeNotFound   = "not_found"
	codeServer     = "server_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends the backend's error envelope:
//
//	{"error": {"status_code": 400, "code": "...", "message": "...", "details": ...}}
func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	body := map[string]any{
		"status_code": status,
		"code":        code,
		"message":     message,
	}
	if details != nil {
		body["details"] = details
	}
	writeJSON(w, status, map[string]any{"error": body})
}

// fieldErrors is the details shape of a validation error.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func writeValidation(w http.ResponseWriter, details fieldErrors) {
	writeError(w, http.StatusBadRequest, codeValidation, "Validation failed", details)
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusUnauthorized, codeAuth, "Authentication failed", map[string]string{"detail": detail})
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, codeForbidden, "Permission denied", map[string]string{"detail": "Forbidden."})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, codeNotFound, "Not found", map[string]string{"detail": "Not found."})
}

// writeStoreError maps store errors onto the envelope.
func writeStoreError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeNotFound(w)
	case errors.Is(err, errors.ErrInvalidRequest):
		detail := strings.TrimSuffix(err.Error(), ": "+errors.ErrInvalidRequest.Error())
		writeError(w, http.StatusBadRequest, codeValidation, detail, map[string]string{"detail": detail})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, codeServer, "Internal server error", nil)
	}
}

// decodeBody reads a JSON object. An empty body decodes to an empty map.
func decodeBody(r *http.Request) (map[string]any, error) {
	out := map[string]any{}
	if r.Body == nil {
		return out, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "malformed JSON body")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// decodeInto decodes the body into a typed value.
func decodeInto(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "missing body")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "malformed JSON body")
	}
	return nil
}

func stringField(body map[string]any, key string) string {
	v, _ := body[key].(string)
	return strings.TrimSpace(v)
}
