package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/apperr"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("encoding response", zap.Error(err))
	}
}

// apiFail maps an error to its status code: validation 400, not found 404,
// anything else 500 with the underlying message. Wrapped validation and
// not-found errors are reported with their own message only.
func apiFail(w http.ResponseWriter, err error) {
	var v *apperr.ValidationError
	var nf *apperr.NotFoundError
	switch {
	case errors.As(err, &v):
		apiError(w, v.Error(), http.StatusBadRequest)
	case errors.As(err, &nf):
		apiError(w, nf.Error(), http.StatusNotFound)
	default:
		zap.L().Error("request failed", zap.Error(err))
		apiError(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}

// indexVar reads a non-negative integer path variable.
func indexVar(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || n < 0 {
		return 0, apperr.Validation("invalid %s index", name)
	}
	return n, nil
}
