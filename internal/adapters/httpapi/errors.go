package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/foodwaste-kbh/clearance-api/internal/app/offers"
	"github.com/foodwaste-kbh/clearance-api/internal/app/recipes"
	"github.com/foodwaste-kbh/clearance-api/internal/app/shoppinglists"
	"github.com/foodwaste-kbh/clearance-api/internal/app/stores"
)

type errorBody struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details,omitempty"`
		RequestID string         `json:"requestId,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Details = details
	body.Error.RequestID = middleware.GetReqID(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeAppError maps application-layer errors onto HTTP responses. Anything
// without an explicit status is a 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var offersErr *offers.Error
	if errors.As(err, &offersErr) {
		writeError(w, r, offersErr.Status, offersErr.Code, offersErr.Message, offersErr.Details)
		return
	}
	var storesErr *stores.Error
	if errors.As(err, &storesErr) {
		writeError(w, r, storesErr.Status, storesErr.Code, storesErr.Message, storesErr.Details)
		return
	}
	var recipesErr *recipes.Error
	if errors.As(err, &recipesErr) {
		writeError(w, r, recipesErr.Status, recipesErr.Code, recipesErr.Message, recipesErr.Details)
		return
	}
	var listsErr *shoppinglists.Error
	if errors.As(err, &listsErr) {
		writeError(w, r, listsErr.Status, listsErr.Code, listsErr.Message, listsErr.Details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
