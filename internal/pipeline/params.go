package pipeline

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RequireID extracts the entity identifier from the route, falling back to
// the submitted form. A missing or malformed id is a validation-class
// failure, not a routing fault: the caller redirects to its list view.
func RequireID(r *http.Request, entity string) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.PostFormValue("id")
	}
	if raw == "" {
		return 0, MissingParam(entity)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, MissingParam(entity)
	}
	return id, nil
}
