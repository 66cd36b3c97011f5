// Package pipeline runs every mutating endpoint through the same sequence:
// gate, parse, validate, mutate, redirect. A request either re-renders its
// form with field errors (no mutation), or performs exactly one data access
// call and terminates with a redirect carrying a flash message. No path falls
// through with neither.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
)

// Runner carries dependencies shared by all actions of a handler.
type Runner struct {
	Logger *slog.Logger
}

// Action describes one mutating endpoint.
type Action[T any] struct {
	// Module and Verb name the permission re-checked before anything else.
	// Route middleware already gates the group; this check is the one that
	// holds when a request bypasses the UI.
	Module string
	Verb   string

	// Fallback is the list route used for error redirects. Current URL
	// filter params are appended so the caller's list context survives.
	Fallback string

	// Parse reads the submitted form and path values into a payload. Field
	// errors send the request back to the form; a returned error is
	// validation-class (missing identifier) and redirects to Fallback.
	Parse func(r *http.Request) (T, map[string]string, error)

	// Mutate performs exactly one data access call. Errors are reported once
	// via flash, never retried.
	Mutate func(ctx context.Context, actorID int64, payload T) error

	// Location returns the success redirect target for the payload.
	Location func(payload T) string

	// SuccessFlash is the message attached to the success redirect.
	SuccessFlash string

	// Invalid re-renders the form with inline field errors. It responds with
	// HTTP 200: a rejected submission is a normal render, not a fault.
	Invalid func(w http.ResponseWriter, r *http.Request, payload T, errs map[string]string)
}

// MissingParam builds the validation-class error used when a route is hit
// without its identifier.
func MissingParam(entity string) error {
	return &shared.Error{Kind: shared.KindMissingParam, Detail: "Failed to get a " + entity + " id"}
}

// Run drives the action through its states. Each state begins only after the
// previous one completed; terminal outcomes are a redirect or a form render.
func Run[T any](rn *Runner, w http.ResponseWriter, r *http.Request, act Action[T]) {
	// Gating.
	ps := rbac.PermissionsFromContext(r.Context())
	if !ps.Authenticated() {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if !ps.Can(act.Verb, act.Module) {
		denied := &shared.Error{Kind: shared.KindUnauthorized, Detail: "You do not have permission to " + act.Verb + " " + act.Module}
		rn.log("gate", act.Module, act.Verb, r, denied)
		rn.redirectWithFlash(w, r, fallbackLocation(act.Fallback, r), "error", denied.Error())
		return
	}

	// Parsing.
	if err := r.ParseForm(); err != nil {
		rn.redirectWithFlash(w, r, fallbackLocation(act.Fallback, r), "error", "The submitted form could not be read")
		return
	}
	payload, fieldErrs, err := act.Parse(r)
	if err != nil {
		rn.log("parse", act.Module, act.Verb, r, err)
		rn.redirectWithFlash(w, r, fallbackLocation(act.Fallback, r), "error", shared.UserSafeMessage(err))
		return
	}

	// Validating.
	if len(fieldErrs) > 0 {
		rn.log("validate", act.Module, act.Verb, r, &shared.Error{Kind: shared.KindInvalid, Fields: fieldErrs})
		act.Invalid(w, r, payload, fieldErrs)
		return
	}

	// Mutating.
	if err := act.Mutate(r.Context(), ps.UserID(), payload); err != nil {
		rn.log("mutate", act.Module, act.Verb, r, err)
		var appErr *shared.Error
		if !errors.As(err, &appErr) {
			appErr = &shared.Error{Kind: shared.KindPersistence, Detail: shared.UserSafeMessage(err)}
		}
		rn.redirectWithFlash(w, r, fallbackLocation(act.Fallback, r), "error", appErr.Error())
		return
	}

	// Redirecting.
	rn.redirectWithFlash(w, r, fallbackLocation(act.Location(payload), r), "success", act.SuccessFlash)
}

func fallbackLocation(location string, r *http.Request) string {
	return shared.CarryFilters(location, r.URL.Query())
}

func (rn *Runner) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// log records a failed stage. Rejections the user caused are expected
// traffic, so they land below error level.
func (rn *Runner) log(stage, module, verb string, r *http.Request, err error) {
	if rn.Logger == nil {
		return
	}
	var appErr *shared.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case shared.KindUnauthorized:
			rn.Logger.Warn("action denied", slog.String("module", module), slog.String("verb", verb), slog.String("path", r.URL.Path))
			return
		case shared.KindMissingParam:
			rn.Logger.Warn("action missing parameter", slog.String("module", module), slog.String("verb", verb), slog.String("path", r.URL.Path))
			return
		case shared.KindInvalid:
			rn.Logger.Debug("action rejected by validation", slog.String("module", module), slog.String("verb", verb), slog.Int("fields", len(appErr.Fields)))
			return
		}
	}
	rn.Logger.Error("action "+stage, slog.String("module", module), slog.String("verb", verb), slog.Any("error", err))
}
