package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridian-erp/meridian/internal/shared"
)

// PermissionSource resolves the permission set for a user. Satisfied by
// *Service; tests substitute fixed sets.
type PermissionSource interface {
	Resolve(ctx context.Context, userID int64) (PermissionSet, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Source PermissionSource
	Logger *slog.Logger
}

// ResolvePermissions loads the caller's permission set once and stores it in
// the request context. Anonymous callers get the zero set, which denies all.
func (m Middleware) ResolvePermissions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			next.ServeHTTP(w, r.WithContext(ContextWithPermissions(r.Context(), PermissionSet{})))
			return
		}
		ps, err := m.Source.Resolve(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve permissions", slog.Any("error", err), slog.Int64("user_id", userID))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPermissions(r.Context(), ps)))
	})
}

// RequireAny ensures the caller holds at least one of the required
// permissions. This is the outer gate; mutating actions re-check their own
// verb so hiding a control is never the only protection.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ps := PermissionsFromContext(r.Context())
			if !ps.Authenticated() {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			for _, p := range normalized {
				if ps.has(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.deny(w, r)
		})
	}
}

// RequireAll ensures the caller holds every required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ps := PermissionsFromContext(r.Context())
			if len(normalized) > 0 && !ps.Authenticated() {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			for _, p := range normalized {
				if !ps.has(p) {
					m.deny(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "You are not allowed to access that page"})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func (ps PermissionSet) has(perm string) bool {
	if ps.perms == nil {
		return false
	}
	_, ok := ps.perms[perm]
	return ok
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}
