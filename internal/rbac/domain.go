package rbac

import (
	"context"
	"strings"
	"time"
)

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability named "<module>.<verb>".
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// PermissionSet is the resolved verb x module grants plus role predicates for
// one caller. It is built once per request and read-only afterwards; every
// consumer (view rendering, action pipeline) receives it explicitly.
type PermissionSet struct {
	userID int64
	perms  map[string]struct{}
	roles  map[string]struct{}
}

// NewPermissionSet builds a PermissionSet from granted permission names and
// role names. Names are matched case-insensitively.
func NewPermissionSet(userID int64, perms, roles []string) PermissionSet {
	ps := PermissionSet{
		userID: userID,
		perms:  make(map[string]struct{}, len(perms)),
		roles:  make(map[string]struct{}, len(roles)),
	}
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			ps.perms[p] = struct{}{}
		}
	}
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			ps.roles[r] = struct{}{}
		}
	}
	return ps
}

// Can reports whether the caller holds the given verb on a module.
func (ps PermissionSet) Can(verb, module string) bool {
	if ps.perms == nil {
		return false
	}
	_, ok := ps.perms[strings.ToLower(module+"."+verb)]
	return ok
}

// Is reports whether the caller carries the named role.
func (ps PermissionSet) Is(role string) bool {
	if ps.roles == nil {
		return false
	}
	_, ok := ps.roles[strings.ToLower(role)]
	return ok
}

// UserID returns the caller's user ID, or 0 for anonymous.
func (ps PermissionSet) UserID() int64 {
	return ps.userID
}

// Authenticated reports whether the set belongs to a signed-in user.
func (ps PermissionSet) Authenticated() bool {
	return ps.userID != 0
}

type permissionsContextKey struct{}

// ContextWithPermissions stores the resolved permission set in context.
func ContextWithPermissions(ctx context.Context, ps PermissionSet) context.Context {
	return context.WithValue(ctx, permissionsContextKey{}, ps)
}

// PermissionsFromContext extracts the permission set resolved for this
// request. The zero value denies everything.
func PermissionsFromContext(ctx context.Context) PermissionSet {
	ps, _ := ctx.Value(permissionsContextKey{}).(PermissionSet)
	return ps
}
