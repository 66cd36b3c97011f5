package pipeline_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/pipeline"
	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

type payload struct {
	ID   int64
	Name string
}

// actionFixture records what the pipeline did with a request.
type actionFixture struct {
	mutations    []payload
	mutateErr    error
	invalidCalls int
	invalidErrs  map[string]string
}

func (fx *actionFixture) action(parse func(r *http.Request) (payload, map[string]string, error)) pipeline.Action[payload] {
	return pipeline.Action[payload]{
		Module:   "resources",
		Verb:     "update",
		Fallback: "/resources/equipment-types",
		Parse:    parse,
		Mutate: func(ctx context.Context, actorID int64, p payload) error {
			fx.mutations = append(fx.mutations, p)
			return fx.mutateErr
		},
		Location:     func(p payload) string { return "/resources/equipment-types" },
		SuccessFlash: "Equipment type updated",
		Invalid: func(w http.ResponseWriter, r *http.Request, p payload, errs map[string]string) {
			fx.invalidCalls++
			fx.invalidErrs = errs
			w.WriteHeader(http.StatusOK)
		},
	}
}

func parseOK(r *http.Request) (payload, map[string]string, error) {
	return payload{ID: 7, Name: r.PostFormValue("name")}, nil, nil
}

func run(t *testing.T, act pipeline.Action[payload], ps rbac.PermissionSet, target string, form url.Values) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	sess := &shared.Session{}
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = rbac.ContextWithPermissions(ctx, ps)
	rec := httptest.NewRecorder()
	pipeline.Run(&pipeline.Runner{}, rec, req.WithContext(ctx), act)
	return rec, sess
}

func grantedSet() rbac.PermissionSet {
	return rbac.NewPermissionSet(42, []string{"resources.update"}, nil)
}

func TestRunAnonymousRedirectsToLogin(t *testing.T) {
	fx := &actionFixture{}
	rec, _ := run(t, fx.action(parseOK), rbac.PermissionSet{}, "/resources/equipment-types/7", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Empty(t, fx.mutations)
}

func TestRunDeniedNeverMutates(t *testing.T) {
	fx := &actionFixture{}
	ps := rbac.NewPermissionSet(42, []string{"resources.view"}, nil)
	rec, sess := run(t, fx.action(parseOK), ps, "/resources/equipment-types/7", url.Values{"name": {"Crane"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/resources/equipment-types", rec.Header().Get("Location"))
	assert.Empty(t, fx.mutations)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Equal(t, "You do not have permission to update resources", flash.Message)
}

func TestRunMissingIdentifier(t *testing.T) {
	fx := &actionFixture{}
	act := fx.action(func(r *http.Request) (payload, map[string]string, error) {
		id, err := pipeline.RequireID(r, "equipment type")
		return payload{ID: id}, nil, err
	})
	rec, sess := run(t, act, grantedSet(), "/resources/equipment-types/delete", url.Values{})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/resources/equipment-types", rec.Header().Get("Location"))
	assert.Empty(t, fx.mutations)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Equal(t, "Failed to get a equipment type id", flash.Message)
}

func TestRunFieldErrorsRenderWithoutMutating(t *testing.T) {
	fx := &actionFixture{}
	act := fx.action(func(r *http.Request) (payload, map[string]string, error) {
		return payload{}, map[string]string{"name": "Name is required"}, nil
	})
	rec, sess := run(t, act, grantedSet(), "/resources/equipment-types/7", url.Values{})

	// Rejected submissions are a normal render, not an HTTP error.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Empty(t, fx.mutations)
	assert.Equal(t, 1, fx.invalidCalls)
	assert.Equal(t, "Name is required", fx.invalidErrs["name"])
	assert.Nil(t, sess.PopFlash())
}

func TestRunSuccessMutatesOnceAndRedirects(t *testing.T) {
	fx := &actionFixture{}
	rec, sess := run(t, fx.action(parseOK), grantedSet(), "/resources/equipment-types/7", url.Values{"name": {"Crane"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/resources/equipment-types", rec.Header().Get("Location"))
	require.Len(t, fx.mutations, 1)
	assert.Equal(t, payload{ID: 7, Name: "Crane"}, fx.mutations[0])

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Equipment type updated", flash.Message)
}

func TestRunSuccessCarriesListFilters(t *testing.T) {
	fx := &actionFixture{}
	rec, _ := run(t, fx.action(parseOK), grantedSet(),
		"/resources/equipment-types/7?search=crane&page=3&sort=name&dir=desc", url.Values{"name": {"Crane"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/resources/equipment-types", loc.Path)
	q := loc.Query()
	assert.Equal(t, "crane", q.Get("search"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "name", q.Get("sort"))
	assert.Equal(t, "desc", q.Get("dir"))
}

func TestRunMutateFailureFlashesOnce(t *testing.T) {
	fx := &actionFixture{mutateErr: shared.ErrNotFound}
	rec, sess := run(t, fx.action(parseOK), grantedSet(), "/resources/equipment-types/7", url.Values{"name": {"Crane"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/resources/equipment-types", rec.Header().Get("Location"))
	assert.Len(t, fx.mutations, 1)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Equal(t, "The requested record was not found", flash.Message)
	assert.Nil(t, sess.PopFlash())
}

func TestRunMutateFailureNeverLeaksInternals(t *testing.T) {
	fx := &actionFixture{mutateErr: errors.New(`pq: duplicate key value violates unique constraint "equipment_types_pkey"`)}
	_, sess := run(t, fx.action(parseOK), grantedSet(), "/resources/equipment-types/7", url.Values{"name": {"Crane"}})

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "error", flash.Kind)
	assert.Equal(t, "Something went wrong, please try again", flash.Message)
}

func TestRunMutateClassifiedErrorKeepsItsMessage(t *testing.T) {
	fx := &actionFixture{mutateErr: &shared.Error{Kind: shared.KindPersistence, Detail: "The purchase order is locked"}}
	_, sess := run(t, fx.action(parseOK), grantedSet(), "/resources/equipment-types/7", url.Values{"name": {"Crane"}})

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "The purchase order is locked", flash.Message)
}
