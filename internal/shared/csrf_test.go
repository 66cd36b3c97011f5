package shared_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

func TestEnsureTokenIsStablePerSession(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sess-1"}

	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	again, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again, "the session keeps one token for its lifetime")
}

func TestEnsureTokenRequiresSession(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	_, err := m.EnsureToken(context.Background(), nil)
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sess-1"}
	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	assert.NoError(t, m.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, "forged"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, ""), shared.ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, token), shared.ErrCSRFTokenMissing)
}

func TestVerifyTokenWithoutIssuedToken(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sess-1"}

	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, "anything"), shared.ErrCSRFTokenMissing)
}
