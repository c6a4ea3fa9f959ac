package csrf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/csrf"
	"github.com/treinahub/treinahub/core/session"
)

func newSession(t *testing.T) session.Session[struct{}] {
	t.Helper()
	sess, err := session.New[struct{}](session.NewSessionParams{}, time.Hour)
	require.NoError(t, err)
	return sess
}

func TestTokenFor(t *testing.T) {
	t.Parallel()

	t.Run("generates lazily and stores on the session", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		require.Empty(t, sess.CSRFToken)

		token, err := csrf.TokenFor(&sess)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, token, sess.CSRFToken)
	})

	t.Run("returns the same token on repeated calls", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		first, err := csrf.TokenFor(&sess)
		require.NoError(t, err)

		second, err := csrf.TokenFor(&sess)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("accepts the session token", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		token, err := csrf.TokenFor(&sess)
		require.NoError(t, err)

		assert.NoError(t, csrf.Verify(sess, token))
	})

	t.Run("rejects a mismatched token", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		_, err := csrf.TokenFor(&sess)
		require.NoError(t, err)

		assert.ErrorIs(t, csrf.Verify(sess, "forged"), csrf.ErrInvalidToken)
	})

	t.Run("rejects an empty submission", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		_, err := csrf.TokenFor(&sess)
		require.NoError(t, err)

		assert.ErrorIs(t, csrf.Verify(sess, ""), csrf.ErrInvalidToken)
	})

	t.Run("rejects when the session has no token yet", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t)
		assert.ErrorIs(t, csrf.Verify(sess, "anything"), csrf.ErrInvalidToken)
	})
}
