package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/session"
)

type testData struct {
	UserName string `json:"user_name,omitempty"`
}

func newTestSession(t *testing.T, ttl time.Duration) session.Session[testData] {
	t.Helper()
	sess, err := session.New[testData](session.NewSessionParams{IP: "203.0.113.7", UserAgent: "test"}, ttl)
	require.NoError(t, err)
	return sess
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, time.Hour)

	assert.NotEqual(t, uuid.Nil, sess.ID)
	assert.NotEmpty(t, sess.Token)
	assert.False(t, sess.IsAuthenticated())
	assert.False(t, sess.IsExpired())
	assert.False(t, sess.IsDeleted())
	assert.True(t, sess.IsModified())
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
}

func TestSessionAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("rotates token and keeps ID", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		oldID, oldToken := sess.ID, sess.Token

		userID := uuid.New()
		require.NoError(t, sess.Authenticate(userID))

		assert.Equal(t, oldID, sess.ID)
		assert.NotEqual(t, oldToken, sess.Token)
		assert.Equal(t, userID, sess.UserID)
		assert.True(t, sess.IsAuthenticated())
	})

	t.Run("clears the csrf token", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		sess.SetCSRFToken("pre-login-token")

		require.NoError(t, sess.Authenticate(uuid.New()))
		assert.Empty(t, sess.CSRFToken)
	})
}

func TestSessionLogout(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, time.Hour)
	require.NoError(t, sess.Authenticate(uuid.New()))

	sess.Logout()
	assert.True(t, sess.IsDeleted())
}

func TestSessionFlashes(t *testing.T) {
	t.Parallel()

	t.Run("pop consumes at most once", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		sess.AddFlash(session.FlashSuccess, "saved")

		flash, ok := sess.PopFlash(session.FlashSuccess)
		require.True(t, ok)
		assert.Equal(t, "saved", flash.Text)

		_, ok = sess.PopFlash(session.FlashSuccess)
		assert.False(t, ok)
	})

	t.Run("pop all preserves insertion order", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		sess.AddFlash(session.FlashError, "first")
		sess.AddFlash(session.FlashSuccess, "second")

		flashes := sess.PopFlashes()
		require.Len(t, flashes, 2)
		assert.Equal(t, "first", flashes[0].Text)
		assert.Equal(t, "second", flashes[1].Text)

		assert.Nil(t, sess.PopFlashes())
	})

	t.Run("pop by category skips others", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		sess.AddFlash(session.FlashError, "bad")
		sess.AddFlash(session.FlashSuccess, "good")

		flash, ok := sess.PopFlash(session.FlashSuccess)
		require.True(t, ok)
		assert.Equal(t, "good", flash.Text)
		assert.True(t, sess.HasFlash(session.FlashError))
	})
}

func TestSessionTouch(t *testing.T) {
	t.Parallel()

	t.Run("extends expiry after the interval", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		sess.UpdatedAt = time.Now().Add(-10 * time.Minute)
		before := sess.ExpiresAt

		sess.Touch(2*time.Hour, 5*time.Minute)
		assert.True(t, sess.ExpiresAt.After(before))
	})

	t.Run("skips within the interval", func(t *testing.T) {
		t.Parallel()

		sess := newTestSession(t, time.Hour)
		before := sess.ExpiresAt

		sess.Touch(2*time.Hour, 5*time.Minute)
		assert.Equal(t, before, sess.ExpiresAt)
	})
}
