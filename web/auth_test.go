package web_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/treinahub/treinahub/storage"
)

func TestAdminRequiresLogin(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)

	resp := ta.get(t, "/admin")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?return=%2Fadmin", resp.Header.Get("Location"))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("grants access to the admin area", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		ta.login(t)

		resp := ta.get(t, "/admin")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assertBodyContains(t, resp, "Maria Admin")
	})

	t.Run("returns to the originally requested page", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)

		resp := ta.get(t, "/admin/cursos")
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/login?return=%2Fadmin%2Fcursos", resp.Header.Get("Location"))

		token := ta.csrfToken(t, "/login")
		resp = ta.postForm(t, "/login", formWith(token,
			"email", adminEmail,
			"password", adminPassword,
			"return", "/admin/cursos",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin/cursos", resp.Header.Get("Location"))
	})

	t.Run("ignores off-site return targets", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/login")

		resp := ta.postForm(t, "/login", formWith(token,
			"email", adminEmail,
			"password", adminPassword,
			"return", "//evil.example",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin", resp.Header.Get("Location"))
	})

	t.Run("rejects wrong credentials without leaking which field failed", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/login")

		resp := ta.postForm(t, "/login", formWith(token,
			"email", adminEmail,
			"password", "senha-errada",
		))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assertBodyContains(t, resp, "E-mail ou senha incorretos.")

		resp = ta.get(t, "/admin")
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})

	t.Run("blocks the sixth failed attempt", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/login")
		form := formWith(token, "email", adminEmail, "password", "senha-errada")

		for i := 0; i < 5; i++ {
			resp := ta.postForm(t, "/login", form)
			resp.Body.Close()
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "attempt %d", i+1)
		}

		resp := ta.postForm(t, "/login", form)
		resp.Body.Close()
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	})

	t.Run("successful login forgives earlier failures", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/login")

		for i := 0; i < 4; i++ {
			resp := ta.postForm(t, "/login", formWith(token, "email", adminEmail, "password", "senha-errada"))
			resp.Body.Close()
		}

		resp := ta.postForm(t, "/login", formWith(token, "email", adminEmail, "password", adminPassword))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)

		// The counter was reset, so a later bad attempt starts over
		// instead of hitting the leftover budget.
		resp = ta.get(t, "/logout")
		resp.Body.Close()
		token = ta.csrfToken(t, "/login")
		resp = ta.postForm(t, "/login", formWith(token, "email", adminEmail, "password", "senha-errada"))
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.login(t)

	resp := ta.get(t, "/logout")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// The farewell flash survives on the fresh anonymous session.
	resp = ta.get(t, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertBodyContains(t, resp, "Você saiu da sua conta.")

	resp = ta.get(t, "/admin")
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	t.Run("responds identically for unknown emails", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/esqueci-senha")

		resp := ta.postForm(t, "/esqueci-senha", formWith(token, "email", "nobody@treinahub.com.br"))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)

		resp = ta.get(t, "/esqueci-senha")
		assertBodyContains(t, resp, "Se o e-mail estiver cadastrado")
		assert.Empty(t, ta.resets.items)
	})

	t.Run("creates a reset token for a known email", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		token := ta.csrfToken(t, "/esqueci-senha")

		resp := ta.postForm(t, "/esqueci-senha", formWith(token, "email", adminEmail))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)

		require.Len(t, ta.resets.items, 1)
		reset := ta.resets.items[0]
		assert.Equal(t, ta.admin.ID, reset.UserID)
		assert.NotEmpty(t, reset.Token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), reset.ExpiresAt, time.Minute)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	seedReset := func(ta *testApp, token string, expiresAt time.Time) {
		ta.resets.items = append(ta.resets.items, storage.PasswordReset{
			ID:        uuid.New(),
			UserID:    ta.admin.ID,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}

	t.Run("sets a new password once", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		seedReset(ta, "valid-token", time.Now().Add(time.Hour))

		csrf := ta.csrfToken(t, "/redefinir-senha/valid-token")
		resp := ta.postForm(t, "/redefinir-senha/valid-token", formWith(csrf,
			"password", "nova-senha-123",
			"password_confirmation", "nova-senha-123",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/login", resp.Header.Get("Location"))

		user := ta.users.byID[ta.admin.ID]
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nova-senha-123")))
		require.NotNil(t, ta.resets.items[0].UsedAt)

		// Single use: the consumed token cannot authorize another change.
		resp = ta.postForm(t, "/redefinir-senha/valid-token", formWith(csrf,
			"password", "outra-senha-456",
			"password_confirmation", "outra-senha-456",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/esqueci-senha", resp.Header.Get("Location"))
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		seedReset(ta, "valid-token", time.Now().Add(time.Hour))

		csrf := ta.csrfToken(t, "/redefinir-senha/valid-token")
		resp := ta.postForm(t, "/redefinir-senha/valid-token", formWith(csrf,
			"password", "nova-senha-123",
			"password_confirmation", "diferente-456",
		))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assertBodyContains(t, resp, "As senhas não conferem.")
		assert.Nil(t, ta.resets.items[0].UsedAt)
	})

	t.Run("redirects for an expired token", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		seedReset(ta, "stale-token", time.Now().Add(-time.Minute))

		resp := ta.get(t, "/redefinir-senha/stale-token")
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/esqueci-senha", resp.Header.Get("Location"))
	})
}
