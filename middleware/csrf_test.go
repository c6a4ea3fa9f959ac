package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/csrf"
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/middleware"
)

func csrfRouter(t *testing.T, sess session.Session[testSessionData]) (router.Router[*router.Context], *bool) {
	t.Helper()

	transport := &mockTransport{}
	transport.On("Load", mock.Anything).Return(sess, nil)
	transport.On("Store", mock.Anything, mock.Anything).Return(nil)

	handlerCalled := false
	r := router.NewDefault()
	r.Use(
		middleware.Session[*router.Context, testSessionData](transport),
		middleware.CSRF[*router.Context, testSessionData](),
	)
	r.Post("/admin/alunos", func(ctx *router.Context) handler.Response {
		handlerCalled = true
		return response.Redirect("/admin/alunos")
	})
	r.Get("/admin/alunos", func(ctx *router.Context) handler.Response {
		handlerCalled = true
		return response.Redirect("/ok")
	})

	return r, &handlerCalled
}

func sessionWithToken(t *testing.T) (session.Session[testSessionData], string) {
	t.Helper()

	sess, err := session.New[testSessionData](session.NewSessionParams{}, time.Hour)
	require.NoError(t, err)
	token, err := csrf.TokenFor(&sess)
	require.NoError(t, err)
	return sess, token
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	t.Run("allows POST with valid form token", func(t *testing.T) {
		t.Parallel()

		sess, token := sessionWithToken(t)
		r, handlerCalled := csrfRouter(t, sess)

		form := url.Values{csrf.FormField: {token}, "nome": {"Maria"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/alunos", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.True(t, *handlerCalled)
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("allows POST with valid header token", func(t *testing.T) {
		t.Parallel()

		sess, token := sessionWithToken(t)
		r, handlerCalled := csrfRouter(t, sess)

		req := httptest.NewRequest(http.MethodPost, "/admin/alunos", nil)
		req.Header.Set(csrf.HeaderName, token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.True(t, *handlerCalled)
	})

	t.Run("rejects POST with wrong token before handler runs", func(t *testing.T) {
		t.Parallel()

		sess, _ := sessionWithToken(t)
		r, handlerCalled := csrfRouter(t, sess)

		form := url.Values{csrf.FormField: {"forged-token"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/alunos", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.False(t, *handlerCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects POST with missing token", func(t *testing.T) {
		t.Parallel()

		sess, _ := sessionWithToken(t)
		r, handlerCalled := csrfRouter(t, sess)

		req := httptest.NewRequest(http.MethodPost, "/admin/alunos", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.False(t, *handlerCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects POST when session has no token yet", func(t *testing.T) {
		t.Parallel()

		sess, err := session.New[testSessionData](session.NewSessionParams{}, time.Hour)
		require.NoError(t, err)
		r, handlerCalled := csrfRouter(t, sess)

		form := url.Values{csrf.FormField: {"anything"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/alunos", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.False(t, *handlerCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ignores safe methods", func(t *testing.T) {
		t.Parallel()

		sess, _ := sessionWithToken(t)
		r, handlerCalled := csrfRouter(t, sess)

		req := httptest.NewRequest(http.MethodGet, "/admin/alunos", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.True(t, *handlerCalled)
	})

	t.Run("token survives verification for multi-tab forms", func(t *testing.T) {
		t.Parallel()

		sess, token := sessionWithToken(t)
		r, _ := csrfRouter(t, sess)

		// Two submissions with the same token both pass since the token
		// only rotates on login/logout.
		for range 2 {
			form := url.Values{csrf.FormField: {token}}
			req := httptest.NewRequest(http.MethodPost, "/admin/alunos", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusFound, rec.Code)
		}
	})
}
