package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/middleware"
)

// testSessionData is the session data type used in all tests
type testSessionData struct {
	Theme string
}

// mockTransport implements the Transport interface for testing
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Load(ctx handler.Context) (session.Session[testSessionData], error) {
	args := m.Called(ctx)
	return args.Get(0).(session.Session[testSessionData]), args.Error(1)
}

func (m *mockTransport) Store(ctx handler.Context, sess session.Session[testSessionData]) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func authenticatedSession(t *testing.T) session.Session[testSessionData] {
	t.Helper()

	sess, err := session.New[testSessionData](session.NewSessionParams{IP: "203.0.113.7"}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, sess.Authenticate(uuid.New()))
	return sess
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("loads session into context and stores it after handler", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession(t)

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(sess, nil)
		transport.On("Store", mock.Anything, mock.Anything).Return(nil)

		r := router.NewDefault()
		r.Use(middleware.Session[*router.Context, testSessionData](transport))
		r.Get("/test", func(ctx *router.Context) handler.Response {
			loaded, ok := middleware.GetSession[testSessionData](ctx)
			require.True(t, ok)
			assert.Equal(t, sess.ID, loaded.ID)
			assert.Equal(t, sess.UserID, loaded.UserID)
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		transport.AssertExpectations(t)
	})

	t.Run("persists handler mutations", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession(t)

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(sess, nil)
		transport.On("Store", mock.Anything, mock.MatchedBy(func(s session.Session[testSessionData]) bool {
			return s.HasFlash(session.FlashSuccess)
		})).Return(nil)

		r := router.NewDefault()
		r.Use(middleware.Session[*router.Context, testSessionData](transport))
		r.Get("/test", func(ctx *router.Context) handler.Response {
			s := middleware.MustGetSession[testSessionData](ctx)
			s.AddFlash(session.FlashSuccess, "Salvo com sucesso.")
			middleware.SetSession(ctx, s)
			return response.Redirect("/next")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		transport.AssertExpectations(t)
	})

	t.Run("degrades to empty session on load error", func(t *testing.T) {
		t.Parallel()

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(session.Session[testSessionData]{}, assert.AnError)
		transport.On("Store", mock.Anything, mock.Anything).Return(nil)

		r := router.NewDefault()
		r.Use(middleware.Session[*router.Context, testSessionData](transport))
		r.Get("/test", func(ctx *router.Context) handler.Response {
			loaded, ok := middleware.GetSession[testSessionData](ctx)
			require.True(t, ok)
			assert.False(t, loaded.IsAuthenticated())
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("RequireAuth rejects anonymous sessions", func(t *testing.T) {
		t.Parallel()

		anon, err := session.New[testSessionData](session.NewSessionParams{}, time.Hour)
		require.NoError(t, err)

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(anon, nil)

		handlerCalled := false
		r := router.NewDefault()
		r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
			Transport:   transport,
			RequireAuth: true,
			ErrorHandler: func(ctx *router.Context, err error) handler.Response {
				return response.Redirect("/login")
			},
		}))
		r.Get("/admin", func(ctx *router.Context) handler.Response {
			handlerCalled = true
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("RequireAuth admits authenticated sessions", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession(t)

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(sess, nil)
		transport.On("Store", mock.Anything, mock.Anything).Return(nil)

		r := router.NewDefault()
		r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
			Transport:   transport,
			RequireAuth: true,
		}))
		r.Get("/admin", func(ctx *router.Context) handler.Response {
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/ok", rec.Header().Get("Location"))
	})

	t.Run("RequireGuest rejects authenticated sessions", func(t *testing.T) {
		t.Parallel()

		sess := authenticatedSession(t)

		transport := &mockTransport{}
		transport.On("Load", mock.Anything).Return(sess, nil)

		r := router.NewDefault()
		r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
			Transport:    transport,
			RequireGuest: true,
			ErrorHandler: func(ctx *router.Context, err error) handler.Response {
				return response.Redirect("/admin")
			},
		}))
		r.Get("/login", func(ctx *router.Context) handler.Response {
			return response.Redirect("/should-not-happen")
		})

		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})

	t.Run("skip bypasses the middleware", func(t *testing.T) {
		t.Parallel()

		transport := &mockTransport{}

		r := router.NewDefault()
		r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{
			Transport: transport,
			Skip: func(ctx *router.Context) bool {
				return ctx.Request().URL.Path == "/health"
			},
		}))
		r.Get("/health", func(ctx *router.Context) handler.Response {
			_, ok := middleware.GetSession[testSessionData](ctx)
			assert.False(t, ok)
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		transport.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("panics without transport", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, testSessionData]{})
		})
	})
}
