package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/middleware"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()

		var seen string
		r := router.NewDefault()
		r.Use(middleware.RequestID[*router.Context]())
		r.Get("/", func(ctx *router.Context) handler.Response {
			seen = middleware.GetRequestID(ctx)
			return response.Redirect("/ok")
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("reuses inbound id", func(t *testing.T) {
		t.Parallel()

		r := router.NewDefault()
		r.Use(middleware.RequestID[*router.Context]())
		r.Get("/", func(ctx *router.Context) handler.Response {
			assert.Equal(t, "proxy-assigned", middleware.GetRequestID(ctx))
			return response.Redirect("/ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "proxy-assigned")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "proxy-assigned", rec.Header().Get(middleware.RequestIDHeader))
	})
}
