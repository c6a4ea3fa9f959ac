package web_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/storage"
)

func TestCreateCourseHours(t *testing.T) {
	t.Parallel()

	t.Run("creates the entry and flashes once", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		ta.login(t)

		token := ta.csrfToken(t, "/admin/cargas-horarias")
		resp := ta.postForm(t, "/admin/cargas-horarias", formWith(token,
			"horas", "60",
			"status", "on",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/admin/cargas-horarias", resp.Header.Get("Location"))

		require.Len(t, ta.hours.items, 1)
		assert.Equal(t, 60, ta.hours.items[0].Hours)
		assert.True(t, ta.hours.items[0].Active)

		// The success flash shows on the next page and only there.
		resp = ta.get(t, "/admin/cargas-horarias")
		assertBodyContains(t, resp, "Carga horária cadastrada com sucesso.")

		resp = ta.get(t, "/admin/cargas-horarias")
		body := readBody(t, resp)
		assert.NotContains(t, body, "Carga horária cadastrada com sucesso.")
	})

	t.Run("rejects non-positive hours and keeps input", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		ta.login(t)

		token := ta.csrfToken(t, "/admin/cargas-horarias")
		resp := ta.postForm(t, "/admin/cargas-horarias", formWith(token,
			"horas", "0",
			"status", "on",
		))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assertBodyContains(t, resp, "Informe uma quantidade de horas maior que zero.")
		assert.Empty(t, ta.hours.items)
	})

	t.Run("expired session redirects to login and creates nothing", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		ta.login(t)
		token := ta.csrfToken(t, "/admin/cargas-horarias")

		ta.expireSession(t)

		resp := ta.postForm(t, "/admin/cargas-horarias", formWith(token,
			"horas", "60",
			"status", "on",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login?return=%2Fadmin%2Fcargas-horarias", resp.Header.Get("Location"))
		assert.Empty(t, ta.hours.items)
	})

	t.Run("forged token is rejected before the handler runs", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t)
		ta.login(t)

		resp := ta.postForm(t, "/admin/cargas-horarias", formWith("token-forjado",
			"horas", "60",
			"status", "on",
		))
		resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Empty(t, ta.hours.items)
	})
}

func TestUpdateCourseHours(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.login(t)

	entry := storage.CourseHours{ID: uuid.New(), Hours: 40, Active: true}
	ta.hours.items = append(ta.hours.items, entry)

	// Browsers cannot send PUT from a form; the hidden _method field is
	// rewritten by the method override wrapper.
	token := ta.csrfToken(t, "/admin/cargas-horarias")
	resp := ta.postForm(t, "/admin/cargas-horarias/"+entry.ID.String(), formWith(token,
		"_method", "PUT",
		"horas", "80",
	))
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	require.Len(t, ta.hours.items, 1)
	assert.Equal(t, 80, ta.hours.items[0].Hours)
	assert.False(t, ta.hours.items[0].Active, "unchecked status box deactivates the entry")
}

func TestDeleteCourseHours(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.login(t)

	entry := storage.CourseHours{ID: uuid.New(), Hours: 40, Active: true}
	ta.hours.items = append(ta.hours.items, entry)

	token := ta.csrfToken(t, "/admin/cargas-horarias")
	resp := ta.postForm(t, "/admin/cargas-horarias/"+entry.ID.String(), formWith(token,
		"_method", "DELETE",
	))
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Empty(t, ta.hours.items)
}
