package web

import (
	"io/fs"
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/view"
)

// staticFile serves an embedded asset. Assets live flat under one
// directory, so a single path segment addresses them all.
func (a *App) staticFile(ctx *Context) handler.Response {
	name := ctx.Param("file")

	if _, err := fs.Stat(view.Static(), name); err != nil {
		return response.Error(response.ErrNotFound)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeFileFS(w, r, view.Static(), name)
		return nil
	}
}
