package web

import (
	"errors"
	"net/http"

	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/view"
)

// errorPage is the view model for the 500 page. Detail is only populated
// in debug mode.
type errorPage struct {
	Detail string
}

// errorHandler maps dispatch and handler errors onto rendered pages:
// 404 gets its own page, everything else falls back to the 500 page with
// the real status code preserved. Panics are logged with their stack.
func (a *App) errorHandler(ctx *Context, err error) {
	status := http.StatusInternalServerError

	var panicErr router.PanicError
	if errors.As(err, &panicErr) {
		a.logger.ErrorContext(ctx, "panic recovered",
			"error", err,
			"stack", string(panicErr.Stack()),
			"path", ctx.Request().URL.Path,
		)
	} else if errors.Is(err, router.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		var sc interface{ StatusCode() int }
		if errors.As(err, &sc) {
			status = sc.StatusCode()
		}
		if errors.Is(err, router.ErrMethodNotAllowed) {
			status = http.StatusMethodNotAllowed
		}
	}

	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(ctx, "request failed",
			"error", err,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
		)
	}

	page := "error_500"
	data := view.PageData{Title: "Erro"}
	switch {
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		page = "error_404"
		data.Title = "Página não encontrada"
	default:
		content := errorPage{}
		if a.cfg.Debug {
			content.Detail = err.Error()
		}
		data.Content = content
	}

	resp := a.render.PageWithStatus(page, data, status)
	if renderErr := resp(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
		http.Error(ctx.ResponseWriter(), http.StatusText(status), status)
	}
}
