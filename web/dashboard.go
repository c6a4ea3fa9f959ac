package web

import (
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
)

type dashboardPage struct {
	Students     int64
	Teachers     int64
	Courses      int64
	Certificates int64
}

func (a *App) dashboard(ctx *Context) handler.Response {
	var (
		page dashboardPage
		err  error
	)

	if page.Students, err = a.deps.Students.Count(ctx); err != nil {
		return response.Error(err)
	}
	if page.Teachers, err = a.deps.Teachers.Count(ctx); err != nil {
		return response.Error(err)
	}
	if page.Courses, err = a.deps.Courses.Count(ctx); err != nil {
		return response.Error(err)
	}
	if page.Certificates, err = a.deps.Certificates.Count(ctx); err != nil {
		return response.Error(err)
	}

	return a.render.Page("dashboard", ctx.page("Painel", page))
}
