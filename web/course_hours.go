package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/storage"
)

type courseHoursPage struct {
	Entries []storage.CourseHours
	Hours   string
	Active  bool
	Errors  formErrors
}

func (a *App) listCourseHours(ctx *Context) handler.Response {
	entries, err := a.deps.CourseHours.List(ctx)
	if err != nil {
		return response.Error(err)
	}

	return a.render.Page("course_hours_list", ctx.page("Cargas horárias", courseHoursPage{
		Entries: entries,
		Active:  true,
		Errors:  formErrors{},
	}))
}

func (a *App) createCourseHours(ctx *Context) handler.Response {
	rawHours := ctx.FormValue("horas")
	active := ctx.FormValue("status") != ""

	hours, errs := parseHours(rawHours)
	if errs.Any() {
		entries, err := a.deps.CourseHours.List(ctx)
		if err != nil {
			return response.Error(err)
		}
		return a.render.PageWithStatus("course_hours_list", ctx.page("Cargas horárias", courseHoursPage{
			Entries: entries,
			Hours:   rawHours,
			Active:  active,
			Errors:  errs,
		}), http.StatusUnprocessableEntity)
	}

	entry := storage.CourseHours{Hours: hours, Active: active}
	if err := a.deps.CourseHours.Create(ctx, &entry); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Carga horária cadastrada com sucesso.")
	return response.Redirect("/admin/cargas-horarias")
}

func (a *App) updateCourseHours(ctx *Context) handler.Response {
	entry, resp := a.findCourseHours(ctx)
	if resp != nil {
		return resp
	}

	hours, errs := parseHours(ctx.FormValue("horas"))
	if errs.Any() {
		ctx.Flash(session.FlashError, "Carga horária inválida.")
		return response.Redirect("/admin/cargas-horarias")
	}

	entry.Hours = hours
	entry.Active = ctx.FormValue("status") != ""
	if err := a.deps.CourseHours.Update(ctx, &entry); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Carga horária atualizada.")
	return response.Redirect("/admin/cargas-horarias")
}

func (a *App) deleteCourseHours(ctx *Context) handler.Response {
	entry, resp := a.findCourseHours(ctx)
	if resp != nil {
		return resp
	}

	if err := a.deps.CourseHours.Delete(ctx, entry.ID); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Carga horária excluída.")
	return response.Redirect("/admin/cargas-horarias")
}

func (a *App) findCourseHours(ctx *Context) (storage.CourseHours, handler.Response) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return storage.CourseHours{}, response.Error(response.ErrNotFound)
	}

	entry, err := a.deps.CourseHours.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.CourseHours{}, response.Error(response.ErrNotFound)
		}
		return storage.CourseHours{}, response.Error(err)
	}
	return entry, nil
}

func parseHours(raw string) (int, formErrors) {
	errs := formErrors{}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		errs["horas"] = "Informe uma quantidade de horas maior que zero."
		return 0, errs
	}
	return hours, errs
}
