package web

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/storage"
)

type courseRow struct {
	ID          uuid.UUID
	Title       string
	TeacherName string
	Published   bool
}

type coursesListPage struct {
	Courses []courseRow
}

type courseFormPage struct {
	IsEdit      bool
	Action      string
	Title       string
	Description string
	TeacherID   string
	Published   bool
	Teachers    []storage.Teacher
	Errors      formErrors
}

func (a *App) listCourses(ctx *Context) handler.Response {
	courses, err := a.deps.Courses.List(ctx)
	if err != nil {
		return response.Error(err)
	}

	teachers, err := a.deps.Teachers.List(ctx)
	if err != nil {
		return response.Error(err)
	}
	names := make(map[uuid.UUID]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}

	rows := make([]courseRow, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, courseRow{
			ID:          c.ID,
			Title:       c.Title,
			TeacherName: names[c.TeacherID],
			Published:   c.Published,
		})
	}

	return a.render.Page("courses_list", ctx.page("Cursos", coursesListPage{Courses: rows}))
}

func (a *App) newCourse(ctx *Context) handler.Response {
	teachers, err := a.deps.Teachers.List(ctx)
	if err != nil {
		return response.Error(err)
	}

	return a.render.Page("courses_form", ctx.page("Novo curso", courseFormPage{
		Action:   "/admin/cursos",
		Teachers: teachers,
		Errors:   formErrors{},
	}))
}

func (a *App) createCourse(ctx *Context) handler.Response {
	form, resp := a.courseForm(ctx, "/admin/cursos", false)
	if resp != nil {
		return resp
	}

	if form.Errors.Any() {
		return a.render.PageWithStatus("courses_form", ctx.page("Novo curso", form), http.StatusUnprocessableEntity)
	}

	course := storage.Course{
		Title:       form.Title,
		Description: form.Description,
		TeacherID:   parseOptionalUUID(form.TeacherID),
		Published:   form.Published,
	}
	if err := a.deps.Courses.Create(ctx, &course); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Curso cadastrado com sucesso.")
	return response.Redirect("/admin/cursos")
}

func (a *App) editCourse(ctx *Context) handler.Response {
	course, resp := a.findCourse(ctx)
	if resp != nil {
		return resp
	}

	teachers, err := a.deps.Teachers.List(ctx)
	if err != nil {
		return response.Error(err)
	}

	teacherID := ""
	if course.TeacherID != uuid.Nil {
		teacherID = course.TeacherID.String()
	}

	return a.render.Page("courses_form", ctx.page("Editar curso", courseFormPage{
		IsEdit:      true,
		Action:      "/admin/cursos/" + course.ID.String(),
		Title:       course.Title,
		Description: course.Description,
		TeacherID:   teacherID,
		Published:   course.Published,
		Teachers:    teachers,
		Errors:      formErrors{},
	}))
}

func (a *App) updateCourse(ctx *Context) handler.Response {
	course, resp := a.findCourse(ctx)
	if resp != nil {
		return resp
	}

	form, resp := a.courseForm(ctx, "/admin/cursos/"+course.ID.String(), true)
	if resp != nil {
		return resp
	}

	if form.Errors.Any() {
		return a.render.PageWithStatus("courses_form", ctx.page("Editar curso", form), http.StatusUnprocessableEntity)
	}

	course.Title = form.Title
	course.Description = form.Description
	course.TeacherID = parseOptionalUUID(form.TeacherID)
	course.Published = form.Published
	if err := a.deps.Courses.Update(ctx, &course); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Curso atualizado com sucesso.")
	return response.Redirect("/admin/cursos")
}

func (a *App) deleteCourse(ctx *Context) handler.Response {
	course, resp := a.findCourse(ctx)
	if resp != nil {
		return resp
	}

	if err := a.deps.Courses.Delete(ctx, course.ID); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Curso excluído.")
	return response.Redirect("/admin/cursos")
}

func (a *App) courseForm(ctx *Context, action string, isEdit bool) (courseFormPage, handler.Response) {
	teachers, err := a.deps.Teachers.List(ctx)
	if err != nil {
		return courseFormPage{}, response.Error(err)
	}

	form := courseFormPage{
		IsEdit:      isEdit,
		Action:      action,
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		TeacherID:   ctx.FormValue("teacher_id"),
		Published:   ctx.FormValue("published") != "",
		Teachers:    teachers,
		Errors:      formErrors{},
	}
	form.Errors.require("title", form.Title, "Informe o título do curso.")
	return form, nil
}

func (a *App) findCourse(ctx *Context) (storage.Course, handler.Response) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return storage.Course{}, response.Error(response.ErrNotFound)
	}

	course, err := a.deps.Courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Course{}, response.Error(response.ErrNotFound)
		}
		return storage.Course{}, response.Error(err)
	}
	return course, nil
}

// parseOptionalUUID maps an empty or malformed select value to uuid.Nil.
func parseOptionalUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
