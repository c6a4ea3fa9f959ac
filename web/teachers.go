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

type teachersListPage struct {
	Teachers []storage.Teacher
}

type teacherFormPage struct {
	IsEdit    bool
	Action    string
	Name      string
	Email     string
	Phone     string
	Specialty string
	Errors    formErrors
}

func (a *App) listTeachers(ctx *Context) handler.Response {
	teachers, err := a.deps.Teachers.List(ctx)
	if err != nil {
		return response.Error(err)
	}
	return a.render.Page("teachers_list", ctx.page("Professores", teachersListPage{Teachers: teachers}))
}

func (a *App) newTeacher(ctx *Context) handler.Response {
	return a.render.Page("teachers_form", ctx.page("Novo professor", teacherFormPage{
		Action: "/admin/professores",
		Errors: formErrors{},
	}))
}

func (a *App) createTeacher(ctx *Context) handler.Response {
	form := teacherFormPage{
		Action:    "/admin/professores",
		Name:      ctx.FormValue("name"),
		Email:     ctx.FormValue("email"),
		Phone:     ctx.FormValue("phone"),
		Specialty: ctx.FormValue("specialty"),
		Errors:    formErrors{},
	}
	form.Errors.require("name", form.Name, "Informe o nome do professor.")

	if form.Errors.Any() {
		return a.render.PageWithStatus("teachers_form", ctx.page("Novo professor", form), http.StatusUnprocessableEntity)
	}

	teacher := storage.Teacher{Name: form.Name, Email: form.Email, Phone: form.Phone, Specialty: form.Specialty}
	if err := a.deps.Teachers.Create(ctx, &teacher); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Professor cadastrado com sucesso.")
	return response.Redirect("/admin/professores")
}

func (a *App) editTeacher(ctx *Context) handler.Response {
	teacher, resp := a.findTeacher(ctx)
	if resp != nil {
		return resp
	}

	return a.render.Page("teachers_form", ctx.page("Editar professor", teacherFormPage{
		IsEdit:    true,
		Action:    "/admin/professores/" + teacher.ID.String(),
		Name:      teacher.Name,
		Email:     teacher.Email,
		Phone:     teacher.Phone,
		Specialty: teacher.Specialty,
		Errors:    formErrors{},
	}))
}

func (a *App) updateTeacher(ctx *Context) handler.Response {
	teacher, resp := a.findTeacher(ctx)
	if resp != nil {
		return resp
	}

	form := teacherFormPage{
		IsEdit:    true,
		Action:    "/admin/professores/" + teacher.ID.String(),
		Name:      ctx.FormValue("name"),
		Email:     ctx.FormValue("email"),
		Phone:     ctx.FormValue("phone"),
		Specialty: ctx.FormValue("specialty"),
		Errors:    formErrors{},
	}
	form.Errors.require("name", form.Name, "Informe o nome do professor.")

	if form.Errors.Any() {
		return a.render.PageWithStatus("teachers_form", ctx.page("Editar professor", form), http.StatusUnprocessableEntity)
	}

	teacher.Name = form.Name
	teacher.Email = form.Email
	teacher.Phone = form.Phone
	teacher.Specialty = form.Specialty
	if err := a.deps.Teachers.Update(ctx, &teacher); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Professor atualizado com sucesso.")
	return response.Redirect("/admin/professores")
}

func (a *App) deleteTeacher(ctx *Context) handler.Response {
	teacher, resp := a.findTeacher(ctx)
	if resp != nil {
		return resp
	}

	if err := a.deps.Teachers.Delete(ctx, teacher.ID); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Professor excluído.")
	return response.Redirect("/admin/professores")
}

func (a *App) findTeacher(ctx *Context) (storage.Teacher, handler.Response) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return storage.Teacher{}, response.Error(response.ErrNotFound)
	}

	teacher, err := a.deps.Teachers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Teacher{}, response.Error(response.ErrNotFound)
		}
		return storage.Teacher{}, response.Error(err)
	}
	return teacher, nil
}
