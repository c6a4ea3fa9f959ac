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

type studentsListPage struct {
	Students []storage.Student
}

type studentFormPage struct {
	IsEdit bool
	Action string
	Name   string
	Email  string
	Phone  string
	CPF    string
	Errors formErrors
}

func (a *App) listStudents(ctx *Context) handler.Response {
	students, err := a.deps.Students.List(ctx)
	if err != nil {
		return response.Error(err)
	}
	return a.render.Page("students_list", ctx.page("Alunos", studentsListPage{Students: students}))
}

func (a *App) newStudent(ctx *Context) handler.Response {
	return a.render.Page("students_form", ctx.page("Novo aluno", studentFormPage{
		Action: "/admin/alunos",
		Errors: formErrors{},
	}))
}

func (a *App) createStudent(ctx *Context) handler.Response {
	form := studentFormPage{
		Action: "/admin/alunos",
		Name:   ctx.FormValue("name"),
		Email:  ctx.FormValue("email"),
		Phone:  ctx.FormValue("phone"),
		CPF:    ctx.FormValue("cpf"),
		Errors: formErrors{},
	}
	form.Errors.require("name", form.Name, "Informe o nome do aluno.")

	if form.Errors.Any() {
		return a.render.PageWithStatus("students_form", ctx.page("Novo aluno", form), http.StatusUnprocessableEntity)
	}

	student := storage.Student{Name: form.Name, Email: form.Email, Phone: form.Phone, CPF: form.CPF}
	if err := a.deps.Students.Create(ctx, &student); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Aluno cadastrado com sucesso.")
	return response.Redirect("/admin/alunos")
}

func (a *App) editStudent(ctx *Context) handler.Response {
	student, resp := a.findStudent(ctx)
	if resp != nil {
		return resp
	}

	return a.render.Page("students_form", ctx.page("Editar aluno", studentFormPage{
		IsEdit: true,
		Action: "/admin/alunos/" + student.ID.String(),
		Name:   student.Name,
		Email:  student.Email,
		Phone:  student.Phone,
		CPF:    student.CPF,
		Errors: formErrors{},
	}))
}

func (a *App) updateStudent(ctx *Context) handler.Response {
	student, resp := a.findStudent(ctx)
	if resp != nil {
		return resp
	}

	form := studentFormPage{
		IsEdit: true,
		Action: "/admin/alunos/" + student.ID.String(),
		Name:   ctx.FormValue("name"),
		Email:  ctx.FormValue("email"),
		Phone:  ctx.FormValue("phone"),
		CPF:    ctx.FormValue("cpf"),
		Errors: formErrors{},
	}
	form.Errors.require("name", form.Name, "Informe o nome do aluno.")

	if form.Errors.Any() {
		return a.render.PageWithStatus("students_form", ctx.page("Editar aluno", form), http.StatusUnprocessableEntity)
	}

	student.Name = form.Name
	student.Email = form.Email
	student.Phone = form.Phone
	student.CPF = form.CPF
	if err := a.deps.Students.Update(ctx, &student); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Aluno atualizado com sucesso.")
	return response.Redirect("/admin/alunos")
}

func (a *App) deleteStudent(ctx *Context) handler.Response {
	student, resp := a.findStudent(ctx)
	if resp != nil {
		return resp
	}

	if err := a.deps.Students.Delete(ctx, student.ID); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Aluno excluído.")
	return response.Redirect("/admin/alunos")
}

func (a *App) findStudent(ctx *Context) (storage.Student, handler.Response) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return storage.Student{}, response.Error(response.ErrNotFound)
	}

	student, err := a.deps.Students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Student{}, response.Error(response.ErrNotFound)
		}
		return storage.Student{}, response.Error(err)
	}
	return student, nil
}
