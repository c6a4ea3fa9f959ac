package web

import (
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/storage"
)

type homePage struct {
	Name    string
	Phone   string
	Message string
	Errors  formErrors
}

type publicCoursesPage struct {
	Courses []storage.Course
}

func (a *App) home(ctx *Context) handler.Response {
	return a.render.Page("home", ctx.page("Treinamentos", homePage{Errors: formErrors{}}))
}

func (a *App) publicCourses(ctx *Context) handler.Response {
	courses, err := a.deps.Courses.ListPublished(ctx)
	if err != nil {
		return response.Error(err)
	}
	return a.render.Page("public_courses", ctx.page("Cursos", publicCoursesPage{Courses: courses}))
}

func (a *App) contact(ctx *Context) handler.Response {
	form := homePage{
		Name:    ctx.FormValue("name"),
		Phone:   ctx.FormValue("phone"),
		Message: ctx.FormValue("message"),
		Errors:  formErrors{},
	}
	form.Errors.require("name", form.Name, "Informe seu nome.")
	form.Errors.require("phone", form.Phone, "Informe seu telefone.")
	form.Errors.require("message", form.Message, "Escreva uma mensagem.")

	if form.Errors.Any() {
		return a.render.PageWithStatus("home", ctx.page("Treinamentos", form), http.StatusUnprocessableEntity)
	}

	if a.deps.WhatsApp != nil && a.cfg.NotifyNumber != "" {
		notifyCtx, cancel := contextWithTimeout(ctx, integrationTimeout)
		defer cancel()

		msg := "Novo contato pelo site:\nNome: " + form.Name + "\nTelefone: " + form.Phone + "\nMensagem: " + form.Message
		if err := a.deps.WhatsApp.SendText(notifyCtx, a.cfg.NotifyNumber, msg); err != nil {
			a.logger.ErrorContext(ctx, "contact whatsapp relay failed", "error", err)
		}
	}

	ctx.Flash(session.FlashSuccess, "Mensagem enviada! Em breve entraremos em contato.")
	return response.Redirect("/")
}
