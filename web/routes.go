package web

import (
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/middleware"
	"github.com/treinahub/treinahub/pkg/clientip"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
)

func (a *App) routes(r router.Router[*Context]) {
	r.Get("/static/{file}", a.staticFile)

	// Public pages
	r.Get("/", a.home)
	r.Get("/cursos", a.publicCourses)
	r.Get("/certificados/{codigo}", a.verifyCertificate)
	r.With(a.rateLimited(a.deps.ContactLimiter, "contact")).Post("/contato", a.contact)

	// Auth
	r.Get("/login", a.showLogin)
	r.With(a.rateLimited(a.deps.LoginLimiter, "login")).Post("/login", a.login)
	r.Get("/logout", a.logout)
	r.Get("/esqueci-senha", a.showForgotPassword)
	r.With(a.rateLimited(a.deps.ForgotLimiter, "forgot")).Post("/esqueci-senha", a.forgotPassword)
	r.Get("/redefinir-senha/{token}", a.showResetPassword)
	r.Post("/redefinir-senha/{token}", a.resetPassword)

	// Admin area
	r.With(a.requireAuth()).Group(func(r router.Router[*Context]) {
		r.Get("/admin", a.dashboard)

		r.Get("/admin/alunos", a.listStudents)
		r.Get("/admin/alunos/novo", a.newStudent)
		r.Post("/admin/alunos", a.createStudent)
		r.Get("/admin/alunos/{id}/editar", a.editStudent)
		r.Put("/admin/alunos/{id}", a.updateStudent)
		r.Delete("/admin/alunos/{id}", a.deleteStudent)

		r.Get("/admin/professores", a.listTeachers)
		r.Get("/admin/professores/novo", a.newTeacher)
		r.Post("/admin/professores", a.createTeacher)
		r.Get("/admin/professores/{id}/editar", a.editTeacher)
		r.Put("/admin/professores/{id}", a.updateTeacher)
		r.Delete("/admin/professores/{id}", a.deleteTeacher)

		r.Get("/admin/cursos", a.listCourses)
		r.Get("/admin/cursos/novo", a.newCourse)
		r.Post("/admin/cursos", a.createCourse)
		r.Get("/admin/cursos/{id}/editar", a.editCourse)
		r.Put("/admin/cursos/{id}", a.updateCourse)
		r.Delete("/admin/cursos/{id}", a.deleteCourse)

		r.Get("/admin/cargas-horarias", a.listCourseHours)
		r.Post("/admin/cargas-horarias", a.createCourseHours)
		r.Put("/admin/cargas-horarias/{id}", a.updateCourseHours)
		r.Delete("/admin/cargas-horarias/{id}", a.deleteCourseHours)

		r.Get("/admin/certificados", a.listCertificates)
		r.Post("/admin/certificados", a.issueCertificate)
	})
}

// rateLimited throttles an abuse-prone endpoint, keying the counter per
// action and client IP so one abusive client cannot lock out others and
// one endpoint's lockout does not spill into another.
func (a *App) rateLimited(limiter *ratelimiter.Limiter, action string) handler.Middleware[*Context] {
	if limiter == nil {
		return func(next handler.HandlerFunc[*Context]) handler.HandlerFunc[*Context] {
			return next
		}
	}
	return middleware.RateLimitWithConfig(middleware.RateLimitConfig[*Context]{
		Limiter: limiter,
		KeyFunc: func(ctx *Context) string {
			return action + ":" + clientip.GetIP(ctx.Request())
		},
	})
}
