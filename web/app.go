// Package web wires the HTTP application: routes, controllers, and the
// middleware stack over the session, CSRF, and rate limiting layers.
package web

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/treinahub/treinahub/core/email"
	"github.com/treinahub/treinahub/core/router"
	"github.com/treinahub/treinahub/core/sessiontransport"
	"github.com/treinahub/treinahub/integration/drive"
	"github.com/treinahub/treinahub/integration/whatsapp"
	"github.com/treinahub/treinahub/middleware"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
	"github.com/treinahub/treinahub/view"
)

// Config holds application-level settings.
type Config struct {
	Env   string `env:"APP_ENV" envDefault:"production"`
	Debug bool   `env:"APP_DEBUG" envDefault:"false"`
	// URL is the public base URL, used in emailed links and QR codes.
	URL string `env:"APP_URL" envDefault:"http://localhost:8080"`
	// NotifyNumber receives contact form relays over WhatsApp.
	NotifyNumber string `env:"WHATSAPP_NOTIFY_NUMBER"`
}

// Deps carries everything the web layer needs. Email, WhatsApp, and Drive
// are optional: nil disables the corresponding side effects.
type Deps struct {
	Config   Config
	Logger   *slog.Logger
	Renderer *view.Renderer
	Sessions *sessiontransport.Cookie[SessionData]

	LoginLimiter   *ratelimiter.Limiter
	ForgotLimiter  *ratelimiter.Limiter
	ContactLimiter *ratelimiter.Limiter

	Users          UserStore
	Students       StudentStore
	Teachers       TeacherStore
	Courses        CourseStore
	CourseHours    CourseHoursStore
	Certificates   CertificateStore
	PasswordResets PasswordResetStore

	Email    email.EmailSender
	WhatsApp *whatsapp.Client
	Drive    *drive.Client
}

// App bundles the handlers and their dependencies.
type App struct {
	cfg    Config
	logger *slog.Logger
	render *view.Renderer
	deps   Deps
}

// New builds the application's HTTP handler: router, middleware stack, and
// all routes.
func New(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	app := &App{
		cfg:    deps.Config,
		logger: deps.Logger,
		render: deps.Renderer,
		deps:   deps,
	}

	r := router.New(
		router.WithContextFactory(newContext),
		router.WithErrorHandler(app.errorHandler),
		router.WithLogger[*Context](deps.Logger),
	)

	r.Use(
		middleware.RequestID[*Context](),
		middleware.Logging[*Context](deps.Logger),
		middleware.Session[*Context, SessionData](deps.Sessions),
		middleware.CSRFWithConfig[*Context, SessionData](middleware.CSRFConfig[*Context]{
			ErrorHandler: app.csrfFailure,
		}),
	)

	app.routes(r)

	// Method override must run before the router dispatches on the verb.
	return middleware.MethodOverride(r)
}
