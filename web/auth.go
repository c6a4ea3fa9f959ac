package web

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	coreemail "github.com/treinahub/treinahub/core/email"
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/pkg/clientip"
	"github.com/treinahub/treinahub/storage"
)

const (
	passwordMinLength  = 8
	resetTokenLifetime = time.Hour
)

type loginPage struct {
	Email    string
	ReturnTo string
	Errors   formErrors
}

type forgotPasswordPage struct {
	Email  string
	Errors formErrors
}

type resetPasswordPage struct {
	Token  string
	Errors formErrors
}

func (a *App) showLogin(ctx *Context) handler.Response {
	if ctx.Session().IsAuthenticated() {
		return response.Redirect("/admin")
	}

	return a.render.Page("login", ctx.page("Entrar", loginPage{
		ReturnTo: ctx.Request().URL.Query().Get("return"),
		Errors:   formErrors{},
	}))
}

func (a *App) login(ctx *Context) handler.Response {
	email := ctx.FormValue("email")
	password := ctx.Request().PostFormValue("password")
	returnTo := ctx.FormValue("return")

	errs := formErrors{}
	errs.require("email", email, "Informe o e-mail.")
	errs.require("password", password, "Informe a senha.")

	if !errs.Any() {
		user, err := a.deps.Users.GetByEmail(ctx, email)
		if err == nil {
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
		}
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return response.Error(err)
			}
			errs["password"] = "E-mail ou senha incorretos."
		} else {
			sess, err := a.deps.Sessions.Authenticate(ctx, user.ID)
			if err != nil {
				return response.Error(err)
			}
			sess.SetData(SessionData{UserName: user.Name})
			ctx.UpdateSession(sess)

			// Successful login forgives earlier failed attempts.
			if a.deps.LoginLimiter != nil {
				_ = a.deps.LoginLimiter.Reset(ctx, "login:"+clientip.GetIP(ctx.Request()))
			}

			return response.Redirect(safeReturnPath(returnTo))
		}
	}

	return a.render.PageWithStatus("login", ctx.page("Entrar", loginPage{
		Email:    email,
		ReturnTo: returnTo,
		Errors:   errs,
	}), http.StatusUnprocessableEntity)
}

func (a *App) logout(ctx *Context) handler.Response {
	sess, err := a.deps.Sessions.Logout(ctx)
	if err != nil {
		return response.Error(err)
	}

	sess.AddFlash(session.FlashSuccess, "Você saiu da sua conta.")
	ctx.UpdateSession(sess)

	return response.Redirect("/login")
}

func (a *App) showForgotPassword(ctx *Context) handler.Response {
	return a.render.Page("forgot_password", ctx.page("Recuperar senha", forgotPasswordPage{
		Errors: formErrors{},
	}))
}

func (a *App) forgotPassword(ctx *Context) handler.Response {
	email := ctx.FormValue("email")

	errs := formErrors{}
	errs.require("email", email, "Informe o e-mail.")
	if email != "" && !coreemail.IsValidEmail(email) {
		errs["email"] = "Informe um e-mail válido."
	}

	if errs.Any() {
		return a.render.PageWithStatus("forgot_password", ctx.page("Recuperar senha", forgotPasswordPage{
			Email:  email,
			Errors: errs,
		}), http.StatusUnprocessableEntity)
	}

	// The flash is identical whether or not the account exists, so the
	// form cannot be used to probe registered emails.
	if user, err := a.deps.Users.GetByEmail(ctx, email); err == nil {
		if err := a.sendResetLink(ctx, user); err != nil {
			return response.Error(err)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Se o e-mail estiver cadastrado, você receberá um link de redefinição.")
	return response.Redirect("/esqueci-senha")
}

func (a *App) sendResetLink(ctx *Context, user storage.User) error {
	token, err := generateResetToken()
	if err != nil {
		return err
	}

	reset := storage.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenLifetime),
	}
	if err := a.deps.PasswordResets.Create(ctx, &reset); err != nil {
		return err
	}

	if a.deps.Email == nil {
		a.logger.WarnContext(ctx, "email sender not configured, reset link not delivered", "user_id", user.ID)
		return nil
	}

	link := a.cfg.URL + "/redefinir-senha/" + token
	return a.deps.Email.SendEmail(ctx, coreemail.SendEmailParams{
		SendTo:  user.Email,
		Subject: "Redefinição de senha",
		BodyHTML: "<p>Olá, " + user.Name + ".</p>" +
			"<p>Para redefinir sua senha, acesse o link abaixo. Ele expira em 1 hora.</p>" +
			`<p><a href="` + link + `">` + link + "</a></p>",
		Tag: "password-reset",
	})
}

func (a *App) showResetPassword(ctx *Context) handler.Response {
	token := ctx.Param("token")
	if _, err := a.validResetToken(ctx, token); err != nil {
		ctx.Flash(session.FlashError, "Link de redefinição inválido ou expirado.")
		return response.Redirect("/esqueci-senha")
	}

	return a.render.Page("reset_password", ctx.page("Redefinir senha", resetPasswordPage{
		Token:  token,
		Errors: formErrors{},
	}))
}

func (a *App) resetPassword(ctx *Context) handler.Response {
	token := ctx.Param("token")

	reset, err := a.validResetToken(ctx, token)
	if err != nil {
		ctx.Flash(session.FlashError, "Link de redefinição inválido ou expirado.")
		return response.Redirect("/esqueci-senha")
	}

	password := ctx.Request().PostFormValue("password")
	confirmation := ctx.Request().PostFormValue("password_confirmation")

	errs := formErrors{}
	if len(password) < passwordMinLength {
		errs["password"] = "A senha deve ter pelo menos 8 caracteres."
	}
	if password != confirmation {
		errs["password_confirmation"] = "As senhas não conferem."
	}

	if errs.Any() {
		return a.render.PageWithStatus("reset_password", ctx.page("Redefinir senha", resetPasswordPage{
			Token:  token,
			Errors: errs,
		}), http.StatusUnprocessableEntity)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return response.Error(err)
	}

	// Consume first: once marked used the token cannot authorize a second
	// change, even if the password update below fails.
	if err := a.deps.PasswordResets.Consume(ctx, reset.ID); err != nil {
		ctx.Flash(session.FlashError, "Link de redefinição inválido ou expirado.")
		return response.Redirect("/esqueci-senha")
	}

	if err := a.deps.Users.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return response.Error(err)
	}

	ctx.Flash(session.FlashSuccess, "Senha redefinida. Faça login com a nova senha.")
	return response.Redirect("/login")
}

func (a *App) validResetToken(ctx *Context, token string) (storage.PasswordReset, error) {
	if token == "" {
		return storage.PasswordReset{}, storage.ErrNotFound
	}

	reset, err := a.deps.PasswordResets.GetByToken(ctx, token)
	if err != nil {
		return storage.PasswordReset{}, err
	}
	if reset.Consumed() || reset.Expired() {
		return storage.PasswordReset{}, storage.ErrNotFound
	}
	return reset, nil
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
