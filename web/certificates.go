package web

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/storage"
)

// integrationTimeout bounds Drive and WhatsApp calls so a slow third party
// cannot hold a request handler hostage.
const integrationTimeout = 15 * time.Second

type certificatesListPage struct {
	Certificates []storage.CertificateView
	Students     []storage.Student
	Courses      []storage.Course
	HourOptions  []storage.CourseHours
	Errors       formErrors
}

func (a *App) listCertificates(ctx *Context) handler.Response {
	page, err := a.certificatesPage(ctx, formErrors{})
	if err != nil {
		return response.Error(err)
	}
	return a.render.Page("certificates_list", ctx.page("Certificados", page))
}

func (a *App) issueCertificate(ctx *Context) handler.Response {
	errs := formErrors{}

	studentID, err := uuid.Parse(ctx.FormValue("student_id"))
	if err != nil {
		errs["student_id"] = "Selecione o aluno."
	}
	courseID, err := uuid.Parse(ctx.FormValue("course_id"))
	if err != nil {
		errs["course_id"] = "Selecione o curso."
	}
	hoursID, err := uuid.Parse(ctx.FormValue("course_hours_id"))
	if err != nil {
		errs["course_hours_id"] = "Selecione a carga horária."
	}

	var student storage.Student
	if !errs.Any() {
		if student, err = a.deps.Students.GetByID(ctx, studentID); err != nil {
			errs["student_id"] = "Aluno não encontrado."
		}
		if _, err = a.deps.Courses.GetByID(ctx, courseID); err != nil {
			errs["course_id"] = "Curso não encontrado."
		}
		if hourEntry, err := a.deps.CourseHours.GetByID(ctx, hoursID); err != nil || !hourEntry.Active {
			errs["course_hours_id"] = "Carga horária indisponível."
		}
	}

	if errs.Any() {
		page, err := a.certificatesPage(ctx, errs)
		if err != nil {
			return response.Error(err)
		}
		return a.render.PageWithStatus("certificates_list", ctx.page("Certificados", page), http.StatusUnprocessableEntity)
	}

	code, err := generateCertificateCode()
	if err != nil {
		return response.Error(err)
	}

	cert := storage.Certificate{
		Code:          code,
		StudentID:     studentID,
		CourseID:      courseID,
		CourseHoursID: hoursID,
	}
	if err := a.deps.Certificates.Create(ctx, &cert); err != nil {
		return response.Error(err)
	}

	// Side effects are best-effort: the certificate exists and is
	// verifiable even if Drive or WhatsApp is down.
	a.uploadCertificateArtifact(ctx, cert)
	a.notifyCertificateIssued(ctx, student, cert)

	ctx.Flash(session.FlashSuccess, "Certificado "+code+" emitido com sucesso.")
	return response.Redirect("/admin/certificados")
}

func (a *App) verifyCertificate(ctx *Context) handler.Response {
	code := ctx.Param("codigo")

	cert, err := a.deps.Certificates.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.Error(response.ErrNotFound)
		}
		return response.Error(err)
	}

	png, err := qrcode.Encode(a.verificationURL(cert.Code), qrcode.Medium, 180)
	if err != nil {
		return response.Error(err)
	}

	return a.render.Page("certificate_verify", ctx.page("Certificado "+cert.Code, certificateVerifyPage{
		Code:        cert.Code,
		StudentName: cert.StudentName,
		CourseTitle: cert.CourseTitle,
		Hours:       cert.Hours,
		IssuedAt:    cert.IssuedAt,
		QRCode:      base64Encode(png),
	}))
}

type certificateVerifyPage struct {
	Code        string
	StudentName string
	CourseTitle string
	Hours       int
	IssuedAt    time.Time
	QRCode      string
}

func (a *App) certificatesPage(ctx *Context, errs formErrors) (certificatesListPage, error) {
	certs, err := a.deps.Certificates.List(ctx)
	if err != nil {
		return certificatesListPage{}, err
	}
	students, err := a.deps.Students.List(ctx)
	if err != nil {
		return certificatesListPage{}, err
	}
	courses, err := a.deps.Courses.List(ctx)
	if err != nil {
		return certificatesListPage{}, err
	}
	hours, err := a.deps.CourseHours.ListActive(ctx)
	if err != nil {
		return certificatesListPage{}, err
	}

	return certificatesListPage{
		Certificates: certs,
		Students:     students,
		Courses:      courses,
		HourOptions:  hours,
		Errors:       errs,
	}, nil
}

// uploadCertificateArtifact stores the verification QR code on Drive and
// records the shareable link on the certificate.
func (a *App) uploadCertificateArtifact(ctx *Context, cert storage.Certificate) {
	if a.deps.Drive == nil {
		return
	}

	png, err := qrcode.Encode(a.verificationURL(cert.Code), qrcode.Medium, 512)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to encode certificate qr", "error", err, "code", cert.Code)
		return
	}

	uploadCtx, cancel := contextWithTimeout(ctx, integrationTimeout)
	defer cancel()

	result, err := a.deps.Drive.Upload(uploadCtx, cert.Code+".png", "image/png", bytes.NewReader(png))
	if err != nil {
		a.logger.ErrorContext(ctx, "certificate drive upload failed", "error", err, "code", cert.Code)
		return
	}

	if err := a.deps.Certificates.SetDriveFile(ctx, cert.ID, result.FileID, result.WebViewLink); err != nil {
		a.logger.ErrorContext(ctx, "failed to record drive file", "error", err, "code", cert.Code)
	}
}

// notifyCertificateIssued tells the student over WhatsApp where to verify
// the new certificate.
func (a *App) notifyCertificateIssued(ctx *Context, student storage.Student, cert storage.Certificate) {
	if a.deps.WhatsApp == nil || student.Phone == "" {
		return
	}

	notifyCtx, cancel := contextWithTimeout(ctx, integrationTimeout)
	defer cancel()

	msg := "Olá, " + student.Name + "! Seu certificado foi emitido. Verifique em: " + a.verificationURL(cert.Code)
	if err := a.deps.WhatsApp.SendText(notifyCtx, student.Phone, msg); err != nil {
		a.logger.ErrorContext(ctx, "certificate whatsapp notice failed", "error", err, "code", cert.Code)
	}
}

func (a *App) verificationURL(code string) string {
	return a.cfg.URL + "/certificados/" + code
}

// generateCertificateCode returns a short unambiguous code like
// "A3F9KQ2MZ8", unique enough at this issue volume for a public lookup key.
func generateCertificateCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)[:10], nil
}
