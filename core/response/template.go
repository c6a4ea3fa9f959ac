package response

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
)

// TemplateName renders a named template from a template collection
// (e.g. from ParseFS or ParseGlob) with 200 OK status.
// The template is buffered before writing, so a render error never
// produces partial output.
func TemplateName(tmpl *template.Template, name string, data any) handler.Response {
	return TemplateNameWithStatus(tmpl, name, data, http.StatusOK)
}

// TemplateNameWithStatus renders a named template with a custom status code.
func TemplateNameWithStatus(tmpl *template.Template, name string, data any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return fmt.Errorf("template is nil")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if status == 0 {
			status = http.StatusOK
		}

		// Buffer the output first so template errors can still be
		// converted into an error page by the router's error handler.
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return err
		}

		w.WriteHeader(status)
		_, writeErr := w.Write(buf.Bytes())
		return writeErr
	}
}
