// Package view renders the server-side HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded static assets rooted at the asset names,
// so "app.css" resolves directly.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// PageData wraps every rendered page. Content carries the page's typed
// view model.
type PageData struct {
	Title     string
	CSRFToken string
	UserName  string
	Flashes   []session.Flash
	Content   any
}

// Renderer holds the parsed page templates. Each page is the shared layout
// combined with one content template, so pages cannot collide on block
// names.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. Fails fast on any parse error so a
// broken template never reaches production traffic.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
	}

	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("view: failed to parse layout: %w", err)
	}

	entries, err := fs.ReadDir(templateFS, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("view: failed to read pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmpl, err := template.Must(layout.Clone()).ParseFS(templateFS, path.Join("templates/pages", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("view: failed to parse page %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".html")
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// MustNew panics on template parse errors.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Page renders the named page with 200 OK.
func (r *Renderer) Page(name string, data PageData) handler.Response {
	return r.PageWithStatus(name, data, 0)
}

// PageWithStatus renders the named page with a custom status code.
func (r *Renderer) PageWithStatus(name string, data PageData, status int) handler.Response {
	tmpl, ok := r.pages[name]
	if !ok {
		return response.Error(fmt.Errorf("view: unknown page %q", name))
	}
	return response.TemplateNameWithStatus(tmpl, "layout", data, status)
}

// Lookup returns the parsed template for a page, used by the error handler
// which writes directly to the response.
func (r *Renderer) Lookup(name string) (*template.Template, bool) {
	tmpl, ok := r.pages[name]
	return tmpl, ok
}
