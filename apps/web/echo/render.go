package echoweb

import (
	"embed"
	"html/template"
	"io"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/session"
)

//go:embed all:templates
var templateFS embed.FS

var pages = []string{"home", "about", "programs", "contact", "login", "dashboard", "form", "enrollment"}

type pageData struct {
	AppName string
	Title   string
	Session session.Session
	Data    interface{}
}

type renderer struct {
	appName   string
	templates map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(conf *core.Config) *renderer {
	r := &renderer{appName: conf.AppName, templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		r.templates[page] = template.Must(template.ParseFS(templateFS,
			path.Join("templates", "_layout.gohtml"),
			path.Join("templates", page+".gohtml"),
		))
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("unknown page %q", name)
	}
	pd, ok := data.(pageData)
	if !ok {
		pd = pageData{Data: data}
	}
	pd.AppName = r.appName
	pd.Session = session.FromRequest(ctx.Request())
	return tmpl.ExecuteTemplate(w, "layout", pd)
}

func render(ctx echo.Context, code int, page, title string, data interface{}) error {
	return ctx.Render(code, page, pageData{Title: title, Data: data})
}
