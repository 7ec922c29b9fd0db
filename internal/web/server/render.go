package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/haclabs/haccare/internal/session"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "home", "edit", "records", "docs", "changelog", "error"}

var funcs = template.FuncMap{
	"isScreen": func(a session.Screen, name string) (bool, error) {
		sc, err := session.ParseScreen(name)
		if err != nil {
			return false, err
		}
		return a == sc, nil
	},
}

// renderer holds one template set per page, each layered over the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// page is what every template receives.
type page struct {
	Title  string
	User   string
	Screen session.Screen
	Flash  string
	Error  string
	Data   any
}

func (s *Server) page(c echo.Context, st *session.State, title string, data any) page {
	return page{
		Title:  title,
		User:   st.CurrentUser,
		Screen: st.Screen,
		Flash:  c.QueryParam("flash"),
		Data:   data,
	}
}

type errorData struct {
	Status  int
	Message string
}
