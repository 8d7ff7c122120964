package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

var pages = []string{
	"production",
	"customer_list",
	"customer_form",
	"product_list",
	"product_form",
	"order_list",
	"order_form",
	"order_detail",
	"order_items",
	"error",
}

// Renderer implements echo.Renderer over the embedded page templates. Each
// page is parsed together with the shared layout so pages can't step on
// each other's block definitions.
type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	t := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tpl, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t[name] = tpl
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not registered", name)
	}
	return tpl.ExecuteTemplate(w, "layout", data)
}
