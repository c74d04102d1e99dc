// Package web holds the server-rendered pages and their echo renderer.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"pos-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages rendered through the layout
const (
	PageLogin     = "login.html"
	PagePOS       = "pos.html"
	PageDashboard = "dashboard.html"
)

// Renderer implements echo.Renderer over one template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"money":     Money,
		"storeName": func(id model.StoreID) string { return id.Name() },
		"datetime":  func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
		"percent":   percent,
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageLogin, PagePOS, PageDashboard} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Money formats an amount the way receipts and the dashboard show it
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// percent returns part/whole as a 0-100 value with one decimal, 0 for an empty whole
func percent(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "0"
	}
	return part.Mul(decimal.NewFromInt(100)).Div(whole).StringFixed(1)
}
