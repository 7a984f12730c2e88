package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/views/home"
	"github.com/vindennt/quick-little-shop/internal/views/marketplace"
	"github.com/vindennt/quick-little-shop/internal/views/navbar"
	"github.com/vindennt/quick-little-shop/internal/views/sell"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	pageHome        = "home"
	pageMarketplace = "marketplace"
	pageSell        = "sell"
)

// PageData is the root value every page template receives.
type PageData struct {
	View string
	// Next is the current page with any dialog parameters removed
	Next      string
	LoginURL  string
	SignupURL string
	Nav       navbar.Snapshot
	Home      home.Snapshot
	Market    marketplace.Snapshot
	Sell      SellPage
}

type SellPage struct {
	Form       sell.Form
	Message    string
	Success    bool
	Submitting bool
	Categories []models.Category
	Conditions []models.Condition
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
	items *template.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageHome, pageMarketplace, pageSell} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	r.items = r.pages[pageMarketplace].Lookup("items")
	return r, nil
}

// Page renders name into a buffer first so a template error still yields a
// clean 500.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderItems renders only the listing fragment, for the live channel.
func (r *Renderer) RenderItems(snap marketplace.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := r.items.Execute(&buf, snap); err != nil {
		return "", fmt.Errorf("render items: %w", err)
	}
	return buf.String(), nil
}

func staticFiles() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
