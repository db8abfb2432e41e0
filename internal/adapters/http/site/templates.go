package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var assetFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(assetFS, "static")
	if err != nil {
		return assetFS
	}
	return sub
}

var funcs = template.FuncMap{ //nolint:gochecknoglobals // template helpers
	"join": strings.Join,
	"ts": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format(time.RFC3339)
	},
}

// pages holds one parsed template set per view.
type pages struct {
	sets map[string]*template.Template
}

func parsePages(routes []Route) (*pages, error) {
	p := &pages{sets: make(map[string]*template.Template, len(routes))}
	for _, r := range routes {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+r.template)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, r.template, err)
		}
		p.sets[r.template] = t
	}
	return p, nil
}

// render buffers the page so a template failure never sends a half page.
func (p *pages) render(w http.ResponseWriter, code int, name string, data page) error {
	t, ok := p.sets[name]
	if !ok {
		http.Error(w, "unknown view", http.StatusInternalServerError)
		return fmt.Errorf("%w: unknown template %s", ErrTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, err := w.Write(buf.Bytes())
	return err
}
