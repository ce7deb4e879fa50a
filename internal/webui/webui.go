package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"paradas.buscoruna.org/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// WebUI serves the browser front end and the debug pages.
type WebUI struct {
	*app.Application
	templates *template.Template
	static    fs.FS
}

func New(application *app.Application) (*WebUI, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	return &WebUI{Application: application, templates: tmpl, static: static}, nil
}
