// Package web holds the landing page template and its static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates parses every page template.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}

// Static returns the asset tree served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}
