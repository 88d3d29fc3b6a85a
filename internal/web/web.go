// Package web holds the embedded page templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/ikkim/storefront/internal/cartview"
)

//go:embed templates/*.html static/*
var files embed.FS

// FuncMap is available to every page template.
var FuncMap = template.FuncMap{
	"money": cartview.Money,
}

// Templates parses every page template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(files, "templates/*.html")
}

// Static serves the stylesheet and the live cart script.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
