package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed views
var viewsFS embed.FS

//go:embed public
var publicFS embed.FS

// ViewsFS returns the templates shipped with the front end, rooted at the
// views directory.
func ViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// PublicFS returns the static assets served under /static.
func PublicFS() fs.FS {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewViewEngine returns a django engine over the embedded templates with the
// template filters registered. A non nil override replaces the embedded
// templates, e.g. an os.DirFS during development.
func NewViewEngine(override fs.FS, reload bool) (*django.Engine, error) {
	if err := RegisterFilters(); err != nil {
		return nil, err
	}

	source := ViewsFS()
	if override != nil {
		source = override
	}

	engine := django.NewFileSystem(http.FS(source), ".html")
	engine.Reload(reload)
	return engine, nil
}
