package page

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

const IndexTemplate = "index.tmpl"

//go:embed templates/*.tmpl
var templates embed.FS

//go:embed static
var static embed.FS

// Templates parses the page templates, ready for gin's SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templates, "templates/*.tmpl"))
}

// Assets serves the page scripts.
func Assets() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
