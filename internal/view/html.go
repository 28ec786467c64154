package view

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	Title       string
	Placeholder string
	RefreshSecs int
	Display
}

// WriteHTML renders the display as a standalone page that reloads itself
// every refreshSecs seconds (no reload when refreshSecs <= 0).
func WriteHTML(w io.Writer, d Display, refreshSecs int) error {
	return page.Execute(w, pageData{
		Title:       Title,
		Placeholder: Placeholder,
		RefreshSecs: refreshSecs,
		Display:     d,
	})
}
