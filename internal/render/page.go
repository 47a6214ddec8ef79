package render

import (
	"fmt"
	"html/template"
	"io"
)

// PageMeta is the document-level metadata of a rendered page.
type PageMeta struct {
	Lang        string
	Title       string
	Description string
}

type pageView struct {
	PageMeta
	Body template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  {{- if .Description}}
  <meta name="description" content="{{.Description}}">
  <meta property="og:description" content="{{.Description}}">
  {{- end}}
  <meta property="og:title" content="{{.Title}}">
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

// WritePage writes a full HTML document around the rendered blocks.
func WritePage(w io.Writer, meta PageMeta, res *Result) error {
	if meta.Lang == "" {
		meta.Lang = "en"
	}
	if err := pageTemplate.Execute(w, pageView{PageMeta: meta, Body: res.HTML()}); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
