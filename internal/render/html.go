package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/minitcraft/minit/internal/minutes"
)

// Raw HTML is allowed because Markdown escapes every "<" in user text and
// only emits <br> itself.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ms">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; max-width: 48em; margin: 2em auto; }
h1, h1 + p, h1 + p + p { text-align: center; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #888; padding: 4px 6px; vertical-align: top; }
th { background: #ddd; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLFragment converts md to HTML.
func HTMLFragment(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// HTML renders rec as a standalone HTML page.
func HTML(rec minutes.Record) ([]byte, error) {
	body, err := HTMLFragment(Markdown(rec))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: DocumentTitle(rec.Header.Jenis) + " " + rec.Header.Siri,
		Body:  body,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
