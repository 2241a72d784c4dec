package server

import (
	"html"
	"net/http"
	"strings"
)

func writePage(w http.ResponseWriter, status int, title string, navHTML []string, bodyHTML string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(renderShell(title, navHTML, bodyHTML)))
}

func renderShell(title string, navHTML []string, bodyHTML string) string {
	var b strings.Builder
	b.WriteString("<!doctype html><html><head>")
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString("<title>" + html.EscapeString(title) + "</title>")
	b.WriteString("<style>" + shellCSS + "</style>")
	b.WriteString("</head><body>")
	b.WriteString(`<header id="nav">`)
	for _, n := range navHTML {
		b.WriteString(n)
	}
	b.WriteString("</header>")
	b.WriteString(`<main id="content">`)
	b.WriteString(bodyHTML)
	b.WriteString("</main></body></html>")
	return b.String()
}

const shellCSS = `.menu ul ul{display:none}` +
	`.menu li.open>ul{display:block}` +
	`.menu li.active>a{font-weight:bold}`
