package server

import (
	"html"
	"strings"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
)

// renderNav writes the forest as nested lists. Items on the active branch get
// the "open" class, the matched item "active" plus aria-current.
func renderNav(menuName string, f *menutree.Forest) string {
	var b strings.Builder
	b.WriteString(`<nav class="menu" data-menu="` + html.EscapeString(menuName) + `"><ul>`)

	prev := -1
	f.Walk(func(i int, depth int) bool {
		switch {
		case prev < 0:
		case depth > prev:
			b.WriteString("<ul>")
		default:
			b.WriteString("</li>")
			for d := prev; d > depth; d-- {
				b.WriteString("</ul></li>")
			}
		}
		writeNavItem(&b, f.Node(i))
		prev = depth
		return true
	})
	if prev >= 0 {
		b.WriteString("</li>")
		for d := prev; d > 0; d-- {
			b.WriteString("</ul></li>")
		}
	}

	b.WriteString("</ul></nav>")
	return b.String()
}

func writeNavItem(b *strings.Builder, n menutree.Node) {
	var classes []string
	if n.Active {
		classes = append(classes, "active")
	}
	if n.Open {
		classes = append(classes, "open")
	}
	if len(n.Children) > 0 {
		classes = append(classes, "has-children")
	}

	b.WriteString("<li")
	if len(classes) > 0 {
		b.WriteString(` class="` + strings.Join(classes, " ") + `"`)
	}
	b.WriteString(">")

	title := html.EscapeString(n.Item.Title)
	if n.Href == "" {
		b.WriteString("<span>" + title + "</span>")
		return
	}
	b.WriteString(`<a href="` + html.EscapeString(n.Href) + `"`)
	if n.Active {
		b.WriteString(` aria-current="page"`)
	}
	b.WriteString(">" + title + "</a>")
}
