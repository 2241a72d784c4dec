package server

import (
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
)

type pages struct {
	drawer   *services.MenuDrawService
	navMenus []string
	logger   *slog.Logger
}

func (p pages) handleHome(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "Home")
}

func (p pages) handlePage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, pageTitleFromSlug(r.PathValue("slug")))
}

func (p pages) render(w http.ResponseWriter, r *http.Request, title string) {
	navHTML := make([]string, 0, len(p.navMenus))
	for _, name := range p.navMenus {
		res, err := p.drawer.Draw(r.Context(), name)
		switch {
		case err == nil:
			navHTML = append(navHTML, renderNav(res.MenuName, res.Forest))
		case errors.Is(err, ports.ErrMenuNotFound):
			// the page still renders, just without this menu
		case errors.Is(err, services.ErrRequestPathMissing):
			routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "request_path_missing", "")
			return
		default:
			p.logger.ErrorContext(r.Context(), "draw menu failed", slog.String("menu", name), slog.String("error", err.Error()))
			routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "menu_draw_failed", "menu could not be drawn")
			return
		}
	}
	writePage(w, http.StatusOK, title, navHTML, "<h1>"+html.EscapeString(title)+"</h1>")
}

// pageTitleFromSlug turns "non-fiction-books" into "Non Fiction Books".
// Inner runs of separators are kept.
func pageTitleFromSlug(slug string) string {
	s := strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
	if s == "" {
		return "Page"
	}
	return titleCase(s)
}

// titleCase upper-cases every cased letter that follows an uncased rune and
// lower-cases the rest, so "item 1abc" becomes "Item 1Abc".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			r = unicode.ToLower(r)
		case cased:
			r = unicode.ToTitle(r)
		}
		b.WriteRune(r)
		prevCased = cased
	}
	return b.String()
}
