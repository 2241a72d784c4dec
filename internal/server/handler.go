package server

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/persistence"
	"github.com/jacksonlee411/tree-menu/modules/menu/presentation/controllers"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
	"github.com/jacksonlee411/tree-menu/pkg/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const defaultNavMenus = "main"

type HandlerOptions struct {
	// Store defaults to an empty in-memory store.
	Store ports.MenuStore
	// Classifier defaults to the allowlist at ALLOWLIST_PATH (or config/routing/allowlist.yaml).
	Classifier *routing.Classifier
	// Authorizer defaults to the casbin files under config/access, see loadAuthorizer.
	Authorizer authorizer
	// Registry defaults to a fresh registry with the Go and process collectors.
	Registry *prometheus.Registry
	Logger   *slog.Logger
	// NavMenus are drawn on every page, in order. Defaults to NAV_MENUS (comma separated) or "main".
	NavMenus []string
	// AdminUser/AdminPass default to MENU_ADMIN_USER/MENU_ADMIN_PASS.
	AdminUser string
	AdminPass string
}

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	classifier := opts.Classifier
	if classifier == nil {
		c, err := LoadClassifier()
		if err != nil {
			return nil, err
		}
		classifier = c
	}

	authorizer := opts.Authorizer
	if authorizer == nil {
		a, err := loadAuthorizer()
		if err != nil {
			return nil, err
		}
		authorizer = a
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	draws := metric.NewCounterWithRegistry(reg, "menu_draws_total", "Menu draws by menu and outcome.", "menu", "outcome")
	requests := metric.NewCounterWithRegistry(reg, "http_requests_total", "HTTP requests by route class, method and status.", "route_class", "method", "code")

	store := opts.Store
	if store == nil {
		store = persistence.NewMenuMemoryStore()
	}

	navMenus := opts.NavMenus
	if len(navMenus) == 0 {
		navMenus = parseNavMenus(getenvDefault("NAV_MENUS", defaultNavMenus))
	}

	creds := adminCredentials{User: opts.AdminUser, Pass: opts.AdminPass}
	if !creds.configured() {
		creds = adminCredentials{User: os.Getenv("MENU_ADMIN_USER"), Pass: os.Getenv("MENU_ADMIN_PASS")}
	}

	drawer := services.NewMenuDrawService(store,
		services.WithResolver(classifier),
		services.WithLogger(logger),
		services.WithDrawCounter(draws))
	writer := services.NewMenuWriteService(store, classifier, logger)

	api := controllers.MenusController{Admin: writer, Drawer: drawer, Logger: logger}
	pg := pages{drawer: drawer, navMenus: navMenus, logger: logger}

	router := routing.NewRouter(classifier, routing.WithPanicLogger(logger))

	router.Handle(routing.RouteClassUI, http.MethodGet, "/", http.HandlerFunc(pg.handleHome))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/pages/{slug}", http.HandlerFunc(pg.handlePage))

	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/menu/api/menus", http.HandlerFunc(api.HandleListMenus))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/menu/api/menus", http.HandlerFunc(api.HandleCreateMenu))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/menu/api/menus/{menu}/items", http.HandlerFunc(api.HandleListItems))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPost, "/menu/api/menus/{menu}/items", http.HandlerFunc(api.HandleCreateItem))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/menu/api/menus/{menu}/tree", http.HandlerFunc(api.HandleTree))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/menu/api/items/{id}", http.HandlerFunc(api.HandleGetItem))
	router.Handle(routing.RouteClassInternalAPI, http.MethodPut, "/menu/api/items/{id}", http.HandlerFunc(api.HandleUpdateItem))
	router.Handle(routing.RouteClassInternalAPI, http.MethodDelete, "/menu/api/items/{id}", http.HandlerFunc(api.HandleDeleteItem))

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(writeOK))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(writeOK))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/metrics", metric.HandlerFor(reg))

	var h http.Handler = router
	h = withRequestPath(h)
	h = withAuthz(classifier, authorizer, logger, h)
	h = withBasicAuth(classifier, creds, h)
	h = withAccessLog(classifier, logger, requests, h)
	h = withRequestID(h)
	return h, nil
}

// LoadClassifier reads the "server" entrypoint of the routing allowlist. The
// classifier doubles as the named-route resolver for menu items.
func LoadClassifier() (*routing.Classifier, error) {
	allowlistPath := os.Getenv("ALLOWLIST_PATH")
	if allowlistPath == "" {
		p, err := findConfigFile("config/routing/allowlist.yaml")
		if err != nil {
			return nil, err
		}
		allowlistPath = p
	}

	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}
	return routing.NewClassifier(a, "server")
}

func writeOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func parseNavMenus(raw string) []string {
	var out []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
