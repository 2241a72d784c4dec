package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacksonlee411/tree-menu/internal/routing"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/httperr"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

const maxBodyBytes = 64 << 10

type MenuAdmin interface {
	ListMenus(ctx context.Context) ([]types.Menu, error)
	CreateMenu(ctx context.Context, name string, title string) (types.Menu, error)
	ListMenuItems(ctx context.Context, menuName string) ([]types.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (types.MenuItem, error)
	CreateMenuItem(ctx context.Context, menuName string, in types.MenuItemInput) (types.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, in types.MenuItemInput) (types.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

type MenuDrawer interface {
	DrawPath(ctx context.Context, menuName string, requestPath string) (services.DrawResult, error)
}

// MenusController serves the internal menu API under /menu/api.
type MenusController struct {
	Admin  MenuAdmin
	Drawer MenuDrawer
	Logger *slog.Logger
}

type createMenuAPIRequest struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type treeAPIResponse struct {
	Menu   string              `json:"menu"`
	Path   string              `json:"path"`
	Active *int64              `json:"active_item_id"`
	Items  []menutree.TreeNode `json:"items"`
}

func (c MenusController) HandleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := c.Admin.ListMenus(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err, "list menus failed")
		return
	}
	if menus == nil {
		menus = make([]types.Menu, 0)
	}
	writeJSON(w, http.StatusOK, map[string]any{"menus": menus})
}

func (c MenusController) HandleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var req createMenuAPIRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := c.Admin.CreateMenu(r.Context(), req.Name, req.Title)
	if err != nil {
		c.writeServiceError(w, r, err, "create menu failed")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (c MenusController) HandleListItems(w http.ResponseWriter, r *http.Request) {
	menu := r.PathValue("menu")
	items, err := c.Admin.ListMenuItems(r.Context(), menu)
	if err != nil {
		c.writeServiceError(w, r, err, "list items failed")
		return
	}
	if items == nil {
		items = make([]types.MenuItem, 0)
	}
	writeJSON(w, http.StatusOK, map[string]any{"menu": menu, "items": items})
}

func (c MenusController) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in types.MenuItemInput
	if !decodeBody(w, r, &in) {
		return
	}
	it, err := c.Admin.CreateMenuItem(r.Context(), r.PathValue("menu"), in)
	if err != nil {
		c.writeServiceError(w, r, err, "create item failed")
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// HandleTree draws a menu for ?path= (default "/") and returns the nested,
// annotated tree.
func (c MenusController) HandleTree(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	res, err := c.Drawer.DrawPath(r.Context(), r.PathValue("menu"), path)
	if err != nil {
		c.writeServiceError(w, r, err, "draw failed")
		return
	}

	out := treeAPIResponse{Menu: res.MenuName, Path: res.CurrentPath, Items: res.Forest.Tree()}
	if i, ok := res.Forest.Active(); ok {
		id := res.Forest.Node(i).Item.ID
		out.Active = &id
	}
	writeJSON(w, http.StatusOK, out)
}

func (c MenusController) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}
	it, err := c.Admin.GetMenuItem(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err, "get item failed")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (c MenusController) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}
	var in types.MenuItemInput
	if !decodeBody(w, r, &in) {
		return
	}
	it, err := c.Admin.UpdateMenuItem(r.Context(), id, in)
	if err != nil {
		c.writeServiceError(w, r, err, "update item failed")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (c MenusController) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Admin.DeleteMenuItem(r.Context(), id); err != nil {
		c.writeServiceError(w, r, err, "delete item failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itemIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		routing.WriteFieldError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_item_id", "id", "item id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "request body unreadable or too large")
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return false
	}
	return true
}

func (c MenusController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	rc := routing.RouteClassInternalAPI
	switch {
	case errors.Is(err, ports.ErrMenuNotFound):
		routing.WriteError(w, r, rc, http.StatusNotFound, "menu_not_found", "")
	case errors.Is(err, ports.ErrMenuItemNotFound):
		routing.WriteError(w, r, rc, http.StatusNotFound, "menu_item_not_found", "")
	case errors.Is(err, ports.ErrMenuExists):
		routing.WriteError(w, r, rc, http.StatusConflict, "menu_exists", "")
	default:
		if br, ok := httperr.AsBadRequest(err); ok {
			routing.WriteFieldError(w, r, rc, http.StatusUnprocessableEntity, "invalid_request", br.Field(), br.Message())
			return
		}
		logger := c.Logger
		if logger == nil {
			logger = logging.Discard()
		}
		logger.ErrorContext(r.Context(), fallback, slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		routing.WriteError(w, r, rc, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
