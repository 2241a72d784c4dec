package ports

import (
	"context"
	"errors"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
)

var (
	ErrMenuNotFound     = errors.New("menu_not_found")
	ErrMenuExists       = errors.New("menu_exists")
	ErrMenuItemNotFound = errors.New("menu_item_not_found")
)

// MenuReadStore is the draw path. ListMenuItems must answer with a single
// round-trip, ordered by (parent id, order, id), with the menu name joined in.
// An unknown menu yields an empty slice, not an error.
type MenuReadStore interface {
	ListMenuItems(ctx context.Context, menuName string) ([]types.MenuItem, error)
}

type MenuStore interface {
	MenuReadStore
	ListMenus(ctx context.Context) ([]types.Menu, error)
	GetMenu(ctx context.Context, name string) (types.Menu, error)
	CreateMenu(ctx context.Context, name string, title string) (types.Menu, error)
	GetMenuItem(ctx context.Context, id int64) (types.MenuItem, error)
	CreateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}
