package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/pkg/httperr"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
)

// MenuWriteService owns menu administration and the item validation rules the
// draw path relies on: same-menu parents, one usable URL source per item and
// no duplicate URLs within a menu.
type MenuWriteService struct {
	store    ports.MenuStore
	resolver menutree.URLResolver
	logger   *slog.Logger
}

func NewMenuWriteService(store ports.MenuStore, resolver menutree.URLResolver, logger *slog.Logger) *MenuWriteService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MenuWriteService{store: store, resolver: resolver, logger: logger}
}

func (s *MenuWriteService) ListMenus(ctx context.Context) ([]types.Menu, error) {
	return s.store.ListMenus(ctx)
}

func (s *MenuWriteService) CreateMenu(ctx context.Context, name string, title string) (types.Menu, error) {
	name = strings.TrimSpace(name)
	title = strings.TrimSpace(title)
	if name == "" {
		return types.Menu{}, httperr.NewFieldBadRequest("name", "menu name is required")
	}
	if utf8.RuneCountInString(name) > types.MenuNameMaxLen {
		return types.Menu{}, httperr.NewFieldBadRequest("name", fmt.Sprintf("menu name exceeds %d characters", types.MenuNameMaxLen))
	}
	if utf8.RuneCountInString(title) > types.MenuTitleMaxLen {
		return types.Menu{}, httperr.NewFieldBadRequest("title", fmt.Sprintf("menu title exceeds %d characters", types.MenuTitleMaxLen))
	}

	m, err := s.store.CreateMenu(ctx, name, title)
	if err != nil {
		return types.Menu{}, err
	}
	s.logger.InfoContext(ctx, "menu created", slog.Int64("menu_id", m.ID), slog.String("menu", m.Name))
	return m, nil
}

// ListMenuItems returns the flat rows of an existing menu (possibly none).
func (s *MenuWriteService) ListMenuItems(ctx context.Context, menuName string) ([]types.MenuItem, error) {
	m, err := s.store.GetMenu(ctx, strings.TrimSpace(menuName))
	if err != nil {
		return nil, err
	}
	return s.store.ListMenuItems(ctx, m.Name)
}

func (s *MenuWriteService) CreateMenuItem(ctx context.Context, menuName string, in types.MenuItemInput) (types.MenuItem, error) {
	m, err := s.store.GetMenu(ctx, strings.TrimSpace(menuName))
	if err != nil {
		return types.MenuItem{}, err
	}

	item, err := s.validate(ctx, m, 0, in)
	if err != nil {
		return types.MenuItem{}, err
	}

	created, err := s.store.CreateMenuItem(ctx, item)
	if err != nil {
		return types.MenuItem{}, err
	}
	s.logger.InfoContext(ctx, "menu item created",
		slog.String("menu", m.Name),
		slog.Int64("item_id", created.ID),
		slog.String("title", created.Title))
	return created, nil
}

func (s *MenuWriteService) GetMenuItem(ctx context.Context, id int64) (types.MenuItem, error) {
	return s.store.GetMenuItem(ctx, id)
}

func (s *MenuWriteService) UpdateMenuItem(ctx context.Context, id int64, in types.MenuItemInput) (types.MenuItem, error) {
	existing, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		return types.MenuItem{}, err
	}
	m := types.Menu{ID: existing.MenuID, Name: existing.MenuName}

	item, err := s.validate(ctx, m, id, in)
	if err != nil {
		return types.MenuItem{}, err
	}
	item.ID = id

	updated, err := s.store.UpdateMenuItem(ctx, item)
	if err != nil {
		return types.MenuItem{}, err
	}
	s.logger.InfoContext(ctx, "menu item updated", slog.String("menu", m.Name), slog.Int64("item_id", id))
	return updated, nil
}

// DeleteMenuItem removes the item and, by cascade, its descendants.
func (s *MenuWriteService) DeleteMenuItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "menu item deleted", slog.Int64("item_id", id))
	return nil
}

func (s *MenuWriteService) validate(ctx context.Context, m types.Menu, selfID int64, in types.MenuItemInput) (types.MenuItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.MenuItem{}, httperr.NewFieldBadRequest("title", "title is required")
	}
	if utf8.RuneCountInString(title) > types.ItemTitleMaxLen {
		return types.MenuItem{}, httperr.NewFieldBadRequest("title", fmt.Sprintf("title exceeds %d characters", types.ItemTitleMaxLen))
	}
	if in.Order < 0 {
		return types.MenuItem{}, httperr.NewFieldBadRequest("order", "order must not be negative")
	}

	named := strings.TrimSpace(in.NamedURL)
	direct := menutree.NormalizeHref(in.URL)
	if utf8.RuneCountInString(named) > types.NamedURLMaxLen {
		return types.MenuItem{}, httperr.NewFieldBadRequest("named_url", fmt.Sprintf("named url exceeds %d characters", types.NamedURLMaxLen))
	}
	if utf8.RuneCountInString(direct) > types.URLMaxLen {
		return types.MenuItem{}, httperr.NewFieldBadRequest("url", fmt.Sprintf("url exceeds %d characters", types.URLMaxLen))
	}

	var resolved string
	switch {
	case named != "":
		p, ok := "", false
		if s.resolver != nil {
			p, ok = s.resolver.Reverse(named)
		}
		if !ok {
			return types.MenuItem{}, httperr.NewFieldBadRequest("named_url", fmt.Sprintf("could not find named url %q", named))
		}
		resolved = menutree.NormalizeHref(p)
	case direct != "":
		resolved = direct
	default:
		return types.MenuItem{}, httperr.NewBadRequest("specify either a named url or a direct url")
	}

	if in.ParentID != nil {
		parent, err := s.store.GetMenuItem(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, ports.ErrMenuItemNotFound) {
				return types.MenuItem{}, httperr.NewFieldBadRequest("parent_id", "parent item not found")
			}
			return types.MenuItem{}, err
		}
		if parent.MenuID != m.ID {
			return types.MenuItem{}, httperr.NewFieldBadRequest("parent_id", "parent item must belong to the same menu")
		}
	}

	siblings, err := s.store.ListMenuItems(ctx, m.Name)
	if err != nil {
		return types.MenuItem{}, err
	}
	if selfID != 0 && in.ParentID != nil && createsCycle(siblings, selfID, *in.ParentID) {
		return types.MenuItem{}, httperr.NewFieldBadRequest("parent_id", "parent item cannot be the item itself or one of its descendants")
	}
	if resolved != "" {
		for _, other := range siblings {
			if other.ID == selfID {
				continue
			}
			otherURL := menutree.NormalizeHref(menutree.ResolveURL(other, s.resolver))
			if otherURL == resolved || (named != "" && other.NamedURL == named) {
				return types.MenuItem{}, httperr.NewFieldBadRequest("url", fmt.Sprintf("this url already exists in the selected menu %q", resolved))
			}
		}
	}

	return types.MenuItem{
		MenuID:   m.ID,
		MenuName: m.Name,
		ParentID: in.ParentID,
		Title:    title,
		NamedURL: named,
		URL:      direct,
		Order:    in.Order,
	}, nil
}

// createsCycle reports whether making parentID the parent of selfID would put
// selfID on its own ancestor chain.
func createsCycle(items []types.MenuItem, selfID int64, parentID int64) bool {
	parents := make(map[int64]*int64, len(items))
	for _, it := range items {
		parents[it.ID] = it.ParentID
	}
	cur := parentID
	for range len(items) + 1 {
		if cur == selfID {
			return true
		}
		next, ok := parents[cur]
		if !ok || next == nil {
			return false
		}
		cur = *next
	}
	return true
}
