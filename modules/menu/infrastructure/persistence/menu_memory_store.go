package persistence

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
)

// MenuMemoryStore keeps menus in process. It backs MENU_STORE=memory and the
// tests; ordering and cascade rules match the SQL stores.
type MenuMemoryStore struct {
	mu         sync.RWMutex
	nextMenuID int64
	nextItemID int64
	menus      map[int64]types.Menu
	byName     map[string]int64
	items      map[int64]types.MenuItem
}

func NewMenuMemoryStore() *MenuMemoryStore {
	return &MenuMemoryStore{
		menus:  map[int64]types.Menu{},
		byName: map[string]int64{},
		items:  map[int64]types.MenuItem{},
	}
}

var _ ports.MenuStore = (*MenuMemoryStore)(nil)

func (s *MenuMemoryStore) ListMenus(_ context.Context) ([]types.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Menu, 0, len(s.menus))
	for _, m := range s.menus {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b types.Menu) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *MenuMemoryStore) GetMenu(_ context.Context, name string) (types.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return types.Menu{}, ports.ErrMenuNotFound
	}
	return s.menus[id], nil
}

func (s *MenuMemoryStore) CreateMenu(_ context.Context, name string, title string) (types.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; ok {
		return types.Menu{}, ports.ErrMenuExists
	}
	s.nextMenuID++
	m := types.Menu{ID: s.nextMenuID, Name: name, Title: title}
	s.menus[m.ID] = m
	s.byName[name] = m.ID
	return m, nil
}

func (s *MenuMemoryStore) ListMenuItems(_ context.Context, menuName string) ([]types.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	menuID, ok := s.byName[menuName]
	if !ok {
		return []types.MenuItem{}, nil
	}
	out := make([]types.MenuItem, 0)
	for _, it := range s.items {
		if it.MenuID == menuID {
			it.ParentID = clonePtr(it.ParentID)
			out = append(out, it)
		}
	}
	slices.SortFunc(out, compareStoreOrder)
	return out, nil
}

func (s *MenuMemoryStore) GetMenuItem(_ context.Context, id int64) (types.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return types.MenuItem{}, ports.ErrMenuItemNotFound
	}
	return it, nil
}

func (s *MenuMemoryStore) CreateMenuItem(_ context.Context, item types.MenuItem) (types.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.menus[item.MenuID]
	if !ok {
		return types.MenuItem{}, ports.ErrMenuNotFound
	}
	if item.ParentID != nil {
		if _, ok := s.items[*item.ParentID]; !ok {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
	}
	s.nextItemID++
	item.ID = s.nextItemID
	item.MenuName = m.Name
	item.ParentID = clonePtr(item.ParentID)
	s.items[item.ID] = item
	return item, nil
}

func (s *MenuMemoryStore) UpdateMenuItem(_ context.Context, item types.MenuItem) (types.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return types.MenuItem{}, ports.ErrMenuItemNotFound
	}
	if item.ParentID != nil {
		if _, ok := s.items[*item.ParentID]; !ok {
			return types.MenuItem{}, ports.ErrMenuItemNotFound
		}
	}
	existing.ParentID = clonePtr(item.ParentID)
	existing.Title = item.Title
	existing.NamedURL = item.NamedURL
	existing.URL = item.URL
	existing.Order = item.Order
	s.items[existing.ID] = existing
	return existing, nil
}

// DeleteMenuItem removes id and every item below it.
func (s *MenuMemoryStore) DeleteMenuItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ports.ErrMenuItemNotFound
	}
	doomed := []int64{id}
	for len(doomed) > 0 {
		cur := doomed[len(doomed)-1]
		doomed = doomed[:len(doomed)-1]
		delete(s.items, cur)
		for _, it := range s.items {
			if it.ParentID != nil && *it.ParentID == cur {
				doomed = append(doomed, it.ID)
			}
		}
	}
	return nil
}

// compareStoreOrder is (parent, order, id) with root items first.
func compareStoreOrder(a, b types.MenuItem) int {
	switch {
	case a.ParentID == nil && b.ParentID != nil:
		return -1
	case a.ParentID != nil && b.ParentID == nil:
		return 1
	case a.ParentID != nil && b.ParentID != nil:
		if c := cmp.Compare(*a.ParentID, *b.ParentID); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func clonePtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
