package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/persistence"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/jacksonlee411/tree-menu/pkg/httperr"
)

const sample = `
version: 1
menus:
  - name: main
    title: Main navigation
    items:
      - title: Home
        named_url: home
      - title: Catalog
        url: /catalog/
        children:
          - title: Item 1
            url: catalog/item-1/
          - title: Item 2
            url: /catalog/item-2/
            order: 7
  - name: footer
    items:
      - title: About
        url: /about/
`

var routes = menutree.RouteMap{"home": "/"}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, f.Menus, 2)
	assert.Equal(t, "main", f.Menus[0].Name)
	require.Len(t, f.Menus[0].Items[1].Children, 2)
	assert.Nil(t, f.Menus[0].Items[0].Order)
	assert.Equal(t, 7, *f.Menus[0].Items[1].Children[1].Order)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"version":       "version: 2\nmenus: []\n",
		"unknown field": "version: 1\nmenus:\n  - name: main\n    colour: red\n",
		"missing name":  "version: 1\nmenus:\n  - title: x\n",
		"duplicate":     "version: 1\nmenus:\n  - name: a\n  - name: ' a '\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMenuMemoryStore()
	w := services.NewMenuWriteService(store, routes, nil)

	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	rep, err := Apply(ctx, w, f, nil)
	require.NoError(t, err)
	assert.Equal(t, Report{MenusCreated: 2, ItemsCreated: 5}, rep)

	items, err := store.ListMenuItems(ctx, "main")
	require.NoError(t, err)
	require.Len(t, items, 4)

	byTitle := make(map[string]types.MenuItem, len(items))
	for _, it := range items {
		byTitle[it.Title] = it
	}
	catalog := byTitle["Catalog"]
	assert.Equal(t, 1, catalog.Order)
	require.NotNil(t, byTitle["Item 1"].ParentID)
	assert.Equal(t, catalog.ID, *byTitle["Item 1"].ParentID)
	assert.Equal(t, "/catalog/item-1/", byTitle["Item 1"].URL)
	assert.Equal(t, 7, byTitle["Item 2"].Order)

	forest := menutree.BuildForest(items, routes)
	active, ok := menutree.Annotate(forest, menutree.NormalizePath("/catalog/item-2"))
	require.True(t, ok)
	assert.Equal(t, "Item 2", forest.Node(active).Item.Title)

	// re-running skips existing menus
	rep, err = Apply(ctx, w, f, nil)
	require.NoError(t, err)
	assert.Equal(t, Report{MenusSkipped: 2}, rep)
}

func TestApply_InvalidItem(t *testing.T) {
	ctx := context.Background()
	w := services.NewMenuWriteService(persistence.NewMenuMemoryStore(), routes, nil)

	f := File{Version: 1, Menus: []Menu{{
		Name: "main",
		Items: []Item{
			{Title: "Home", URL: "/"},
			{Title: "Broken", NamedURL: "nope"},
		},
	}}}
	rep, err := Apply(ctx, w, f, nil)
	require.Error(t, err)
	assert.Equal(t, 1, rep.ItemsCreated)
	assert.True(t, httperr.IsBadRequest(err))
	assert.Contains(t, err.Error(), "main/Broken")
}

type failingWriter struct{}

func (failingWriter) CreateMenu(context.Context, string, string) (types.Menu, error) {
	return types.Menu{}, errors.New("db down")
}

func (failingWriter) CreateMenuItem(context.Context, string, types.MenuItemInput) (types.MenuItem, error) {
	return types.MenuItem{}, errors.New("unexpected")
}

func TestApply_MenuError(t *testing.T) {
	f := File{Version: 1, Menus: []Menu{{Name: "main"}}}
	_, err := Apply(context.Background(), failingWriter{}, f, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLoad_DemoFile(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "..", "..", "config", "menus", "demo.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, f.Menus)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err) || errors.Is(err, os.ErrNotExist))
}
