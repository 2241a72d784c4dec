// Package seed loads menu definitions from YAML and writes them through the
// menu write service, so seeded items obey the same validation as API writes.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
	"gopkg.in/yaml.v3"
)

type File struct {
	Version int    `yaml:"version"`
	Menus   []Menu `yaml:"menus"`
}

type Menu struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Item is one node of the nested seed tree. A missing order defaults to the
// item's position among its siblings.
type Item struct {
	Title    string `yaml:"title"`
	NamedURL string `yaml:"named_url"`
	URL      string `yaml:"url"`
	Order    *int   `yaml:"order"`
	Children []Item `yaml:"children"`
}

// Writer is the part of services.MenuWriteService seeding needs.
type Writer interface {
	CreateMenu(ctx context.Context, name string, title string) (types.Menu, error)
	CreateMenuItem(ctx context.Context, menuName string, in types.MenuItemInput) (types.MenuItem, error)
}

type Report struct {
	MenusCreated int
	MenusSkipped int
	ItemsCreated int
}

func Parse(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, errors.New("seed: empty file")
		}
		return File{}, fmt.Errorf("seed: %w", err)
	}
	if f.Version != 1 {
		return File{}, errors.New("seed: unsupported version")
	}
	seen := make(map[string]struct{}, len(f.Menus))
	for i, m := range f.Menus {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return File{}, fmt.Errorf("seed: menus[%d]: missing name", i)
		}
		if _, dup := seen[name]; dup {
			return File{}, fmt.Errorf("seed: menu %q defined twice", name)
		}
		seen[name] = struct{}{}
	}
	return f, nil
}

func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(bytes.NewReader(b))
}

// Apply creates every menu of f with its items, parents before children.
// Menus that already exist are left untouched so a seed can be re-run.
func Apply(ctx context.Context, w Writer, f File, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	var rep Report
	for _, m := range f.Menus {
		if _, err := w.CreateMenu(ctx, m.Name, m.Title); err != nil {
			if errors.Is(err, ports.ErrMenuExists) {
				rep.MenusSkipped++
				logger.InfoContext(ctx, "seed: menu exists, skipped", slog.String("menu", m.Name))
				continue
			}
			return rep, fmt.Errorf("seed: menu %q: %w", m.Name, err)
		}
		rep.MenusCreated++

		n, err := createItems(ctx, w, strings.TrimSpace(m.Name), nil, m.Items)
		rep.ItemsCreated += n
		if err != nil {
			return rep, err
		}
		logger.InfoContext(ctx, "seed: menu created", slog.String("menu", m.Name), slog.Int("items", n))
	}
	return rep, nil
}

type pending struct {
	parent *int64
	items  []Item
	path   string
}

func createItems(ctx context.Context, w Writer, menu string, parent *int64, items []Item) (int, error) {
	created := 0
	queue := []pending{{parent: parent, items: items, path: menu}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for i, it := range p.items {
			order := i
			if it.Order != nil {
				order = *it.Order
			}
			row, err := w.CreateMenuItem(ctx, menu, types.MenuItemInput{
				ParentID: p.parent,
				Title:    it.Title,
				NamedURL: it.NamedURL,
				URL:      it.URL,
				Order:    order,
			})
			if err != nil {
				return created, fmt.Errorf("seed: %s/%s: %w", p.path, it.Title, err)
			}
			created++
			if len(it.Children) > 0 {
				id := row.ID
				queue = append(queue, pending{parent: &id, items: it.Children, path: p.path + "/" + it.Title})
			}
		}
	}
	return created, nil
}
