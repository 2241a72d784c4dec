package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jacksonlee411/tree-menu/internal/menustore"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/migrations"
	"github.com/jacksonlee411/tree-menu/modules/menu/infrastructure/seed"
	"github.com/jacksonlee411/tree-menu/modules/menu/services"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opened, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer opened.Close()

			if opened.DB == nil {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "backend %s has no schema\n", opened.Backend)
				return err
			}
			n, err := opened.Migrate(ctx, a.logger)
			if err != nil {
				return err
			}
			v, err := migrations.Version(ctx, opened.DB, opened.Dialect)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s); %s schema at version %d\n", n, opened.Dialect, v)
			return err
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Create the menus described by a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			opened, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer opened.Close()

			rep, err := applySeed(cmd, a, opened, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "menus created: %d, skipped: %d, items created: %d\n",
				rep.MenusCreated, rep.MenusSkipped, rep.ItemsCreated)
			return err
		},
	}
}

func applySeed(cmd *cobra.Command, a *app, opened *menustore.Opened, f seed.File) (seed.Report, error) {
	w := services.NewMenuWriteService(opened.Store, a.resolver(), a.logger)
	return seed.Apply(cmd.Context(), w, f, a.logger)
}

func newDrawCmd(a *app) *cobra.Command {
	var asJSON bool
	var seedPath string

	cmd := &cobra.Command{
		Use:   "draw <menu> <path>",
		Short: "Print a menu as it renders for a request path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opened, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer opened.Close()

			if seedPath != "" {
				f, err := seed.Load(seedPath)
				if err != nil {
					return err
				}
				if _, err := applySeed(cmd, a, opened, f); err != nil {
					return err
				}
			}

			svc := services.NewMenuDrawService(opened.Store,
				services.WithResolver(a.resolver()),
				services.WithLogger(a.logger))
			res, err := svc.DrawPath(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(drawJSON{Menu: res.MenuName, Path: res.CurrentPath, Items: res.Forest.Tree()})
			}
			return writeOutline(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the annotated tree as JSON")
	cmd.Flags().StringVar(&seedPath, "seed", "", "Seed file applied before drawing (useful with the memory store)")
	return cmd
}

type drawJSON struct {
	Menu  string              `json:"menu"`
	Path  string              `json:"path"`
	Items []menutree.TreeNode `json:"items"`
}

// writeOutline prints one node per line, indented by depth. "*" marks the
// active node, "+" an open ancestor.
func writeOutline(w io.Writer, res services.DrawResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", res.MenuName, res.CurrentPath)
	res.Forest.Walk(func(i int, depth int) bool {
		n := res.Forest.Node(i)
		marker := "-"
		switch {
		case n.Active:
			marker = "*"
		case n.Open:
			marker = "+"
		}
		href := n.Href
		if href == "" {
			href = "(no link)"
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", strings.Repeat("  ", depth+1), marker, n.Item.Title, href)
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}
