package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/jacksonlee411/tree-menu/internal/menustore"
	"github.com/jacksonlee411/tree-menu/internal/server"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/spf13/cobra"
)

type app struct {
	logger *slog.Logger

	store      string
	sqlitePath string
	dsn        string
	migrate    bool
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	a := &app{logger: logger}

	cmd := &cobra.Command{
		Use:          "menutool",
		Short:        "Manage and preview tree menus",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  menutool --store sqlite --sqlite-path menus.db migrate
  menutool --store sqlite --sqlite-path menus.db seed config/menus/demo.yaml
  menutool --store sqlite --sqlite-path menus.db draw main /catalog/books/
  menutool --seed config/menus/demo.yaml draw main /about/team/ --json
`),
	}

	cmd.PersistentFlags().StringVar(&a.store, "store", "", "Store backend (postgres|sqlite|memory); defaults to MENU_STORE")
	cmd.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "SQLite database path; defaults to SQLITE_PATH")
	cmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "Postgres DSN; defaults to DATABASE_URL or DB_*")
	cmd.PersistentFlags().BoolVar(&a.migrate, "migrate", false, "Apply pending migrations when the store is opened")

	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newSeedCmd(a))
	cmd.AddCommand(newDrawCmd(a))
	cmd.AddCommand(newRoutesCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// storeConfig starts from the environment and applies flag overrides.
func (a *app) storeConfig() (menustore.Config, error) {
	cfg, err := menustore.ConfigFromEnv()
	if err != nil {
		return menustore.Config{}, err
	}
	if a.store != "" {
		b, err := menustore.ParseBackend(a.store)
		if err != nil {
			return menustore.Config{}, err
		}
		cfg.Backend = b
	}
	if a.sqlitePath != "" {
		cfg.SQLitePath = a.sqlitePath
	}
	if a.dsn != "" {
		cfg.DSN = a.dsn
	}
	if a.migrate {
		cfg.Migrate = true
	}
	return cfg, nil
}

func (a *app) openStore(ctx context.Context) (*menustore.Opened, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	return menustore.Open(ctx, cfg, a.logger)
}

// resolver uses the routing allowlist when one can be found; without it named
// items simply render without an href.
func (a *app) resolver() menutree.URLResolver {
	c, err := server.LoadClassifier()
	if err != nil {
		a.logger.Warn("named routes unavailable", slog.String("error", err.Error()))
		return nil
	}
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route names menu items can use as named_url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := server.LoadClassifier()
			if err != nil {
				return err
			}
			names := c.Names()
			w := cmd.OutOrStdout()
			for _, name := range slices.Sorted(maps.Keys(names)) {
				if _, err := fmt.Fprintf(w, "%-12s %s\n", name, names[name]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
