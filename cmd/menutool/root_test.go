package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacksonlee411/tree-menu/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSeed = "../../config/menus/demo.yaml"

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MENU_STORE", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("MENU_AUTO_MIGRATE", "")
	t.Setenv("ALLOWLIST_PATH", "")

	cmd := newRootCmd(logging.Discard())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDraw_OutlineMarksActiveBranch(t *testing.T) {
	out, err := runTool(t, "--seed", demoSeed, "draw", "main", "/pages/fiction/")
	require.NoError(t, err, out)

	want := strings.Join([]string{
		"main /pages/fiction",
		"  - Home  /",
		"  + Catalog  /pages/catalog/",
		"    + Books  /pages/books/",
		"      * Fiction  /pages/fiction/",
		"      - Non-fiction  /pages/non-fiction/",
		"    - Music  /pages/music/",
		"  - About  /pages/about/",
		"    - Team  /pages/team/",
		"  - Contacts  /pages/contacts/",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestDraw_JSON(t *testing.T) {
	out, err := runTool(t, "draw", "footer", "/pages/contacts", "--seed", demoSeed, "--json")
	require.NoError(t, err, out)

	var got struct {
		Menu  string `json:"menu"`
		Path  string `json:"path"`
		Items []struct {
			Title  string `json:"title"`
			Href   string `json:"href"`
			Active bool   `json:"active"`
			Open   bool   `json:"open"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "footer", got.Menu)
	assert.Equal(t, "/pages/contacts", got.Path)
	require.Len(t, got.Items, 3)
	assert.False(t, got.Items[0].Active)
	assert.True(t, got.Items[1].Active)
	assert.True(t, got.Items[1].Open)
	assert.Equal(t, "https://github.com/jacksonlee411/tree-menu", got.Items[2].Href)
}

func TestDraw_Errors(t *testing.T) {
	_, err := runTool(t, "draw", "main", "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu_not_found")

	_, err = runTool(t, "draw", "main")
	require.Error(t, err)

	_, err = runTool(t, "--store", "mongo", "draw", "main", "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid MENU_STORE")
}

func TestSeedThenDraw_SQLiteFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "menus.db")
	base := []string{"--store", "sqlite", "--sqlite-path", db}

	out, err := runTool(t, append(base, "migrate")...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "sqlite schema at version")

	out, err = runTool(t, append(base, "seed", demoSeed)...)
	require.NoError(t, err, out)
	assert.Equal(t, "menus created: 2, skipped: 0, items created: 12\n", out)

	out, err = runTool(t, append(base, "seed", demoSeed)...)
	require.NoError(t, err, out)
	assert.Equal(t, "menus created: 0, skipped: 2, items created: 0\n", out)

	out, err = runTool(t, append(base, "draw", "main", "/pages/team")...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "  + About  /pages/about/\n    * Team  /pages/team/\n")
}

func TestMigrate_MemoryHasNoSchema(t *testing.T) {
	out, err := runTool(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "backend memory has no schema\n", out)
}

func TestSeed_MissingFile(t *testing.T) {
	_, err := runTool(t, "seed", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runTool(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestRoutes(t *testing.T) {
	out, err := runTool(t, "routes")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"about        /pages/about/",
		"catalog      /pages/catalog/",
		"contacts     /pages/contacts/",
		"home         /",
		"",
	}, "\n"), out)
}
