// Package catalogtest writes a small content directory for tests.
package catalogtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gangland/internal/catalog"
)

// Sample documents. The catalog has two consumables and one permanent item.
const (
	MOTD      = `{"messages":[{"title":"Welcome","body":"Servers are back"}]}`
	Store     = `{"offers":[{"id":"offer-1","price":100}]}`
	Credits   = `{"offers":[{"id":"credits-500","price":500}]}`
	Catalog   = `{"items":{"consumable-a":{"data":{"gangland_is_consumable":"1"}},"consumable-b":{"data":{"gangland_is_consumable":1}},"outfit-c":{"data":{"gangland_is_consumable":"0"}},"bare-d":{}}}`
	Save      = `{"data":{"AccountXPLevel":1,"baneXPLevel":1,"jokerXPLevel":1}}`
	Inventory = `{"inventory":{"starter":1}}`
	Netvars   = "netvars-binary\x00\x01"
)

// WriteDir writes the sample content into dir.
func WriteDir(t testing.TB, dir string) {
	t.Helper()
	files := map[string]string{
		catalog.FileMOTD:      MOTD,
		catalog.FileStore:     Store,
		catalog.FileCredits:   Credits,
		catalog.FileCatalog:   Catalog,
		catalog.FileSave:      Save,
		catalog.FileInventory: Inventory,
		catalog.FileNetvars:   Netvars,
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

// Load writes the sample content into a temp dir and loads it.
func Load(t testing.TB) *catalog.Content {
	t.Helper()
	dir := t.TempDir()
	WriteDir(t, dir)
	c, err := catalog.Load(dir)
	require.NoError(t, err)
	return c
}
