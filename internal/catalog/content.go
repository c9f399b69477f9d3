// Package catalog loads the static game content (message of the day, store
// offers, item catalog, default save and inventory, netvars) and serves it.
package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// File names inside the content directory.
const (
	FileMOTD      = "motd.json"
	FileStore     = "store.json"
	FileCredits   = "credits.json"
	FileCatalog   = "catalog.json"
	FileSave      = "save.json"
	FileInventory = "inventory.json"
	FileNetvars   = "netvars.dat"
)

// Content is the immutable content set read at startup.
type Content struct {
	MOTD      json.RawMessage
	Store     json.RawMessage
	Credits   json.RawMessage
	Catalog   json.RawMessage
	Save      json.RawMessage
	Inventory json.RawMessage
	// Netvars is netvars.dat, base64 encoded.
	Netvars string

	consumables []string
}

// Load reads every content file from dir.
func Load(dir string) (*Content, error) {
	c := &Content{}
	docs := []struct {
		name string
		dst  *json.RawMessage
	}{
		{FileMOTD, &c.MOTD},
		{FileStore, &c.Store},
		{FileCredits, &c.Credits},
		{FileCatalog, &c.Catalog},
		{FileSave, &c.Save},
		{FileInventory, &c.Inventory},
	}
	for _, d := range docs {
		raw, err := os.ReadFile(filepath.Join(dir, d.name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", d.name, err)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("parse %s: invalid JSON", d.name)
		}
		*d.dst = raw
	}

	netvars, err := os.ReadFile(filepath.Join(dir, FileNetvars))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileNetvars, err)
	}
	c.Netvars = base64.StdEncoding.EncodeToString(netvars)

	if c.consumables, err = consumableItems(c.Catalog); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileCatalog, err)
	}
	return c, nil
}

// Consumables lists catalog item ids flagged gangland_is_consumable, sorted.
func (c *Content) Consumables() []string {
	return c.consumables
}

type catalogDoc struct {
	Items map[string]struct {
		Data map[string]any `json:"data"`
	} `json:"items"`
}

func consumableItems(raw json.RawMessage) ([]string, error) {
	var doc catalogDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for id, item := range doc.Items {
		// The flag is a string in shipped catalogs; numeric 1 is accepted too.
		if flag, ok := item.Data["gangland_is_consumable"]; ok && fmt.Sprint(flag) == "1" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
