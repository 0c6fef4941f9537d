// Package i18n provides translation tables for section headings, notifications
// and the placeholder content of a fresh CV.
//
// Tables are embedded YAML files keyed by language code. Lookups use dotted
// keys ("mock.fullName") and fall back to English, then to the key itself.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultLang is the fallback language.
const DefaultLang = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

var loadTables = sync.OnceValues(func() (map[string]map[string]any, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	tables := make(map[string]map[string]any, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if path.Ext(name) != ".yaml" {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}
		var table map[string]any
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("invalid locale %s: %w", name, err)
		}
		tables[strings.TrimSuffix(name, ".yaml")] = table
	}
	return tables, nil
})

// Catalog resolves translation keys for one language.
type Catalog struct {
	lang   string
	tables map[string]map[string]any
}

// New creates a catalog for lang. Unknown languages resolve through English.
func New(lang string) (*Catalog, error) {
	tables, err := loadTables()
	if err != nil {
		return nil, err
	}
	if _, ok := tables[lang]; !ok {
		lang = DefaultLang
	}
	return &Catalog{lang: lang, tables: tables}, nil
}

// Default returns the English catalog.
// If the embedded tables cannot be read, the catalog echoes keys back.
func Default() *Catalog {
	c, err := New(DefaultLang)
	if err != nil {
		return &Catalog{lang: DefaultLang}
	}
	return c
}

// Lang reports the catalog language.
func (c *Catalog) Lang() string {
	return c.lang
}

// T translates key, falling back to English and then to the key itself.
func (c *Catalog) T(key string) string {
	if v, ok := lookup(c.tables[c.lang], key); ok {
		return v
	}
	if c.lang != DefaultLang {
		if v, ok := lookup(c.tables[DefaultLang], key); ok {
			return v
		}
	}
	return key
}

// Languages lists the available language codes, sorted.
func Languages() []string {
	tables, err := loadTables()
	if err != nil {
		return []string{DefaultLang}
	}
	langs := make([]string, 0, len(tables))
	for lang := range tables {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func lookup(table map[string]any, key string) (string, bool) {
	var current any = table
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = m[segment]
		if !ok {
			return "", false
		}
	}
	s, ok := current.(string)
	return s, ok
}
