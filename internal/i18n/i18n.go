// Package i18n resolves user-facing reply text from YAML catalogs.
//
// Each catalog file holds one or more top-level language keys whose nested
// mappings are flattened into dot-separated message keys:
//
//	en:
//	  ping:
//	    reply: pong   # ping.reply
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	// Tf formats the resolved string with args using fmt verbs.
	Tf(key string, args ...any) string
	Lang() string
}

// Catalog holds the messages of every loaded language.
type Catalog struct {
	messages map[string]map[string]string
	fallback string
}

// Load reads the catalogs compiled into the binary.
func Load(fallback string) (*Catalog, error) {
	return LoadFS(embedded, "locales", fallback)
}

// LoadFS reads every .yaml/.yml file in dir. Later files override earlier keys.
func LoadFS(fsys fs.FS, dir, fallback string) (*Catalog, error) {
	if fallback == "" {
		fallback = "en"
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	c := &Catalog{messages: make(map[string]map[string]string), fallback: fallback}
	files := 0

	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		files++

		if err := c.merge(fsys, path.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}

	if files == 0 {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", dir)
	}
	if _, ok := c.messages[fallback]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", fallback)
	}

	return c, nil
}

func (c *Catalog) merge(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("i18n: read file %s: %w", name, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("i18n: parse file %s: %w", name, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("i18n: %s: top level must map languages to messages", name)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		lang := strings.ToLower(strings.TrimSpace(root.Content[i].Value))
		if lang == "" {
			continue
		}

		msgs := c.messages[lang]
		if msgs == nil {
			msgs = make(map[string]string)
			c.messages[lang] = msgs
		}
		collect("", root.Content[i+1], msgs)
	}

	return nil
}

// collect flattens scalar leaves under node into out.
func collect(prefix string, node *yaml.Node, out map[string]string) {
	switch node.Kind {
	case yaml.ScalarNode:
		if prefix != "" {
			out[prefix] = node.Value
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if key == "" {
				continue
			}
			if prefix != "" {
				key = prefix + "." + key
			}
			collect(key, node.Content[i+1], out)
		}
	}
}

// Languages returns the loaded languages in sorted order.
func (c *Catalog) Languages() []string {
	if c == nil {
		return nil
	}

	langs := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Missing lists keys defined for the default language but absent from lang.
func (c *Catalog) Missing(lang string) []string {
	if c == nil {
		return nil
	}

	msgs := c.messages[lang]
	var missing []string
	for key := range c.messages[c.fallback] {
		if _, ok := msgs[key]; !ok {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing
}

// Translator returns a translator for lang, or for the default language when lang is unknown.
func (c *Catalog) Translator(lang string) Translator {
	if c == nil {
		return translator{}
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := c.messages[lang]; !ok {
		lang = c.fallback
	}

	return translator{
		lang:     lang,
		primary:  c.messages[lang],
		fallback: c.messages[c.fallback],
	}
}

type translator struct {
	lang     string
	primary  map[string]string
	fallback map[string]string
}

func (t translator) Lang() string { return t.lang }

// T returns the message for key; unknown keys come back unchanged.
func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if v, ok := t.primary[key]; ok {
		return v
	}
	if v, ok := t.fallback[key]; ok {
		return v
	}
	return key
}

func (t translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}
