package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Whitelist restricts the labels the model may choose from.
// An empty list leaves that level unrestricted.
type Whitelist struct {
	Name          string   `toml:"name"`
	Categories    []string `toml:"categories"`
	Subcategories []string `toml:"subcategories"`
}

type whitelistFile struct {
	Whitelist []Whitelist `toml:"whitelist"`
}

// LoadWhitelist reads the named whitelist from a TOML file. An empty name
// selects the first whitelist in the file.
func LoadWhitelist(path, name string) (*Whitelist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read whitelist file: %w", err)
	}

	var file whitelistFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist file %s: %w", path, err)
	}
	if len(file.Whitelist) == 0 {
		return nil, fmt.Errorf("whitelist file %s defines no whitelists", path)
	}

	if name == "" {
		wl := file.Whitelist[0]
		return wl.clean(), nil
	}
	for _, wl := range file.Whitelist {
		if strings.EqualFold(wl.Name, name) {
			return wl.clean(), nil
		}
	}
	return nil, fmt.Errorf("whitelist %q not found in %s", name, path)
}

func (w Whitelist) clean() *Whitelist {
	return &Whitelist{
		Name:          w.Name,
		Categories:    trimAll(w.Categories),
		Subcategories: trimAll(w.Subcategories),
	}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
