// internal/domain/catalog/catalog.go
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed data/*.json
var bundled embed.FS

// Catalog holds the three static documents the front-end is built from.
type Catalog struct {
	Pokemon  []Collectible
	Shining  []Collectible
	Mappings []MappingEntry

	byName        map[string]Collectible
	shiningByName map[string]Collectible
}

type pokemonDoc struct {
	Pokemon []Collectible `json:"pokemon"`
}

type shiningDoc struct {
	Shining []Collectible `json:"shining"`
}

type mappingsDoc struct {
	Pokemon []MappingEntry `json:"pokemon"`
}

// LoadBundled loads the catalog compiled into the binary.
func LoadBundled() (*Catalog, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, fmt.Errorf("catalog: bundled data: %w", err)
	}
	return Load(sub)
}

// LoadDir loads pokemon.json / shining.json / mappings.json from a directory.
// An empty dir falls back to the bundled catalog.
func LoadDir(dir string) (*Catalog, error) {
	if strings.TrimSpace(dir) == "" {
		return LoadBundled()
	}
	return Load(os.DirFS(dir))
}

// Load reads and validates the catalog documents from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		p pokemonDoc
		s shiningDoc
		m mappingsDoc
	)
	if err := readJSON(fsys, "pokemon.json", &p); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, "shining.json", &s); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, "mappings.json", &m); err != nil {
		return nil, err
	}
	return New(p.Pokemon, s.Shining, m.Pokemon)
}

// New validates and indexes the given lists.
func New(pokemon, shining []Collectible, mappings []MappingEntry) (*Catalog, error) {
	if len(pokemon) == 0 {
		return nil, ErrEmptyCatalog
	}

	byName, err := index(pokemon)
	if err != nil {
		return nil, fmt.Errorf("pokemon: %w", err)
	}
	shiningByName, err := index(shining)
	if err != nil {
		return nil, fmt.Errorf("shining: %w", err)
	}

	seen := make(map[string]struct{}, len(mappings))
	for _, e := range mappings {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("mappings: %w: empty name", ErrInvalidCollectible)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("mappings: %w: %s", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}

	return &Catalog{
		Pokemon:       pokemon,
		Shining:       shining,
		Mappings:      mappings,
		byName:        byName,
		shiningByName: shiningByName,
	}, nil
}

// Find returns the collectible with the given name in the requested variant.
func (c *Catalog) Find(name string, v Variant) (Collectible, bool) {
	if c == nil {
		return Collectible{}, false
	}
	if v == VariantShining {
		col, ok := c.shiningByName[name]
		return col, ok
	}
	col, ok := c.byName[name]
	return col, ok
}

func index(list []Collectible) (map[string]Collectible, error) {
	out := make(map[string]Collectible, len(list))
	for _, col := range list {
		if err := col.validate(); err != nil {
			return nil, err
		}
		if _, ok := out[col.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, col.Name)
		}
		out[col.Name] = col
	}
	return out, nil
}

func readJSON(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return nil
}
