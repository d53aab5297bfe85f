// internal/domain/catalog/entity.go
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrEmptyCatalog       = errors.New("catalog: no collectibles")
	ErrInvalidCollectible = errors.New("catalog: invalid collectible")
	ErrDuplicateName      = errors.New("catalog: duplicate name")
	ErrNoMappings         = errors.New("catalog: no mint mappings")
)

// Variant distinguishes the regular art from the "shining" art of the same Pokémon.
type Variant string

const (
	VariantRegular Variant = "regular"
	VariantShining Variant = "shining"
)

type Attack struct {
	Name   string `json:"name"`
	Damage int    `json:"damage"`
}

// Collectible is one static catalog entry. Values are never mutated after load.
type Collectible struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	HP      int      `json:"hp"`
	Attack  int      `json:"attack,omitempty"`
	Defense int      `json:"defense,omitempty"`
	Text    string   `json:"text,omitempty"`
	Attacks []Attack `json:"attacks,omitempty"`
	Mint    string   `json:"mint,omitempty"`
	Image   string   `json:"image,omitempty"`
}

// MappingEntry ties a collectible name to the metadata JSON used when minting it.
type MappingEntry struct {
	Name                string `json:"name"`
	MetadataLink        string `json:"metadata_link"`
	ShiningMetadataLink string `json:"shining_metadata_link,omitempty"`
}

// ImagePath returns the artwork path for a collectible.
//
//	regular: /mons/{name}_nft.png
//	shining: /mons/shiny/{name}_nft.png
func ImagePath(name string, v Variant) string {
	if v == VariantShining {
		return fmt.Sprintf("/mons/shiny/%s_nft.png", name)
	}
	return fmt.Sprintf("/mons/%s_nft.png", name)
}

// ImageKey is the key under which an image-load failure is remembered.
func ImageKey(name string, v Variant) string {
	if v == VariantShining {
		return "shiny-" + name
	}
	return name
}

func (c Collectible) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCollectible)
	}
	if c.HP < 0 || c.Attack < 0 || c.Defense < 0 {
		return fmt.Errorf("%w: %s has negative stats", ErrInvalidCollectible, c.Name)
	}
	return nil
}
