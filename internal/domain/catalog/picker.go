// internal/domain/catalog/picker.go
package catalog

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultShiningChance is the probability that a pack contains the shining variant.
const DefaultShiningChance = 0.10

// RandSource is the subset of *rand.Rand the picker needs.
type RandSource interface {
	Intn(n int) int
	Float64() float64
}

// Pick is the outcome of opening a pack.
type Pick struct {
	Entry       MappingEntry
	Collectible Collectible // zero value when the mapping has no catalog row
	Variant     Variant
}

// MetadataLink returns the mapped metadata URI for the picked variant ("" if none).
func (p Pick) MetadataLink() string {
	if p.Variant == VariantShining {
		return p.Entry.ShiningMetadataLink
	}
	return p.Entry.MetadataLink
}

// ImageKey returns the image-error key for the picked variant.
func (p Pick) ImageKey() string {
	return ImageKey(p.Entry.Name, p.Variant)
}

// Picker chooses a uniformly random mapping entry.
type Picker struct {
	catalog       *Catalog
	shiningChance float64

	mu  sync.Mutex
	rnd RandSource
}

// NewPicker builds a picker. A nil rnd seeds one from the clock.
func NewPicker(c *Catalog, shiningChance float64, rnd RandSource) *Picker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if shiningChance < 0 {
		shiningChance = 0
	}
	if shiningChance > 1 {
		shiningChance = 1
	}
	return &Picker{catalog: c, shiningChance: shiningChance, rnd: rnd}
}

// Pick draws one entry. The shining variant is only chosen when the entry
// has shining art (a shining catalog row or a shining metadata link).
func (p *Picker) Pick() (Pick, error) {
	if p == nil || p.catalog == nil || len(p.catalog.Mappings) == 0 {
		return Pick{}, ErrNoMappings
	}

	p.mu.Lock()
	idx := p.rnd.Intn(len(p.catalog.Mappings))
	roll := p.rnd.Float64()
	p.mu.Unlock()

	entry := p.catalog.Mappings[idx]
	variant := VariantRegular
	if roll < p.shiningChance && p.hasShining(entry) {
		variant = VariantShining
	}

	col, _ := p.catalog.Find(entry.Name, variant)
	return Pick{Entry: entry, Collectible: col, Variant: variant}, nil
}

func (p *Picker) hasShining(e MappingEntry) bool {
	if e.ShiningMetadataLink != "" {
		return true
	}
	_, ok := p.catalog.Find(e.Name, VariantShining)
	return ok
}
