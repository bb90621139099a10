package definitions

import (
	"maps"
	"slices"
)

// LoaderConfig names the archive a Loader reads its definitions from.
type LoaderConfig struct {
	IndexID   uint8
	ArchiveID uint32
}

// Preset locations of the definitions shipped with this package.
var (
	InventoryConfig = LoaderConfig{IndexID: 2, ArchiveID: 5}
	VarbitConfig    = LoaderConfig{IndexID: 2, ArchiveID: 14}
)

// Loader holds every definition of one archive, keyed by id.
type Loader[D any] struct {
	config LoaderConfig
	defs   map[uint32]D
}

// NewLoader fetches and decodes all definitions described by config.
func NewLoader[D any](src Source, config LoaderConfig, decode DecodeFunc[D]) (*Loader[D], error) {
	defs, err := FetchArchive(src, config.IndexID, config.ArchiveID, decode)
	if err != nil {
		return nil, err
	}
	return &Loader[D]{config: config, defs: defs}, nil
}

// Load returns the definition with the given id.
func (l *Loader[D]) Load(id uint32) (D, bool) {
	d, ok := l.defs[id]
	return d, ok
}

// Len returns the number of loaded definitions.
func (l *Loader[D]) Len() int { return len(l.defs) }

// IDs returns every loaded id in ascending order.
func (l *Loader[D]) IDs() []uint32 {
	return slices.Sorted(maps.Keys(l.defs))
}

// Config returns the location the loader was built from.
func (l *Loader[D]) Config() LoaderConfig { return l.config }

// NewInventoryLoader loads every inventory definition.
func NewInventoryLoader(src Source) (*Loader[InventoryDefinition], error) {
	return NewLoader(src, InventoryConfig, DecodeInventory)
}

// NewVarbitLoader loads every varbit definition.
func NewVarbitLoader(src Source) (*Loader[VarbitDefinition], error) {
	return NewLoader(src, VarbitConfig, DecodeVarbit)
}
