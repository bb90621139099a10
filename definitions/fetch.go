package definitions

import (
	"fmt"

	"github.com/luhtfiimanal/go-runecache"
)

// IDBlockSize is the number of definition ids reserved per archive by
// indices that store one definition per file across many archives.
const IDBlockSize = 256

// Source is the part of *runecache.Cache needed to fetch definitions.
type Source interface {
	ReadDecoded(indexID uint8, archiveID uint32) ([]byte, error)
	Metadata(indexID uint8) (*runecache.IndexMetadata, error)
}

var _ Source = (*runecache.Cache)(nil)

// DecodeFunc builds a definition from its id and encoded bytes.
type DecodeFunc[D any] func(id uint32, buf []byte) (D, error)

// FetchArchive decodes every file packed into one archive, keyed by global
// file id.
func FetchArchive[D any](src Source, indexID uint8, archiveID uint32, decode DecodeFunc[D]) (map[uint32]D, error) {
	meta, err := src.Metadata(indexID)
	if err != nil {
		return nil, err
	}
	desc, ok := meta.Archive(archiveID)
	if !ok {
		return nil, runecache.ArchiveNotFoundError{IndexID: indexID, ArchiveID: archiveID}
	}

	defs := make(map[uint32]D, desc.EntryCount)
	if err := fetchInto(src, indexID, desc, defs, 0, decode); err != nil {
		return nil, err
	}
	return defs, nil
}

// FetchIndex decodes every file of every archive in an index. The i-th
// archive listed in the reference table owns the ids starting at
// i*IDBlockSize, so gaps in archive ids do not leave gaps in definition ids.
func FetchIndex[D any](src Source, indexID uint8, decode DecodeFunc[D]) (map[uint32]D, error) {
	meta, err := src.Metadata(indexID)
	if err != nil {
		return nil, err
	}

	defs := make(map[uint32]D)
	for i := range meta.Archives {
		desc := &meta.Archives[i]
		if err := fetchInto(src, indexID, desc, defs, uint32(i)*IDBlockSize, decode); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func fetchInto[D any](src Source, indexID uint8, desc *runecache.ArchiveDescriptor, defs map[uint32]D, base uint32, decode DecodeFunc[D]) error {
	buf, err := src.ReadDecoded(indexID, desc.ID)
	if err != nil {
		return err
	}
	group, err := desc.Split(buf)
	if err != nil {
		return err
	}
	for _, f := range group {
		id := base + desc.FileID(f.Slot)
		d, err := decode(id, f.Data)
		if err != nil {
			return fmt.Errorf("index %d archive %d: %w", indexID, desc.ID, err)
		}
		defs[id] = d
	}
	return nil
}
