package runecache

import "fmt"

// A directory record: 24-bit declared length, 24-bit first sector.
const indexEntrySize = 6

type indexEntry struct {
	length uint32
	sector uint32
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// directory returns the backing file of indexID's directory.
func (c *Cache) directory(indexID uint8) (*storeFile, error) {
	s := c.indices[indexID]
	if s == nil {
		if indexID == ReferenceTableID {
			return nil, ReferenceTableNotFoundError{}
		}
		return nil, IndexNotFoundError{IndexID: indexID}
	}
	return s, nil
}

// lookup locates the directory record of an archive. Records past the end
// of the directory and all-zero records are absent archives.
func (c *Cache) lookup(indexID uint8, archiveID uint32) (indexEntry, error) {
	s, err := c.directory(indexID)
	if err != nil {
		return indexEntry{}, err
	}

	off := int64(archiveID) * indexEntrySize
	if off+indexEntrySize > s.size {
		return indexEntry{}, ArchiveNotFoundError{IndexID: indexID, ArchiveID: archiveID}
	}

	var buf [indexEntrySize]byte
	if _, err := s.ReadAt(buf[:], off); err != nil {
		return indexEntry{}, &IOError{Op: fmt.Sprintf("read record %d of %s", archiveID, s.path), Err: err}
	}

	e := indexEntry{length: uint24(buf[0:3]), sector: uint24(buf[3:6])}
	if e.length == 0 && e.sector == 0 {
		return indexEntry{}, ArchiveNotFoundError{IndexID: indexID, ArchiveID: archiveID}
	}
	return e, nil
}
