package runecache

import "encoding/binary"

// SectorSize is the size of every block in the sector store.
const SectorSize = 520

const (
	sectorHeaderSize         = 8  // u16 archive, u16 chunk, u24 next, u8 index
	extendedSectorHeaderSize = 10 // u32 archive, u16 chunk, u24 next, u8 index

	// Archives whose id does not fit in 16 bits use the extended header.
	maxShortArchiveID = 0xFFFF

	// sectorTerminator is the next pointer of the last sector of a chain.
	sectorTerminator = 0
)

type sectorHeader struct {
	archiveID uint32
	chunk     int
	next      uint32
	indexID   uint8
}

// sectorHeaderSizeFor selects the header layout used by the chain of
// archiveID.
func sectorHeaderSizeFor(archiveID uint32) int {
	if archiveID > maxShortArchiveID {
		return extendedSectorHeaderSize
	}
	return sectorHeaderSize
}

func parseSectorHeader(b []byte, size int) sectorHeader {
	var h sectorHeader
	if size == extendedSectorHeaderSize {
		h.archiveID = binary.BigEndian.Uint32(b[0:4])
		b = b[4:]
	} else {
		h.archiveID = uint32(binary.BigEndian.Uint16(b[0:2]))
		b = b[2:]
	}
	h.chunk = int(binary.BigEndian.Uint16(b[0:2]))
	h.next = uint24(b[2:5])
	h.indexID = b[5]
	return h
}

// validate checks the header against the read request, in the order archive,
// chunk, index.
func (h sectorHeader) validate(indexID uint8, archiveID uint32, chunk int) error {
	if h.archiveID != archiveID {
		return SectorArchiveMismatchError{Received: h.archiveID, Expected: archiveID}
	}
	if h.chunk != chunk {
		return SectorChunkMismatchError{Received: h.chunk, Expected: chunk}
	}
	if h.indexID != indexID {
		return SectorIndexMismatchError{Received: h.indexID, Expected: indexID}
	}
	return nil
}
