package runecache

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// Read returns the raw, still-compressed payload of an archive by walking its
// sector chain. The result is exactly the length declared in the directory.
//
// Storage errors are returned as *IOError and never retried.
func (c *Cache) Read(indexID uint8, archiveID uint32) ([]byte, error) {
	out, err := c.readChain(indexID, archiveID)
	if err != nil {
		atomic.AddUint64(&c.statFailures, 1)
		c.log.Debug().
			Err(err).
			Uint8("index", indexID).
			Uint32("archive", archiveID).
			Stringer("kind", KindOf(err)).
			Msg("read failed")
		return nil, err
	}
	atomic.AddUint64(&c.statReads, 1)
	atomic.AddUint64(&c.statBytes, uint64(len(out)))
	return out, nil
}

func (c *Cache) readChain(indexID uint8, archiveID uint32) ([]byte, error) {
	entry, err := c.lookup(indexID, archiveID)
	if err != nil {
		return nil, err
	}

	headerSize := sectorHeaderSizeFor(archiveID)
	capacity := SectorSize - headerSize

	buf := c.getBufFromPool()
	defer c.returnBufToPool(buf)

	out := make([]byte, 0, entry.length)
	remaining := int(entry.length)
	sector := entry.sector

	for chunk := 0; remaining > 0; chunk++ {
		want := min(remaining, capacity)

		// The final sector of the store may be short on disk; only the bytes
		// this chunk needs have to be present.
		n, err := c.data.ReadAt(buf, int64(sector)*SectorSize)
		if err != nil && !(errors.Is(err, io.EOF) && n >= headerSize+want) {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, &IOError{Op: fmt.Sprintf("read sector %d of %s", sector, c.data.path), Err: err}
		}
		atomic.AddUint64(&c.statSectors, 1)

		h := parseSectorHeader(buf, headerSize)
		if err := h.validate(indexID, archiveID, chunk); err != nil {
			return nil, err
		}

		out = append(out, buf[headerSize:headerSize+want]...)
		remaining -= want

		switch {
		case remaining > 0 && h.next == sectorTerminator:
			return nil, SectorNextMismatchError{Received: h.next, Expected: sector + 1}
		case remaining == 0 && h.next != sectorTerminator:
			return nil, SectorNextMismatchError{Received: h.next, Expected: sectorTerminator}
		}
		sector = h.next
	}
	return out, nil
}
