package runecache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// ReferenceTableID is the reserved index whose archives describe every other
// index.
const ReferenceTableID uint8 = 255

// Cache is a read-only handle on an on-disk cache: one sector store plus up
// to 256 directory files.
//
// All methods are safe for concurrent use. Nothing is mutated after Open
// apart from the atomic read statistics.
type Cache struct {
	dir     string
	data    *storeFile
	indices [256]*storeFile // nil when the directory file does not exist
	log     zerolog.Logger
	bufPool *sync.Pool

	statReads    uint64
	statFailures uint64
	statSectors  uint64
	statBytes    uint64
}

// Open opens the cache in dir with DefaultOptions.
func Open(dir string) (*Cache, error) {
	return OpenWithOptions(dir, DefaultOptions())
}

// OpenWithOptions opens the cache in dir. The sector store must exist;
// directory files are optional and missing ones are reported lazily as
// IndexNotFoundError (or ReferenceTableNotFoundError for index 255).
func OpenWithOptions(dir string, opts Options) (*Cache, error) {
	opts.fill()

	c := &Cache{
		dir:     dir,
		log:     opts.Logger.With().Str("component", "runecache").Str("dir", dir).Logger(),
	}

	data, err := openStoreFile(filepath.Join(dir, opts.DataFile), opts.UseMmap)
	if err != nil {
		return nil, &IOError{Op: "open data file", Err: err}
	}
	c.data = data

	for id := 0; id < len(c.indices); id++ {
		path := filepath.Join(dir, opts.IndexPrefix+strconv.Itoa(id))
		s, err := openStoreFile(path, opts.UseMmap)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			c.Close()
			return nil, &IOError{Op: fmt.Sprintf("open index %d", id), Err: err}
		}
		c.indices[id] = s
		c.log.Debug().Int("index", id).Int64("size", s.size).Msg("opened index")
	}

	if opts.BufferPoolSize > 0 {
		c.bufPool = &sync.Pool{New: func() any { return make([]byte, SectorSize) }}
	}

	c.log.Debug().
		Int64("sectors", data.size/SectorSize).
		Bool("mmap", opts.UseMmap).
		Msg("opened cache")
	return c, nil
}

// Dir returns the directory the cache was opened from.
func (c *Cache) Dir() string { return c.dir }

// Indices lists the ids of the general-purpose indices present on disk, in
// ascending order. The reference table is not included.
func (c *Cache) Indices() []uint8 {
	var ids []uint8
	for id, s := range c.indices {
		if s != nil && id != int(ReferenceTableID) {
			ids = append(ids, uint8(id))
		}
	}
	return ids
}

// HasIndex reports whether a directory file exists for indexID.
func (c *Cache) HasIndex(indexID uint8) bool { return c.indices[indexID] != nil }

// ArchiveCount returns the number of directory records of an index, absent
// archives included.
func (c *Cache) ArchiveCount(indexID uint8) (int, error) {
	s, err := c.directory(indexID)
	if err != nil {
		return 0, err
	}
	return int(s.size / indexEntrySize), nil
}

// ReadDecoded reads an archive and decodes its container.
func (c *Cache) ReadDecoded(indexID uint8, archiveID uint32) ([]byte, error) {
	buf, err := c.Read(indexID, archiveID)
	if err != nil {
		return nil, err
	}
	return Decode(buf)
}

// Metadata reads, decodes and parses the reference table entry describing
// indexID. The result is not cached.
func (c *Cache) Metadata(indexID uint8) (*IndexMetadata, error) {
	buf, err := c.ReadDecoded(ReferenceTableID, uint32(indexID))
	if err != nil {
		return nil, err
	}
	return ParseIndexMetadata(buf, indexID)
}

// Close unmaps and closes every file of the cache.
func (c *Cache) Close() error {
	var errs []error
	if c.data != nil {
		if err := c.data.close(); err != nil {
			errs = append(errs, fmt.Errorf("close data file: %w", err))
		}
		c.data = nil
	}
	for id, s := range c.indices {
		if s == nil {
			continue
		}
		if err := s.close(); err != nil {
			errs = append(errs, fmt.Errorf("close index %d: %w", id, err))
		}
		c.indices[id] = nil
	}
	return errors.Join(errs...)
}
