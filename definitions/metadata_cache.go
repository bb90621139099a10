package definitions

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/luhtfiimanal/go-runecache"
)

// MetadataCache is a Source that keeps the most recently parsed reference
// table entries in memory. The cache engine itself never caches metadata;
// wrap it with a MetadataCache when many loaders share the same indices.
type MetadataCache struct {
	src Source
	lru *lru.Cache[uint8, *runecache.IndexMetadata]
}

var _ Source = (*MetadataCache)(nil)

// NewMetadataCache caches up to size indices of src.
func NewMetadataCache(src Source, size int) (*MetadataCache, error) {
	l, err := lru.New[uint8, *runecache.IndexMetadata](size)
	if err != nil {
		return nil, err
	}
	return &MetadataCache{src: src, lru: l}, nil
}

// Metadata returns the cached metadata of indexID, parsing it on a miss.
// Failures are not cached.
func (m *MetadataCache) Metadata(indexID uint8) (*runecache.IndexMetadata, error) {
	if meta, ok := m.lru.Get(indexID); ok {
		return meta, nil
	}
	meta, err := m.src.Metadata(indexID)
	if err != nil {
		return nil, err
	}
	m.lru.Add(indexID, meta)
	return meta, nil
}

// ReadDecoded passes through to the wrapped source.
func (m *MetadataCache) ReadDecoded(indexID uint8, archiveID uint32) ([]byte, error) {
	return m.src.ReadDecoded(indexID, archiveID)
}

// Len returns the number of cached entries.
func (m *MetadataCache) Len() int { return m.lru.Len() }

// Purge drops every cached entry.
func (m *MetadataCache) Purge() { m.lru.Purge() }
