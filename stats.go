package runecache

import "sync/atomic"

// Stats is a snapshot of the read counters of a Cache.
type Stats struct {
	Reads       uint64 // successful Read calls
	Failures    uint64 // Read calls that returned an error
	SectorsRead uint64
	BytesRead   uint64 // payload bytes returned by successful reads
}

// GetStats takes a snapshot of the counters without locking.
func (c *Cache) GetStats() Stats {
	return Stats{
		Reads:       atomic.LoadUint64(&c.statReads),
		Failures:    atomic.LoadUint64(&c.statFailures),
		SectorsRead: atomic.LoadUint64(&c.statSectors),
		BytesRead:   atomic.LoadUint64(&c.statBytes),
	}
}

// ResetStats zeroes every counter.
func (c *Cache) ResetStats() {
	atomic.StoreUint64(&c.statReads, 0)
	atomic.StoreUint64(&c.statFailures, 0)
	atomic.StoreUint64(&c.statSectors, 0)
	atomic.StoreUint64(&c.statBytes, 0)
}

// SectorCount returns the number of whole sectors in the store, or 0 once
// the cache is closed.
func (c *Cache) SectorCount() int64 {
	if c.data == nil {
		return 0
	}
	return c.data.size / SectorSize
}
