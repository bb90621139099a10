package runecache

// getBufFromPool takes a sector buffer from the pool, or allocates one when
// pooling is disabled. Buffers are always SectorSize bytes.
func (c *Cache) getBufFromPool() []byte {
	if c.bufPool != nil {
		return c.bufPool.Get().([]byte)
	}
	return make([]byte, SectorSize)
}

// returnBufToPool hands a buffer back for reuse. Only buffers of exactly
// SectorSize are accepted.
func (c *Cache) returnBufToPool(buf []byte) {
	if c.bufPool != nil && len(buf) == SectorSize {
		c.bufPool.Put(buf)
	}
}
