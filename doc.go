// Package runecache reads the sector-chained archive cache used by the
// RuneScape family of game clients.
//
// A cache directory holds one sector store (main_file_cache.dat2) and one
// directory file per index (main_file_cache.idxN). Index 255 is the reference
// table: its archive N describes index N.
//
// The package is organised into several files:
//
//	options.go   – configuration struct & defaults
//	cache.go     – Open/Close and index level helpers
//	store.go     – read-only backing files (ReadAt or mmap)
//	directory.go – directory record lookup
//	sector.go    – sector header layout & validation
//	io.go        – sector chain walk
//	codec.go     – container decoding (none, bzip2, gzip, lzma) & CRC
//	metadata.go  – reference table parsing
//	group.go     – splitting an archive into its packed files
//	errors.go    – error taxonomy
//	stats.go     – read counters
//	metrics.go   – Prometheus collector
//
// Typical use:
//
//	c, err := runecache.Open("/path/to/cache")
//	meta, err := c.Metadata(2)
//	buf, err := c.ReadDecoded(2, 5)
//	files, err := meta.Archives[i].Files(buf)
package runecache
