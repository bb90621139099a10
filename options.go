package runecache

import "github.com/rs/zerolog"

// Options configures how a Cache opens its files.
//
//   - UseMmap:        map the data and directory files read-only instead of
//     issuing positioned reads
//   - BufferPoolSize: reuse sector buffers through a pool (0 = disabled)
//   - DataFile:       name of the sector store inside the cache directory
//   - IndexPrefix:    directory files are IndexPrefix + index id
//   - Logger:         debug logging of opened files and chain corruption
//     (nil = disabled)
//
// See DefaultOptions for the defaults used by Open.
type Options struct {
	UseMmap        bool
	BufferPoolSize int
	DataFile       string
	IndexPrefix    string
	Logger         *zerolog.Logger
}

const (
	DefaultDataFile    = "main_file_cache.dat2"
	DefaultIndexPrefix = "main_file_cache.idx"
)

// DefaultOptions returns the configuration used by Open.
func DefaultOptions() Options {
	return Options{
		UseMmap:        true,
		BufferPoolSize: 64,
		DataFile:       DefaultDataFile,
		IndexPrefix:    DefaultIndexPrefix,
	}
}

func (o *Options) fill() {
	if o.DataFile == "" {
		o.DataFile = DefaultDataFile
	}
	if o.IndexPrefix == "" {
		o.IndexPrefix = DefaultIndexPrefix
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
}
