package runecache

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// storeFile is one read-only backing file of the cache: the sector store or a
// per-index directory.
//
// With mmap enabled the file is mapped PROT_READ once at open time and reads
// are plain copies out of the mapping. Otherwise reads go through
// os.File.ReadAt. Neither path keeps a cursor, so any number of goroutines may
// read concurrently without locking.
type storeFile struct {
	file *os.File
	mmap []byte // nil when mmap is disabled or the file is empty
	path string
	size int64
}

func openStoreFile(path string, useMmap bool) (*storeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &storeFile{file: f, path: path, size: st.Size()}
	if useMmap && s.size > 0 {
		m, err := unix.Mmap(int(f.Fd()), 0, int(s.size), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			f.Close()
			return nil, err
		}
		s.mmap = m
	}
	return s, nil
}

// ReadAt implements io.ReaderAt over either backend.
func (s *storeFile) ReadAt(p []byte, off int64) (int, error) {
	if s.mmap == nil {
		return s.file.ReadAt(p, off)
	}
	if off < 0 || off >= int64(len(s.mmap)) {
		return 0, io.EOF
	}
	n := copy(p, s.mmap[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *storeFile) close() error {
	var firstErr error
	if s.mmap != nil {
		if err := unix.Munmap(s.mmap); err != nil {
			firstErr = err
		}
		s.mmap = nil
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
