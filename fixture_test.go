package runecache

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz/lzma"
)

// cacheBuilder lays out a synthetic cache: sequential sector chains in the
// data store and one directory file per touched index. Sector 0 is left
// empty so no chain starts there.
type cacheBuilder struct {
	t       *testing.T
	sectors [][]byte
	entries map[uint8]map[uint32]indexEntry
}

func newCacheBuilder(t *testing.T) *cacheBuilder {
	t.Helper()
	return &cacheBuilder{
		t:       t,
		sectors: [][]byte{make([]byte, SectorSize)},
		entries: map[uint8]map[uint32]indexEntry{},
	}
}

// touch makes sure a (possibly empty) directory file exists for indexID.
func (b *cacheBuilder) touch(indexID uint8) {
	if b.entries[indexID] == nil {
		b.entries[indexID] = map[uint32]indexEntry{}
	}
}

// put stores data as archive (indexID, archiveID) and returns the sectors of
// its chain in order.
func (b *cacheBuilder) put(indexID uint8, archiveID uint32, data []byte) []uint32 {
	b.touch(indexID)

	headerSize := sectorHeaderSizeFor(archiveID)
	capacity := SectorSize - headerSize
	first := uint32(len(b.sectors))
	b.entries[indexID][archiveID] = indexEntry{length: uint32(len(data)), sector: first}

	var chain []uint32
	for chunk := 0; len(data) > 0; chunk++ {
		id := uint32(len(b.sectors))
		n := min(len(data), capacity)
		next := id + 1
		if n == len(data) {
			next = sectorTerminator
		}

		sec := make([]byte, SectorSize)
		writeSectorHeader(sec, headerSize, sectorHeader{
			archiveID: archiveID,
			chunk:     chunk,
			next:      next,
			indexID:   indexID,
		})
		copy(sec[headerSize:], data[:n])
		data = data[n:]

		b.sectors = append(b.sectors, sec)
		chain = append(chain, id)
	}
	return chain
}

// sector exposes the raw bytes of a stored sector for corruption tests.
func (b *cacheBuilder) sector(id uint32) []byte { return b.sectors[id] }

func writeSectorHeader(sec []byte, headerSize int, h sectorHeader) {
	if headerSize == extendedSectorHeaderSize {
		binary.BigEndian.PutUint32(sec[0:4], h.archiveID)
		sec = sec[4:]
	} else {
		binary.BigEndian.PutUint16(sec[0:2], uint16(h.archiveID))
		sec = sec[2:]
	}
	binary.BigEndian.PutUint16(sec[0:2], uint16(h.chunk))
	putUint24(sec[2:5], h.next)
	sec[5] = h.indexID
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// write emits the data store and directory files into dir.
func (b *cacheBuilder) write(dir string) {
	b.t.Helper()

	var data bytes.Buffer
	for _, sec := range b.sectors {
		data.Write(sec)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultDataFile), data.Bytes(), 0o644); err != nil {
		b.t.Fatalf("write data file: %v", err)
	}

	for indexID, entries := range b.entries {
		var maxID int64 = -1
		for id := range entries {
			maxID = max(maxID, int64(id))
		}
		idx := make([]byte, (maxID+1)*indexEntrySize)
		for id, e := range entries {
			off := int64(id) * indexEntrySize
			putUint24(idx[off:off+3], e.length)
			putUint24(idx[off+3:off+6], e.sector)
		}
		path := filepath.Join(dir, DefaultIndexPrefix+strconv.Itoa(int(indexID)))
		if err := os.WriteFile(path, idx, 0o644); err != nil {
			b.t.Fatalf("write index %d: %v", indexID, err)
		}
	}
}

// open writes the cache into a temporary directory and opens it.
func (b *cacheBuilder) open(useMmap bool) *Cache {
	b.t.Helper()
	dir := b.t.TempDir()
	b.write(dir)

	opts := DefaultOptions()
	opts.UseMmap = useMmap
	c, err := OpenWithOptions(dir, opts)
	if err != nil {
		b.t.Fatalf("open cache: %v", err)
	}
	b.t.Cleanup(func() { c.Close() })
	return c
}

// Container encoders.

func containerNone(data []byte) []byte {
	out := make([]byte, plainHeaderSize, plainHeaderSize+len(data))
	out[0] = byte(CompressionNone)
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	return append(out, data...)
}

func container(c Compression, body []byte, decompressed int) []byte {
	out := make([]byte, compressedHeaderSize, compressedHeaderSize+len(body))
	out[0] = byte(c)
	binary.BigEndian.PutUint32(out[1:5], uint32(len(body)))
	binary.BigEndian.PutUint32(out[5:9], uint32(decompressed))
	return append(out, body...)
}

func containerGzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return container(CompressionGzip, buf.Bytes(), len(data))
}

// containerLZMA stores the classic .lzma stream minus its 8-byte size field.
func containerLZMA(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(data))}.NewWriter(&buf)
	if err != nil {
		t.Fatalf("lzma writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("lzma write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzma close: %v", err)
	}
	raw := buf.Bytes()
	body := append(append([]byte{}, raw[:lzmaPropsSize]...), raw[lzma.HeaderLen:]...)
	return container(CompressionLZMA, body, len(data))
}

// bzip2Plain is the input of bzip2Stream, compressed with `bzip2 -1`.
const bzip2Plain = "runecache bzip2 payload runecache bzip2 payload"

var bzip2Stream = []byte{
	0x42, 0x5a, 0x68, 0x31, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xd5, 0x5a,
	0xcc, 0x6e, 0x00, 0x00, 0x13, 0x99, 0x80, 0x40, 0x00, 0x10, 0x00, 0x3e,
	0x65, 0xd2, 0x30, 0x20, 0x00, 0x20, 0xaa, 0xa3, 0x43, 0xca, 0x0f, 0x51,
	0xb5, 0x0a, 0x1a, 0x69, 0x80, 0x08, 0x61, 0x14, 0x95, 0x30, 0x84, 0x24,
	0xe9, 0x49, 0x5a, 0xd6, 0xcb, 0x2e, 0xde, 0xeb, 0x6f, 0x16, 0xfc, 0x5d,
	0xc9, 0x14, 0xe1, 0x42, 0x43, 0x55, 0x6b, 0x31, 0xb8,
}

// containerBzip2 stores bzip2Stream without its "BZh1" magic.
func containerBzip2() []byte {
	return container(CompressionBzip2, bzip2Stream[len(bzip2Magic):], len(bzip2Plain))
}

// packFiles lays files out the way SplitArchive expects, each file cut into
// stripes chunks.
func packFiles(files [][]byte, stripes int) []byte {
	var data, table bytes.Buffer
	chunks := make([][][]byte, stripes)
	for s := range chunks {
		chunks[s] = make([][]byte, len(files))
	}
	for f, file := range files {
		rest := file
		for s := 0; s < stripes; s++ {
			n := len(rest)
			if s < stripes-1 {
				n = len(file) / stripes
			}
			chunks[s][f], rest = rest[:n], rest[n:]
		}
	}
	for s := 0; s < stripes; s++ {
		prev := 0
		for f := range files {
			c := chunks[s][f]
			data.Write(c)
			binary.Write(&table, binary.BigEndian, int32(len(c)-prev))
			prev = len(c)
		}
	}
	data.Write(table.Bytes())
	data.WriteByte(byte(stripes))
	return data.Bytes()
}

// testArchive is an archive description used to build reference tables.
type testArchive struct {
	id      uint32
	name    string
	crc     uint32
	version uint32
	fileIDs []uint32
}

// encodeMetadata writes a reference table entry in the given protocol.
func encodeMetadata(protocol uint8, revision uint32, flags uint8, archives []testArchive) []byte {
	var buf bytes.Buffer
	be := func(v any) { binary.Write(&buf, binary.BigEndian, v) }
	count := func(v uint32) {
		if protocol >= bigSmartProtocol && v > 0x7FFF {
			be(v | 0x80000000)
			return
		}
		be(uint16(v))
	}

	buf.WriteByte(protocol)
	if protocol >= revisionProtocol {
		be(revision)
	}
	buf.WriteByte(flags)
	count(uint32(len(archives)))

	var prev uint32
	for _, a := range archives {
		count(a.id - prev)
		prev = a.id
	}
	if flags&FlagNames != 0 {
		for _, a := range archives {
			be(NameHash(a.name))
		}
	}
	for _, a := range archives {
		be(a.crc)
	}
	if flags&FlagUncompressedChecksums != 0 {
		for _, a := range archives {
			be(^a.crc)
		}
	}
	if flags&FlagDigests != 0 {
		for range archives {
			buf.Write(make([]byte, digestSize))
		}
	}
	if flags&FlagLengths != 0 {
		for _, a := range archives {
			be(uint32(len(a.fileIDs)))
			be(uint32(len(a.fileIDs) * 2))
		}
	}
	for _, a := range archives {
		be(a.version)
	}
	for _, a := range archives {
		count(uint32(len(a.fileIDs)))
	}
	for _, a := range archives {
		var prev uint32
		for _, id := range a.fileIDs {
			count(id - prev)
			prev = id
		}
	}
	if flags&FlagNames != 0 {
		for _, a := range archives {
			for _, id := range a.fileIDs {
				be(NameHash(a.name + "/" + strconv.Itoa(int(id))))
			}
		}
	}
	return buf.Bytes()
}
