package runecache

import (
	"cmp"
	"encoding/binary"
	"slices"
	"strings"
)

// Reference table flags.
const (
	FlagNames                 = 0x01
	FlagDigests               = 0x02
	FlagLengths               = 0x04
	FlagUncompressedChecksums = 0x08
)

const (
	minProtocol         = 5
	revisionProtocol    = 6 // first protocol carrying an index revision
	bigSmartProtocol    = 7 // first protocol using big smarts for counts and ids
	digestSize          = 64
	maxMetadataProtocol = 7
)

// IndexMetadata is the parsed reference table entry of one index. It is an
// immutable snapshot with no reference back to the Cache it came from.
type IndexMetadata struct {
	IndexID  uint8
	Protocol uint8
	Revision uint32
	Flags    uint8
	// Archives is sorted by ascending ID. Ids may have gaps.
	Archives []ArchiveDescriptor
}

// ArchiveDescriptor describes one archive of an index.
type ArchiveDescriptor struct {
	ID       uint32
	NameHash int32
	// CRC is the CRC-32 recorded for the archive.
	CRC              uint32
	UncompressedCRC  uint32
	Digest           []byte
	CompressedSize   uint32
	UncompressedSize uint32
	Version          uint32
	// EntryCount is the number of files packed into the archive.
	EntryCount int
	// FileIDs maps a local slot to its sparse file id.
	FileIDs        []uint32
	FileNameHashes []int32
}

// HasRevision reports whether the reference table recorded a revision.
func (m *IndexMetadata) HasRevision() bool { return m.Protocol >= revisionProtocol }

// Named reports whether archives and files carry name hashes.
func (m *IndexMetadata) Named() bool { return m.Flags&FlagNames != 0 }

// Len returns the number of archives present in the index.
func (m *IndexMetadata) Len() int { return len(m.Archives) }

// Archive returns the descriptor of archive id.
func (m *IndexMetadata) Archive(id uint32) (*ArchiveDescriptor, bool) {
	i, ok := slices.BinarySearchFunc(m.Archives, id, func(d ArchiveDescriptor, id uint32) int {
		return cmp.Compare(d.ID, id)
	})
	if !ok {
		return nil, false
	}
	return &m.Archives[i], true
}

// ArchiveByName returns the descriptor whose name hash matches name.
func (m *IndexMetadata) ArchiveByName(name string) (*ArchiveDescriptor, error) {
	hash := NameHash(name)
	if m.Named() {
		for i := range m.Archives {
			if m.Archives[i].NameHash == hash {
				return &m.Archives[i], nil
			}
		}
	}
	return nil, NameNotInArchiveError{Hash: hash, Name: name, IndexID: m.IndexID}
}

// NameHash hashes an archive or file name the way the reference table does:
// the 31-multiplier string hash of the lower-cased name.
func NameHash(name string) int32 {
	var h int32
	for _, r := range strings.ToLower(name) {
		h = 31*h + int32(r)
	}
	return h
}

// FileID maps a local slot to the global file id.
func (d *ArchiveDescriptor) FileID(slot int) uint32 {
	if slot < 0 || slot >= len(d.FileIDs) {
		return uint32(slot)
	}
	return d.FileIDs[slot]
}

// ParseIndexMetadata parses a decoded reference table archive describing
// indexID.
//
// A buffer that ends before the archive id table is complete fails with
// ParseUnknownError; one that ends inside a per-archive column fails with
// ParseArchiveError naming the archive whose entry was being read.
func ParseIndexMetadata(buf []byte, indexID uint8) (*IndexMetadata, error) {
	r := &metaReader{buf: buf}
	m := &IndexMetadata{IndexID: indexID}

	m.Protocol = r.u8()
	if r.err == nil && (m.Protocol < minProtocol || m.Protocol > maxMetadataProtocol) {
		return nil, ParseUnknownError{}
	}
	if m.Protocol >= revisionProtocol {
		m.Revision = r.u32()
	}
	m.Flags = r.u8()

	bigSmart := m.Protocol >= bigSmartProtocol
	count := r.count(bigSmart)
	if r.err != nil {
		return nil, r.err
	}
	if count > r.remaining()/2 {
		return nil, ParseUnknownError{}
	}

	m.Archives = make([]ArchiveDescriptor, count)
	var id uint32
	for i := range m.Archives {
		id += uint32(r.count(bigSmart))
		m.Archives[i].ID = id
	}
	if r.err != nil {
		return nil, r.err
	}

	// From here on every short read is attributed to an archive.
	column := func(fn func(d *ArchiveDescriptor)) {
		for i := range m.Archives {
			if r.err != nil {
				return
			}
			r.archive, r.attributed = m.Archives[i].ID, true
			fn(&m.Archives[i])
		}
	}

	if m.Flags&FlagNames != 0 {
		column(func(d *ArchiveDescriptor) { d.NameHash = int32(r.u32()) })
	}
	column(func(d *ArchiveDescriptor) { d.CRC = r.u32() })
	if m.Flags&FlagUncompressedChecksums != 0 {
		column(func(d *ArchiveDescriptor) { d.UncompressedCRC = r.u32() })
	}
	if m.Flags&FlagDigests != 0 {
		column(func(d *ArchiveDescriptor) { d.Digest = r.bytes(digestSize) })
	}
	if m.Flags&FlagLengths != 0 {
		column(func(d *ArchiveDescriptor) {
			d.CompressedSize = r.u32()
			d.UncompressedSize = r.u32()
		})
	}
	column(func(d *ArchiveDescriptor) { d.Version = r.u32() })
	column(func(d *ArchiveDescriptor) {
		d.EntryCount = r.count(bigSmart)
		if r.err == nil && d.EntryCount > r.remaining()/2 {
			r.fail()
		}
	})
	column(func(d *ArchiveDescriptor) {
		d.FileIDs = make([]uint32, d.EntryCount)
		var fid uint32
		for j := range d.FileIDs {
			fid += uint32(r.count(bigSmart))
			d.FileIDs[j] = fid
		}
	})
	if m.Flags&FlagNames != 0 {
		column(func(d *ArchiveDescriptor) {
			d.FileNameHashes = make([]int32, d.EntryCount)
			for j := range d.FileNameHashes {
				d.FileNameHashes[j] = int32(r.u32())
			}
		})
	}

	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// metaReader is a big-endian cursor with a sticky error: once a read runs
// past the end every later read returns zero and the first error is kept.
type metaReader struct {
	buf []byte
	pos int
	err error

	archive    uint32
	attributed bool
}

func (r *metaReader) remaining() int { return len(r.buf) - r.pos }

func (r *metaReader) fail() {
	if r.err != nil {
		return
	}
	if r.attributed {
		r.err = ParseArchiveError{ArchiveID: r.archive}
	} else {
		r.err = ParseUnknownError{}
	}
}

func (r *metaReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.remaining() < n {
		r.fail()
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *metaReader) u8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *metaReader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *metaReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *metaReader) bytes(n int) []byte {
	if b := r.take(n); b != nil {
		return slices.Clone(b)
	}
	return nil
}

// count reads a u16, or a big smart (u16 when the top bit is clear, else a
// u32 with the top bit masked) when bigSmart is set.
func (r *metaReader) count(bigSmart bool) int {
	if !bigSmart {
		return int(r.u16())
	}
	if r.err == nil && r.remaining() > 0 && r.buf[r.pos]&0x80 != 0 {
		return int(r.u32() & 0x7FFFFFFF)
	}
	return int(r.u16())
}
