package definitions

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/luhtfiimanal/go-runecache"
)

// memSource is an in-memory Source holding decoded archives and their
// reference table entries.
type memSource struct {
	meta     map[uint8]*runecache.IndexMetadata
	archives map[uint8]map[uint32][]byte

	metadataCalls int
}

func newMemSource() *memSource {
	return &memSource{
		meta:     map[uint8]*runecache.IndexMetadata{},
		archives: map[uint8]map[uint32][]byte{},
	}
}

// put packs files into archive (indexID, archiveID). fileIDs gives the
// global id of each file.
func (s *memSource) put(t *testing.T, indexID uint8, archiveID uint32, fileIDs []uint32, files [][]byte) {
	t.Helper()
	if len(fileIDs) != len(files) {
		t.Fatalf("%d file ids for %d files", len(fileIDs), len(files))
	}

	m := s.meta[indexID]
	if m == nil {
		m = &runecache.IndexMetadata{IndexID: indexID, Protocol: 6}
		s.meta[indexID] = m
		s.archives[indexID] = map[uint32][]byte{}
	}
	// keep Archives sorted by id
	i := 0
	for i < len(m.Archives) && m.Archives[i].ID < archiveID {
		i++
	}
	desc := runecache.ArchiveDescriptor{ID: archiveID, EntryCount: len(files), FileIDs: fileIDs}
	m.Archives = append(m.Archives[:i], append([]runecache.ArchiveDescriptor{desc}, m.Archives[i:]...)...)
	s.archives[indexID][archiveID] = pack(files)
}

func (s *memSource) Metadata(indexID uint8) (*runecache.IndexMetadata, error) {
	s.metadataCalls++
	m, ok := s.meta[indexID]
	if !ok {
		return nil, runecache.ArchiveNotFoundError{IndexID: runecache.ReferenceTableID, ArchiveID: uint32(indexID)}
	}
	return m, nil
}

func (s *memSource) ReadDecoded(indexID uint8, archiveID uint32) ([]byte, error) {
	buf, ok := s.archives[indexID][archiveID]
	if !ok {
		return nil, runecache.ArchiveNotFoundError{IndexID: indexID, ArchiveID: archiveID}
	}
	return buf, nil
}

// pack lays files out as a single-stripe group.
func pack(files [][]byte) []byte {
	if len(files) == 1 {
		return files[0]
	}
	var data, table bytes.Buffer
	prev := 0
	for _, f := range files {
		data.Write(f)
		binary.Write(&table, binary.BigEndian, int32(len(f)-prev))
		prev = len(f)
	}
	data.Write(table.Bytes())
	data.WriteByte(1)
	return data.Bytes()
}

func inventoryBytes(capacity uint16, stock ...InventoryStock) []byte {
	var b bytes.Buffer
	b.WriteByte(2)
	binary.Write(&b, binary.BigEndian, capacity)
	if len(stock) > 0 {
		b.WriteByte(4)
		b.WriteByte(byte(len(stock)))
		for _, s := range stock {
			binary.Write(&b, binary.BigEndian, s.ItemID)
			binary.Write(&b, binary.BigEndian, s.Amount)
		}
	}
	b.WriteByte(0)
	return b.Bytes()
}

func varbitBytes(varp uint16, lsb, msb uint8) []byte {
	return []byte{1, byte(varp >> 8), byte(varp), lsb, msb, 0}
}
