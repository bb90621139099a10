package runecache

import "encoding/binary"

// ArchiveFile is one file unpacked from an archive. Slot is its local,
// 0-based position; ArchiveDescriptor.FileID maps it to a global id.
type ArchiveFile struct {
	Slot int
	Data []byte
}

// FileGroup is the ordered set of files packed into one archive.
type FileGroup []ArchiveFile

// Len returns the number of files in the group.
func (g FileGroup) Len() int { return len(g) }

// Bytes returns the contents of slot.
func (g FileGroup) Bytes(slot int) ([]byte, bool) {
	if slot < 0 || slot >= len(g) {
		return nil, false
	}
	return g[slot].Data, true
}

// Split unpacks entryCount files from a decoded archive buffer.
func Split(buf []byte, entryCount int) (FileGroup, error) {
	return SplitArchive(0, buf, entryCount)
}

// SplitArchive is Split with the parent archive id used in error reports.
//
// The buffer ends with a stripe count byte, preceded by stripes*entryCount
// big-endian int32 deltas. Within a stripe the running sum of the deltas is
// each file's chunk length; stripe 0 of every file is stored first, then
// stripe 1, and so on. A single-file archive has no table at all.
func SplitArchive(parentID uint32, buf []byte, entryCount int) (FileGroup, error) {
	switch {
	case entryCount <= 0:
		return FileGroup{}, nil
	case entryCount == 1:
		data := make([]byte, len(buf))
		copy(data, buf)
		return FileGroup{{Slot: 0, Data: data}}, nil
	}

	eof := ParseSectorError{ParentID: parentID}
	if len(buf) == 0 {
		return nil, eof
	}

	stripes := int(buf[len(buf)-1])
	dataEnd := len(buf) - 1 - stripes*entryCount*4
	if dataEnd < 0 {
		return nil, eof
	}
	table := buf[dataEnd : len(buf)-1]

	lengths := make([]int, stripes*entryCount)
	sizes := make([]int, entryCount)
	total := 0
	for s := 0; s < stripes; s++ {
		chunk := 0
		for f := 0; f < entryCount; f++ {
			i := s*entryCount + f
			chunk += int(int32(binary.BigEndian.Uint32(table[i*4:])))
			if chunk < 0 {
				return nil, eof
			}
			total += chunk
			if total > dataEnd {
				return nil, eof
			}
			lengths[i] = chunk
			sizes[f] += chunk
		}
	}
	if total != dataEnd {
		return nil, eof
	}

	group := make(FileGroup, entryCount)
	for f := range group {
		group[f] = ArchiveFile{Slot: f, Data: make([]byte, 0, sizes[f])}
	}
	off := 0
	for i, n := range lengths {
		f := i % entryCount
		group[f].Data = append(group[f].Data, buf[off:off+n]...)
		off += n
	}
	return group, nil
}

// Split unpacks the files of the archive d describes.
func (d *ArchiveDescriptor) Split(buf []byte) (FileGroup, error) {
	return SplitArchive(d.ID, buf, d.EntryCount)
}

// Files unpacks the archive and keys every file by its global file id.
func (d *ArchiveDescriptor) Files(buf []byte) (map[uint32][]byte, error) {
	group, err := d.Split(buf)
	if err != nil {
		return nil, err
	}
	files := make(map[uint32][]byte, len(group))
	for _, f := range group {
		files[d.FileID(f.Slot)] = f.Data
	}
	return files, nil
}
