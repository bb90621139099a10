package runecache

import (
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz/lzma"
)

// Compression is the one-byte tag at the front of every stored container.
type Compression byte

const (
	CompressionNone Compression = iota
	CompressionBzip2
	CompressionGzip
	CompressionLZMA
)

const (
	plainHeaderSize      = 5 // tag + compressed length
	compressedHeaderSize = 9 // + decompressed length

	lzmaPropsSize = 5

	// maxPrealloc bounds the buffer reserved up front from a declared length,
	// which comes straight off disk.
	maxPrealloc = 16 << 20
)

// Stored bzip2 bodies are missing the stream magic; block size is always 1.
var bzip2Magic = []byte("BZh1")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBzip2:
		return "bzip2"
	case CompressionGzip:
		return "gzip"
	case CompressionLZMA:
		return "lzma"
	}
	return fmt.Sprintf("Compression(%d)", byte(c))
}

// Valid returns nil iff a codec exists for c.
func (c Compression) Valid() error {
	switch c {
	case CompressionNone, CompressionBzip2, CompressionGzip, CompressionLZMA:
		return nil
	}
	return CompressionUnsupportedError{Tag: byte(c)}
}

// ContainerHeader prefixes the body of every stored archive.
type ContainerHeader struct {
	Compression Compression
	// CompressedLength is the number of body bytes following the header.
	CompressedLength int
	// DecompressedLength is zero for CompressionNone.
	DecompressedLength int
}

// Size is the encoded length of the header itself.
func (h ContainerHeader) Size() int {
	if h.Compression == CompressionNone {
		return plainHeaderSize
	}
	return compressedHeaderSize
}

// ReadContainerHeader parses the container header at the start of buf.
func ReadContainerHeader(buf []byte) (ContainerHeader, error) {
	var h ContainerHeader
	if len(buf) < 1 {
		return h, InvalidLengthError{Expected: plainHeaderSize, Actual: len(buf)}
	}
	h.Compression = Compression(buf[0])
	if err := h.Compression.Valid(); err != nil {
		return h, err
	}
	if len(buf) < h.Size() {
		return h, InvalidLengthError{Expected: h.Size(), Actual: len(buf)}
	}
	h.CompressedLength = int(binary.BigEndian.Uint32(buf[1:5]))
	if h.Compression != CompressionNone {
		h.DecompressedLength = int(binary.BigEndian.Uint32(buf[5:9]))
	}
	return h, nil
}

func (h ContainerHeader) body(buf []byte) ([]byte, error) {
	end := h.Size() + h.CompressedLength
	if end > len(buf) {
		return nil, InvalidLengthError{Expected: end, Actual: len(buf)}
	}
	return buf[h.Size():end], nil
}

// ContainerVersion returns the optional version trailer that follows the
// body of a container.
func ContainerVersion(buf []byte) (uint16, bool) {
	h, err := ReadContainerHeader(buf)
	if err != nil {
		return 0, false
	}
	end := h.Size() + h.CompressedLength
	if len(buf)-end < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(buf[end : end+2]), true
}

// Decode decompresses a stored container. The result is exactly the declared
// decompressed length or an error; partial output is never returned.
func Decode(buf []byte) ([]byte, error) {
	h, err := ReadContainerHeader(buf)
	if err != nil {
		return nil, err
	}
	body, err := h.body(buf)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch h.Compression {
	case CompressionNone:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil

	case CompressionBzip2:
		r = bzip2.NewReader(io.MultiReader(bytes.NewReader(bzip2Magic), bytes.NewReader(body)))

	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, streamHeaderError{Compression: h.Compression, Declared: h.DecompressedLength, Err: err}
		}
		defer zr.Close()
		r = zr

	case CompressionLZMA:
		if len(body) < lzmaPropsSize {
			return nil, InvalidLengthError{Expected: lzmaPropsSize, Actual: len(body)}
		}
		// Rebuild the classic .lzma header: properties, then the uncompressed
		// size which the container keeps in its own header instead.
		hdr := make([]byte, lzma.HeaderLen)
		copy(hdr, body[:lzmaPropsSize])
		binary.LittleEndian.PutUint64(hdr[lzmaPropsSize:], uint64(h.DecompressedLength))
		lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(body[lzmaPropsSize:])))
		if err != nil {
			return nil, streamHeaderError{Compression: h.Compression, Declared: h.DecompressedLength, Err: err}
		}
		r = lr
	}

	return inflate(r, h.DecompressedLength)
}

// DecodeVerified decodes buf and checks the CRC-32 of the decoded bytes
// against crc, the checksum recorded for archiveID.
func DecodeVerified(buf []byte, archiveID, crc uint32) ([]byte, error) {
	out, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	if actual := crc32.ChecksumIEEE(out); actual != crc {
		return nil, InvalidCRCError{Expected: crc, Actual: actual, ArchiveID: archiveID}
	}
	return out, nil
}

// streamHeaderError reports a gzip or lzma stream whose own header cannot be
// read. It unwraps to InvalidLengthError, since no output of the declared
// length can be produced, and to the decompressor's error.
type streamHeaderError struct {
	Compression Compression
	Declared    int
	Err         error
}

func (e streamHeaderError) Error() string {
	return fmt.Sprintf("%s stream header (declared length %d): %v", e.Compression, e.Declared, e.Err)
}

func (e streamHeaderError) Unwrap() []error {
	return []error{InvalidLengthError{Expected: e.Declared}, e.Err}
}

func (streamHeaderError) Kind() Kind { return KindValidate }

// inflate drains r, reading at most want+1 bytes so an over-long stream is
// detected without consuming it all.
func inflate(r io.Reader, want int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(want, maxPrealloc))

	n, err := buf.ReadFrom(io.LimitReader(r, int64(want)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", InvalidLengthError{Expected: want, Actual: int(n)}, err)
	}
	if int(n) != want {
		return nil, InvalidLengthError{Expected: want, Actual: int(n)}
	}
	return buf.Bytes(), nil
}

// ContainerCRC returns the CRC-32 of a stored container's header and body,
// leaving out the version trailer. This is the value reference tables record
// in ArchiveDescriptor.CRC.
func ContainerCRC(buf []byte) (uint32, error) {
	h, err := ReadContainerHeader(buf)
	if err != nil {
		return 0, err
	}
	if _, err := h.body(buf); err != nil {
		return 0, err
	}
	return crc32.ChecksumIEEE(buf[:h.Size()+h.CompressedLength]), nil
}
