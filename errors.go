package runecache

import (
	"errors"
	"fmt"
)

// Kind groups the errors returned by this package by origin.
type Kind uint8

const (
	KindIO Kind = iota + 1
	KindRead
	KindCompression
	KindParse
	KindValidate
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindRead:
		return "read"
	case KindCompression:
		return "compression"
	case KindParse:
		return "parse"
	case KindValidate:
		return "validate"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is implemented by every error the cache engine produces. Callers
// branch on Kind, or use errors.As against the concrete case types below.
type Error interface {
	error
	Kind() Kind
}

// KindOf reports the Kind of the first Error in err's chain, or zero if err
// did not originate from this package.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return 0
}

// IOError wraps a failure of the underlying storage.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) Kind() Kind    { return KindIO }

// Read errors: lookup failures and sector chain corruption.

// IndexNotFoundError is returned when no directory file exists for an index.
type IndexNotFoundError struct {
	IndexID uint8
}

func (e IndexNotFoundError) Error() string {
	return fmt.Sprintf("index %d not found", e.IndexID)
}
func (IndexNotFoundError) Kind() Kind { return KindRead }

// ArchiveNotFoundError is returned when an index has no record, or an
// all-zero record, for the archive.
type ArchiveNotFoundError struct {
	IndexID   uint8
	ArchiveID uint32
}

func (e ArchiveNotFoundError) Error() string {
	return fmt.Sprintf("index %d does not contain archive %d", e.IndexID, e.ArchiveID)
}
func (ArchiveNotFoundError) Kind() Kind { return KindRead }

// ReferenceTableNotFoundError is returned when the directory file of index
// 255 is missing.
type ReferenceTableNotFoundError struct{}

func (ReferenceTableNotFoundError) Error() string {
	return "reference table (index 255) not found"
}
func (ReferenceTableNotFoundError) Kind() Kind { return KindRead }

// NameNotInArchiveError is returned when no archive of an index carries the
// hash of the requested name.
type NameNotInArchiveError struct {
	Hash    int32
	Name    string
	IndexID uint8
}

func (e NameNotInArchiveError) Error() string {
	return fmt.Sprintf("identifier hash %d for name %q not found in index %d", e.Hash, e.Name, e.IndexID)
}
func (NameNotInArchiveError) Kind() Kind { return KindRead }

// SectorArchiveMismatchError reports a sector header owned by another archive.
type SectorArchiveMismatchError struct {
	Received, Expected uint32
}

func (e SectorArchiveMismatchError) Error() string {
	return fmt.Sprintf("sector archive id was %d but expected %d", e.Received, e.Expected)
}
func (SectorArchiveMismatchError) Kind() Kind { return KindRead }

// SectorChunkMismatchError reports a sector out of sequence within its chain.
type SectorChunkMismatchError struct {
	Received, Expected int
}

func (e SectorChunkMismatchError) Error() string {
	return fmt.Sprintf("sector chunk was %d but expected %d", e.Received, e.Expected)
}
func (SectorChunkMismatchError) Kind() Kind { return KindRead }

// SectorNextMismatchError reports a chain that ends before the declared length
// is read, or continues after it.
type SectorNextMismatchError struct {
	Received, Expected uint32
}

func (e SectorNextMismatchError) Error() string {
	return fmt.Sprintf("sector next was %d but expected %d", e.Received, e.Expected)
}
func (SectorNextMismatchError) Kind() Kind { return KindRead }

// SectorIndexMismatchError reports a sector header owned by another index.
type SectorIndexMismatchError struct {
	Received, Expected uint8
}

func (e SectorIndexMismatchError) Error() string {
	return fmt.Sprintf("sector parent index id was %d but expected %d", e.Received, e.Expected)
}
func (SectorIndexMismatchError) Kind() Kind { return KindRead }

// CompressionUnsupportedError is returned for container tags no codec handles.
type CompressionUnsupportedError struct {
	Tag byte
}

func (e CompressionUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported compression type %d", e.Tag)
}
func (CompressionUnsupportedError) Kind() Kind { return KindCompression }

// Parse errors: metadata or file group layout ran out of input.

// ParseUnknownError is returned when a reference table is unsupported or ends
// before its archive id table is complete.
type ParseUnknownError struct{}

func (ParseUnknownError) Error() string { return "unknown parser error" }
func (ParseUnknownError) Kind() Kind    { return KindParse }

// ParseArchiveError is returned when a reference table ends inside the entry
// of ArchiveID.
type ParseArchiveError struct {
	ArchiveID uint32
}

func (e ParseArchiveError) Error() string {
	return fmt.Sprintf("unable to parse archive %d, unexpected eof", e.ArchiveID)
}
func (ParseArchiveError) Kind() Kind { return KindParse }

// ParseSectorError is returned when the file table of archive ParentID does
// not describe its data.
type ParseSectorError struct {
	ParentID uint32
}

func (e ParseSectorError) Error() string {
	return fmt.Sprintf("unable to parse child sector of parent %d, unexpected eof", e.ParentID)
}
func (ParseSectorError) Kind() Kind { return KindParse }

// Validate errors: decoded content disagrees with what was declared.

// InvalidLengthError reports a container or stream whose size disagrees with
// its declared length.
type InvalidLengthError struct {
	Expected, Actual int
}

func (e InvalidLengthError) Error() string {
	return fmt.Sprintf("expected length of %d but was %d", e.Expected, e.Actual)
}
func (InvalidLengthError) Kind() Kind { return KindValidate }

// InvalidCRCError reports decoded bytes whose CRC-32 differs from the one
// recorded for ArchiveID.
type InvalidCRCError struct {
	Expected, Actual uint32
	ArchiveID        uint32
}

func (e InvalidCRCError) Error() string {
	return fmt.Sprintf("mismatch crc at archive %d, expected %d but was %d", e.ArchiveID, e.Expected, e.Actual)
}
func (InvalidCRCError) Kind() Kind { return KindValidate }
