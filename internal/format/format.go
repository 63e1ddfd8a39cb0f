// Package format defines the binary table file layout shared by the table
// writer in codegen and the reader in the root package.
//
// File layout (little-endian):
//
//	[Header 48B][Disps numBuckets×8B][Slots capacity×8B][Records][Footer 16B]
//
// A slot holds the record offset (relative to the records region) of the key
// stored there, or EmptySlot. A record is [keyLen u32][valueLen u32][key][value].
// The footer holds the xxHash64 of every byte before it.
package format

import (
	"encoding/binary"
	"fmt"
	"math"

	phferrors "github.com/tamirms/phf/errors"
)

const (
	// Magic is "PHFT" in little-endian.
	Magic = uint32(0x54464850)

	// Version is the current format version.
	Version = uint16(0x0001)

	// HeaderSize is the exact size of the serialized header.
	HeaderSize = 48

	// FooterSize is the exact size of the serialized footer.
	FooterSize = 16

	// DispSize is the size of one (d1, d2) pair.
	DispSize = 8

	// SlotSize is the size of one slot offset.
	SlotSize = 8

	// RecordHeaderSize is the [keyLen][valueLen] prefix of a record.
	RecordHeaderSize = 8

	// EmptySlot marks a slot without a record.
	EmptySlot = uint64(math.MaxUint64)

	// MaxFieldLen bounds key and value lengths.
	MaxFieldLen = math.MaxUint32
)

// Kind distinguishes map tables from set tables.
type Kind uint8

const (
	KindMap Kind = 0
	KindSet Kind = 1
)

// Header is the 48-byte file header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x54464850 ("PHFT")
//	4       2     Version      0x0001
//	6       1     Hash         uint8 (hash family)
//	7       1     Kind         uint8 (0=map, 1=set)
//	8       8     Seed         uint64_le
//	16      8     NumKeys      uint64_le
//	24      4     NumBuckets   uint32_le
//	28      4     Capacity     uint32_le
//	32      8     RecordsSize  uint64_le
//	40      8     Reserved     [8]byte (zero)
type Header struct {
	Magic       uint32
	Version     uint16
	Hash        uint8
	Kind        Kind
	Seed        uint64
	NumKeys     uint64
	NumBuckets  uint32
	Capacity    uint32
	RecordsSize uint64
	Reserved    [8]byte
}

// EncodeTo serializes the header into buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = h.Hash
	buf[7] = uint8(h.Kind)
	binary.LittleEndian.PutUint64(buf[8:16], h.Seed)
	binary.LittleEndian.PutUint64(buf[16:24], h.NumKeys)
	binary.LittleEndian.PutUint32(buf[24:28], h.NumBuckets)
	binary.LittleEndian.PutUint32(buf[28:32], h.Capacity)
	binary.LittleEndian.PutUint64(buf[32:40], h.RecordsSize)
	copy(buf[40:48], h.Reserved[:])
}

// DecodeHeader parses and sanity-checks a header.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, phferrors.ErrTruncatedFile
	}

	h := &Header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		Hash:        buf[6],
		Kind:        Kind(buf[7]),
		Seed:        binary.LittleEndian.Uint64(buf[8:16]),
		NumKeys:     binary.LittleEndian.Uint64(buf[16:24]),
		NumBuckets:  binary.LittleEndian.Uint32(buf[24:28]),
		Capacity:    binary.LittleEndian.Uint32(buf[28:32]),
		RecordsSize: binary.LittleEndian.Uint64(buf[32:40]),
	}
	copy(h.Reserved[:], buf[40:48])

	if h.Magic != Magic {
		return nil, phferrors.ErrInvalidMagic
	}
	if h.Version != Version {
		return nil, phferrors.ErrInvalidVersion
	}
	if h.Kind > KindSet {
		return nil, phferrors.ErrCorruptedTable
	}
	if h.NumKeys > uint64(h.Capacity) {
		return nil, phferrors.ErrCorruptedTable
	}
	if (h.NumKeys == 0) != (h.NumBuckets == 0) {
		return nil, phferrors.ErrCorruptedTable
	}
	return h, nil
}

// DispsOffset returns the file offset of the displacement region.
func (h *Header) DispsOffset() uint64 {
	return HeaderSize
}

// SlotsOffset returns the file offset of the slot region.
func (h *Header) SlotsOffset() uint64 {
	return h.DispsOffset() + uint64(h.NumBuckets)*DispSize
}

// RecordsOffset returns the file offset of the records region.
func (h *Header) RecordsOffset() uint64 {
	return h.SlotsOffset() + uint64(h.Capacity)*SlotSize
}

// FileSize returns the total size of a file described by h. It wraps for a
// RecordsSize no real file can have; readers check with CheckSize instead.
func (h *Header) FileSize() uint64 {
	return h.RecordsOffset() + h.RecordsSize + FooterSize
}

// CheckSize reports whether a file of size bytes has exactly the regions h
// describes.
func (h *Header) CheckSize(size uint64) error {
	fixed := h.RecordsOffset() + FooterSize
	switch {
	case h.RecordsSize > math.MaxUint64-fixed:
		return fmt.Errorf("%w: records size %d overflows", phferrors.ErrCorruptedTable, h.RecordsSize)
	case size < fixed || h.RecordsSize > size-fixed:
		return phferrors.ErrTruncatedFile
	case h.RecordsSize < size-fixed:
		return fmt.Errorf("%w: file size %d, header describes %d", phferrors.ErrCorruptedTable, size, h.FileSize())
	}
	return nil
}

// Footer is the 16-byte file footer.
//
//	Offset  Size  Field     Type
//	0       8     Checksum  uint64_le (xxHash64 of all preceding bytes)
//	8       8     Reserved  [8]byte (zero)
type Footer struct {
	Checksum uint64
	Reserved [8]byte
}

// EncodeTo serializes the footer into buf, which must hold FooterSize bytes.
func (f *Footer) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.Checksum)
	copy(buf[8:16], f.Reserved[:])
}

// DecodeFooter parses a footer.
func DecodeFooter(buf []byte) (*Footer, error) {
	if len(buf) < FooterSize {
		return nil, phferrors.ErrTruncatedFile
	}
	f := &Footer{Checksum: binary.LittleEndian.Uint64(buf[0:8])}
	copy(f.Reserved[:], buf[8:16])
	return f, nil
}

// PutDisp writes a displacement pair.
func PutDisp(buf []byte, d1, d2 uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], d1)
	binary.LittleEndian.PutUint32(buf[4:8], d2)
}

// Disp reads a displacement pair.
func Disp(buf []byte) (d1, d2 uint32) {
	return binary.LittleEndian.Uint32(buf[0:4]), binary.LittleEndian.Uint32(buf[4:8])
}

// RecordSize returns the encoded size of a record.
func RecordSize(keyLen, valueLen int) uint64 {
	return RecordHeaderSize + uint64(keyLen) + uint64(valueLen)
}

// PutRecord writes a record into buf and returns the bytes written.
// buf must hold RecordSize(len(key), len(value)) bytes.
func PutRecord(buf, key, value []byte) int {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(value)))
	n := RecordHeaderSize
	n += copy(buf[n:], key)
	n += copy(buf[n:], value)
	return n
}

// Record decodes the record at the start of buf. The returned slices alias
// buf. Returns ErrCorruptedTable if the lengths run past buf.
func Record(buf []byte) (key, value []byte, err error) {
	if len(buf) < RecordHeaderSize {
		return nil, nil, phferrors.ErrCorruptedTable
	}
	keyLen := uint64(binary.LittleEndian.Uint32(buf[0:4]))
	valueLen := uint64(binary.LittleEndian.Uint32(buf[4:8]))
	end := RecordHeaderSize + keyLen + valueLen
	if end > uint64(len(buf)) {
		return nil, nil, phferrors.ErrCorruptedTable
	}
	key = buf[RecordHeaderSize : RecordHeaderSize+keyLen]
	value = buf[RecordHeaderSize+keyLen : end]
	return key, value, nil
}
