package phf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	phferrors "github.com/tamirms/phf/errors"
	"github.com/tamirms/phf/internal/chd"
	"github.com/tamirms/phf/internal/format"
)

// Table is a read-only perfect hash table loaded from a binary table file.
//
// Thread Safety:
//   - Get, Contains, All and the accessors are safe for concurrent use
//   - Close is NOT safe to call concurrently with lookups
//   - After Close returns, lookups return ErrTableClosed
type Table struct {
	mmap mmap.MMap
	data []byte

	header  *format.Header
	disps   []Disp
	slots   []byte
	records []byte

	closed atomic.Bool
}

// Open opens a table file for querying.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer file.Close()
	return OpenFile(file)
}

// OpenFile opens a table by memory-mapping f. The caller is responsible for
// closing f, which may happen as soon as OpenFile returns.
func OpenFile(f *os.File) (*Table, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat table file: %w", err)
	}
	if stat.Size() < int64(format.HeaderSize+format.FooterSize) {
		return nil, phferrors.ErrTruncatedFile
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap table file: %w", err)
	}
	adviseRandom(mm)

	t := &Table{
		mmap: mm,
		data: []byte(mm),
	}
	if err := t.init(); err != nil {
		return nil, errors.Join(err, t.Close())
	}
	return t, nil
}

// OpenBytes creates a table over an in-memory byte slice. Close is a no-op.
// The caller must not modify data while the Table is in use.
func OpenBytes(data []byte) (*Table, error) {
	if len(data) < format.HeaderSize+format.FooterSize {
		return nil, phferrors.ErrTruncatedFile
	}
	t := &Table{data: data}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

// init parses the header and slices the regions. The checksum is checked
// only by Verify.
func (t *Table) init() error {
	hdr, err := format.DecodeHeader(t.data[:format.HeaderSize])
	if err != nil {
		return err
	}
	if !chd.HashID(hdr.Hash).Valid() {
		return fmt.Errorf("%w: unknown hash family %d", phferrors.ErrCorruptedTable, hdr.Hash)
	}
	if err := hdr.CheckSize(uint64(len(t.data))); err != nil {
		return err
	}
	t.header = hdr

	t.disps = make([]Disp, hdr.NumBuckets)
	for i := range t.disps {
		off := hdr.DispsOffset() + uint64(i)*format.DispSize
		t.disps[i].D1, t.disps[i].D2 = format.Disp(t.data[off:])
	}
	t.slots = t.data[hdr.SlotsOffset():hdr.RecordsOffset()]
	t.records = t.data[hdr.RecordsOffset() : hdr.RecordsOffset()+hdr.RecordsSize]
	return nil
}

// Close releases the memory map.
func (t *Table) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if t.mmap != nil {
		return t.mmap.Unmap()
	}
	return nil
}

// Get returns the value stored for key. The returned slice aliases the
// table's memory and is valid until Close. Returns ErrNotFound if key is
// not in the table.
func (t *Table) Get(key []byte) ([]byte, error) {
	if t.closed.Load() {
		return nil, phferrors.ErrTableClosed
	}
	if t.header.NumKeys == 0 {
		return nil, phferrors.ErrNotFound
	}

	h := chd.Hash(chd.HashID(t.header.Hash), t.header.Seed, key)
	slot := chd.Slot(h, t.disps, int(t.header.Capacity))
	k, v, err := t.record(slot)
	if err != nil {
		return nil, err
	}
	if k == nil || !bytes.Equal(k, key) {
		return nil, phferrors.ErrNotFound
	}
	return v, nil
}

// Contains reports whether key is in the table.
func (t *Table) Contains(key []byte) (bool, error) {
	_, err := t.Get(key)
	if errors.Is(err, phferrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// record returns the record in slot, or nil slices for an empty slot.
func (t *Table) record(slot int) (key, value []byte, err error) {
	off := binary.LittleEndian.Uint64(t.slots[slot*format.SlotSize:])
	if off == format.EmptySlot {
		return nil, nil, nil
	}
	if off >= uint64(len(t.records)) {
		return nil, nil, fmt.Errorf("%w: slot %d points past records", phferrors.ErrCorruptedTable, slot)
	}
	return format.Record(t.records[off:])
}

// All yields every key and value in slot order. Iteration stops at the
// first corrupted record.
func (t *Table) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		if t.closed.Load() {
			return
		}
		for slot := range int(t.header.Capacity) {
			k, v, err := t.record(slot)
			if err != nil {
				return
			}
			if k == nil {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Len returns the number of keys.
func (t *Table) Len() int {
	return int(t.header.NumKeys)
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int {
	return int(t.header.Capacity)
}

// Seed returns the construction seed.
func (t *Table) Seed() uint64 {
	return t.header.Seed
}

// Hash returns the hash family.
func (t *Table) Hash() HashFunc {
	return HashFunc(t.header.Hash)
}

// IsSet reports whether the table was written by a set builder.
func (t *Table) IsSet() bool {
	return t.header.Kind == format.KindSet
}

// Verify checks the footer checksum against the file contents.
func (t *Table) Verify() error {
	if t.closed.Load() {
		return phferrors.ErrTableClosed
	}

	footerOffset := len(t.data) - format.FooterSize
	ft, err := format.DecodeFooter(t.data[footerOffset:])
	if err != nil {
		return err
	}
	if xxhash.Sum64(t.data[:footerOffset]) != ft.Checksum {
		return phferrors.ErrChecksumFailed
	}
	return nil
}
