package codegen

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	phferrors "github.com/tamirms/phf/errors"
	"github.com/tamirms/phf/internal/chd"
	"github.com/tamirms/phf/internal/format"
)

// tableWriter writes a binary table file through a memory map.
// File layout: [Header 48B][Disps][Slots][Records][Footer 16B]
type tableWriter struct {
	file *os.File
	mmap mmap.MMap // Memory-mapped region
	data []byte    // View into mmap for direct writes

	header format.Header
}

// writeTable writes st and its entries to path. values is nil for sets.
func writeTable(path string, kind format.Kind, st *chd.State, keys, values [][]byte) error {
	var recordsSize uint64
	for i, key := range keys {
		var value []byte
		if values != nil {
			value = values[i]
		}
		if uint64(len(key)) > format.MaxFieldLen || uint64(len(value)) > format.MaxFieldLen {
			return fmt.Errorf("%w: entry %d exceeds %d bytes", phferrors.ErrInvalidConfig, i, uint64(format.MaxFieldLen))
		}
		recordsSize += format.RecordSize(len(key), len(value))
	}

	hdr := format.Header{
		Magic:       format.Magic,
		Version:     format.Version,
		Hash:        uint8(st.Hash),
		Kind:        kind,
		Seed:        st.Seed,
		NumKeys:     uint64(len(keys)),
		NumBuckets:  uint32(len(st.Disps)),
		Capacity:    uint32(st.Capacity()),
		RecordsSize: recordsSize,
	}

	tw, err := newTableWriter(path, hdr)
	if err != nil {
		return err
	}
	tw.writeRegions(st, keys, values)
	return tw.finalize()
}

// newTableWriter creates path, preallocates it to the size hdr describes,
// and maps it for writing.
func newTableWriter(path string, hdr format.Header) (*tableWriter, error) {
	size := hdr.FileSize()

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create table file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("failed to mmap file: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	prefaultRegion(mm)

	return &tableWriter{
		file:   file,
		mmap:   mm,
		data:   []byte(mm),
		header: hdr,
	}, nil
}

// writeRegions fills the header, displacement, slot and record regions.
func (tw *tableWriter) writeRegions(st *chd.State, keys, values [][]byte) {
	hdr := &tw.header
	hdr.EncodeTo(tw.data[:format.HeaderSize])

	for i, d := range st.Disps {
		format.PutDisp(tw.data[hdr.DispsOffset()+uint64(i)*format.DispSize:], d.D1, d.D2)
	}

	// Records are laid out in slot order.
	slots := tw.data[hdr.SlotsOffset():hdr.RecordsOffset()]
	records := tw.data[hdr.RecordsOffset() : hdr.RecordsOffset()+hdr.RecordsSize]
	var off uint64
	for slot, keyIdx := range st.Map {
		if st.IsEmpty(slot) {
			binary.LittleEndian.PutUint64(slots[slot*format.SlotSize:], format.EmptySlot)
			continue
		}
		binary.LittleEndian.PutUint64(slots[slot*format.SlotSize:], off)
		var value []byte
		if values != nil {
			value = values[keyIdx]
		}
		off += uint64(format.PutRecord(records[off:], keys[keyIdx], value))
	}
}

// finalize writes the footer checksum, flushes, and closes the file.
// On error, delegates to close() for idempotent cleanup.
func (tw *tableWriter) finalize() error {
	footerOffset := len(tw.data) - format.FooterSize
	ftr := format.Footer{Checksum: xxhash.Sum64(tw.data[:footerOffset])}
	ftr.EncodeTo(tw.data[footerOffset:])

	// Flush dirty pages to file (ensures writes visible before unmap)
	if err := tw.mmap.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, tw.close())
	}

	// Nil mmap regardless of outcome to prevent close() from retrying.
	unmapErr := tw.mmap.Unmap()
	tw.mmap = nil
	if unmapErr != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", unmapErr)
		return errors.Join(primaryErr, tw.close())
	}

	closeErr := tw.file.Close()
	tw.file = nil
	return closeErr
}

// close releases the writer without finalizing (for error cleanup).
// Idempotent: safe to call multiple times.
func (tw *tableWriter) close() error {
	var unmapErr error
	if tw.mmap != nil {
		unmapErr = tw.mmap.Unmap()
		tw.mmap = nil
	}
	var closeErr error
	if tw.file != nil {
		closeErr = tw.file.Close()
		tw.file = nil
	}
	return errors.Join(unmapErr, closeErr)
}
