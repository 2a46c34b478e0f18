// Package page implements the fixed-size binary page: a 14-byte header, a
// slot array that grows forward from the header, and a tuple heap that
// fills the remaining space from absolute offsets recorded in each slot.
// Free space is tracked as a set of disjoint byte runs recovered from the
// occupied slots, and Insert places a new tuple at the high end of the
// smallest run that can still hold it (best fit), generalized from
// minidb's internal/storage/page.go, which instead always appends new
// tuples at the low end of a single grow-from-front free region.
package page

import (
	"encoding/binary"
	"hash/crc32"
	"sort"

	"rowstore/internal/errs"
	"rowstore/internal/schema"
	"rowstore/internal/tuple"
)

// HeaderSize is the on-disk width of PageHeader: page_size(4) + slots(4) +
// checksum(4) + visibility(1) + compression(1).
const HeaderSize = 14

// SlotSize is the on-disk width of one Slot entry: offset(4) + length(4).
const SlotSize = 8

// ChecksumMaskBytes is the number of leading bytes excluded from the
// checksum: the header plus the first three bytes of the slot array.
const ChecksumMaskBytes = 17

// PageHeader is the fixed-shape prefix written ahead of every page's slot
// array and tuple heap.
type PageHeader struct {
	PageSize    uint32
	Slots       uint32
	Checksum    uint32
	Visibility  uint8
	Compression uint8
}

func (h PageHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.PageSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.Slots)
	binary.LittleEndian.PutUint32(buf[8:12], h.Checksum)
	buf[12] = h.Visibility
	buf[13] = h.Compression
	return buf
}

func decodeHeader(buf []byte) (PageHeader, error) {
	if len(buf) < HeaderSize {
		return PageHeader{}, errs.Newf(errs.KindSerialization,
			"buffer of %d bytes too small for a page header", len(buf))
	}
	return PageHeader{
		PageSize:    binary.LittleEndian.Uint32(buf[0:4]),
		Slots:       binary.LittleEndian.Uint32(buf[4:8]),
		Checksum:    binary.LittleEndian.Uint32(buf[8:12]),
		Visibility:  buf[12],
		Compression: buf[13],
	}, nil
}

// Slot addresses one tuple's position within a page's byte buffer.
type Slot struct {
	Offset uint32
	Length uint32
}

// Page holds a fixed-width header, the schema its tuples are decoded
// against, and the tuples keyed by their slot.
type Page struct {
	Schema schema.Schema
	Header PageHeader
	Tuples map[Slot]tuple.Tuple
}

// Build returns an empty page of the given size and compression codec.
func Build(s schema.Schema, pageSize uint32, compression uint8) Page {
	return Page{
		Schema: s,
		Header: PageHeader{PageSize: pageSize, Compression: compression},
		Tuples: make(map[Slot]tuple.Tuple),
	}
}

// FreeSlots returns the disjoint free byte runs between the end of the
// slot array and the end of the page, merging adjacent occupied-tuple
// boundaries. The first byte any tuple could occupy is 14+slots*8; if no
// tuple currently starts exactly there, it is the start of the first free
// run, otherwise it is folded away as the boundary of an occupied run.
func (p Page) FreeSlots() []Slot {
	contentStart := uint32(HeaderSize) + p.Header.Slots*SlotSize

	var bounds []uint32
	for s := range p.Tuples {
		bounds = append(bounds, s.Offset, s.Offset+s.Length)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	if !containsUint32(bounds, p.Header.PageSize) {
		bounds = append(bounds, p.Header.PageSize)
	}

	if !containsUint32(bounds, contentStart) {
		bounds = append([]uint32{contentStart}, bounds...)
	} else {
		bounds = bounds[1:]
	}

	var free []Slot
	for i := 0; i+1 < len(bounds); i += 2 {
		lo, hi := bounds[i], bounds[i+1]
		if hi > lo {
			free = append(free, Slot{Offset: lo, Length: hi - lo})
		}
	}
	return free
}

func containsUint32(xs []uint32, v uint32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Insert encodes nulls/data against the page's schema and places it at the
// high end of the smallest free run strictly larger than the encoded
// tuple, returning the slot it was written to. ErrPageOverflow is returned
// when no free run qualifies.
func (p *Page) Insert(nulls []bool, data []byte) (Slot, error) {
	tup, err := tuple.Build(p.Schema, 0, nulls, data)
	if err != nil {
		return Slot{}, err
	}
	tupleSize := uint32(len(tup.Encode()))

	var candidates []Slot
	for _, s := range p.FreeSlots() {
		if s.Length > tupleSize {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return Slot{}, errs.New(errs.KindPageOverflow, "insertion failed, no more space on this page")
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Length < candidates[j].Length })

	best := candidates[0]
	slot := Slot{Offset: best.Offset + best.Length - tupleSize, Length: tupleSize}
	p.Tuples[slot] = tup
	p.Header.Slots++
	return slot, nil
}

// DeleteBySlots removes every tuple whose slot matches one of slots,
// decrementing the slot count for each one actually present.
func (p *Page) DeleteBySlots(slots []Slot) {
	for _, s := range slots {
		if _, ok := p.Tuples[s]; ok {
			delete(p.Tuples, s)
			p.Header.Slots--
		}
	}
}

// UpdateBySlot replaces the tuple at an existing slot in place.
// ErrInvalidSlot is returned when the slot is not currently occupied.
func (p *Page) UpdateBySlot(slot Slot, nulls []bool, data []byte) error {
	if _, ok := p.Tuples[slot]; !ok {
		return errs.Newf(errs.KindInvalidSlot, "slot %+v is not occupied", slot)
	}
	tup, err := tuple.Build(p.Schema, 0, nulls, data)
	if err != nil {
		return err
	}
	p.Tuples[slot] = tup
	return nil
}

// ReadBySlots returns every tuple present at one of slots, omitting any
// slot that has no tuple.
func (p Page) ReadBySlots(slots []Slot) map[Slot]tuple.Tuple {
	out := make(map[Slot]tuple.Tuple, len(slots))
	for _, s := range slots {
		if t, ok := p.Tuples[s]; ok {
			out[s] = t
		}
	}
	return out
}

// Encode serializes the page to its full, page-size-wide byte buffer:
// header, slot array (sorted by offset for deterministic output), then
// each tuple written at its absolute slot offset.
func (p Page) Encode() []byte {
	buf := make([]byte, p.Header.PageSize)
	copy(buf, p.Header.encode())

	slots := make([]Slot, 0, len(p.Tuples))
	for s := range p.Tuples {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Offset < slots[j].Offset })

	for i, s := range slots {
		pos := HeaderSize + i*SlotSize
		binary.LittleEndian.PutUint32(buf[pos:pos+4], s.Offset)
		binary.LittleEndian.PutUint32(buf[pos+4:pos+8], s.Length)
	}

	for _, s := range slots {
		copy(buf[s.Offset:s.Offset+s.Length], p.Tuples[s].Encode())
	}

	return buf
}

// Decode reconstructs a Page from its encoded form against the given
// schema.
func Decode(s schema.Schema, buf []byte) (Page, error) {
	header, err := decodeHeader(buf)
	if err != nil {
		return Page{}, err
	}

	slotBytes := int(header.Slots) * SlotSize
	if len(buf) < HeaderSize+slotBytes {
		return Page{}, errs.Newf(errs.KindSerialization,
			"buffer of %d bytes too small for %d slots", len(buf), header.Slots)
	}

	tuples := make(map[Slot]tuple.Tuple, header.Slots)
	for i := 0; i < int(header.Slots); i++ {
		pos := HeaderSize + i*SlotSize
		slot := Slot{
			Offset: binary.LittleEndian.Uint32(buf[pos : pos+4]),
			Length: binary.LittleEndian.Uint32(buf[pos+4 : pos+8]),
		}
		if int(slot.Offset+slot.Length) > len(buf) {
			return Page{}, errs.Newf(errs.KindSerialization,
				"slot %+v exceeds buffer of %d bytes", slot, len(buf))
		}
		t, err := tuple.Decode(s, buf[slot.Offset:slot.Offset+slot.Length])
		if err != nil {
			return Page{}, err
		}
		tuples[slot] = t
	}

	return Page{Schema: s, Header: header, Tuples: tuples}, nil
}

// RefreshChecksum recomputes and stores the CRC-32 over every byte of the
// page except the first ChecksumMaskBytes.
func (p *Page) RefreshChecksum() {
	p.Header.Checksum = crc32.ChecksumIEEE(p.Encode()[ChecksumMaskBytes:])
}

// ValidChecksum reports whether the stored checksum matches the page's
// current content.
func (p Page) ValidChecksum() bool {
	return p.Header.Checksum == crc32.ChecksumIEEE(p.Encode()[ChecksumMaskBytes:])
}
