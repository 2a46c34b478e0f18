// Package wal implements the storage core's write-ahead log: a sequence
// of length-implicit, newline-delimited Rows recording one change each,
// with a byte-offset checkpoint marking how much of the file has been
// replayed. Generalized from minidb/internal/wal/log.go's fixed-header-
// plus-variable-image record encoding and minidb/internal/wal/writer.go's
// append/Force durability boundary, down to the spec's simpler per-row
// shape (no LSN/PrevLSN/undo chain — Non-goal: no transaction manager
// beyond the WAL itself).
package wal

import (
	"encoding/binary"

	"rowstore/internal/errs"
	"rowstore/internal/schema"
	"rowstore/internal/tuple"
)

// Operation names the kind of change a Row records. The bincode-derived
// wire value matches the original's declaration order: Insert, Update,
// Delete.
type Operation uint32

const (
	OpInsert Operation = iota
	OpUpdate
	OpDelete
)

// Row is one WAL entry. OldData/NewData/BufferPageID/FileID/PageID/Slot
// are nil unless the operation populates them: Insert sets only NewData,
// Delete sets only OldData plus the page locator, Update sets both data
// fields plus the locator.
type Row struct {
	DateCreated     int64
	TransactionID   uint32
	TransactionSize uint32
	CatalogTableID  string
	Operation       Operation
	OldData         *tuple.Tuple
	NewData         *tuple.Tuple
	BufferPageID    *uint32
	FileID          *uint32
	PageID          *uint32
	SlotOffset      *uint32
	SlotLength      *uint32
}

func u32p(v uint32) *uint32 { return &v }

// NewInsertRow builds a Row for a freshly inserted tuple. The caller
// supplies dateCreated (this package never calls time.Now() itself, so
// callers stay free to stamp deterministically in tests).
func NewInsertRow(dateCreated int64, transactionID, transactionSize uint32, catalogTableID string, newData tuple.Tuple) Row {
	return Row{
		DateCreated:     dateCreated,
		TransactionID:   transactionID,
		TransactionSize: transactionSize,
		CatalogTableID:  catalogTableID,
		Operation:       OpInsert,
		NewData:         &newData,
	}
}

// NewDeleteRow builds a Row for a deleted tuple, recording the page
// locator it was deleted from.
func NewDeleteRow(dateCreated int64, transactionID, transactionSize uint32, catalogTableID string, oldData tuple.Tuple, bufferPageID, fileID, pageID, slotOffset, slotLength uint32) Row {
	return Row{
		DateCreated:     dateCreated,
		TransactionID:   transactionID,
		TransactionSize: transactionSize,
		CatalogTableID:  catalogTableID,
		Operation:       OpDelete,
		OldData:         &oldData,
		BufferPageID:    u32p(bufferPageID),
		FileID:          u32p(fileID),
		PageID:          u32p(pageID),
		SlotOffset:      u32p(slotOffset),
		SlotLength:      u32p(slotLength),
	}
}

// NewUpdateRow builds a Row for a replaced tuple, recording both images
// and the page locator they occupy.
func NewUpdateRow(dateCreated int64, transactionID, transactionSize uint32, catalogTableID string, newData, oldData tuple.Tuple, bufferPageID, fileID, pageID, slotOffset, slotLength uint32) Row {
	return Row{
		DateCreated:     dateCreated,
		TransactionID:   transactionID,
		TransactionSize: transactionSize,
		CatalogTableID:  catalogTableID,
		Operation:       OpUpdate,
		OldData:         &oldData,
		NewData:         &newData,
		BufferPageID:    u32p(bufferPageID),
		FileID:          u32p(fileID),
		PageID:          u32p(pageID),
		SlotOffset:      u32p(slotOffset),
		SlotLength:      u32p(slotLength),
	}
}

func putOptionalTuple(buf []byte, t *tuple.Tuple) []byte {
	if t == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return append(buf, t.Encode()...)
}

func putOptionalU32(buf []byte, v *uint32) []byte {
	if v == nil {
		return append(buf, 0)
	}
	tail := make([]byte, 4)
	binary.LittleEndian.PutUint32(tail, *v)
	return append(append(buf, 1), tail...)
}

// Encode renders the row in the same bincode-derived layout as the
// original WalRow: date_created(8) + transaction_id(4) +
// transaction_size(4) + catalog_table_id as a length-prefixed string +
// operation(4) + old_data/new_data as 1-byte-tagged optional Tuples +
// buffer_page_id/file_id/page_id as 1-byte-tagged optional u32s + slot as
// a 1-byte-tagged optional (u32, u32) pair.
func (r Row) Encode() []byte {
	buf := make([]byte, 0, 64)

	head := make([]byte, 16)
	binary.LittleEndian.PutUint64(head[0:8], uint64(r.DateCreated))
	binary.LittleEndian.PutUint32(head[8:12], r.TransactionID)
	binary.LittleEndian.PutUint32(head[12:16], r.TransactionSize)
	buf = append(buf, head...)

	strLen := make([]byte, 8)
	binary.LittleEndian.PutUint64(strLen, uint64(len(r.CatalogTableID)))
	buf = append(buf, strLen...)
	buf = append(buf, r.CatalogTableID...)

	opBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(opBuf, uint32(r.Operation))
	buf = append(buf, opBuf...)

	buf = putOptionalTuple(buf, r.OldData)
	buf = putOptionalTuple(buf, r.NewData)
	buf = putOptionalU32(buf, r.BufferPageID)
	buf = putOptionalU32(buf, r.FileID)
	buf = putOptionalU32(buf, r.PageID)

	if r.SlotOffset == nil || r.SlotLength == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		tail := make([]byte, 8)
		binary.LittleEndian.PutUint32(tail[0:4], *r.SlotOffset)
		binary.LittleEndian.PutUint32(tail[4:8], *r.SlotLength)
		buf = append(buf, tail...)
	}

	return buf
}

// Decode parses a Row from its canonical encoding. s describes the
// schema any embedded old_data/new_data Tuple was built against.
func Decode(s schema.Schema, buf []byte) (Row, error) {
	if len(buf) < 16+8 {
		return Row{}, errs.Newf(errs.KindSerialization, "buffer of %d bytes too small for a wal row header", len(buf))
	}
	r := Row{
		DateCreated:     int64(binary.LittleEndian.Uint64(buf[0:8])),
		TransactionID:   binary.LittleEndian.Uint32(buf[8:12]),
		TransactionSize: binary.LittleEndian.Uint32(buf[12:16]),
	}
	off := 16

	strLen := binary.LittleEndian.Uint64(buf[off : off+8])
	off += 8
	if uint64(len(buf)-off) < strLen {
		return Row{}, errs.Newf(errs.KindSerialization, "buffer too small for catalog_table_id of length %d", strLen)
	}
	r.CatalogTableID = string(buf[off : off+int(strLen)])
	off += int(strLen)

	if len(buf)-off < 4 {
		return Row{}, errs.New(errs.KindSerialization, "buffer too small for wal row operation tag")
	}
	r.Operation = Operation(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4

	readOptionalTuple := func() (*tuple.Tuple, error) {
		if len(buf)-off < 1 {
			return nil, errs.New(errs.KindSerialization, "buffer too small for an optional tuple tag")
		}
		tag := buf[off]
		off++
		if tag == 0 {
			return nil, nil
		}
		remaining := buf[off:]
		decoded, err := tuple.Decode(s, remaining)
		if err != nil {
			return nil, err
		}
		off += tuple.EncodedLen(s, decoded.Header.Nulls)
		return &decoded, nil
	}

	oldData, err := readOptionalTuple()
	if err != nil {
		return Row{}, err
	}
	r.OldData = oldData

	newData, err := readOptionalTuple()
	if err != nil {
		return Row{}, err
	}
	r.NewData = newData

	readOptionalU32 := func() (*uint32, error) {
		if len(buf)-off < 1 {
			return nil, errs.New(errs.KindSerialization, "buffer too small for an optional u32 tag")
		}
		tag := buf[off]
		off++
		if tag == 0 {
			return nil, nil
		}
		if len(buf)-off < 4 {
			return nil, errs.New(errs.KindSerialization, "buffer too small for an optional u32 value")
		}
		v := binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
		return &v, nil
	}

	r.BufferPageID, err = readOptionalU32()
	if err != nil {
		return Row{}, err
	}
	r.FileID, err = readOptionalU32()
	if err != nil {
		return Row{}, err
	}
	r.PageID, err = readOptionalU32()
	if err != nil {
		return Row{}, err
	}

	if len(buf)-off < 1 {
		return Row{}, errs.New(errs.KindSerialization, "buffer too small for an optional slot tag")
	}
	tag := buf[off]
	off++
	if tag != 0 {
		if len(buf)-off < 8 {
			return Row{}, errs.New(errs.KindSerialization, "buffer too small for an optional slot value")
		}
		r.SlotOffset = u32p(binary.LittleEndian.Uint32(buf[off : off+4]))
		r.SlotLength = u32p(binary.LittleEndian.Uint32(buf[off+4 : off+8]))
		off += 8
	}

	return r, nil
}
