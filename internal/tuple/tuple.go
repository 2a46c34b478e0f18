// Package tuple implements the smallest record unit: a visibility byte, a
// null bitmap (one byte per column), and a packed payload. Generalized
// from minidb's pkg/types.Tuple, which instead carries MVCC bookkeeping
// (XMin/XMax/Cid) ahead of its payload — this spec deliberately limits
// tuple metadata to a single visibility byte (Non-goal: "MVCC beyond a
// visibility byte").
//
// The wire framing follows the original implementation's bincode-derived
// layout byte-for-byte: visibility(1) then the null mask and the payload
// each written as a length-prefixed vector (an 8-byte little-endian
// length followed by the raw bytes), not as a bare fixed-width run. That
// gives every encoded tuple 17+numCols bytes of fixed overhead ahead of
// the payload.
package tuple

import (
	"encoding/binary"

	"rowstore/internal/errs"
	"rowstore/internal/schema"
)

// Header is the fixed-shape prefix of every encoded Tuple.
type Header struct {
	Visibility uint8
	Nulls      []bool // one entry per schema field
}

// Tuple is an immutable row. Mutation happens by replacement: build a new
// Tuple and have the caller swap it in (Page.UpdateBySlot does exactly
// this).
type Tuple struct {
	Header  Header
	Payload []byte
}

// Build validates that schema.TupleSize(nulls) == len(data) and returns the
// corresponding Tuple, or ErrCorruptedTuple if the payload length doesn't
// match what the schema and null mask predict.
func Build(s schema.Schema, visibility uint8, nulls []bool, data []byte) (Tuple, error) {
	if len(nulls) != len(s.Fields) {
		return Tuple{}, errs.Newf(errs.KindCorruptedTuple,
			"null mask width %d does not match schema field count %d", len(nulls), len(s.Fields))
	}
	want := s.TupleSize(nulls)
	if want != len(data) {
		return Tuple{}, errs.Newf(errs.KindCorruptedTuple,
			"payload length %d does not match schema-derived size %d", len(data), want)
	}

	payload := make([]byte, len(data))
	copy(payload, data)
	mask := make([]bool, len(nulls))
	copy(mask, nulls)

	return Tuple{
		Header:  Header{Visibility: visibility, Nulls: mask},
		Payload: payload,
	}, nil
}

// Encode produces the canonical byte representation: visibility(1), the
// null mask as a length-prefixed vector (8-byte little-endian length then
// one byte per column, 0 or 1), then the payload as a length-prefixed
// vector (8-byte little-endian length then the raw bytes).
func (t Tuple) Encode() []byte {
	numCols := len(t.Header.Nulls)
	buf := make([]byte, 1+8+numCols+8+len(t.Payload))

	buf[0] = t.Header.Visibility

	binary.LittleEndian.PutUint64(buf[1:9], uint64(numCols))
	for i, isNull := range t.Header.Nulls {
		if isNull {
			buf[9+i] = 1
		}
	}

	dataLenOffset := 9 + numCols
	binary.LittleEndian.PutUint64(buf[dataLenOffset:dataLenOffset+8], uint64(len(t.Payload)))
	copy(buf[dataLenOffset+8:], t.Payload)

	return buf
}

// Decode reconstructs a Tuple from its canonical encoding, given the schema
// that describes it. The null mask's width is self-describing (it carries
// its own length prefix), but Decode still checks it against the schema's
// field count so a tuple built against a different schema is rejected
// rather than silently misread.
func Decode(s schema.Schema, buf []byte) (Tuple, error) {
	numCols := len(s.Fields)
	if len(buf) < 9+numCols+8 {
		return Tuple{}, errs.Newf(errs.KindSerialization,
			"buffer of %d bytes too small for a %d-column tuple header", len(buf), numCols)
	}

	visibility := buf[0]
	nullsLen := binary.LittleEndian.Uint64(buf[1:9])
	if nullsLen != uint64(numCols) {
		return Tuple{}, errs.Newf(errs.KindSerialization,
			"encoded null mask width %d does not match schema field count %d", nullsLen, numCols)
	}

	nulls := make([]bool, numCols)
	for i := 0; i < numCols; i++ {
		nulls[i] = buf[9+i] != 0
	}

	dataLenOffset := 9 + numCols
	dataLen := binary.LittleEndian.Uint64(buf[dataLenOffset : dataLenOffset+8])
	payloadStart := dataLenOffset + 8
	if uint64(len(buf)-payloadStart) < dataLen {
		return Tuple{}, errs.Newf(errs.KindSerialization,
			"buffer of %d bytes too small for declared payload length %d", len(buf)-payloadStart, dataLen)
	}
	payload := buf[payloadStart : payloadStart+int(dataLen)]

	want := s.TupleSize(nulls)
	if want != len(payload) {
		return Tuple{}, errs.Newf(errs.KindSerialization,
			"payload length %d does not match schema-derived size %d", len(payload), want)
	}

	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return Tuple{
		Header:  Header{Visibility: visibility, Nulls: nulls},
		Payload: payloadCopy,
	}, nil
}

// EncodedLen returns the byte length Encode would produce, without
// allocating — wal.Decode uses it to step past an embedded tuple image.
func EncodedLen(s schema.Schema, nulls []bool) int {
	return 17 + len(s.Fields) + s.TupleSize(nulls)
}
