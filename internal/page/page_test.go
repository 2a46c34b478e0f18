package page

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rowstore/internal/schema"
	"rowstore/internal/tuple"
)

func testSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Parse("id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	require.NoError(t, err)
	return s
}

// testPage reproduces the three-tuple, 500-byte, compression-byte-1 page used
// throughout this package's worked scenarios: payload lengths 33/17/25
// landing at slots (446,54), (334,38), (234,46).
func testPage(t *testing.T) Page {
	t.Helper()
	s := testSchema(t)
	p := Build(s, 500, 1)

	tup1, err := tuple.Build(s, 0, []bool{false, false, false, false}, bytesOf(33, 2))
	require.NoError(t, err)
	tup2, err := tuple.Build(s, 0, []bool{true, false, false, false}, bytesOf(17, 8))
	require.NoError(t, err)
	tup3, err := tuple.Build(s, 0, []bool{false, false, false, true}, bytesOf(25, 65))
	require.NoError(t, err)

	p.Tuples[Slot{Offset: 446, Length: 54}] = tup1
	p.Tuples[Slot{Offset: 334, Length: 38}] = tup2
	p.Tuples[Slot{Offset: 234, Length: 46}] = tup3
	p.Header.Slots = 3

	return p
}

func bytesOf(n int, v byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := testSchema(t)
	p := testPage(t)

	decoded, err := Decode(s, p.Encode())
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestFreeSlotsCaseMaximum(t *testing.T) {
	p := testPage(t)
	require.Equal(t, []Slot{{38, 196}, {280, 54}, {372, 74}}, p.FreeSlots())
}

func TestFreeSlotsCaseNormal(t *testing.T) {
	p := testPage(t)
	p.Header.PageSize += 10
	require.Equal(t, []Slot{{38, 196}, {280, 54}, {372, 74}, {500, 10}}, p.FreeSlots())
}

func TestFreeSlotsCaseNone(t *testing.T) {
	s := testSchema(t)
	p := Build(s, 500, 1)
	tup, err := tuple.Build(s, 0, []bool{false, false, false, true}, bytesOf(25, 65))
	require.NoError(t, err)
	p.Tuples[Slot{Offset: 22, Length: 478}] = tup
	p.Header.Slots = 1

	require.Empty(t, p.FreeSlots())
}

func TestFreeSlotsCaseMinimum(t *testing.T) {
	s := testSchema(t)
	p := Build(s, 500, 1)
	tup, err := tuple.Build(s, 0, []bool{false, false, false, true}, bytesOf(25, 65))
	require.NoError(t, err)
	p.Tuples[Slot{Offset: 38, Length: 103}] = tup
	p.Tuples[Slot{Offset: 152, Length: 25}] = tup
	p.Tuples[Slot{Offset: 200, Length: 25}] = tup
	p.Header.Slots = 3

	require.Equal(t, []Slot{{141, 11}, {177, 23}, {225, 275}}, p.FreeSlots())
}

func TestInsertAppendsTuple(t *testing.T) {
	p := testPage(t)

	_, err := p.Insert([]bool{true, true, false, true}, []byte{1})
	require.NoError(t, err)
	_, err = p.Insert([]bool{false, false, false, false}, bytesOf(33, 32))
	require.NoError(t, err)
	_, err = p.Insert([]bool{false, false, false, false}, bytesOf(33, 18))
	require.NoError(t, err)

	require.Len(t, p.Encode(), 500)
	require.Equal(t, []Slot{{62, 118}, {280, 32}, {372, 20}}, p.FreeSlots())
}

func TestInsertReturnsPageOverflowWhenFull(t *testing.T) {
	p := testPage(t)
	var lastErr error
	for i := 0; i < 8; i++ {
		_, err := p.Insert([]bool{false, false, false, false}, bytesOf(33, 18))
		if err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr)
}

func TestDeleteBySlotsRemovesTuples(t *testing.T) {
	p := testPage(t)
	_, err := p.Insert([]bool{true, true, false, true}, []byte{1})
	require.NoError(t, err)
	_, err = p.Insert([]bool{false, false, false, false}, bytesOf(33, 32))
	require.NoError(t, err)
	_, err = p.Insert([]bool{false, false, false, false}, bytesOf(33, 18))
	require.NoError(t, err)

	before := len(p.Tuples)
	p.DeleteBySlots([]Slot{{446, 54}, {334, 38}})
	require.Equal(t, before-2, len(p.Tuples))
	require.Equal(t, uint32(before-2), p.Header.Slots)
}

func TestUpdateBySlotReplacesTuple(t *testing.T) {
	p := testPage(t)
	err := p.UpdateBySlot(Slot{234, 46}, []bool{false, false, false, true}, bytesOf(25, 9))
	require.NoError(t, err)
	require.Equal(t, bytesOf(25, 9), p.Tuples[Slot{234, 46}].Payload)
}

func TestUpdateBySlotRejectsUnknownSlot(t *testing.T) {
	p := testPage(t)
	err := p.UpdateBySlot(Slot{235, 46}, []bool{false, false, false, true}, bytesOf(25, 9))
	require.Error(t, err)
}

func TestReadBySlotsReturnsPresentTuples(t *testing.T) {
	p := testPage(t)
	got := p.ReadBySlots([]Slot{{446, 54}, {999, 1}})
	require.Len(t, got, 1)
	require.Contains(t, got, Slot{446, 54})
}

func TestChecksumDetectsMutation(t *testing.T) {
	p := testPage(t)
	require.False(t, p.ValidChecksum())
	p.RefreshChecksum()
	require.True(t, p.ValidChecksum())

	_, err := p.Insert([]bool{true, true, false, true}, []byte{1})
	require.NoError(t, err)
	require.False(t, p.ValidChecksum())
}
