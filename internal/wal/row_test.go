package wal

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

func testTuple(t *testing.T) tuple.Tuple {
	t.Helper()
	data := make([]byte, 32)
	for i := range data {
		data[i] = 4
	}
	tup, err := tuple.Build(testSchema(t), 0, []bool{false, false, true, false}, data)
	require.NoError(t, err)
	return tup
}

func TestNewInsertRowPopulatesOnlyNewData(t *testing.T) {
	row := NewInsertRow(0, 23, 66, "87", testTuple(t))
	require.Equal(t, uint32(23), row.TransactionID)
	require.Equal(t, uint32(66), row.TransactionSize)
	require.Equal(t, "87", row.CatalogTableID)
	require.Equal(t, OpInsert, row.Operation)
	require.NotNil(t, row.NewData)
	require.Nil(t, row.OldData)
	require.Nil(t, row.BufferPageID)
	require.Nil(t, row.FileID)
	require.Nil(t, row.PageID)
	require.Nil(t, row.SlotOffset)
}

func TestNewDeleteRowPopulatesLocator(t *testing.T) {
	row := NewDeleteRow(0, 23, 66, "87", testTuple(t), 0, 1, 2, 3, 4)
	require.Equal(t, OpDelete, row.Operation)
	require.Nil(t, row.NewData)
	require.NotNil(t, row.OldData)
	require.Equal(t, uint32(0), *row.BufferPageID)
	require.Equal(t, uint32(1), *row.FileID)
	require.Equal(t, uint32(2), *row.PageID)
	require.Equal(t, uint32(3), *row.SlotOffset)
	require.Equal(t, uint32(4), *row.SlotLength)
}

func TestNewUpdateRowPopulatesBothImages(t *testing.T) {
	row := NewUpdateRow(0, 23, 66, "87", testTuple(t), testTuple(t), 0, 1, 2, 3, 4)
	require.Equal(t, OpUpdate, row.Operation)
	require.NotNil(t, row.NewData)
	require.NotNil(t, row.OldData)
	require.Equal(t, uint32(2), *row.PageID)
}

func TestRowEncodeDecodeRoundTripInsert(t *testing.T) {
	s := testSchema(t)
	row := NewInsertRow(1700000000000, 23, 66, "87", testTuple(t))

	decoded, err := Decode(s, row.Encode())
	require.NoError(t, err)
	require.Equal(t, row.DateCreated, decoded.DateCreated)
	require.Equal(t, row.TransactionID, decoded.TransactionID)
	require.Equal(t, row.TransactionSize, decoded.TransactionSize)
	require.Equal(t, row.CatalogTableID, decoded.CatalogTableID)
	require.Equal(t, row.Operation, decoded.Operation)
	require.Nil(t, decoded.OldData)
	require.NotNil(t, decoded.NewData)
	require.Equal(t, row.NewData.Payload, decoded.NewData.Payload)
}

func TestRowEncodeDecodeRoundTripDelete(t *testing.T) {
	s := testSchema(t)
	row := NewDeleteRow(1700000000000, 23, 66, "87", testTuple(t), 0, 1, 2, 3, 4)

	decoded, err := Decode(s, row.Encode())
	require.NoError(t, err)
	require.Equal(t, OpDelete, decoded.Operation)
	require.NotNil(t, decoded.OldData)
	require.Nil(t, decoded.NewData)
	require.Equal(t, uint32(0), *decoded.BufferPageID)
	require.Equal(t, uint32(1), *decoded.FileID)
	require.Equal(t, uint32(2), *decoded.PageID)
	require.Equal(t, uint32(3), *decoded.SlotOffset)
	require.Equal(t, uint32(4), *decoded.SlotLength)
}

func TestRowEncodeDecodeRoundTripUpdate(t *testing.T) {
	s := testSchema(t)
	row := NewUpdateRow(1700000000000, 23, 66, "87", testTuple(t), testTuple(t), 0, 1, 2, 3, 4)

	decoded, err := Decode(s, row.Encode())
	require.NoError(t, err)
	require.Equal(t, OpUpdate, decoded.Operation)
	require.NotNil(t, decoded.OldData)
	require.NotNil(t, decoded.NewData)
}
