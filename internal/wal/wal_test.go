package wal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWriteCommitReadCheckpoint reproduces the three-row commit/read/
// checkpoint-at-EOF/empty-read scenario: three rows appended in one
// transaction, committed, read back in full with the checkpoint landing
// at end-of-file, then a second read returns nothing new.
func TestWriteCommitReadCheckpoint(t *testing.T) {
	dir := t.TempDir()
	w, err := Build(dir)
	require.NoError(t, err)
	defer w.Close()

	s := testSchema(t)
	rows := []Row{
		NewInsertRow(1, 23, 66, "87", testTuple(t)),
		NewInsertRow(2, 23, 66, "87", testTuple(t)),
		NewInsertRow(3, 23, 66, "87", testTuple(t)),
	}
	require.NoError(t, w.WriteTransaction(rows))
	require.NoError(t, w.Commit())

	read, err := w.Read(s)
	require.NoError(t, err)
	require.Len(t, read, 3)
	for i, r := range read {
		require.Equal(t, uint32(23), r.TransactionID)
		require.Equal(t, uint32(66), r.TransactionSize)
		require.Equal(t, OpInsert, r.Operation)
		require.Equal(t, rows[i].DateCreated, r.DateCreated)
	}

	info, err := os.Stat(w.path)
	require.NoError(t, err)
	require.Equal(t, info.Size(), w.checkpoint)

	again, err := w.Read(s)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestReadResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	w, err := Build(dir)
	require.NoError(t, err)
	defer w.Close()

	s := testSchema(t)
	require.NoError(t, w.WriteTransaction([]Row{NewInsertRow(1, 23, 66, "87", testTuple(t))}))
	require.NoError(t, w.Commit())
	first, err := w.Read(s)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, w.WriteTransaction([]Row{NewInsertRow(2, 23, 66, "87", testTuple(t))}))
	require.NoError(t, w.Commit())
	second, err := w.Read(s)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, int64(2), second[0].DateCreated)
}

func TestVacuumCompactsAndResetsCheckpoint(t *testing.T) {
	dir := t.TempDir()
	w, err := Build(dir)
	require.NoError(t, err)
	defer w.Close()

	s := testSchema(t)
	require.NoError(t, w.WriteTransaction([]Row{
		NewInsertRow(1, 23, 66, "87", testTuple(t)),
		NewInsertRow(2, 23, 66, "87", testTuple(t)),
	}))
	require.NoError(t, w.Commit())

	require.NoError(t, w.Vacuum(s))
	require.Equal(t, int64(0), w.checkpoint)

	rows, err := w.Read(s)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
