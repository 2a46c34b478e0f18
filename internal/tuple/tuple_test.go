package tuple

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rowstore/internal/schema"
)

func mustSchema(t *testing.T, def string) schema.Schema {
	t.Helper()
	s, err := schema.Parse(def)
	require.NoError(t, err)
	return s
}

func TestBuildRejectsMismatchedPayload(t *testing.T) {
	s := mustSchema(t, "id INT, name STRING")
	_, err := Build(s, 1, []bool{false, false}, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestBuildRejectsMismatchedNullsWidth(t *testing.T) {
	s := mustSchema(t, "id INT, name STRING")
	_, err := Build(s, 1, []bool{false}, []byte{1, 2, 3, 4})
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := mustSchema(t, "id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	nulls := []bool{true, false, false, true}
	data := make([]byte, s.TupleSize(nulls))
	for i := range data {
		data[i] = byte(i + 1)
	}

	tup, err := Build(s, 7, nulls, data)
	require.NoError(t, err)

	encoded := tup.Encode()
	decoded, err := Decode(s, encoded)
	require.NoError(t, err)

	require.Equal(t, tup, decoded)
	require.Equal(t, encoded, decoded.Encode())
}

func TestEncodeDecodeAllColumnsNull(t *testing.T) {
	s := mustSchema(t, "a INT, b INT")
	tup, err := Build(s, 0, []bool{true, true}, nil)
	require.NoError(t, err)

	decoded, err := Decode(s, tup.Encode())
	require.NoError(t, err)
	require.Equal(t, tup, decoded)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	s := mustSchema(t, "a INT, b INT, c INT")
	_, err := Decode(s, []byte{0, 1})
	require.Error(t, err)
}

func TestEncodedLenMatchesEncode(t *testing.T) {
	s := mustSchema(t, "id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	nulls := []bool{false, false, true, false}
	data := make([]byte, s.TupleSize(nulls))
	tup, err := Build(s, 0, nulls, data)
	require.NoError(t, err)
	require.Equal(t, EncodedLen(s, nulls), len(tup.Encode()))
}

// Wire layout is fixed externally: visibility(1), null mask as an 8-byte
// little-endian length prefix followed by one byte per column, then the
// payload as an 8-byte little-endian length prefix followed by the raw
// bytes.
func TestEncodeMatchesCanonicalLayout(t *testing.T) {
	s := mustSchema(t, "id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	data := make([]byte, 32)
	for i := range data {
		data[i] = 4
	}

	tup, err := Build(s, 0, []bool{false, false, true, false}, data)
	require.NoError(t, err)

	want := []byte{0, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 32, 0, 0, 0, 0, 0, 0, 0}
	want = append(want, data...)

	require.Equal(t, want, tup.Encode())
}

func TestEncodedLenMatchesOverhead(t *testing.T) {
	s := mustSchema(t, "id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	nulls := []bool{true, false, false, true}
	require.Equal(t, 17+4+s.TupleSize(nulls), EncodedLen(s, nulls))
}
