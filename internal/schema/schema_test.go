package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidSchema(t *testing.T) {
	s, err := Parse("id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	require.NoError(t, err)
	require.Len(t, s.Fields, 4)
	require.Equal(t, "id", s.Fields[0].Name)
	require.Equal(t, Bigint, s.Fields[0].Type)
	require.Equal(t, Float, s.Fields[1].Type)
	require.Equal(t, Boolean, s.Fields[2].Type)
	require.Equal(t, Timestamp, s.Fields[3].Type)
}

func TestParseCaseInsensitiveType(t *testing.T) {
	s, err := Parse("name string, active boolean")
	require.NoError(t, err)
	require.Equal(t, String, s.Fields[0].Type)
	require.Equal(t, Boolean, s.Fields[1].Type)
}

func TestParseTrailingComma(t *testing.T) {
	s, err := Parse("id INT, name STRING,")
	require.NoError(t, err)
	require.Len(t, s.Fields, 2)
}

func TestParseInvalidArity(t *testing.T) {
	_, err := Parse("id INT BIGINT")
	require.Error(t, err)
}

func TestParseInvalidType(t *testing.T) {
	_, err := Parse("id NUMBER")
	require.Error(t, err)
}

// S1: tuple_size(None) == 33 and tuple_size(Some([1,0,0,1])) == 9.
func TestTupleSizeScenarioS1(t *testing.T) {
	s, err := Parse("id BIGINT, cost FLOAT, available BOOLEAN, date TIMESTAMP")
	require.NoError(t, err)

	require.Equal(t, 33, s.TupleSize())
	require.Equal(t, 9, s.TupleSize([]bool{true, false, false, true}))
}

func TestNullBitmapWidth(t *testing.T) {
	s, err := Parse("a INT, b INT, c INT")
	require.NoError(t, err)
	require.Equal(t, 3, s.NullBitmapWidth())
}
