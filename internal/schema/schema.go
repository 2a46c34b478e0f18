// Package schema parses a textual column list into an ordered list of
// typed fields and reports per-row byte sizes. Generalized from minidb's
// three-value pkg/types.ValueType (Int/Text/Bool) to the eight-type
// enumeration this spec requires, and from minidb's struct-literal column
// definitions to a parsed "name TYPE, name TYPE" grammar.
package schema

import (
	"encoding/json"
	"strings"

	"rowstore/internal/errs"
)

// Type is one of the fixed column types a Field can hold.
type Type uint8

const (
	Boolean Type = iota
	Tinyint
	Smallint
	Int
	Bigint
	Float
	Timestamp
	String
)

var typeNames = map[string]Type{
	"BOOLEAN":   Boolean,
	"TINYINT":   Tinyint,
	"SMALLINT":  Smallint,
	"INT":       Int,
	"BIGINT":    Bigint,
	"FLOAT":     Float,
	"TIMESTAMP": Timestamp,
	"STRING":    String,
}

// ByteWidth returns the fixed on-disk width of one value of this type.
// String is reserved and deliberately zero-width (Non-goal: variable-length
// string payloads are not implemented). BIGINT and TIMESTAMP are pinned to
// 16 and 8 bytes respectively, not the 8/16 split a naive reading of the
// names would suggest — confirmed by a four-column BIGINT/FLOAT/BOOLEAN/
// TIMESTAMP schema's worked tuple_size totals (33 for every column, 17
// with BIGINT excluded, 25 with TIMESTAMP excluded, 1 with only BOOLEAN
// included), which only hold under this split.
func (t Type) ByteWidth() int {
	switch t {
	case Boolean, Tinyint:
		return 1
	case Smallint:
		return 2
	case Int:
		return 4
	case Bigint:
		return 16
	case Float:
		return 8
	case Timestamp:
		return 8
	case String:
		return 0
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Tinyint:
		return "TINYINT"
	case Smallint:
		return "SMALLINT"
	case Int:
		return "INT"
	case Bigint:
		return "BIGINT"
	case Float:
		return "FLOAT"
	case Timestamp:
		return "TIMESTAMP"
	case String:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders a Type as its textual name, so a persisted Field
// reads as {"name":"id","type":"BIGINT"} rather than a bare integer.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses a Type from its textual name.
func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := typeNames[strings.ToUpper(name)]
	if !ok {
		return errs.Newf(errs.KindSchemaInvalidType, "unknown type %q", name)
	}
	*t = parsed
	return nil
}

// Field is one named, typed column.
type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Schema is an ordered sequence of Field.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Parse splits input on "," and parses each trimmed segment as
// "<name> <TYPE>" (type matched case-insensitively). A trailing comma is
// tolerated. Any failure, even a single bad field, is returned as
// ErrSchemaInvalidSchema whose message lists every per-field
// SchemaInvalidField (wrong arity) or SchemaInvalidType (unknown type)
// failure; the per-field kinds are not returned on their own.
func Parse(input string) (Schema, error) {
	raw := strings.Split(input, ",")

	var fields []Field
	var problems []string

	for _, segment := range raw {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}

		tokens := strings.Fields(trimmed)
		if len(tokens) != 2 {
			problems = append(problems, errs.Newf(errs.KindSchemaInvalidField,
				"expected \"<name> <TYPE>\", got %q", trimmed).Error())
			continue
		}

		name, typeTok := tokens[0], strings.ToUpper(tokens[1])
		t, ok := typeNames[typeTok]
		if !ok {
			problems = append(problems, errs.Newf(errs.KindSchemaInvalidType,
				"unknown type %q for field %q", tokens[1], name).Error())
			continue
		}

		fields = append(fields, Field{Name: name, Type: t})
	}

	if len(problems) > 0 {
		return Schema{}, errs.Newf(errs.KindSchemaInvalidSchema,
			"%d invalid field(s): %s", len(problems), strings.Join(problems, "; "))
	}

	return Schema{Fields: fields}, nil
}

// TupleSize returns the sum of type widths over columns whose null bit is
// zero. With no nulls argument, every column counts (I: field count equals
// the width of every null bitmap associated with the schema).
func (s Schema) TupleSize(nulls ...[]bool) int {
	if len(nulls) == 0 || nulls[0] == nil {
		total := 0
		for _, f := range s.Fields {
			total += f.Type.ByteWidth()
		}
		return total
	}

	mask := nulls[0]
	total := 0
	for i, f := range s.Fields {
		if i < len(mask) && mask[i] {
			continue
		}
		total += f.Type.ByteWidth()
	}
	return total
}

// NullBitmapWidth is the number of bytes a null bitmap for this schema
// occupies: one byte per column.
func (s Schema) NullBitmapWidth() int {
	return len(s.Fields)
}
