package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants a configuration value can take.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindArray
	KindTable
)

// Value is one node of a parsed configuration tree. A value is either a
// scalar (string, bool, integer, float), an array of values, or a table
// mapping keys to values. The zero Value is an empty string.
type Value struct {
	kind  Kind
	str   string
	b     bool
	i     int64
	f     float64
	arr   []Value
	table map[string]Value
}

func StringValue(s string) Value    { return Value{kind: KindString, str: s} }
func BoolValue(b bool) Value        { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value        { return Value{kind: KindInteger, i: i} }
func FloatValue(f float64) Value    { return Value{kind: KindFloat, f: f} }
func ArrayValue(vs []Value) Value   { return Value{kind: KindArray, arr: vs} }
func TableValue(t map[string]Value) Value {
	return Value{kind: KindTable, table: t}
}

// FromInterface converts a generic decoded structure (as produced by a
// TOML unmarshal into map[string]any) into a typed Value tree.
func FromInterface(v any) (Value, error) {
	switch v := v.(type) {
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case int64:
		return IntValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case float64:
		return FloatValue(v), nil
	case []any:
		arr := make([]Value, 0, len(v))
		for _, elem := range v {
			val, err := FromInterface(elem)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, val)
		}
		return ArrayValue(arr), nil
	case map[string]any:
		table := make(map[string]Value, len(v))
		for key, elem := range v {
			val, err := FromInterface(elem)
			if err != nil {
				return Value{}, err
			}
			table[key] = val
		}
		return TableValue(table), nil
	default:
		return Value{}, fmt.Errorf("unsupported configuration value type %T", v)
	}
}

// Kind returns the variant this value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// AsString returns the string payload, if this value is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.str, true
}

// AsStringArray returns the elements of an array whose members are all
// strings. Any non-string element makes the whole conversion fail.
func (v Value) AsStringArray() ([]string, bool) {
	if v.kind != KindArray {
		return nil, false
	}

	out := make([]string, 0, len(v.arr))
	for _, elem := range v.arr {
		s, ok := elem.AsString()
		if !ok {
			return nil, false
		}

		out = append(out, s)
	}

	return out, true
}

// AsTable returns the table payload, if this value is a table.
func (v Value) AsTable() (map[string]Value, bool) {
	if v.kind != KindTable {
		return nil, false
	}

	return v.table, true
}

// Lookup resolves a dotted path (e.g. "build.rustflags") against this
// value. Every intermediate segment must be a table.
func (v Value) Lookup(path string) (Value, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		table, ok := cur.AsTable()
		if !ok {
			return Value{}, false
		}

		cur, ok = table[seg]
		if !ok {
			return Value{}, false
		}
	}

	return cur, true
}

// WithoutKey returns a copy of a table value with one key removed.
// Non-table values are returned unchanged.
func (v Value) WithoutKey(key string) Value {
	table, ok := v.AsTable()
	if !ok {
		return v
	}

	out := make(map[string]Value, len(table))
	for k, val := range table {
		if k != key {
			out[k] = val
		}
	}

	return TableValue(out)
}

// IsEmptyTable reports whether this value is a table with no entries.
func (v Value) IsEmptyTable() bool {
	table, ok := v.AsTable()
	return ok && len(table) == 0
}

// String renders the value in a canonical textual form: table keys are
// emitted in lexicographic order so that semantically identical trees
// always produce identical bytes, regardless of decode-time map order.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, elem := range v.arr {
			parts = append(parts, elem.String())
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindTable:
		keys := make([]string, 0, len(v.table))
		for k := range v.table {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s = %s", k, v.table[k]))
		}

		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}
