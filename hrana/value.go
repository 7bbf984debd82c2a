package hrana

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ValueType is the discriminator of a tagged wire value.
type ValueType string

const (
	TypeNull    ValueType = "null"
	TypeInteger ValueType = "integer"
	TypeFloat   ValueType = "float"
	TypeText    ValueType = "text"
	TypeBlob    ValueType = "blob"
)

// Value is a scalar carried with an explicit type discriminator.
// It is one of Null, Integer, Float, Text or Blob.
type Value interface {
	// Type returns the wire discriminator.
	Type() ValueType

	sealed()
}

// Null is the SQL NULL.
type Null struct{}

// Integer is a 64-bit signed integer. It travels as a decimal string so that
// values above 2^53 keep their precision in JSON.
type Integer struct{ Value int64 }

// Float is a 64-bit float carried as a JSON number.
type Float struct{ Value float64 }

// Text is a UTF-8 string.
type Text struct{ Value string }

// Blob is an opaque byte string carried as base64.
type Blob struct{ Value []byte }

func (Null) Type() ValueType    { return TypeNull }
func (Integer) Type() ValueType { return TypeInteger }
func (Float) Type() ValueType   { return TypeFloat }
func (Text) Type() ValueType    { return TypeText }
func (Blob) Type() ValueType    { return TypeBlob }

func (Null) sealed()    {}
func (Integer) sealed() {}
func (Float) sealed()   {}
func (Text) sealed()    {}
func (Blob) sealed()    {}

// wireValue is the JSON shape shared by all variants.
type wireValue struct {
	Type   ValueType `json:"type"`
	Value  any       `json:"value,omitempty"`
	Base64 string    `json:"base64,omitempty"`
}

func (v Null) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Type: TypeNull})
}

func (v Integer) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Type: TypeInteger, Value: strconv.FormatInt(v.Value, 10)})
}

func (v Float) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Type: TypeFloat, Value: v.Value})
}

func (v Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Type: TypeText, Value: v.Value})
}

func (v Blob) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue{Type: TypeBlob, Base64: base64.StdEncoding.EncodeToString(v.Value)})
}

// EncodeParam classifies a Go value into exactly one tagged variant.
//
//   - nil and nil pointers become Null.
//   - integer kinds become Integer; unsigned values above math.MaxInt64 are
//     sent as Text since the remote side only stores signed 64-bit integers.
//   - integral floats inside the int64 range become Integer, other finite
//     floats become Float. NaN and infinities are sent as Text.
//   - strings become Text and byte slices become Blob.
//   - anything else is formatted with fmt and sent as Text. This is lossy.
func EncodeParam(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case string:
		return Text{Value: x}
	case []byte:
		if x == nil {
			return Null{}
		}
		return Blob{Value: x}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Integer{Value: i}
		}
		if f, err := x.Float64(); err == nil {
			return encodeFloat(f)
		}
		return Text{Value: x.String()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		return EncodeParam(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer{Value: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Text{Value: strconv.FormatUint(u, 10)}
		}
		return Integer{Value: int64(u)}
	case reflect.Float32, reflect.Float64:
		return encodeFloat(rv.Float())
	case reflect.String:
		return Text{Value: rv.String()}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return Null{}
			}
			return Blob{Value: rv.Bytes()}
		}
	}

	return Text{Value: fmt.Sprint(v)}
}

func encodeFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Text{Value: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Integer{Value: int64(f)}
	}
	return Float{Value: f}
}

// EncodeParams encodes positional parameters. The result is never nil.
func EncodeParams(args []any) []Value {
	out := make([]Value, 0, len(args))
	for _, a := range args {
		out = append(out, EncodeParam(a))
	}
	return out
}

// ParseCell interprets a decoded wire cell as a tagged value.
// It reports false when the cell carries no tag wrapper at all.
func ParseCell(cell any) (Value, bool, error) {
	obj, ok := cell.(map[string]any)
	if !ok {
		return nil, false, nil
	}

	tag, ok := obj["type"].(string)
	if !ok {
		return nil, false, nil
	}

	raw := obj["value"]

	switch ValueType(tag) {
	case TypeNull:
		return Null{}, true, nil

	case TypeInteger:
		i, err := parseInt(raw)
		if err != nil {
			return nil, true, err
		}
		return Integer{Value: i}, true, nil

	case TypeFloat:
		f, err := parseFloat(raw)
		if err != nil {
			return nil, true, err
		}
		return Float{Value: f}, true, nil

	case TypeText:
		if s, ok := raw.(string); ok {
			return Text{Value: s}, true, nil
		}
		return nil, true, fmt.Errorf("%w: text value is %T", ErrValueInvalid, raw)

	case TypeBlob:
		s, _ := obj["base64"].(string)
		b, err := decodeBase64(s)
		if err != nil {
			return nil, true, fmt.Errorf("%w: blob: %w", ErrValueInvalid, err)
		}
		return Blob{Value: b}, true, nil

	default:
		return nil, true, fmt.Errorf("%w: unknown type %q", ErrValueInvalid, tag)
	}
}

// Native unwraps a tagged value into a plain Go scalar:
// nil, int64, float64, string or []byte.
func Native(v Value) any {
	switch x := v.(type) {
	case Null:
		return nil
	case Integer:
		return x.Value
	case Float:
		return x.Value
	case Text:
		return x.Value
	case Blob:
		return x.Value
	default:
		return nil
	}
}

// DecodeCell converts a decoded wire cell into a plain Go scalar.
//
// Bare scalars pass through unchanged, so endpoints that omit tag wrappers are
// tolerated. A tagged cell that cannot be interpreted yields its raw value field.
//
// Integer cells become int64 rather than the decimal string carried on the
// wire; the conversion is lossless because values outside the int64 range
// fail to parse and are returned as that string.
func DecodeCell(cell any) any {
	v, tagged, err := ParseCell(cell)
	if !tagged {
		return bare(cell)
	}
	if err != nil {
		return cell.(map[string]any)["value"]
	}
	return Native(v)
}

// bare normalizes numbers produced by a decoder running with UseNumber.
func bare(cell any) any {
	n, ok := cell.(json.Number)
	if !ok {
		return cell
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func parseInt(raw any) (int64, error) {
	switch x := raw.(type) {
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: integer: %w", ErrValueInvalid, err)
		}
		return i, nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: integer: %w", ErrValueInvalid, err)
		}
		return i, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: integer has a fraction", ErrValueInvalid)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("%w: integer value is %T", ErrValueInvalid, raw)
	}
}

func parseFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: float: %w", ErrValueInvalid, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: float: %w", ErrValueInvalid, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: float value is %T", ErrValueInvalid, raw)
	}
}

func decodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}
	if b, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return b, nil
	}
	return nil, err
}
