package logical

import (
	"math"
	"strconv"

	"github.com/segmentio/encoding/json"
)

// MarshalJSON encodes the cell as null, a boolean, a number or a string.
// Integers are exact JSON numbers. Non-finite floats and every formatted
// type (dates, times, decimals, UUIDs, bytes) are strings. List cells are
// arrays of their elements.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.AppendJSON(nil)
}

// AppendJSON appends the JSON encoding of v to b.
func (v Value) AppendJSON(b []byte) ([]byte, error) {
	switch v.kind {
	case Null:
		return append(b, "null"...), nil
	case Bool:
		return strconv.AppendBool(b, v.Bool()), nil
	case Int:
		return strconv.AppendInt(b, v.i, 10), nil
	case Uint:
		return strconv.AppendUint(b, v.u, 10), nil
	case Float:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return appendString(b, formatFloat(v.f, v.f32))
		}
		bits := 64
		if v.f32 {
			bits = 32
		}
		return strconv.AppendFloat(b, v.f, 'g', -1, bits), nil
	case Raw:
		if v.list == nil {
			break
		}
		b = append(b, '[')
		for i, e := range v.list {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = e.AppendJSON(b); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	}
	return appendString(b, v.String())
}

func appendString(b []byte, s string) ([]byte, error) {
	enc, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(b, enc...), nil
}
