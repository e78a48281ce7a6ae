package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one line of a sheet, keyed by the sheet's own field names.
// Legacy project rows use the same shape with the keys material,
// quantity and unitPrice.
type Row map[string]any

// UnmarshalJSON keeps numbers as json.Number so that values such as
// large integer codes are written back exactly as they were read.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = Row(m)
	return nil
}

// Text returns the value at key as a string. Missing and null values
// yield "".
func (r Row) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Float returns the value at key coerced to a number. It never fails:
// anything that is not a number or a numeric string counts as 0.
func (r Row) Float(key string) float64 {
	return ToFloat(r[key])
}

// Truthy reports whether the value at key is set to something other
// than null, false, 0 or the empty string.
func (r Row) Truthy(key string) bool {
	switch x := r[key].(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case json.Number:
		return ToFloat(x) != 0
	default:
		return true
	}
}

// ToFloat coerces a decoded JSON scalar to float64, treating anything
// unparseable as 0.
func ToFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		f, _ = x.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
