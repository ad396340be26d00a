package core

import (
	"encoding/json"
	"math"
)

// Float is a float64 that survives JSON round-trips when not-a-number.
// A replicate can legitimately produce no defined statistic (a bootstrap
// block that drew none of a group level); NaN marshals as null and null
// unmarshals back to NaN, keeping stored payloads valid JSON.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Floats converts a float64 slice for marshaling
func Floats(values []float64) []Float {
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// IsNaN reports whether the value is not-a-number
func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}
