package forecast

import (
	"encoding/json"
	"math"
	"strconv"
)

// Range declares the value span of a grid channel, used downstream for
// color-scale normalization. For vector grids it spans speed magnitude.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FloatChannel is one dense channel of cell values. Cells without data hold
// NaN in memory; JSON has no NaN literal, so those cells encode as null.
type FloatChannel []float64

func (c FloatChannel) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, len(c)*8+2)
	buf = append(buf, '[')
	for i, v := range c {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func (c *FloatChannel) UnmarshalJSON(data []byte) error {
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	out := make(FloatChannel, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*c = out
	return nil
}

// VectorFieldGrid is a dense rectangular lattice of 2-D vectors. Channel
// arrays are row-major with length NX*NY; cells without data hold NaN.
// Grids are immutable snapshots: once returned they are never modified.
type VectorFieldGrid struct {
	NX    int       `json:"nx"`
	NY    int       `json:"ny"`
	Lon0  float64   `json:"lon0"`
	Lat0  float64   `json:"lat0"`
	DLon  float64      `json:"dLon"`
	DLat  float64      `json:"dLat"`
	U     FloatChannel `json:"u"`
	V     FloatChannel `json:"v"`
	Units string       `json:"units,omitempty"`
	Time  string       `json:"time,omitempty"`

	// Aux carries optional named channels (e.g. precomputed speed).
	Aux   map[string]FloatChannel `json:"aux,omitempty"`
	Range *Range                  `json:"range,omitempty"`
}

// ScalarFieldGrid is the scalar analogue of VectorFieldGrid with a single
// value channel.
type ScalarFieldGrid struct {
	NX    int          `json:"nx"`
	NY    int          `json:"ny"`
	Lon0  float64      `json:"lon0"`
	Lat0  float64      `json:"lat0"`
	DLon  float64      `json:"dLon"`
	DLat  float64      `json:"dLat"`
	T     FloatChannel `json:"t"`
	Units string       `json:"units,omitempty"`
	Time  string       `json:"time,omitempty"`

	Aux   map[string]FloatChannel `json:"aux,omitempty"`
	Range *Range                  `json:"range,omitempty"`
}
