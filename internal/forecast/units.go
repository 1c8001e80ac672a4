package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Unit conversion for the dashboard's display preferences. Frames declare
// free-form unit strings, so conversion is keyed on a small normalized set;
// anything unrecognized is an error rather than a silent pass-through.

// canonical speed unit: meters per second.
var speedToMS = map[string]float64{
	"m/s":   1,
	"mps":   1,
	"kt":    0.514444,
	"kts":   0.514444,
	"knots": 0.514444,
	"mph":   0.44704,
	"km/h":  1.0 / 3.6,
	"kph":   1.0 / 3.6,
}

func normalizeUnit(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// ConvertSpeed converts a speed value between supported units.
func ConvertSpeed(v float64, from, to string) (float64, error) {
	if math.IsNaN(v) {
		return v, nil
	}
	f, ok := speedToMS[normalizeUnit(from)]
	if !ok {
		return 0, fmt.Errorf("unsupported speed unit %q", from)
	}
	t, ok := speedToMS[normalizeUnit(to)]
	if !ok {
		return 0, fmt.Errorf("unsupported speed unit %q", to)
	}
	return v * f / t, nil
}

// tempUnitKey collapses temperature unit aliases onto a canonical key.
func tempUnitKey(u string) (string, error) {
	switch normalizeUnit(u) {
	case "c", "degc", "celsius", "°c":
		return "c", nil
	case "f", "degf", "fahrenheit", "°f":
		return "f", nil
	}
	return "", fmt.Errorf("unsupported temperature unit %q", u)
}

// ConvertTemperature converts a temperature value between celsius and
// fahrenheit.
func ConvertTemperature(v float64, from, to string) (float64, error) {
	if math.IsNaN(v) {
		return v, nil
	}
	fromKey, err := tempUnitKey(from)
	if err != nil {
		return 0, err
	}
	toKey, err := tempUnitKey(to)
	if err != nil {
		return 0, err
	}
	c := v
	if fromKey == "f" {
		c = (v - 32) * 5 / 9
	}
	if toKey == "f" {
		return c*9/5 + 32, nil
	}
	return c, nil
}

// ConvertVectorGrid returns a copy of the grid with channels and range
// expressed in the target speed unit. The input grid is left untouched.
// Aliases of the same unit ("m/s" and "mps") are recognized as a no-op.
func ConvertVectorGrid(g *VectorFieldGrid, to string) (*VectorFieldGrid, error) {
	if g.Units == "" {
		return g, nil
	}
	factor, err := ConvertSpeed(1, g.Units, to)
	if err != nil {
		return nil, err
	}
	if factor == 1 {
		return g, nil
	}

	out := *g
	out.U = scaled(g.U, factor)
	out.V = scaled(g.V, factor)
	out.Units = to
	if g.Range != nil {
		out.Range = &Range{Min: g.Range.Min * factor, Max: g.Range.Max * factor}
	}
	if g.Aux != nil {
		out.Aux = make(map[string]FloatChannel, len(g.Aux))
		for name, ch := range g.Aux {
			out.Aux[name] = scaled(ch, factor)
		}
	}
	return &out, nil
}

// ConvertScalarGrid returns a copy of the grid with the value channel and
// range expressed in the target temperature unit. Aliases of the same unit
// ("C" and "celsius") are recognized as a no-op.
func ConvertScalarGrid(g *ScalarFieldGrid, to string) (*ScalarFieldGrid, error) {
	if g.Units == "" {
		return g, nil
	}
	fromKey, err := tempUnitKey(g.Units)
	if err != nil {
		return nil, err
	}
	toKey, err := tempUnitKey(to)
	if err != nil {
		return nil, err
	}
	if fromKey == toKey {
		return g, nil
	}
	out := *g
	out.T = make(FloatChannel, len(g.T))
	for i, v := range g.T {
		c, err := ConvertTemperature(v, g.Units, to)
		if err != nil {
			return nil, err
		}
		out.T[i] = c
	}
	out.Units = to
	if g.Range != nil {
		lo, err := ConvertTemperature(g.Range.Min, g.Units, to)
		if err != nil {
			return nil, err
		}
		hi, err := ConvertTemperature(g.Range.Max, g.Units, to)
		if err != nil {
			return nil, err
		}
		out.Range = &Range{Min: lo, Max: hi}
	}
	return &out, nil
}

func scaled(in FloatChannel, factor float64) FloatChannel {
	out := make(FloatChannel, len(in))
	for i, v := range in {
		out[i] = v * factor
	}
	return out
}
