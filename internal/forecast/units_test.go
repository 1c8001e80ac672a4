package forecast

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	got, err := ConvertSpeed(10, "m/s", "kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-19.4384) > 0.001 {
		t.Fatalf("10 m/s should be ~19.44 kt, got %f", got)
	}

	got, err = ConvertSpeed(36, "km/h", "m/s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("36 km/h should be 10 m/s, got %f", got)
	}

	if _, err := ConvertSpeed(1, "m/s", "furlongs"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}

	nan, err := ConvertSpeed(math.NaN(), "m/s", "kt")
	if err != nil || !math.IsNaN(nan) {
		t.Fatalf("NaN must pass through, got %f err=%v", nan, err)
	}
}

func TestConvertTemperature(t *testing.T) {
	got, err := ConvertTemperature(100, "C", "F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-212) > 1e-9 {
		t.Fatalf("100C should be 212F, got %f", got)
	}

	got, err = ConvertTemperature(32, "F", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got) > 1e-9 {
		t.Fatalf("32F should be 0C, got %f", got)
	}

	if _, err := ConvertTemperature(1, "K", "C"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
}

func TestConvertVectorGridLeavesOriginalUntouched(t *testing.T) {
	g := &VectorFieldGrid{
		NX: 1, NY: 2,
		U:     []float64{1, 2},
		V:     []float64{3, 4},
		Units: "m/s",
		Range: &Range{Min: 1, Max: 5},
	}

	converted, err := ConvertVectorGrid(g, "kt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted == g {
		t.Fatal("conversion must return a new grid")
	}
	if g.U[0] != 1 || g.Range.Max != 5 || g.Units != "m/s" {
		t.Fatalf("original grid mutated: %+v", g)
	}
	if converted.Units != "kt" {
		t.Fatalf("converted units not set: %q", converted.Units)
	}
	if math.Abs(converted.U[0]-1/0.514444) > 0.001 {
		t.Fatalf("unexpected converted value %f", converted.U[0])
	}
	if math.Abs(converted.Range.Max-5/0.514444) > 0.001 {
		t.Fatalf("range not converted: %+v", converted.Range)
	}
}

func TestConvertVectorGridSameUnit(t *testing.T) {
	g := &VectorFieldGrid{U: []float64{1}, V: []float64{2}, Units: "m/s"}
	converted, err := ConvertVectorGrid(g, "mps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != g {
		t.Fatal("same-unit conversion should be a no-op")
	}
}

func TestConvertScalarGridSameUnitAliases(t *testing.T) {
	g := &ScalarFieldGrid{T: []float64{18.5}, Units: "C"}
	converted, err := ConvertScalarGrid(g, "celsius")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != g {
		t.Fatal("alias of the same unit should be a no-op")
	}
}

func TestConvertScalarGrid(t *testing.T) {
	g := &ScalarFieldGrid{
		T:     []float64{0, 100, math.NaN()},
		Units: "C",
		Range: &Range{Min: 0, Max: 100},
	}
	converted, err := ConvertScalarGrid(g, "F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted.T[0] != 32 || converted.T[1] != 212 {
		t.Fatalf("unexpected values %v", converted.T)
	}
	if !math.IsNaN(converted.T[2]) {
		t.Fatal("NaN cells must stay NaN")
	}
	if converted.Range.Min != 32 || converted.Range.Max != 212 {
		t.Fatalf("range not converted: %+v", converted.Range)
	}
	if g.T[0] != 0 || g.Units != "C" {
		t.Fatalf("original grid mutated: %+v", g)
	}
}
