package forecast

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

var regridBBox = glofs.BBox{MinLon: -88.0, MinLat: 41.6, MaxLon: -87.0, MaxLat: 42.2}

func TestRegridVectorGeometry(t *testing.T) {
	samples := []glofs.VectorSample{
		{Lon: -87.5, Lat: 42.0, U: 3.0, V: -1.0},
		{Lon: -87.4, Lat: 42.0, U: 2.0, V: -2.0},
	}
	g := RegridVector(samples, regridBBox, 0.1, 0.1)

	if g.NX*g.NY != len(g.U) || g.NX*g.NY != len(g.V) {
		t.Fatalf("channel lengths must equal nx*ny: nx=%d ny=%d len=%d", g.NX, g.NY, len(g.U))
	}
	if g.Lon0 != regridBBox.MinLon || g.Lat0 != regridBBox.MinLat {
		t.Fatalf("origin mismatch: lon0=%f lat0=%f", g.Lon0, g.Lat0)
	}
	// 1 degree of longitude at 0.1 spacing spans 11 cell centers.
	if g.NX != 11 {
		t.Fatalf("expected nx=11, got %d", g.NX)
	}
	if g.NY != 7 {
		t.Fatalf("expected ny=7, got %d", g.NY)
	}
}

func TestRegridVectorSampleOnCellCenter(t *testing.T) {
	// A single sample sitting exactly on a cell center dominates that cell.
	samples := []glofs.VectorSample{{Lon: -87.5, Lat: 42.0, U: 3.0, V: -1.5}}
	g := RegridVector(samples, regridBBox, 0.1, 0.1)

	i := int(math.Round((-87.5 - g.Lon0) / g.DLon))
	j := int(math.Round((42.0 - g.Lat0) / g.DLat))
	idx := j*g.NX + i

	if math.Abs(g.U[idx]-3.0) > 1e-9 || math.Abs(g.V[idx]+1.5) > 1e-9 {
		t.Fatalf("cell under sample must carry the sample value, got u=%f v=%f", g.U[idx], g.V[idx])
	}
}

func TestRegridVectorEmptySamples(t *testing.T) {
	g := RegridVector(nil, regridBBox, 0.1, 0.1)
	for _, v := range g.U {
		if !math.IsNaN(v) {
			t.Fatalf("cells without samples must be NaN, got %f", v)
		}
	}
	if g.Range != nil {
		t.Fatalf("empty grid must have no declared range, got %+v", g.Range)
	}
}

func TestRegridVectorRangeSpansSpeed(t *testing.T) {
	samples := []glofs.VectorSample{
		{Lon: -87.5, Lat: 42.0, U: 3.0, V: 4.0}, // speed 5
		{Lon: -87.0, Lat: 41.6, U: 0.0, V: 1.0}, // speed 1
	}
	g := RegridVector(samples, regridBBox, 0.1, 0.1)
	if g.Range == nil {
		t.Fatal("expected a declared range")
	}
	if g.Range.Min < 0 || g.Range.Max > 5.0+1e-9 {
		t.Fatalf("range outside expected speed bounds: %+v", g.Range)
	}
	if g.Range.Max < 4.9 {
		t.Fatalf("max must be near the strongest sample, got %f", g.Range.Max)
	}
}

func TestRegridScalar(t *testing.T) {
	samples := []glofs.ScalarSample{
		{Lon: -87.5, Lat: 42.0, Val: 18.0},
		{Lon: -87.4, Lat: 42.0, Val: 20.0},
	}
	g := RegridScalar(samples, regridBBox, 0.1, 0.1)

	if g.NX*g.NY != len(g.T) {
		t.Fatalf("channel length must equal nx*ny")
	}

	// Interpolated cells stay within the sample value range.
	for _, v := range g.T {
		if math.IsNaN(v) {
			continue
		}
		if v < 18.0-1e-9 || v > 20.0+1e-9 {
			t.Fatalf("interpolated value %f outside sample range", v)
		}
	}
	if g.Range == nil || g.Range.Min < 18.0-1e-9 || g.Range.Max > 20.0+1e-9 {
		t.Fatalf("unexpected range %+v", g.Range)
	}
}

// Sparse frames leave most cells without data. Those cells hold NaN in
// memory, which JSON cannot represent, so the grid must encode them as null
// and decode them back to NaN.
func TestGridJSONEncodesEmptyCellsAsNull(t *testing.T) {
	samples := []glofs.VectorSample{{Lon: -87.5, Lat: 42.0, U: 3.0, V: -1.0}}
	g := RegridVector(samples, regridBBox, 0.1, 0.1)

	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("grid with empty cells must marshal: %v", err)
	}
	if strings.Contains(string(raw), "NaN") {
		t.Fatal("NaN must never appear in the JSON encoding")
	}
	if !strings.Contains(string(raw), "null") {
		t.Fatal("empty cells must encode as null")
	}

	var decoded VectorFieldGrid
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded.U) != len(g.U) {
		t.Fatalf("channel length changed in round trip: %d != %d", len(decoded.U), len(g.U))
	}
	for i := range g.U {
		if math.IsNaN(g.U[i]) != math.IsNaN(decoded.U[i]) {
			t.Fatalf("cell %d lost its no-data marker in round trip", i)
		}
	}
}

func TestGeometryForDegenerateSpacing(t *testing.T) {
	geo := geometryFor(regridBBox, 0, -1)
	if geo.dLon != fallbackSpacingDeg || geo.dLat != fallbackSpacingDeg {
		t.Fatalf("expected fallback spacing, got %f/%f", geo.dLon, geo.dLat)
	}

	tiny := geometryFor(regridBBox, 1e-9, 1e-9)
	if tiny.nx > maxAxisCells || tiny.ny > maxAxisCells {
		t.Fatalf("axis cells must be bounded, got %d/%d", tiny.nx, tiny.ny)
	}
}
