package forecast

import (
	"math"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// Regridding turns a frame's sparse sample lists into dense lattices using
// inverse-distance weighting (power 2) over the samples that fall within a
// search radius of each cell center. The radius is derived from the frame's
// declared spacing hints, since the sample lists carry no lattice structure
// of their own. Cells with no sample in range hold NaN.

const (
	// fallbackSpacingDeg is used when a frame declares no usable spacing.
	fallbackSpacingDeg = 0.05

	// maxAxisCells bounds grid extents against degenerate spacing values.
	maxAxisCells = 400

	searchRadiusFactor = 2.0
)

type gridGeometry struct {
	nx, ny     int
	lon0, lat0 float64
	dLon, dLat float64
}

func geometryFor(bbox glofs.BBox, dLon, dLat float64) gridGeometry {
	if dLon <= 0 {
		dLon = fallbackSpacingDeg
	}
	if dLat <= 0 {
		dLat = fallbackSpacingDeg
	}
	nx := int(math.Floor((bbox.MaxLon-bbox.MinLon)/dLon)) + 1
	ny := int(math.Floor((bbox.MaxLat-bbox.MinLat)/dLat)) + 1
	if nx < 2 {
		nx = 2
	}
	if ny < 2 {
		ny = 2
	}
	if nx > maxAxisCells {
		nx = maxAxisCells
	}
	if ny > maxAxisCells {
		ny = maxAxisCells
	}
	return gridGeometry{nx: nx, ny: ny, lon0: bbox.MinLon, lat0: bbox.MinLat, dLon: dLon, dLat: dLat}
}

// idwCell interpolates one cell center from the sample points. Points are
// (lon, lat, value...) tuples flattened into parallel slices by the callers.
func idwCell(lon, lat float64, lons, lats []float64, radius float64, accum func(i int, w float64), finish func(wsum float64)) {
	r2 := radius * radius
	var wsum float64
	hit := false
	for i := range lons {
		dx := lons[i] - lon
		dy := lats[i] - lat
		d2 := dx*dx + dy*dy
		if d2 > r2 {
			continue
		}
		// A sample sitting on the cell center dominates outright.
		if d2 < 1e-12 {
			d2 = 1e-12
		}
		w := 1.0 / d2
		accum(i, w)
		wsum += w
		hit = true
	}
	if !hit {
		finish(0)
		return
	}
	finish(wsum)
}

// RegridVector interpolates vector samples onto a dense lattice covering
// bbox. dLon/dLat are the frame's spacing hints.
func RegridVector(samples []glofs.VectorSample, bbox glofs.BBox, dLon, dLat float64) *VectorFieldGrid {
	geo := geometryFor(bbox, dLon, dLat)
	n := geo.nx * geo.ny

	lons := make([]float64, len(samples))
	lats := make([]float64, len(samples))
	for i, s := range samples {
		lons[i] = s.Lon
		lats[i] = s.Lat
	}

	u := make(FloatChannel, n)
	v := make(FloatChannel, n)
	radius := searchRadiusFactor * math.Max(geo.dLon, geo.dLat)

	var rng *Range
	for j := 0; j < geo.ny; j++ {
		lat := geo.lat0 + float64(j)*geo.dLat
		for i := 0; i < geo.nx; i++ {
			lon := geo.lon0 + float64(i)*geo.dLon
			idx := j*geo.nx + i

			var su, sv float64
			idwCell(lon, lat, lons, lats, radius,
				func(k int, w float64) {
					su += samples[k].U * w
					sv += samples[k].V * w
				},
				func(wsum float64) {
					if wsum == 0 {
						u[idx] = math.NaN()
						v[idx] = math.NaN()
						return
					}
					u[idx] = su / wsum
					v[idx] = sv / wsum
					rng = widenRange(rng, math.Hypot(u[idx], v[idx]))
				})
		}
	}

	return &VectorFieldGrid{
		NX: geo.nx, NY: geo.ny,
		Lon0: geo.lon0, Lat0: geo.lat0,
		DLon: geo.dLon, DLat: geo.dLat,
		U: u, V: v,
		Range: rng,
	}
}

// RegridScalar interpolates scalar samples onto a dense lattice covering
// bbox.
func RegridScalar(samples []glofs.ScalarSample, bbox glofs.BBox, dLon, dLat float64) *ScalarFieldGrid {
	geo := geometryFor(bbox, dLon, dLat)
	n := geo.nx * geo.ny

	lons := make([]float64, len(samples))
	lats := make([]float64, len(samples))
	for i, s := range samples {
		lons[i] = s.Lon
		lats[i] = s.Lat
	}

	t := make(FloatChannel, n)
	radius := searchRadiusFactor * math.Max(geo.dLon, geo.dLat)

	var rng *Range
	for j := 0; j < geo.ny; j++ {
		lat := geo.lat0 + float64(j)*geo.dLat
		for i := 0; i < geo.nx; i++ {
			lon := geo.lon0 + float64(i)*geo.dLon
			idx := j*geo.nx + i

			var sum float64
			idwCell(lon, lat, lons, lats, radius,
				func(k int, w float64) {
					sum += samples[k].Val * w
				},
				func(wsum float64) {
					if wsum == 0 {
						t[idx] = math.NaN()
						return
					}
					t[idx] = sum / wsum
					rng = widenRange(rng, t[idx])
				})
		}
	}

	return &ScalarFieldGrid{
		NX: geo.nx, NY: geo.ny,
		Lon0: geo.lon0, Lat0: geo.lat0,
		DLon: geo.dLon, DLat: geo.dLat,
		T:     t,
		Range: rng,
	}
}

func widenRange(r *Range, v float64) *Range {
	if math.IsNaN(v) {
		return r
	}
	if r == nil {
		return &Range{Min: v, Max: v}
	}
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}
