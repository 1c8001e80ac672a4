package glofs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Lake identifies a Great Lakes operational forecast system instance.
type Lake string

const (
	LakeErie          Lake = "leofs"
	LakeMichiganHuron Lake = "lmhofs"
	LakeOntario       Lake = "loofs"
	LakeSuperior      Lake = "lsofs"
)

// Lakes lists every known model instance, in display order.
var Lakes = []Lake{LakeErie, LakeMichiganHuron, LakeOntario, LakeSuperior}

// Valid reports whether the code names a known model instance.
func (l Lake) Valid() bool {
	switch l {
	case LakeErie, LakeMichiganHuron, LakeOntario, LakeSuperior:
		return true
	}
	return false
}

func (l Lake) String() string {
	return string(l)
}

// Extent returns the lake's approximate geographic extent, used by the
// refresher when no caller-supplied bounding box is available.
func (l Lake) Extent() BBox {
	switch l {
	case LakeErie:
		return BBox{MinLon: -83.5, MinLat: 41.2, MaxLon: -78.8, MaxLat: 42.9}
	case LakeMichiganHuron:
		return BBox{MinLon: -88.1, MinLat: 41.6, MaxLon: -79.7, MaxLat: 46.3}
	case LakeOntario:
		return BBox{MinLon: -79.9, MinLat: 43.1, MaxLon: -75.9, MaxLat: 44.3}
	case LakeSuperior:
		return BBox{MinLon: -92.2, MinLat: 46.3, MaxLon: -84.3, MaxLat: 49.0}
	}
	return BBox{}
}

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// String renders the box as four comma-joined numbers in
// minLon,minLat,maxLon,maxLat order, trailing zeros trimmed.
func (b BBox) String() string {
	parts := [4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
	s := make([]string, 0, 4)
	for _, v := range parts {
		s = append(s, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(s, ",")
}

// ParseBBox parses the comma-joined form produced by BBox.String.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must have 4 comma-separated numbers, got %d", len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox component %d: %w", i, err)
		}
		vals[i] = v
	}
	return BBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}, nil
}

// VectorSample is one point observation of a 2-D field (wind or current).
type VectorSample struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	U   float64 `json:"u"`
	V   float64 `json:"v"`
}

// ScalarSample is one point observation of a scalar field (temperature).
type ScalarSample struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	Val float64 `json:"v"`
}

// Units carries the frame's declared unit strings. They are free-form and
// never validated here.
type Units struct {
	Wind string `json:"wind"`
	Curr string `json:"curr"`
	Temp string `json:"temp"`
}

// FrameMeta describes which model output a frame came from.
type FrameMeta struct {
	Lake  Lake   `json:"lake"`
	Run   string `json:"run"`
	Tag   string `json:"tag"`
	Units Units  `json:"units"`
}

// Frame is one lake's forecast snapshot at one hour offset. The three sample
// lists are subsampled independently by the server: they may differ in length
// and point set, and positional correspondence between them must never be
// assumed. DxDeg/DyDeg are nominal lattice spacing hints only.
type Frame struct {
	Meta  FrameMeta      `json:"meta"`
	Time  string         `json:"time"`
	DxDeg float64        `json:"dxDeg"`
	DyDeg float64        `json:"dyDeg"`
	Wind  []VectorSample `json:"wind"`
	Curr  []VectorSample `json:"curr"`
	Temp  []ScalarSample `json:"temp"`
}

// ResultKind discriminates the per-lake entries of a multi-frame response.
type ResultKind string

const (
	ResultOK    ResultKind = "ok"
	ResultError ResultKind = "error"
)

// FrameResult is one lake's entry in a multi-frame response: either a frame
// or the upstream's per-lake error marker. Partial failure is first-class;
// callers branch on Kind.
type FrameResult struct {
	Kind  ResultKind
	Frame *Frame
	Err   string
}

// OK reports whether the entry carries a usable frame.
func (r FrameResult) OK() bool {
	return r.Kind == ResultOK
}

// UnmarshalJSON probes for the error marker before decoding a frame, so a
// failed lake never poisons the batch.
func (r *FrameResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		r.Kind = ResultError
		r.Err = *probe.Error
		return nil
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	r.Kind = ResultOK
	r.Frame = &f
	return nil
}

// MultiFrame maps lake code to frame-or-error for one batched fetch.
type MultiFrame map[Lake]FrameResult
