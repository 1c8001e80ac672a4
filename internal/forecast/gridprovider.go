package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// GLOFS-backed implementations of the field provider interfaces. Each
// provider is bound to one lake and one field category; GetGrid resolves the
// requested time against the lake's latest run, fetches a frame and regrids
// its sparse samples.

// runIDLayouts are the accepted shapes of a model-run identifier, newest
// convention first.
var runIDLayouts = []string{
	time.RFC3339,
	"2006-01-02T15Z",
	"2006010215",
}

func parseRunTime(runID string) (time.Time, error) {
	for _, layout := range runIDLayouts {
		if t, err := time.Parse(layout, runID); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable run identifier %q", runID)
}

// frameSource resolves (bbox, timeISO) to a fetched frame for one lake.
type frameSource struct {
	client *glofs.Client
	lake   glofs.Lake
}

func (s *frameSource) frameAt(ctx context.Context, bbox glofs.BBox, timeISO string) (*glofs.Frame, error) {
	want, err := time.Parse(time.RFC3339, timeISO)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", timeISO, err)
	}

	runs, err := s.client.LatestRun(ctx, string(s.lake))
	if err != nil {
		return nil, err
	}
	run, ok := runs[s.lake]
	if !ok || run == nil {
		return nil, fmt.Errorf("no run available for lake %s", s.lake)
	}

	runTime, err := parseRunTime(*run)
	if err != nil {
		return nil, err
	}

	hour := int(math.Round(want.Sub(runTime).Hours()))
	if hour < glofs.MinHour || hour > glofs.MaxHour {
		return nil, fmt.Errorf("time %s is %dh from run %s, outside the forecast window", timeISO, hour, *run)
	}

	return s.client.FetchFrame(ctx, s.lake, glofs.FrameParams{
		Hour: hour,
		BBox: bbox,
		Run:  run,
	})
}

// WindProvider renders a lake's wind field as a dense vector grid.
type WindProvider struct {
	src frameSource
}

func NewWindProvider(client *glofs.Client, lake glofs.Lake) *WindProvider {
	return &WindProvider{src: frameSource{client: client, lake: lake}}
}

func (p *WindProvider) GetGrid(ctx context.Context, bbox glofs.BBox, timeISO string) (*VectorFieldGrid, error) {
	f, err := p.src.frameAt(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	g := RegridVector(f.Wind, bbox, f.DxDeg, f.DyDeg)
	g.Units = f.Meta.Units.Wind
	g.Time = f.Time
	return g, nil
}

// CurrentProvider renders a lake's surface-current field as a dense vector
// grid.
type CurrentProvider struct {
	src frameSource
}

func NewCurrentProvider(client *glofs.Client, lake glofs.Lake) *CurrentProvider {
	return &CurrentProvider{src: frameSource{client: client, lake: lake}}
}

func (p *CurrentProvider) GetGrid(ctx context.Context, bbox glofs.BBox, timeISO string) (*VectorFieldGrid, error) {
	f, err := p.src.frameAt(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	g := RegridVector(f.Curr, bbox, f.DxDeg, f.DyDeg)
	g.Units = f.Meta.Units.Curr
	g.Time = f.Time
	return g, nil
}

// TemperatureProvider renders a lake's surface-temperature field as a dense
// scalar grid.
type TemperatureProvider struct {
	src frameSource
}

func NewTemperatureProvider(client *glofs.Client, lake glofs.Lake) *TemperatureProvider {
	return &TemperatureProvider{src: frameSource{client: client, lake: lake}}
}

func (p *TemperatureProvider) GetGrid(ctx context.Context, bbox glofs.BBox, timeISO string) (*ScalarFieldGrid, error) {
	f, err := p.src.frameAt(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	g := RegridScalar(f.Temp, bbox, f.DxDeg, f.DyDeg)
	g.Units = f.Meta.Units.Temp
	g.Time = f.Time
	return g, nil
}
