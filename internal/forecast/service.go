package forecast

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// Service orchestrates the GLOFS client, the run/frame store and the
// optional frame archiver. Live fetches pass straight through to the client;
// the refresh path adds resilience and partial-success semantics.
type Service struct {
	client   *glofs.Client
	store    Store
	archiver Archiver // nil disables archiving

	backoff      BackoffConfig
	runsBreaker  *gobreaker.CircuitBreaker
	frameBreaker *gobreaker.CircuitBreaker
}

// NewService creates a new Service. archiver may be nil.
func NewService(client *glofs.Client, store Store, archiver Archiver) *Service {
	return &Service{
		client:       client,
		store:        store,
		archiver:     archiver,
		backoff:      DefaultBackoff,
		runsBreaker:  newBreaker("glofs-latest-run"),
		frameBreaker: newBreaker("glofs-frame"),
	}
}

// RefreshRuns resolves the latest run for every lake and stores the result.
func (s *Service) RefreshRuns(ctx context.Context) error {
	var runs map[glofs.Lake]*string
	err := doWithResilience(ctx, s.backoff, s.runsBreaker, func(ctx context.Context) error {
		r, err := s.client.LatestRun(ctx, glofs.ScopeAll)
		if err != nil {
			return err
		}
		runs = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("refresh runs: %w", err)
	}
	s.store.SaveRuns(runs)
	return nil
}

// RefreshFrames prefetches frames for the given lakes and hour offsets over
// each lake's full extent, one goroutine per lake. A failing lake is logged
// and skipped; partial success is the point.
func (s *Service) RefreshFrames(ctx context.Context, lakes []glofs.Lake, hours []int) {
	runs, err := s.store.GetRuns()
	if err != nil {
		log.Printf("forecast: no stored runs yet, skipping frame refresh: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, lake := range lakes {
		run, ok := runs[lake]
		if !ok || run == nil {
			log.Printf("forecast: no run available for %s, skipping", lake)
			continue
		}

		lake, run := lake, run
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, hour := range hours {
				var frame *glofs.Frame
				err := doWithResilience(ctx, s.backoff, s.frameBreaker, func(ctx context.Context) error {
					f, err := s.client.FetchFrame(ctx, lake, glofs.FrameParams{
						Hour: hour,
						BBox: lake.Extent(),
						Run:  run,
					})
					if err != nil {
						return err
					}
					frame = f
					return nil
				})
				if err != nil {
					log.Printf("forecast: frame fetch failed for %s hour %d: %v", lake, hour, err)
					continue
				}

				s.store.SaveFrame(lake, hour, frame)

				if s.archiver != nil {
					if err := s.archiver.ArchiveFrame(ctx, lake, hour, frame); err != nil {
						log.Printf("forecast: archive failed for %s hour %d: %v", lake, hour, err)
					}
				}
			}
		}()
	}
	wg.Wait()
}

// Runs returns the latest-run view, preferring the store and falling back to
// a live query when nothing has been refreshed yet. Scope is a lake code or
// glofs.ScopeAll. The fallback always resolves every lake, so a scoped query
// before the first refresh never leaves a partial view in the store.
func (s *Service) Runs(ctx context.Context, scope string) (map[glofs.Lake]*string, error) {
	runs, err := s.store.GetRuns()
	if err != nil {
		runs, err = s.client.LatestRun(ctx, glofs.ScopeAll)
		if err != nil {
			return nil, err
		}
		s.store.SaveRuns(runs)
	}
	if scope == glofs.ScopeAll {
		return runs, nil
	}
	lake := glofs.Lake(scope)
	out := map[glofs.Lake]*string{lake: nil}
	if run, ok := runs[lake]; ok {
		out[lake] = run
	}
	return out, nil
}

// Frame is a live single-lake fetch, passed through unmodified. When the
// upstream is down and no run is pinned, the most recently prefetched frame
// for the same lake and hour is served instead.
func (s *Service) Frame(ctx context.Context, lake glofs.Lake, p glofs.FrameParams) (*glofs.Frame, error) {
	f, err := s.client.FetchFrame(ctx, lake, p)
	if err == nil {
		return f, nil
	}
	if p.Run == nil {
		if stored, serr := s.StoredFrame(lake, p.Hour); serr == nil {
			log.Printf("forecast: live frame fetch failed for %s hour %d, serving stored frame: %v", lake, p.Hour, err)
			return stored, nil
		}
	}
	return nil, err
}

// FrameMulti is a live batched fetch, passed through unmodified.
func (s *Service) FrameMulti(ctx context.Context, lakes []glofs.Lake, p glofs.FrameParams) (glofs.MultiFrame, error) {
	return s.client.FetchFrameMulti(ctx, lakes, p)
}

// StoredFrame returns the most recently refreshed frame for a lake and hour.
func (s *Service) StoredFrame(lake glofs.Lake, hour int) (*glofs.Frame, error) {
	return s.store.GetLatestFrame(lake, hour)
}

// WindGrid produces a dense wind grid, optionally converted to the given
// display unit. units == "" keeps the frame's declared unit.
func (s *Service) WindGrid(ctx context.Context, lake glofs.Lake, bbox glofs.BBox, timeISO, units string) (*VectorFieldGrid, error) {
	g, err := NewWindProvider(s.client, lake).GetGrid(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	if units == "" {
		return g, nil
	}
	return ConvertVectorGrid(g, units)
}

// CurrentGrid produces a dense surface-current grid.
func (s *Service) CurrentGrid(ctx context.Context, lake glofs.Lake, bbox glofs.BBox, timeISO, units string) (*VectorFieldGrid, error) {
	g, err := NewCurrentProvider(s.client, lake).GetGrid(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	if units == "" {
		return g, nil
	}
	return ConvertVectorGrid(g, units)
}

// TemperatureGrid produces a dense surface-temperature grid.
func (s *Service) TemperatureGrid(ctx context.Context, lake glofs.Lake, bbox glofs.BBox, timeISO, units string) (*ScalarFieldGrid, error) {
	g, err := NewTemperatureProvider(s.client, lake).GetGrid(ctx, bbox, timeISO)
	if err != nil {
		return nil, err
	}
	if units == "" {
		return g, nil
	}
	return ConvertScalarGrid(g, units)
}
