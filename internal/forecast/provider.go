package forecast

import (
	"context"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// VectorFieldProvider produces a dense vector grid covering the box at the
// given ISO-8601 time. Implementations may interpolate, resample or cache
// internally, but must never mutate a grid after returning it. No partial
// grids: an error means no grid.
type VectorFieldProvider interface {
	GetGrid(ctx context.Context, bbox glofs.BBox, timeISO string) (*VectorFieldGrid, error)
}

// ScalarFieldProvider is the scalar analogue of VectorFieldProvider.
type ScalarFieldProvider interface {
	GetGrid(ctx context.Context, bbox glofs.BBox, timeISO string) (*ScalarFieldGrid, error)
}

// Store is the contract the in-memory store (and any future persistent
// store) must satisfy.
type Store interface {
	SaveRuns(runs map[glofs.Lake]*string)
	GetRuns() (map[glofs.Lake]*string, error)
	SaveFrame(lake glofs.Lake, hour int, f *glofs.Frame)
	GetLatestFrame(lake glofs.Lake, hour int) (*glofs.Frame, error)
}

// Archiver persists fetched frames out-of-band. Archiving is best-effort
// from the refresher's point of view.
type Archiver interface {
	ArchiveFrame(ctx context.Context, lake glofs.Lake, hour int, f *glofs.Frame) error
}
