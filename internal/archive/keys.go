package archive

import (
	"fmt"
	"strings"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// ObjectKey locates an archived frame in object storage. Keys sort by lake,
// then run, then hour, so a run's frames list together.
type ObjectKey struct {
	Lake glofs.Lake
	Run  string
	Hour int
	ID   string // unique per fetch, since identical parameters are re-fetched
}

// Key renders the object path, e.g. glofs/leofs/2026-08-31T06Z/024/<id>.json.
// Negative hindcast hours keep their sign: m06 for hour -6.
func (k ObjectKey) Key() string {
	run := strings.ReplaceAll(k.Run, ":", "")
	if run == "" {
		run = "unknown-run"
	}
	hour := fmt.Sprintf("%03d", k.Hour)
	if k.Hour < 0 {
		hour = fmt.Sprintf("m%02d", -k.Hour)
	}
	return fmt.Sprintf("glofs/%s/%s/%s/%s.json", k.Lake, run, hour, k.ID)
}
