package archive

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

func TestObjectKey(t *testing.T) {
	k := ObjectKey{Lake: glofs.LakeErie, Run: "2026-08-31T06:00:00Z", Hour: 24, ID: "abc"}
	if got, want := k.Key(), "glofs/leofs/2026-08-31T060000Z/024/abc.json"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestObjectKeyNegativeHour(t *testing.T) {
	k := ObjectKey{Lake: glofs.LakeSuperior, Run: "2026-08-31T06Z", Hour: -6, ID: "abc"}
	if got, want := k.Key(), "glofs/lsofs/2026-08-31T06Z/m06/abc.json"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestObjectKeyEmptyRun(t *testing.T) {
	k := ObjectKey{Lake: glofs.LakeErie, Hour: 0, ID: "abc"}
	if !strings.Contains(k.Key(), "unknown-run") {
		t.Fatalf("empty run must be replaced, got %q", k.Key())
	}
}

// capturingStorage records the last Put call.
type capturingStorage struct {
	key         string
	contentType string
	payload     []byte
}

func (s *capturingStorage) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	s.key = key
	s.contentType = contentType
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.payload = b
	return nil
}

func TestArchiveFrame(t *testing.T) {
	storage := &capturingStorage{}
	a := NewFrameArchiver(storage)

	f := &glofs.Frame{
		Meta: glofs.FrameMeta{Lake: glofs.LakeErie, Run: "2026-08-31T06Z"},
		Time: "2026-09-01T06:00:00Z",
		Wind: []glofs.VectorSample{{Lon: -87.5, Lat: 42.0, U: 3, V: -1}},
	}
	if err := a.ArchiveFrame(context.Background(), glofs.LakeErie, 24, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(storage.key, "glofs/leofs/2026-08-31T06Z/024/") || !strings.HasSuffix(storage.key, ".json") {
		t.Fatalf("unexpected key %q", storage.key)
	}
	if storage.contentType != "application/json" {
		t.Fatalf("unexpected content type %q", storage.contentType)
	}

	var decoded glofs.Frame
	if err := json.Unmarshal(storage.payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Meta.Run != f.Meta.Run || len(decoded.Wind) != 1 {
		t.Fatalf("frame not preserved: %+v", decoded)
	}
}
