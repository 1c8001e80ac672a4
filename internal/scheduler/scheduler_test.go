package scheduler

import (
	"testing"
	"time"
)

func TestIntervalMinutes(t *testing.T) {
	cases := []struct {
		interval time.Duration
		want     int
	}{
		{15 * time.Minute, 15},
		{90 * time.Second, 1},
		{time.Minute, 1},
		{30 * time.Second, 15},
		{0, 15},
	}
	for _, c := range cases {
		if got := intervalMinutes(c.interval); got != c.want {
			t.Fatalf("intervalMinutes(%s) = %d, want %d", c.interval, got, c.want)
		}
	}
}
