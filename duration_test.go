package buildsignals

import (
	"testing"
	"time"
)

func TestCriticalPathDurationUsesTotal(t *testing.T) {
	d := NodeDuration{User: time.Second, Total: 3 * time.Second}
	if got, want := d.CriticalPathDuration(), 3*time.Second; got != want {
		t.Errorf("CriticalPathDuration() = %v, want %v", got, want)
	}
}

func TestZeroDurationCriticalPath(t *testing.T) {
	if got := ZeroDuration.CriticalPathDuration(); got != 0 {
		t.Errorf("ZeroDuration.CriticalPathDuration() = %v, want 0", got)
	}
}

func TestSaturatingSub(t *testing.T) {
	cases := []struct {
		a, b, want time.Duration
	}{
		{10 * time.Second, 4 * time.Second, 6 * time.Second},
		{4 * time.Second, 10 * time.Second, 0},
		{5 * time.Second, 5 * time.Second, 0},
	}
	for _, c := range cases {
		if got := saturatingSub(c.a, c.b); got != c.want {
			t.Errorf("saturatingSub(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
