package x11

import "testing"

func TestOnAnyMonitor(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "HDMI-1", X: 1920, Y: 0, Width: 1280, Height: 1024},
	}

	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{1919, 1079, true},
		{1920, 0, true},
		{3199, 1023, true},
		{3200, 0, false},
		{2000, 1050, false},
		{-1, 10, false},
	}
	for _, tt := range tests {
		if got := OnAnyMonitor(monitors, tt.x, tt.y); got != tt.want {
			t.Fatalf("OnAnyMonitor(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if OnAnyMonitor(nil, 0, 0) {
		t.Fatalf("expected no monitor to contain a point")
	}
}
