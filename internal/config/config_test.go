package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderDistanceClamped(t *testing.T) {
	defer SetRenderDistance(25)

	tests := []struct{ in, want int }{
		{1, 5},
		{5, 5},
		{30, 30},
		{50, 50},
		{99, 50},
	}
	for _, tt := range tests {
		SetRenderDistance(tt.in)
		if got := GetRenderDistance(); got != tt.want {
			t.Errorf("SetRenderDistance(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFramesInFlightClamped(t *testing.T) {
	defer SetFramesInFlight(2)

	tests := []struct{ in, want int }{
		{0, 2},
		{2, 2},
		{3, 3},
		{8, 3},
	}
	for _, tt := range tests {
		SetFramesInFlight(tt.in)
		if got := GetFramesInFlight(); got != tt.want {
			t.Errorf("SetFramesInFlight(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFPSLimitNeverNegative(t *testing.T) {
	defer SetFPSLimit(120)

	SetFPSLimit(-10)
	if got := GetFPSLimit(); got != 0 {
		t.Errorf("negative cap stored as %d, want 0", got)
	}
	SetFPSLimit(60)
	if got := GetFPSLimit(); got != 60 {
		t.Errorf("cap = %d, want 60", got)
	}
}

func TestClearColorClamped(t *testing.T) {
	defer SetClearColor(0.45, 0.52, 0.58)

	SetClearColor(-0.5, 0.5, 1.5)
	r, g, b := GetClearColor()
	if r != 0 || g != 0.5 || b != 1 {
		t.Errorf("clear color = %v %v %v, want 0 0.5 1", r, g, b)
	}
}

func TestLoadFileOverlaysSettings(t *testing.T) {
	defer func() {
		SetBackend("")
		SetRenderDistance(25)
		SetFramesInFlight(2)
		SetFPSLimit(120)
		SetVSync(true)
		SetClearColor(0.45, 0.52, 0.58)
	}()

	path := filepath.Join(t.TempDir(), "voxedit.toml")
	data := `[render]
backend = "vulkan"
render_distance = 12
frames_in_flight = 3
vsync = false
clear_color = [0.1, 0.2, 0.3]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := GetBackend(); got != "vulkan" {
		t.Errorf("backend = %q, want vulkan", got)
	}
	if got := GetRenderDistance(); got != 12 {
		t.Errorf("render distance = %d, want 12", got)
	}
	if got := GetFramesInFlight(); got != 3 {
		t.Errorf("frames in flight = %d, want 3", got)
	}
	if GetVSync() {
		t.Errorf("vsync = true, want false")
	}
	if r, g, b := GetClearColor(); r != 0.1 || g != 0.2 || b != 0.3 {
		t.Errorf("clear color = %v %v %v, want 0.1 0.2 0.3", r, g, b)
	}
	// absent fps_limit leaves the default alone
	if got := GetFPSLimit(); got != 120 {
		t.Errorf("fps limit = %d, want untouched 120", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatalf("LoadFile on missing file returned nil error")
	}
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want not-exist", err)
	}
}
