package config

import (
	"sync"

	"github.com/BurntSushi/toml"
)

// RenderSettings holds render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	backend        string
	renderDistance int // in chunks
	framesInFlight int
	fpsLimit       int
	vsync          bool
	clearColor     [3]float32
}

var globalRenderSettings = &RenderSettings{
	backend:        "", // empty means registry default
	renderDistance: 25,
	framesInFlight: 2,
	fpsLimit:       120,
	vsync:          true,
	clearColor:     [3]float32{0.45, 0.52, 0.58},
}

// GetBackend returns the configured backend name; empty means use the
// registry default.
func GetBackend() string {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.backend
}

// SetBackend sets the backend name.
func SetBackend(name string) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.backend = name
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if distance < 5 {
		distance = 5
	}
	if distance > 50 {
		distance = 50
	}

	globalRenderSettings.renderDistance = distance
}

// GetFramesInFlight returns how many frames the fence-based backend may
// have in flight.
func GetFramesInFlight() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.framesInFlight
}

// SetFramesInFlight sets the frame ring depth, clamped to 2..3.
func SetFramesInFlight(n int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if n < 2 {
		n = 2
	}
	if n > 3 {
		n = 3
	}
	globalRenderSettings.framesInFlight = n
}

// GetFPSLimit returns the frame rate cap, 0 meaning uncapped.
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame rate cap. Negative values mean uncapped.
func SetFPSLimit(fps int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if fps < 0 {
		fps = 0
	}
	globalRenderSettings.fpsLimit = fps
}

// GetVSync returns whether presentation waits for vertical blank.
func GetVSync() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.vsync
}

// SetVSync sets vsync.
func SetVSync(on bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.vsync = on
}

// GetClearColor returns the neutral color fresh render targets clear to.
func GetClearColor() (float32, float32, float32) {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	c := globalRenderSettings.clearColor
	return c[0], c[1], c[2]
}

// SetClearColor sets the clear color, clamping components to 0..1.
func SetClearColor(r, g, b float32) {
	clamp := func(v float32) float32 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.clearColor = [3]float32{clamp(r), clamp(g), clamp(b)}
}

// fileConfig mirrors the optional TOML settings file.
type fileConfig struct {
	Render struct {
		Backend        string    `toml:"backend"`
		RenderDistance int       `toml:"render_distance"`
		FramesInFlight int       `toml:"frames_in_flight"`
		FPSLimit       int       `toml:"fps_limit"`
		VSync          *bool     `toml:"vsync"`
		ClearColor     []float64 `toml:"clear_color"`
	} `toml:"render"`
}

// LoadFile overlays settings from a TOML file onto the defaults. Zero
// values in the file leave the corresponding setting untouched.
func LoadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}

	if fc.Render.Backend != "" {
		SetBackend(fc.Render.Backend)
	}
	if fc.Render.RenderDistance != 0 {
		SetRenderDistance(fc.Render.RenderDistance)
	}
	if fc.Render.FramesInFlight != 0 {
		SetFramesInFlight(fc.Render.FramesInFlight)
	}
	if fc.Render.FPSLimit != 0 {
		SetFPSLimit(fc.Render.FPSLimit)
	}
	if fc.Render.VSync != nil {
		SetVSync(*fc.Render.VSync)
	}
	if len(fc.Render.ClearColor) == 3 {
		SetClearColor(
			float32(fc.Render.ClearColor[0]),
			float32(fc.Render.ClearColor[1]),
			float32(fc.Render.ClearColor[2]),
		)
	}
	return nil
}
