package renderer

import (
	"math"
	"testing"
	"time"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

func TestAverageLuminance(t *testing.T) {
	// Red, green, blue and black average to (0.299 + 0.587 + 0.114) / 4
	buffer := NewPixelBuffer(2, 2)
	buffer.Write(0, 0, core.NewVec4(1, 0, 0, 1))
	buffer.Write(1, 0, core.NewVec4(0, 1, 0, 1))
	buffer.Write(0, 1, core.NewVec4(0, 0, 1, 1))

	if got := AverageLuminance(buffer); math.Abs(got-0.25) > 1e-4 {
		t.Errorf("Expected average luminance 0.25, got %f", got)
	}

	if got := AverageLuminance(NewPixelBuffer(0, 0)); got != 0 {
		t.Errorf("Expected 0 for an empty buffer, got %f", got)
	}
}

func TestPixelsPerSecond(t *testing.T) {
	tests := []struct {
		name     string
		stats    RenderStats
		expected float64
	}{
		{"One second", RenderStats{TotalPixels: 400, Duration: time.Second}, 400},
		{"Half second", RenderStats{TotalPixels: 400, Duration: 500 * time.Millisecond}, 800},
		{"No duration", RenderStats{TotalPixels: 400}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.PixelsPerSecond(); got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}
