package renderer

import "time"

// RenderStats contains statistics about one progressive pass
type RenderStats struct {
	Pass         int           // 1-based pass number
	TotalPixels  int           // Pixels rendered in this pass
	TotalSamples int           // Samples accumulated per pixel so far
	Tiles        int           // Tiles rendered in this pass
	Workers      int           // Concurrent tile workers
	Duration     time.Duration // Wall time of the pass
}

// PixelsPerSecond returns the pass throughput
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Duration.Seconds()
}

// AverageLuminance returns the mean luminance of the buffer's linear colors
func AverageLuminance(buffer *PixelBuffer) float64 {
	if len(buffer.Pixels) == 0 {
		return 0
	}
	var total float64
	for _, p := range buffer.Pixels {
		total += p.RGB().Luminance()
	}
	return total / float64(len(buffer.Pixels))
}
