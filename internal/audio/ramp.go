package audio

import "time"

// Ramp is a linear volume fade-in from StartVolume to MaxVolume over Duration.
type Ramp struct {
	Duration    time.Duration
	StartVolume float64
	MaxVolume   float64
}

// VolumeAt returns the volume elapsed after the session started, clamped to [0,1].
// A non-positive Duration jumps straight to MaxVolume.
func (r Ramp) VolumeAt(elapsed time.Duration) float64 {
	if r.Duration <= 0 {
		return clamp01(r.MaxVolume)
	}
	progress := clamp01(float64(elapsed) / float64(r.Duration))
	return clamp01(r.StartVolume + (r.MaxVolume-r.StartVolume)*progress)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
