// Package rom computes per-finger joint angles and clinically corrected
// Total Active Motion from recorded hand landmark sequences.
package rom

// Config holds the confidence and temporal-validation thresholds for ROM
// calculation. All thresholds are injected; there are no package globals, so
// tests can exercise boundary values.
type Config struct {
	// MinTrackingConf is the per-finger tracking confidence below which a
	// frame contributes an all-zero angle sample for that finger.
	MinTrackingConf float64

	// MinVisibility is the per-landmark visibility required for a landmark
	// to count as clearly visible.
	MinVisibility float64

	// MinAvgVisibility is the average visibility a finger's landmarks must
	// reach within a frame for the frame to count as clearly visible.
	MinAvgVisibility float64

	// VisibleFrameFraction is the fraction of frames that must be clearly
	// visible for the temporal filter to be bypassed for a finger.
	VisibleFrameFraction float64

	// MaxFrameDelta is the largest accepted change in total ROM, in degrees,
	// between consecutive accepted frames.
	MaxFrameDelta float64

	// ConsistencyWindow is the number of recent accepted values a candidate
	// is checked against when it fails the single-step delta test.
	ConsistencyWindow int

	// SmoothingWindow is the number of recent accepted values averaged when
	// a single smoothed scalar is needed for display.
	SmoothingWindow int

	// MinValidFrames is the number of valid frames below which a finger's
	// quality score drops to LowDataQuality.
	MinValidFrames int

	// LowDataQuality is the quality score reported when too few valid
	// frames were collected. It signals insufficient data, not failure; a
	// best-effort result is still produced.
	LowDataQuality float64
}

// DefaultConfig returns the clinical defaults.
func DefaultConfig() Config {
	return Config{
		MinTrackingConf:      0.70,
		MinVisibility:        0.70,
		MinAvgVisibility:     0.80,
		VisibleFrameFraction: 0.80,
		MaxFrameDelta:        30,
		ConsistencyWindow:    3,
		SmoothingWindow:      5,
		MinValidFrames:       10,
		LowDataQuality:       0.3,
	}
}
