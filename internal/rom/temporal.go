package rom

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rehabmetrics/handrom/internal/landmark"
)

// AllFingersROM is the aggregated result of one repetition: deficit-corrected
// joint angles per finger plus the temporal quality score each finger earned.
type AllFingersROM struct {
	Index           JointAngles                 `json:"index"`
	Middle          JointAngles                 `json:"middle"`
	Ring            JointAngles                 `json:"ring"`
	Pinky           JointAngles                 `json:"pinky"`
	TemporalQuality map[landmark.Finger]float64 `json:"temporalQuality"`
}

// temporalHistory is the rolling per-finger ROM history for one repetition.
// It is created when aggregation starts and discarded when the final scalar
// has been computed; no landmark references survive the call.
type temporalHistory struct {
	cfg        Config
	accepted   []float64
	deltas     []float64
	considered int
	passed     int
}

func newTemporalHistory(cfg Config) *temporalHistory {
	return &temporalHistory{cfg: cfg}
}

// consider applies the frame-to-frame consistency gate to a candidate total
// ROM value. A candidate is accepted when it is within MaxFrameDelta of the
// previously accepted value, or when it stays within MaxFrameDelta of the
// mean of the recent consistency window, so a single outlier that slipped
// through does not poison every frame after it.
func (h *temporalHistory) consider(total float64) bool {
	h.considered++

	if n := len(h.accepted); n > 0 {
		h.deltas = append(h.deltas, math.Abs(total-h.accepted[n-1]))
	}

	ok := len(h.accepted) == 0 ||
		math.Abs(total-h.accepted[len(h.accepted)-1]) <= h.cfg.MaxFrameDelta ||
		h.withinWindow(total)

	if ok {
		h.accept(total)
		h.passed++
	}
	return ok
}

// accept records a value without gating. Used when the visibility bypass is
// in effect.
func (h *temporalHistory) accept(total float64) {
	h.accepted = append(h.accepted, total)
}

func (h *temporalHistory) withinWindow(total float64) bool {
	window := h.cfg.ConsistencyWindow
	if window <= 0 || len(h.accepted) < window {
		return false
	}
	mean := stat.Mean(h.accepted[len(h.accepted)-window:], nil)
	return math.Abs(total-mean) <= h.cfg.MaxFrameDelta
}

// quality scores the finger's history in [0,1]: the fraction of frames that
// passed the gate, blended with the inverse average inter-frame variation
// normalized by the per-frame delta threshold.
func (h *temporalHistory) quality() float64 {
	if len(h.accepted) < h.cfg.MinValidFrames {
		return h.cfg.LowDataQuality
	}

	passFraction := 1.0
	if h.considered > 0 {
		passFraction = float64(h.passed) / float64(h.considered)
	}

	variation := 0.0
	if len(h.deltas) > 0 {
		variation = math.Min(1, stat.Mean(h.deltas, nil)/h.cfg.MaxFrameDelta)
	}

	return 0.5*passFraction + 0.5*(1-variation)
}

// SmoothROM averages the most recent values of an accepted ROM history,
// giving the single smoothed scalar used for live display.
func SmoothROM(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	if window > 0 && len(values) > window {
		values = values[len(values)-window:]
	}
	return stat.Mean(values, nil)
}

// clearlyVisible reports whether a finger's own landmarks are visible enough,
// often enough, to trust the tracking model outright: every landmark at or
// above MinVisibility and the finger average at or above MinAvgVisibility,
// in at least VisibleFrameFraction of the repetition's frames.
func clearlyVisible(frames []landmark.MotionFrame, finger landmark.Finger, cfg Config) bool {
	if len(frames) == 0 {
		return false
	}

	indices := fingerLandmarks[finger]
	visible := 0

	for i := range frames {
		frame := frames[i].Landmarks
		if len(frame) != landmark.NumHandLandmarks {
			continue
		}

		sum := 0.0
		allVisible := true
		for _, idx := range indices {
			v := frame[idx].Visibility
			if v == nil || *v < cfg.MinVisibility {
				allVisible = false
				break
			}
			sum += *v
		}
		if allVisible && sum/float64(len(indices)) >= cfg.MinAvgVisibility {
			visible++
		}
	}

	return float64(visible) >= cfg.VisibleFrameFraction*float64(len(frames))
}

// fingerMaxROM runs one finger through a full repetition: confidence gating
// per frame, visibility bypass or temporal filtering, then the TAM
// correction over the accepted series.
func fingerMaxROM(frames []landmark.MotionFrame, finger landmark.Finger, cfg Config) (JointAngles, float64) {
	bypass := clearlyVisible(frames, finger, cfg)

	series := &jointSeries{}
	hist := newTemporalHistory(cfg)

	for i := range frames {
		frame := frames[i].Landmarks
		// Short frames are skipped, never zero-filled.
		if len(frame) != landmark.NumHandLandmarks {
			continue
		}

		var raw, flexion [numJoints]float64
		if info, ok := frames[i].Confidences[finger]; !ok || info.Confidence >= cfg.MinTrackingConf {
			raw, flexion = fingerAngles(frame, finger)
		}
		// A low-confidence frame falls through with zero angles: it still
		// counts against the quality score.

		total := flexion[jointMCP] + flexion[jointPIP] + flexion[jointDIP]

		if bypass {
			hist.accept(total)
			series.add(raw, flexion)
		} else if hist.consider(total) {
			series.add(raw, flexion)
		}
	}

	angles := tamFromSeries(series)

	quality := 1.0
	if !bypass {
		quality = hist.quality()
	} else if len(hist.accepted) < cfg.MinValidFrames {
		quality = cfg.LowDataQuality
	}

	return angles, quality
}

// CalculateAllFingersMaxROM aggregates a repetition into the maximum
// deficit-corrected ROM of each finger. Fingers never interact, so each is
// processed independently in one pass over the frames.
func CalculateAllFingersMaxROM(frames []landmark.MotionFrame, cfg Config) AllFingersROM {
	result := AllFingersROM{
		TemporalQuality: make(map[landmark.Finger]float64, 4),
	}

	for _, finger := range landmark.Fingers() {
		angles, quality := fingerMaxROM(frames, finger, cfg)
		result.TemporalQuality[finger] = quality

		switch finger {
		case landmark.FingerIndex:
			result.Index = angles
		case landmark.FingerMiddle:
			result.Middle = angles
		case landmark.FingerRing:
			result.Ring = angles
		case landmark.FingerPinky:
			result.Pinky = angles
		}
	}

	return result
}
