package assessment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rehabmetrics/handrom/internal/kapandji"
	"github.com/rehabmetrics/handrom/internal/landmark"
	"github.com/rehabmetrics/handrom/internal/rom"
	"github.com/rehabmetrics/handrom/internal/wrist"
)

// Config holds the engine's calculator settings. Thresholds live here, not
// in package globals, so callers and tests control every boundary value.
type Config struct {
	ROM      rom.Config
	Kapandji kapandji.Profile

	// Logger receives structured trace events (frame index, finger,
	// computed value). Nil discards them; computation itself stays pure.
	Logger *slog.Logger
}

// DefaultConfig returns the clinical defaults with logging discarded.
func DefaultConfig() Config {
	return Config{
		ROM:      rom.DefaultConfig(),
		Kapandji: kapandji.StandardProfile(),
	}
}

// Engine evaluates recorded repetitions. It is stateless between calls and
// retains no references to a caller's frame buffer after Evaluate returns.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// New creates an Engine from the given configuration.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg, log: log}
}

// ROMConfig exposes the engine's ROM thresholds for callers that compute
// live per-frame values with the same settings.
func (e *Engine) ROMConfig() rom.Config {
	return e.cfg.ROM
}

// Evaluate runs one assessment over a full repetition and returns the final
// results structure. Individual malformed frames are skipped by the
// calculators; Evaluate only fails on an unknown type or an empty recording.
func (e *Engine) Evaluate(t Type, hand landmark.Hand, frames []landmark.MotionFrame) (*Results, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("evaluate %s: empty repetition", t)
	}

	results := &Results{
		Type:       t,
		Hand:       hand,
		FrameCount: len(frames),
	}

	switch t {
	case TypeTAM, TypeTAMIndex, TypeTAMMiddle, TypeTAMRing, TypeTAMPinky:
		e.evaluateTAM(t, frames, results)
	case TypeKapandji:
		e.evaluateKapandji(hand, frames, results)
	case TypeWristFlexion:
		r := wrist.MaxAngles(frames, hand)
		r.WristFlexionAngle = round2(r.WristFlexionAngle)
		r.WristExtensionAngle = round2(r.WristExtensionAngle)
		results.Wrist = &r
		results.Quality = round2(poseCoverage(frames))
		e.log.Debug("wrist angles evaluated",
			"flexion", r.WristFlexionAngle,
			"extension", r.WristExtensionAngle,
			"available", r.Available)
	case TypeWristDeviation:
		r := wrist.MaxDeviation(frames, hand)
		r.RadialDeviation = round2(r.RadialDeviation)
		r.UlnarDeviation = round2(r.UlnarDeviation)
		results.Deviation = &r
		results.Quality = round2(poseCoverage(frames))
		e.log.Debug("wrist deviation evaluated",
			"radial", r.RadialDeviation,
			"ulnar", r.UlnarDeviation,
			"available", r.Available)
	default:
		return nil, fmt.Errorf("unknown assessment type %q", t)
	}

	return results, nil
}

// EvaluateContext is Evaluate with an early-out on context cancellation.
// The computation is milliseconds of pure CPU work over a bounded buffer, so
// the context is only checked once up front.
func (e *Engine) EvaluateContext(ctx context.Context, t Type, hand landmark.Hand, frames []landmark.MotionFrame) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Evaluate(t, hand, frames)
}

func (e *Engine) evaluateTAM(t Type, frames []landmark.MotionFrame, results *Results) {
	all := rom.CalculateAllFingersMaxROM(frames, e.cfg.ROM)

	byFinger := map[landmark.Finger]rom.JointAngles{
		landmark.FingerIndex:  all.Index,
		landmark.FingerMiddle: all.Middle,
		landmark.FingerRing:   all.Ring,
		landmark.FingerPinky:  all.Pinky,
	}

	relevant := landmark.Fingers()
	if finger, ok := t.singleFinger(); ok {
		relevant = []landmark.Finger{finger}
	}

	results.Fingers = make(map[landmark.Finger]rom.JointAngles, len(relevant))
	results.TemporalQuality = make(map[landmark.Finger]float64, len(relevant))

	sum := 0.0
	for _, finger := range relevant {
		angles := roundAngles(byFinger[finger])
		quality := round2(all.TemporalQuality[finger])
		results.Fingers[finger] = angles
		results.TemporalQuality[finger] = quality
		sum += quality

		e.log.Debug("finger rom evaluated",
			"finger", string(finger),
			"totalActiveRom", angles.TotalActiveROM,
			"quality", quality)
	}
	results.Quality = round2(sum / float64(len(relevant)))
}

func (e *Engine) evaluateKapandji(hand landmark.Hand, frames []landmark.MotionFrame, results *Results) {
	score := kapandji.MaxScore(frames, hand, e.cfg.Kapandji)
	results.Kapandji = &score
	results.Quality = round2(handCoverage(frames))

	e.log.Debug("kapandji evaluated",
		"maxScore", score.MaxScore,
		"reached", len(score.ReachedLandmarks),
		"profile", e.cfg.Kapandji.Name)
}

// handCoverage is the fraction of frames carrying a complete hand frame.
func handCoverage(frames []landmark.MotionFrame) float64 {
	n := 0
	for i := range frames {
		if len(frames[i].Landmarks) == landmark.NumHandLandmarks {
			n++
		}
	}
	return float64(n) / float64(len(frames))
}

// poseCoverage is the fraction of frames carrying both a complete hand frame
// and the pose landmarks the wrist calculators require.
func poseCoverage(frames []landmark.MotionFrame) float64 {
	n := 0
	for i := range frames {
		if len(frames[i].Landmarks) == landmark.NumHandLandmarks &&
			len(frames[i].PoseLandmarks) >= landmark.MinPoseLandmarks {
			n++
		}
	}
	return float64(n) / float64(len(frames))
}
