// Package kapandji scores thumb opposition on the 0-10 Kapandji scale by
// matching the thumb tip against progressively harder anatomical targets.
package kapandji

import (
	"fmt"

	"github.com/rehabmetrics/handrom/internal/landmark"
)

// Profile selects one of the scoring variants that coexist in clinical use.
// The two sets differ in reach threshold and in whether the palm-crease
// targets are scored; the choice is always explicit, never merged.
type Profile struct {
	// Name tags the variant for persistence and logging.
	Name string

	// ReachThreshold is the normalized distance under which a target counts
	// as reached.
	ReachThreshold float64

	// RadialMultiplier loosens the threshold for the score-10 radial target,
	// the hardest and most failure-prone reach.
	RadialMultiplier float64

	// IncludeCreaseTargets scores the mid-palm and palmar-crease targets
	// (7-9). The legacy variant stops at the pinky base.
	IncludeCreaseTargets bool
}

// StandardProfile is the full ten-target variant.
func StandardProfile() Profile {
	return Profile{
		Name:                 "standard",
		ReachThreshold:       0.04,
		RadialMultiplier:     1.5,
		IncludeCreaseTargets: true,
	}
}

// LegacyProfile reproduces the earlier variant with a looser threshold and
// no palm-crease targets.
func LegacyProfile() Profile {
	return Profile{
		Name:                 "legacy",
		ReachThreshold:       0.05,
		RadialMultiplier:     1.5,
		IncludeCreaseTargets: false,
	}
}

// ProfileByName resolves a profile tag from configuration.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", "standard":
		return StandardProfile(), nil
	case "legacy":
		return LegacyProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown kapandji profile %q", name)
	}
}

// Score is the opposition result for a frame or a whole repetition.
//
// Details and ReachedLandmarks describe the single best frame. ReachedEver is
// the union of every target reached in any frame of the repetition; which of
// the two views is clinically authoritative is an open product decision, so
// both are reported.
type Score struct {
	MaxScore         int             `json:"maxScore"`
	ReachedLandmarks []string        `json:"reachedLandmarks"`
	Details          map[string]bool `json:"details"`
	ReachedEver      map[string]bool `json:"reachedEver,omitempty"`
}

// ScoreFrame scores a single 21-landmark frame. Frames with a different
// landmark count score zero; a single bad frame must not abort a repetition.
func ScoreFrame(frame landmark.HandFrame, hand landmark.Hand, profile Profile) Score {
	score := Score{Details: make(map[string]bool)}
	if len(frame) != landmark.NumHandLandmarks {
		return score
	}

	thumb := frame[landmark.ThumbTip]

	for _, t := range oppositionTargets {
		if !profile.IncludeCreaseTargets && creaseTargets[t.name] {
			continue
		}

		reached := landmark.Distance(thumb, t.point(frame)) < profile.ReachThreshold
		score.Details[t.name] = reached
		if reached {
			score.ReachedLandmarks = append(score.ReachedLandmarks, t.name)
			if t.score > score.MaxScore {
				score.MaxScore = t.score
			}
		}
	}

	// Score 10 is tested separately against a looser threshold.
	radial := radialTarget(frame, hand)
	reached := landmark.Distance(thumb, radial) < profile.ReachThreshold*profile.RadialMultiplier
	score.Details[TargetRadialSide] = reached
	if reached {
		score.ReachedLandmarks = append(score.ReachedLandmarks, TargetRadialSide)
		score.MaxScore = 10
	}

	return score
}

// MaxScore scans a repetition and returns the best single-frame score. The
// running maximum is monotonic: a later frame can only raise it. Details and
// ReachedLandmarks come from the frame that produced the maximum, while
// ReachedEver accumulates across all frames.
func MaxScore(frames []landmark.MotionFrame, hand landmark.Hand, profile Profile) Score {
	best := Score{Details: make(map[string]bool)}
	ever := make(map[string]bool)

	for i := range frames {
		s := ScoreFrame(frames[i].Landmarks, hand, profile)

		for name, reached := range s.Details {
			if reached {
				ever[name] = true
			}
		}

		if s.MaxScore > best.MaxScore {
			best = s
		}
	}

	best.ReachedEver = ever
	return best
}
