// Package wrist computes elbow-referenced wrist flexion, extension and
// radial/ulnar deviation from paired hand and body-pose landmark frames.
package wrist

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rehabmetrics/handrom/internal/landmark"
)

// minAxis is the shortest projected vector still considered directional.
const minAxis = 1e-10

// Sample is the wrist angle decomposition of a single frame. Flexion and
// extension are the positive and negative components of the same projected
// bend, so at most one of them is nonzero; the same holds for radial and
// ulnar deviation.
type Sample struct {
	Flexion   float64
	Extension float64
	Radial    float64
	Ulnar     float64
}

// Result is the flexion/extension outcome of a repetition. Available is
// false when no frame carried the pose landmarks the calculation requires;
// an unavailable result never carries fabricated angles.
type Result struct {
	Available           bool    `json:"available"`
	WristFlexionAngle   float64 `json:"wristFlexionAngle"`
	WristExtensionAngle float64 `json:"wristExtensionAngle"`
}

// DeviationResult is the radial/ulnar outcome of a repetition.
type DeviationResult struct {
	Available       bool    `json:"available"`
	RadialDeviation float64 `json:"radialDeviation"`
	UlnarDeviation  float64 `json:"ulnarDeviation"`
}

// poseIndices returns the elbow and wrist pose landmark indices for the
// recorded hand. The hand flag is explicit capture metadata; the side is
// never guessed from geometry.
func poseIndices(hand landmark.Hand) (elbow, wrist int) {
	if hand == landmark.HandLeft {
		return landmark.PoseLeftElbow, landmark.PoseLeftWrist
	}
	return landmark.PoseRightElbow, landmark.PoseRightWrist
}

// Angles computes one frame's wrist angle sample. It requires a 21-landmark
// hand frame and a pose frame covering the elbow and wrist of the recorded
// hand; ok is false when either is missing or degenerate.
func Angles(hand landmark.HandFrame, pose landmark.PoseFrame, handType landmark.Hand) (Sample, bool) {
	if len(hand) != landmark.NumHandLandmarks || len(pose) < landmark.MinPoseLandmarks {
		return Sample{}, false
	}

	elbowIdx, wristIdx := poseIndices(handType)
	elbow := pose[elbowIdx].Vec()
	poseWrist := pose[wristIdx].Vec()

	// Forearm axis, pointing from the elbow through the wrist. In neutral
	// position the hand's long axis continues along it.
	forearm := r3.Sub(poseWrist, elbow)
	if r3.Norm(forearm) < minAxis {
		return Sample{}, false
	}
	forearm = r3.Unit(forearm)

	handWrist := hand[landmark.Wrist].Vec()
	longAxis := r3.Sub(hand[landmark.MiddleMCP].Vec(), handWrist)
	if r3.Norm(longAxis) < minAxis {
		return Sample{}, false
	}
	longAxis = r3.Unit(longAxis)

	// Palm plane normal from the wrist and the two border MCPs. Its
	// orientation follows the hand's chirality in image space, which keeps
	// palm-ward bend positive for either hand.
	normal := r3.Cross(
		r3.Sub(hand[landmark.IndexMCP].Vec(), handWrist),
		r3.Sub(hand[landmark.PinkyMCP].Vec(), handWrist),
	)
	if r3.Norm(normal) < minAxis {
		return Sample{}, false
	}
	normal = r3.Unit(normal)

	// Transverse axis along the knuckle line: rotation about it is flexion
	// or extension, rotation about the palm normal is deviation. Taken from
	// the hand itself so it stays valid through deep flexion, where an axis
	// derived from the forearm would collapse onto the palm normal.
	transverse := r3.Sub(hand[landmark.IndexMCP].Vec(), hand[landmark.PinkyMCP].Vec())
	if r3.Norm(transverse) < minAxis {
		return Sample{}, false
	}
	transverse = r3.Unit(transverse)

	flex := signedProjectedAngle(longAxis, forearm, transverse)
	dev := signedProjectedAngle(longAxis, forearm, normal)

	return Sample{
		Flexion:   math.Max(0, flex),
		Extension: math.Max(0, -flex),
		Radial:    math.Max(0, -dev),
		Ulnar:     math.Max(0, dev),
	}, true
}

// signedProjectedAngle projects both vectors onto the plane orthogonal to
// axis and returns the angle between the projections in degrees, signed by
// the rotation direction about axis. Degenerate projections yield 0.
func signedProjectedAngle(v, ref, axis r3.Vec) float64 {
	vp := r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
	rp := r3.Sub(ref, r3.Scale(r3.Dot(ref, axis), axis))

	nv := r3.Norm(vp)
	nr := r3.Norm(rp)
	if nv < minAxis || nr < minAxis {
		return 0
	}

	cos := r3.Dot(vp, rp) / (nv * nr)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos) * 180 / math.Pi

	if r3.Dot(r3.Cross(rp, vp), axis) < 0 {
		angle = -angle
	}
	return angle
}

// MaxAngles reduces a repetition to its flexion and extension maxima. The
// two maxima run independently: under a correct sign convention a frame
// contributes to at most one of them, but that is not assumed.
func MaxAngles(frames []landmark.MotionFrame, handType landmark.Hand) Result {
	var result Result
	for i := range frames {
		s, ok := Angles(frames[i].Landmarks, frames[i].PoseLandmarks, handType)
		if !ok {
			continue
		}
		result.Available = true
		result.WristFlexionAngle = math.Max(result.WristFlexionAngle, s.Flexion)
		result.WristExtensionAngle = math.Max(result.WristExtensionAngle, s.Extension)
	}
	return result
}

// MaxDeviation reduces a repetition to its radial and ulnar deviation maxima.
func MaxDeviation(frames []landmark.MotionFrame, handType landmark.Hand) DeviationResult {
	var result DeviationResult
	for i := range frames {
		s, ok := Angles(frames[i].Landmarks, frames[i].PoseLandmarks, handType)
		if !ok {
			continue
		}
		result.Available = true
		result.RadialDeviation = math.Max(result.RadialDeviation, s.Radial)
		result.UlnarDeviation = math.Max(result.UlnarDeviation, s.Ulnar)
	}
	return result
}
