// Package landmark provides the hand and body-pose landmark data model for
// motion assessments, plus the vector geometry used by the angle calculators.
package landmark

import "fmt"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Body-pose landmark indices following MediaPipe Pose convention. Only the
// upper-limb points needed for elbow-referenced wrist angles are named.
const (
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	MinPoseLandmarks  = 17
)

// Landmark is one tracked point in normalized image space. X and Y are in
// [0,1], Z is relative depth. Visibility is the upstream model's detection
// confidence in [0,1] and is absent when the model did not report one.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// HandFrame is one detection of the 21 MediaPipe hand landmarks. A frame with
// a different landmark count is not eligible for any angle calculation.
type HandFrame []Landmark

// PoseFrame is one detection of the MediaPipe body-pose landmarks. It is only
// consumed by the wrist calculators and may be absent from a sample.
type PoseFrame []Landmark

// Hand identifies which hand a repetition was recorded for. It always comes
// from an explicit flag set at capture time, never inferred from geometry.
type Hand string

const (
	HandLeft  Hand = "Left"
	HandRight Hand = "Right"
)

// Finger identifies one of the four non-thumb fingers.
type Finger string

const (
	FingerIndex  Finger = "index"
	FingerMiddle Finger = "middle"
	FingerRing   Finger = "ring"
	FingerPinky  Finger = "pinky"
)

// Fingers returns the four fingers in anatomical order.
func Fingers() []Finger {
	return []Finger{FingerIndex, FingerMiddle, FingerRing, FingerPinky}
}

// ConfidenceInfo describes per-finger tracking confidence derived upstream
// from inter-frame landmark displacement.
type ConfidenceInfo struct {
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Movement   float64 `json:"movement"`
}

// FingerConfidences maps each finger to its tracking confidence for one frame.
type FingerConfidences map[Finger]ConfidenceInfo

// AnnotatedFrame pairs a hand frame with its optional per-finger confidence
// map. The confidences travel alongside the landmarks as an explicit sibling
// field; the landmark slice itself is never annotated or mutated.
type AnnotatedFrame struct {
	Frame       HandFrame
	Confidences FingerConfidences
}

// MotionFrame is one sample of a recorded repetition: the hand landmarks,
// the optional body-pose landmarks captured at the same instant, and the
// capture-side quality estimate.
type MotionFrame struct {
	Timestamp     int64             `json:"timestamp"`
	Landmarks     HandFrame         `json:"landmarks"`
	PoseLandmarks PoseFrame         `json:"poseLandmarks,omitempty"`
	Confidences   FingerConfidences `json:"fingerConfidences,omitempty"`
	Quality       float64           `json:"quality"`
}

// Annotated returns the frame's hand landmarks paired with its confidences.
func (m *MotionFrame) Annotated() AnnotatedFrame {
	return AnnotatedFrame{Frame: m.Landmarks, Confidences: m.Confidences}
}

// InvalidInputError reports a hard precondition violation, such as calling a
// calculator that requires exactly 21 landmarks with a different count. It is
// distinct from the soft low-confidence path, which yields zero results.
type InvalidInputError struct {
	Op   string
	Want int
	Got  int
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: expected %d landmarks, got %d", e.Op, e.Want, e.Got)
}
