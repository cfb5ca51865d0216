package kapandji

import "github.com/rehabmetrics/handrom/internal/landmark"

// Target names, in anatomical difficulty order. The name doubles as the key
// in Score details and as the persisted reached-landmark label.
const (
	TargetIndexPIP       = "indexPip"
	TargetIndexTip       = "indexTip"
	TargetMiddleTip      = "middleTip"
	TargetRingTip        = "ringTip"
	TargetPinkyTip       = "pinkyTip"
	TargetPinkyBase      = "pinkyBase"
	TargetMidPalm        = "midPalm"
	TargetDistalCrease   = "distalPalmarCrease"
	TargetProximalCrease = "proximalPalmarCrease"
	TargetRadialSide     = "radialSide"
)

// target is one anatomical opposition target: its score value and how to
// locate it on a 21-landmark frame.
type target struct {
	name  string
	score int
	point func(frame landmark.HandFrame) landmark.Landmark
}

func at(idx int) func(landmark.HandFrame) landmark.Landmark {
	return func(frame landmark.HandFrame) landmark.Landmark { return frame[idx] }
}

func centroidOf(i, j, k int) func(landmark.HandFrame) landmark.Landmark {
	return func(frame landmark.HandFrame) landmark.Landmark {
		return landmark.Centroid(frame, i, j, k)
	}
}

// oppositionTargets are the nine scored targets tested against the common
// reach threshold. Scores 1-9 follow the Kapandji ladder from the lateral
// index PIP out to the proximal palmar crease. The palm targets have no
// landmark of their own and are located by averaging three topology points.
var oppositionTargets = []target{
	{TargetIndexPIP, 1, at(landmark.IndexPIP)},
	{TargetIndexTip, 2, at(landmark.IndexTip)},
	{TargetMiddleTip, 3, at(landmark.MiddleTip)},
	{TargetRingTip, 4, at(landmark.RingTip)},
	{TargetPinkyTip, 5, at(landmark.PinkyTip)},
	{TargetPinkyBase, 6, at(landmark.PinkyMCP)},
	{TargetMidPalm, 7, centroidOf(landmark.Wrist, landmark.IndexMCP, landmark.PinkyMCP)},
	{TargetDistalCrease, 8, centroidOf(landmark.IndexMCP, landmark.MiddleMCP, landmark.RingMCP)},
	{TargetProximalCrease, 9, centroidOf(landmark.Wrist, landmark.ThumbCMC, landmark.PinkyMCP)},
}

// creaseTargets marks which target names the legacy profile drops.
var creaseTargets = map[string]bool{
	TargetMidPalm:        true,
	TargetDistalCrease:   true,
	TargetProximalCrease: true,
}

// radialTarget locates the score-10 full-opposition point on the radial side
// under the pinky metacarpal. The point sits outside the landmark topology,
// so it is offset laterally from the pinky MCP; the offset direction depends
// on which hand was recorded.
func radialTarget(frame landmark.HandFrame, hand landmark.Hand) landmark.Landmark {
	p := frame[landmark.PinkyMCP]
	offset := radialOffset
	if hand == landmark.HandRight {
		offset = -radialOffset
	}
	return landmark.Landmark{X: p.X + offset, Y: p.Y, Z: p.Z}
}

// radialOffset is the lateral displacement of the score-10 target from the
// pinky MCP, in normalized image units.
const radialOffset = 0.05
