package rom

import (
	"github.com/rehabmetrics/handrom/internal/landmark"
)

// JointAngles is the per-finger result of one ROM calculation. Angles are in
// degrees. For a single frame the three angle fields are that frame's flexion
// angles; for an aggregated repetition they are the deficit-corrected
// per-joint Total Active Motion values.
type JointAngles struct {
	MCPAngle       float64 `json:"mcpAngle"`
	PIPAngle       float64 `json:"pipAngle"`
	DIPAngle       float64 `json:"dipAngle"`
	TotalActiveROM float64 `json:"totalActiveRom"`

	MCPExtensionDeficit float64 `json:"mcpExtensionDeficit,omitempty"`
	PIPExtensionDeficit float64 `json:"pipExtensionDeficit,omitempty"`
	DIPExtensionDeficit float64 `json:"dipExtensionDeficit,omitempty"`

	MCPFlexion float64 `json:"mcpFlexion,omitempty"`
	PIPFlexion float64 `json:"pipFlexion,omitempty"`
	DIPFlexion float64 `json:"dipFlexion,omitempty"`
}

// Joint indices within a finger's angle triple.
const (
	jointMCP  = 0
	jointPIP  = 1
	jointDIP  = 2
	numJoints = 3
)

// jointTriples maps each finger to the landmark triples defining its three
// joints: MCP bends between the wrist-MCP and MCP-PIP segments, PIP between
// MCP-PIP and PIP-DIP, DIP between PIP-DIP and DIP-tip.
var jointTriples = map[landmark.Finger][numJoints][3]int{
	landmark.FingerIndex: {
		{landmark.Wrist, landmark.IndexMCP, landmark.IndexPIP},
		{landmark.IndexMCP, landmark.IndexPIP, landmark.IndexDIP},
		{landmark.IndexPIP, landmark.IndexDIP, landmark.IndexTip},
	},
	landmark.FingerMiddle: {
		{landmark.Wrist, landmark.MiddleMCP, landmark.MiddlePIP},
		{landmark.MiddleMCP, landmark.MiddlePIP, landmark.MiddleDIP},
		{landmark.MiddlePIP, landmark.MiddleDIP, landmark.MiddleTip},
	},
	landmark.FingerRing: {
		{landmark.Wrist, landmark.RingMCP, landmark.RingPIP},
		{landmark.RingMCP, landmark.RingPIP, landmark.RingDIP},
		{landmark.RingPIP, landmark.RingDIP, landmark.RingTip},
	},
	landmark.FingerPinky: {
		{landmark.Wrist, landmark.PinkyMCP, landmark.PinkyPIP},
		{landmark.PinkyMCP, landmark.PinkyPIP, landmark.PinkyDIP},
		{landmark.PinkyPIP, landmark.PinkyDIP, landmark.PinkyTip},
	},
}

// fingerLandmarks maps each finger to its four own landmark indices,
// MCP through tip. Used by the visibility checks.
var fingerLandmarks = map[landmark.Finger][4]int{
	landmark.FingerIndex:  {landmark.IndexMCP, landmark.IndexPIP, landmark.IndexDIP, landmark.IndexTip},
	landmark.FingerMiddle: {landmark.MiddleMCP, landmark.MiddlePIP, landmark.MiddleDIP, landmark.MiddleTip},
	landmark.FingerRing:   {landmark.RingMCP, landmark.RingPIP, landmark.RingDIP, landmark.RingTip},
	landmark.FingerPinky:  {landmark.PinkyMCP, landmark.PinkyPIP, landmark.PinkyDIP, landmark.PinkyTip},
}

// fingerAngles computes the raw and flexion angle for each joint of one
// finger from a single 21-landmark frame. The caller validates frame length.
func fingerAngles(frame landmark.HandFrame, finger landmark.Finger) (raw, flexion [numJoints]float64) {
	triples := jointTriples[finger]
	for j, t := range triples {
		a, b, c := frame[t[0]], frame[t[1]], frame[t[2]]
		raw[j] = landmark.RawJointAngle(a, b, c)
		if raw[j] > 0 {
			flexion[j] = raw[j]
		}
	}
	return raw, flexion
}

// CalculateFingerROM computes the joint angles of one finger from a single
// annotated frame. It requires exactly 21 landmarks and returns an
// InvalidInputError otherwise. A finger whose tracking confidence is below
// cfg.MinTrackingConf yields an all-zero result: an unreliable finger must
// not inflate a clinical score, so correctness wins over availability.
func CalculateFingerROM(af landmark.AnnotatedFrame, finger landmark.Finger, cfg Config) (JointAngles, error) {
	if len(af.Frame) != landmark.NumHandLandmarks {
		return JointAngles{}, &landmark.InvalidInputError{
			Op:   "rom.CalculateFingerROM",
			Want: landmark.NumHandLandmarks,
			Got:  len(af.Frame),
		}
	}

	if info, ok := af.Confidences[finger]; ok && info.Confidence < cfg.MinTrackingConf {
		return JointAngles{}, nil
	}

	_, flexion := fingerAngles(af.Frame, finger)

	return JointAngles{
		MCPAngle:       flexion[jointMCP],
		PIPAngle:       flexion[jointPIP],
		DIPAngle:       flexion[jointDIP],
		MCPFlexion:     flexion[jointMCP],
		PIPFlexion:     flexion[jointPIP],
		DIPFlexion:     flexion[jointDIP],
		TotalActiveROM: flexion[jointMCP] + flexion[jointPIP] + flexion[jointDIP],
	}, nil
}
