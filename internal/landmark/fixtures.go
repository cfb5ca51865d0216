package landmark

import "math"

// Preset frames used by tests across the calculator packages. The shapes are
// synthetic but anatomically ordered: fingers fan out from a wrist at
// (0.5, 0.9) toward the top of the image.

// fingerRays maps each finger to its MCP index and the wrist-to-MCP direction
// used by the preset builders.
var fingerRays = []struct {
	mcp int
	dx  float64
	dy  float64
}{
	{IndexMCP, 0.08, -0.25},
	{MiddleMCP, 0.0, -0.27},
	{RingMCP, -0.08, -0.25},
	{PinkyMCP, -0.15, -0.22},
}

// OpenHandFrame returns a hand with all four fingers fully extended: wrist,
// MCP, PIP, DIP and tip of each finger are colinear, so every raw joint
// angle is 0.
func OpenHandFrame() HandFrame {
	frame := make(HandFrame, NumHandLandmarks)
	wrist := Landmark{X: 0.5, Y: 0.9}
	frame[Wrist] = wrist

	for _, ray := range fingerRays {
		for j, scale := range []float64{1.0, 1.4, 1.7, 2.0} {
			frame[ray.mcp+j] = Landmark{
				X: wrist.X + ray.dx*scale,
				Y: wrist.Y + ray.dy*scale,
			}
		}
	}

	// Thumb extended radially.
	frame[ThumbCMC] = Landmark{X: 0.56, Y: 0.82}
	frame[ThumbMCP] = Landmark{X: 0.62, Y: 0.76}
	frame[ThumbIP] = Landmark{X: 0.66, Y: 0.71}
	frame[ThumbTip] = Landmark{X: 0.70, Y: 0.67}

	return frame
}

// FistFrame returns a fully flexed hand: each finger curls in its own plane
// with exactly 90 degrees of bend at the MCP, PIP and DIP joints.
func FistFrame() HandFrame {
	frame := OpenHandFrame()
	wrist := frame[Wrist]

	for _, ray := range fingerRays {
		mcp := Landmark{X: wrist.X + ray.dx, Y: wrist.Y + ray.dy}
		frame[ray.mcp] = mcp

		// Each phalanx is the previous segment rotated 90 degrees in the
		// image plane, so every joint bends exactly 90 degrees.
		sx, sy := rotate90(ray.dx, ray.dy)
		sx, sy = scaleTo(sx, sy, 0.06)

		prev := mcp
		for j := 1; j <= 3; j++ {
			next := Landmark{X: prev.X + sx, Y: prev.Y + sy}
			frame[ray.mcp+j] = next
			prev = next
			sx, sy = rotate90(sx, sy)
			sx *= 0.8
			sy *= 0.8
		}
	}

	// Thumb tucked across the palm.
	frame[ThumbCMC] = Landmark{X: 0.55, Y: 0.83}
	frame[ThumbMCP] = Landmark{X: 0.57, Y: 0.78}
	frame[ThumbIP] = Landmark{X: 0.53, Y: 0.74}
	frame[ThumbTip] = Landmark{X: 0.48, Y: 0.73}

	return frame
}

// OppositionFrame returns an open hand with the thumb tip placed exactly on
// the index fingertip.
func OppositionFrame() HandFrame {
	frame := OpenHandFrame()
	tip := frame[IndexTip]
	frame[ThumbTip] = tip
	frame[ThumbIP] = Landmark{X: tip.X + 0.03, Y: tip.Y + 0.05}
	frame[ThumbMCP] = Landmark{X: tip.X + 0.06, Y: tip.Y + 0.11}
	return frame
}

// ForearmPose returns a pose frame with the shoulder, elbow and wrist of the
// given hand aligned vertically above the hand wrist at (0.5, 0.9), giving a
// neutral forearm axis for wrist-angle fixtures.
func ForearmPose(hand Hand) PoseFrame {
	pose := make(PoseFrame, MinPoseLandmarks)

	shoulder, elbow, wrist := PoseRightShoulder, PoseRightElbow, PoseRightWrist
	if hand == HandLeft {
		shoulder, elbow, wrist = PoseLeftShoulder, PoseLeftElbow, PoseLeftWrist
	}

	pose[shoulder] = Landmark{X: 0.5, Y: 1.7}
	pose[elbow] = Landmark{X: 0.5, Y: 1.3}
	pose[wrist] = Landmark{X: 0.5, Y: 0.9}

	return pose
}

// WithVisibility returns a copy of the frame with every landmark's
// visibility set to v.
func WithVisibility(frame HandFrame, v float64) HandFrame {
	out := make(HandFrame, len(frame))
	for i, l := range frame {
		vis := v
		l.Visibility = &vis
		out[i] = l
	}
	return out
}

// Repetition builds a motion sequence by repeating one hand frame n times at
// ~30fps timestamps.
func Repetition(frame HandFrame, n int) []MotionFrame {
	frames := make([]MotionFrame, n)
	for i := range frames {
		frames[i] = MotionFrame{
			Timestamp: int64(i) * 33,
			Landmarks: frame,
			Quality:   1.0,
		}
	}
	return frames
}

func rotate90(x, y float64) (float64, float64) {
	return -y, x
}

func scaleTo(x, y, length float64) (float64, float64) {
	n := math.Hypot(x, y)
	if n == 0 {
		return 0, 0
	}
	return x * length / n, y * length / n
}
