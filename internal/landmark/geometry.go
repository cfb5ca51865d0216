package landmark

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minSegment is the shortest segment length treated as non-degenerate.
const minSegment = 1e-10

// Vec converts a landmark to a gonum 3D vector.
func (l Landmark) Vec() r3.Vec {
	return r3.Vec{X: l.X, Y: l.Y, Z: l.Z}
}

// AngleAt returns the angle in degrees at pivot between the rays toward p1
// and p2. The cosine is clamped to [-1,1] before acos to absorb floating
// point drift. Returns 0 when either segment is degenerate, never NaN.
func AngleAt(p1, p2, pivot Landmark) float64 {
	u := r3.Sub(p1.Vec(), pivot.Vec())
	v := r3.Sub(p2.Vec(), pivot.Vec())

	nu := r3.Norm(u)
	nv := r3.Norm(v)
	if nu < minSegment || nv < minSegment {
		return 0
	}

	cos := r3.Dot(u, v) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// RawJointAngle returns the bend at joint b of the chain a-b-c in degrees:
// 0 for a fully extended (colinear) joint, growing toward 180 with flexion.
// Three points cannot disambiguate the hyperextension direction, so the raw
// angle bottoms out at 0; the extension-deficit correction only needs the
// minimum over a repetition, which is unaffected. Degenerate segments
// yield 0.
func RawJointAngle(a, b, c Landmark) float64 {
	u := r3.Sub(a.Vec(), b.Vec())
	v := r3.Sub(c.Vec(), b.Vec())
	if r3.Norm(u) < minSegment || r3.Norm(v) < minSegment {
		return 0
	}
	return 180 - AngleAt(a, c, b)
}

// FlexionAngle returns the flexion component of the joint bend at b,
// clamped to be non-negative.
func FlexionAngle(a, b, c Landmark) float64 {
	return math.Max(0, RawJointAngle(a, b, c))
}

// Distance returns the Euclidean distance between two landmarks in
// normalized coordinate space.
func Distance(a, b Landmark) float64 {
	return r3.Norm(r3.Sub(a.Vec(), b.Vec()))
}

// Centroid averages the landmarks at the given indices of a frame. Used for
// palm targets that are defined as the mean of three topology points.
func Centroid(frame HandFrame, indices ...int) Landmark {
	var x, y, z float64
	for _, i := range indices {
		x += frame[i].X
		y += frame[i].Y
		z += frame[i].Z
	}
	n := float64(len(indices))
	return Landmark{X: x / n, Y: y / n, Z: z / n}
}
