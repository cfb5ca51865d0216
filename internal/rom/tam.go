package rom

import "math"

// jointSeries collects the raw and flexion angle history of one finger's
// three joints across the accepted frames of a repetition.
type jointSeries struct {
	raw     [numJoints][]float64
	flexion [numJoints][]float64
}

func (s *jointSeries) add(raw, flexion [numJoints]float64) {
	for j := 0; j < numJoints; j++ {
		s.raw[j] = append(s.raw[j], raw[j])
		s.flexion[j] = append(s.flexion[j], flexion[j])
	}
}

func (s *jointSeries) len() int {
	return len(s.raw[jointMCP])
}

// tamFromSeries applies the clinical Total Active Motion correction to a
// finger's collected angle series.
//
// For each joint: the flexion maximum is the best bend achieved, and the
// extension deficit is the best (smallest) raw angle achieved, clamped at 0.
// A finger that flexes to 90 degrees but cannot extend past 20 has only 70
// degrees of usable motion; jointTAM = max(0, maxFlexion - deficit) encodes
// that, and must not be conflated with flexion-only ROM.
func tamFromSeries(s *jointSeries) JointAngles {
	if s.len() == 0 {
		return JointAngles{}
	}

	var tam, deficit, flex [numJoints]float64
	for j := 0; j < numJoints; j++ {
		maxFlexion := 0.0
		for _, v := range s.flexion[j] {
			maxFlexion = math.Max(maxFlexion, v)
		}

		minRaw := s.raw[j][0]
		for _, v := range s.raw[j][1:] {
			minRaw = math.Min(minRaw, v)
		}

		flex[j] = maxFlexion
		deficit[j] = math.Max(0, minRaw)
		tam[j] = math.Max(0, maxFlexion-deficit[j])
	}

	return JointAngles{
		MCPAngle:            tam[jointMCP],
		PIPAngle:            tam[jointPIP],
		DIPAngle:            tam[jointDIP],
		TotalActiveROM:      tam[jointMCP] + tam[jointPIP] + tam[jointDIP],
		MCPExtensionDeficit: deficit[jointMCP],
		PIPExtensionDeficit: deficit[jointPIP],
		DIPExtensionDeficit: deficit[jointDIP],
		MCPFlexion:          flex[jointMCP],
		PIPFlexion:          flex[jointPIP],
		DIPFlexion:          flex[jointDIP],
	}
}
