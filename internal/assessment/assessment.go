// Package assessment orchestrates the ROM, Kapandji and wrist calculators
// per assessment type and packages the final results for persistence.
package assessment

import (
	"fmt"
	"math"

	"github.com/rehabmetrics/handrom/internal/kapandji"
	"github.com/rehabmetrics/handrom/internal/landmark"
	"github.com/rehabmetrics/handrom/internal/rom"
	"github.com/rehabmetrics/handrom/internal/wrist"
)

// Type identifies an assessment protocol.
type Type string

const (
	TypeTAM            Type = "tam"
	TypeTAMIndex       Type = "tam-index"
	TypeTAMMiddle      Type = "tam-middle"
	TypeTAMRing        Type = "tam-ring"
	TypeTAMPinky       Type = "tam-pinky"
	TypeKapandji       Type = "kapandji"
	TypeWristFlexion   Type = "wrist-flexion-extension"
	TypeWristDeviation Type = "wrist-deviation"
)

// ParseType validates an assessment type string from the API or CLI.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeTAM, TypeTAMIndex, TypeTAMMiddle, TypeTAMRing, TypeTAMPinky,
		TypeKapandji, TypeWristFlexion, TypeWristDeviation:
		return t, nil
	default:
		return "", fmt.Errorf("unknown assessment type %q", s)
	}
}

// singleFinger returns the one relevant finger of a single-finger TAM
// variant, or false for whole-hand types.
func (t Type) singleFinger() (landmark.Finger, bool) {
	switch t {
	case TypeTAMIndex:
		return landmark.FingerIndex, true
	case TypeTAMMiddle:
		return landmark.FingerMiddle, true
	case TypeTAMRing:
		return landmark.FingerRing, true
	case TypeTAMPinky:
		return landmark.FingerPinky, true
	}
	return "", false
}

// Results is the final, JSON-serializable outcome of one repetition. Only
// the sections relevant to the assessment type are populated. All numeric
// fields are rounded to two decimals before the struct leaves the engine.
type Results struct {
	Type       Type          `json:"type"`
	Hand       landmark.Hand `json:"hand"`
	FrameCount int           `json:"frameCount"`

	// Quality is the whole-hand confidence in [0,1] the UI uses to flag
	// low-confidence results.
	Quality float64 `json:"quality"`

	Fingers         map[landmark.Finger]rom.JointAngles `json:"fingers,omitempty"`
	TemporalQuality map[landmark.Finger]float64         `json:"temporalQuality,omitempty"`

	Kapandji  *kapandji.Score        `json:"kapandji,omitempty"`
	Wrist     *wrist.Result          `json:"wrist,omitempty"`
	Deviation *wrist.DeviationResult `json:"deviation,omitempty"`
}

// round2 rounds to the 2-decimal precision results are persisted with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundAngles(a rom.JointAngles) rom.JointAngles {
	a.MCPAngle = round2(a.MCPAngle)
	a.PIPAngle = round2(a.PIPAngle)
	a.DIPAngle = round2(a.DIPAngle)
	a.TotalActiveROM = round2(a.TotalActiveROM)
	a.MCPExtensionDeficit = round2(a.MCPExtensionDeficit)
	a.PIPExtensionDeficit = round2(a.PIPExtensionDeficit)
	a.DIPExtensionDeficit = round2(a.DIPExtensionDeficit)
	a.MCPFlexion = round2(a.MCPFlexion)
	a.PIPFlexion = round2(a.PIPFlexion)
	a.DIPFlexion = round2(a.DIPFlexion)
	return a
}
