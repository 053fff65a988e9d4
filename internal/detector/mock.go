package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Finger base positions for a hand whose index knuckle is right of its pinky knuckle.
var fingerBaseX = [4]float64{0.56, 0.50, 0.44, 0.38}

// PoseLandmarks builds a synthetic hand with the given fingers extended.
// fingers is ordered thumb, index, middle, ring, pinky. When facingLeft is
// set the hand is mirrored horizontally so the index knuckle sits left of
// the pinky knuckle.
func PoseLandmarks(fingers [5]bool, facingLeft bool) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	if facingLeft {
		hand.Handedness = "Left"
	}

	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.85}

	hand.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.78}
	hand.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.72}
	hand.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.66}
	if fingers[0] {
		hand.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.62}
	} else {
		// Folded across the palm
		hand.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.64}
	}

	for f := 0; f < 4; f++ {
		mcp := IndexMCP + f*4
		x := fingerBaseX[f]
		hand.Points[mcp] = Point3D{X: x, Y: 0.66}
		hand.Points[mcp+1] = Point3D{X: x, Y: 0.55}
		if fingers[f+1] {
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.47}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.38}
		} else {
			// Curled: tip drops back below the middle joint
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.60}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.64}
		}
	}

	if facingLeft {
		for i := range hand.Points {
			hand.Points[i].X = 1 - hand.Points[i].X
		}
	}

	return hand
}

// ThumbsUpLandmarks returns a preset HandLandmarks with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{true, false, false, false, false}, false)
}

// IndexUpLandmarks returns a preset HandLandmarks with only the index finger extended.
func IndexUpLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, false, false, false}, false)
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{true, true, true, true, true}, false)
}

// VictoryLandmarks returns a preset HandLandmarks with index and middle fingers extended.
func VictoryLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, true, false, false}, false)
}

// SwagLandmarks returns a preset HandLandmarks with index and pinky fingers extended.
func SwagLandmarks() HandLandmarks {
	return PoseLandmarks([5]bool{false, true, false, false, true}, false)
}
