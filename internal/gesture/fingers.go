// Package gesture turns hand landmarks into finger states and gesture labels.
package gesture

import (
	"errors"
	"fmt"
	"image"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrLandmarkCount is returned when a hand does not have exactly
// detector.NumLandmarks points.
var ErrLandmarkCount = errors.New("wrong number of landmarks")

// Finger positions within FingerStates.
const (
	FingerThumb = iota
	FingerIndex
	FingerMiddle
	FingerRing
	FingerPinky
	NumFingers
)

// tips holds the fingertip landmark of each finger, in FingerStates order.
var tips = [NumFingers]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// FingerStates records which fingers are extended, ordered thumb, index,
// middle, ring, pinky.
type FingerStates [NumFingers]bool

// String renders the states as five 0/1 digits, thumb first.
func (f FingerStates) String() string {
	b := make([]byte, NumFingers)
	for i, up := range f {
		b[i] = '0'
		if up {
			b[i] = '1'
		}
	}
	return string(b)
}

// FacingLeft reports whether the index knuckle is left of the pinky knuckle.
// It is an orientation heuristic, not a handedness detector.
func FacingLeft(points []image.Point) bool {
	return points[detector.IndexMCP].X < points[detector.PinkyMCP].X
}

// ExtractFingerStates decides for each finger whether it is extended.
//
// The thumb is compared horizontally against the joint before its tip, with
// the direction flipped by FacingLeft so mirrored input gives the same
// answer. The other fingers are extended when the tip is above (smaller y)
// the joint two positions down the same finger.
func ExtractFingerStates(points []image.Point) (FingerStates, error) {
	var states FingerStates

	if len(points) != detector.NumLandmarks {
		return states, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), detector.NumLandmarks)
	}

	tip := points[tips[FingerThumb]]
	prev := points[tips[FingerThumb]-1]
	if FacingLeft(points) {
		states[FingerThumb] = tip.X < prev.X
	} else {
		states[FingerThumb] = tip.X > prev.X
	}

	for f := FingerIndex; f < NumFingers; f++ {
		states[f] = points[tips[f]].Y < points[tips[f]-2].Y
	}

	return states, nil
}
