// Package render draws the gesture overlay onto camera frames and presents
// them, either in a desktop window or as JPEG snapshots for HTTP streaming.
package render

import (
	"image"
	"image/color"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"gocv.io/x/gocv"
)

// WindowTitle is the title of the desktop preview window.
const WindowTitle = "Hand Gesture Control"

// Overlay geometry in frame pixels.
var (
	LabelOrigin = image.Pt(20, 50)
	BarOutline  = image.Rect(50, control.BarTop, 85, control.BarBottom)
)

var (
	green = color.RGBA{G: 255}
	red   = color.RGBA{R: 255}
	white = color.RGBA{R: 255, G: 255, B: 255}
)

// Overlay is what gets drawn on a frame.
type Overlay struct {
	// Label is drawn only when a hand was seen.
	Label gesture.Label
	// Hand holds the 21 pixel landmarks of the tracked hand, or nil.
	Hand []image.Point
	// VolumeBar is the y of the top of the volume fill.
	VolumeBar float64
}

// Renderer presents annotated frames and reports when the user asked to quit.
type Renderer interface {
	Render(frame *gocv.Mat, ov Overlay) error
	QuitRequested() bool
	Close() error
}

// BarFill returns the filled part of the volume bar for a bar position,
// clamped to the outline.
func BarFill(volumeBar float64) image.Rectangle {
	y := int(volumeBar)
	if y < BarOutline.Min.Y {
		y = BarOutline.Min.Y
	}
	if y > BarOutline.Max.Y {
		y = BarOutline.Max.Y
	}
	return image.Rect(BarOutline.Min.X, y, BarOutline.Max.X, BarOutline.Max.Y)
}

// Draw paints the hand skeleton, the gesture label and the volume bar onto frame.
func Draw(frame *gocv.Mat, ov Overlay) {
	if len(ov.Hand) == detector.NumLandmarks {
		for _, c := range detector.Connections {
			gocv.Line(frame, ov.Hand[c[0]], ov.Hand[c[1]], white, 2)
		}
		for _, p := range ov.Hand {
			gocv.Circle(frame, p, 5, red, -1)
		}
	}

	if ov.Label != "" {
		gocv.PutText(frame, string(ov.Label), LabelOrigin, gocv.FontHersheyComplex, 0.9, green, 2)
	}

	gocv.Rectangle(frame, BarOutline, green, 3)
	gocv.Rectangle(frame, BarFill(ov.VolumeBar), green, -1)
}
