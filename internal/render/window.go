package render

import (
	"gocv.io/x/gocv"
)

// Window shows frames in an OpenCV window. It must be used from the
// goroutine that created it.
type Window struct {
	win  *gocv.Window
	quit bool
}

// NewWindow opens the preview window.
func NewWindow(title string) *Window {
	if title == "" {
		title = WindowTitle
	}
	return &Window{win: gocv.NewWindow(title)}
}

// Render draws the overlay, shows the frame and polls the keyboard for 'q'.
func (w *Window) Render(frame *gocv.Mat, ov Overlay) error {
	Draw(frame, ov)
	w.win.IMShow(*frame)
	if w.win.WaitKey(1)&0xFF == 'q' {
		w.quit = true
	}
	return nil
}

// QuitRequested reports whether 'q' was pressed.
func (w *Window) QuitRequested() bool {
	return w.quit
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
