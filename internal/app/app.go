// Package app runs the per-frame gesture control loop: capture, detect,
// classify, dispatch and render.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/render"
	"gocv.io/x/gocv"
)

var (
	// ErrCapture is returned by Run when the camera cannot be opened or read.
	ErrCapture = errors.New("failed to access the camera")
	// ErrMissingComponent is returned by New when a required component is nil.
	ErrMissingComponent = errors.New("app component missing")
)

// Config wires the collaborators of the frame loop.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Dispatcher *control.Dispatcher
	Renderer   render.Renderer
}

// FrameResult describes what happened on one frame.
type FrameResult struct {
	Seq     uint64               `json:"seq"`
	Time    time.Time            `json:"time"`
	Enabled bool                 `json:"enabled"`
	Hand    bool                 `json:"hand"`
	Points  []image.Point        `json:"points,omitempty"`
	Fingers gesture.FingerStates `json:"fingers"`
	Label   gesture.Label        `json:"label"`
	Effects []control.Effect     `json:"effects,omitempty"`
	Error   string               `json:"error,omitempty"`
	Session control.Session      `json:"session"`
}

// App is the gesture control loop. The session state is owned by the
// goroutine calling Run; everything else only sees FrameResult copies.
type App struct {
	camera     capture.Camera
	detector   detector.Detector
	dispatcher *control.Dispatcher
	renderer   render.Renderer

	mu        sync.RWMutex
	enabled   bool
	observers []Observer
	latest    FrameResult
	seq       uint64
}

// New creates an App. Detection starts enabled.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Camera == nil:
		return nil, fmt.Errorf("%w: camera", ErrMissingComponent)
	case cfg.Detector == nil:
		return nil, fmt.Errorf("%w: detector", ErrMissingComponent)
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("%w: dispatcher", ErrMissingComponent)
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingComponent)
	}

	return &App{
		camera:     cfg.Camera,
		detector:   cfg.Detector,
		dispatcher: cfg.Dispatcher,
		renderer:   cfg.Renderer,
		enabled:    true,
		latest:     FrameResult{Enabled: true, Label: gesture.LabelNone, Session: control.NewSession()},
	}, nil
}

// SetEnabled enables or disables gesture detection. Disabled frames are
// still rendered but never classified or dispatched.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		log.Printf("Gesture control enabled: %v", enabled)
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// AddObserver registers o to receive every frame result.
func (a *App) AddObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Latest returns the most recent frame result.
func (a *App) Latest() FrameResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// VolumeRange returns the volume range the dispatcher was built with.
func (a *App) VolumeRange() control.VolumeRange {
	return a.dispatcher.Range()
}

// ProcessFrame runs detection, classification and dispatch for one frame
// and returns the result together with the updated session.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat, s control.Session) (FrameResult, control.Session) {
	a.mu.Lock()
	a.seq++
	res := FrameResult{Seq: a.seq, Time: time.Now(), Enabled: a.enabled, Label: gesture.LabelNone}
	a.mu.Unlock()

	if !res.Enabled {
		res.Session = s
		return res, s
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		res.Error = err.Error()
		res.Session = s
		return res, s
	}
	if len(hands) == 0 {
		res.Session = s
		return res, s
	}

	// Only the first hand is tracked.
	points := hands[0].Pixels(frame.Cols(), frame.Rows())
	fingers, err := gesture.ExtractFingerStates(points)
	if err != nil {
		log.Printf("Skipping frame %d: %v", res.Seq, err)
		res.Error = err.Error()
		res.Session = s
		return res, s
	}

	res.Hand = true
	res.Points = points
	res.Fingers = fingers
	res.Label = gesture.Classify(fingers)

	next, effects, err := a.dispatcher.Dispatch(ctx, res.Label, s)
	if err != nil {
		log.Printf("Error dispatching %s: %v", res.Label, err)
		res.Error = err.Error()
	}
	res.Effects = effects
	res.Session = next

	return res, next
}

// Run opens the camera and processes frames until the renderer reports a
// quit request, ctx is canceled or the camera fails. Camera failures are
// returned wrapping ErrCapture; the other two end Run with nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrCapture, err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	log.Println("Gesture loop started")
	defer log.Println("Gesture loop stopped")

	session := control.NewSession()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCapture, err)
		}

		var res FrameResult
		res, session = a.ProcessFrame(ctx, frame, session)

		ov := render.Overlay{VolumeBar: session.VolumeBar}
		if res.Hand {
			ov.Label = res.Label
			ov.Hand = res.Points
		}
		if err := a.renderer.Render(frame, ov); err != nil {
			log.Printf("Error rendering frame: %v", err)
		}
		frame.Close()

		a.publish(res)

		if a.renderer.QuitRequested() {
			return nil
		}
	}
}

func (a *App) publish(res FrameResult) {
	a.mu.Lock()
	a.latest = res
	observers := append([]Observer(nil), a.observers...)
	a.mu.Unlock()

	for _, o := range observers {
		o.Observe(res)
	}
}
