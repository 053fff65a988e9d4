// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings. The size is a request; drivers pick the closest
// mode they support.
const (
	DefaultDevice = 0
	DefaultWidth  = 1980
	DefaultHeight = 1080
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrReadFailed is returned when the device yields no frame.
	ErrReadFailed = errors.New("failed to read frame from camera")
)

// Config selects the capture device and requested frame size.
// Zero Width/Height keep the driver default; zero FPS is not requested.
type Config struct {
	Device int
	Width  int
	Height int
	FPS    int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Device: DefaultDevice,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	cfg     Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for cfg. The device is not touched until Open.
func NewCamera(cfg Config) Camera {
	return &cameraImpl{cfg: cfg}
}

// Open opens the camera and requests the configured frame size.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.cfg.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open camera %d: %w", c.cfg.Device, ErrCameraNotOpen)
	}

	if c.cfg.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	}
	if c.cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	}
	if c.cfg.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(c.cfg.FPS))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single BGR frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrReadFailed
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
