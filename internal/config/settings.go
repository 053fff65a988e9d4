package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/plugin"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Settings is the resolved configuration the program runs with.
type Settings struct {
	Camera        capture.Config
	Detector      detector.Config
	Control       control.Options
	PluginDir     string
	PluginTimeout time.Duration
	ServerAddr    string
	Window        bool
	Tray          bool
}

// Defaults returns the settings used when neither file nor flags set a value.
func Defaults() Settings {
	return Settings{
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Control: control.Options{
			VolumeStep:  control.DefaultVolumeStep,
			ScrollTicks: control.DefaultScrollTicks,
			VictoryURL:  control.DefaultVictoryURL,
			SwagURL:     control.DefaultSwagURL,
		},
		PluginDir:     DefaultPluginDir(),
		PluginTimeout: plugin.DefaultTimeout,
		Window:        true,
	}
}

// Merge copies every value set in fc over s.
func (s *Settings) Merge(fc FileConfig) {
	setInt(&s.Camera.Device, fc.Camera.Device)
	setInt(&s.Camera.Width, fc.Camera.Width)
	setInt(&s.Camera.Height, fc.Camera.Height)

	setFloat(&s.Detector.MinConfidence, fc.Detector.MinDetection)
	setFloat(&s.Detector.MinTrackingConf, fc.Detector.MinTracking)
	setString(&s.Detector.Script, fc.Detector.Script)
	setString(&s.Detector.Python, fc.Detector.Python)

	setFloat(&s.Control.VolumeStep, fc.Control.VolumeStep)
	setInt(&s.Control.ScrollTicks, fc.Control.ScrollTicks)
	setString(&s.Control.VictoryURL, fc.Resources.Victory)
	setString(&s.Control.SwagURL, fc.Resources.Swag)

	setString(&s.PluginDir, fc.Plugins.Dir)
	if fc.Plugins.TimeoutMs != nil {
		s.PluginTimeout = time.Duration(*fc.Plugins.TimeoutMs) * time.Millisecond
	}
	setString(&s.ServerAddr, fc.Server.Addr)
	setBool(&s.Window, fc.UI.Window)
	setBool(&s.Tray, fc.UI.Tray)
}

// Validate reports the first setting the program cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Camera.Device < 0:
		return fmt.Errorf("%w: camera device %d", ErrInvalid, s.Camera.Device)
	case s.Camera.Width < 0 || s.Camera.Height < 0:
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, s.Camera.Width, s.Camera.Height)
	case !unit(s.Detector.MinConfidence) || !unit(s.Detector.MinTrackingConf):
		return fmt.Errorf("%w: detector confidences must be within 0-1", ErrInvalid)
	case s.Control.VolumeStep <= 0:
		return fmt.Errorf("%w: volume step must be positive", ErrInvalid)
	case s.Control.ScrollTicks <= 0:
		return fmt.Errorf("%w: scroll ticks must be positive", ErrInvalid)
	case s.PluginTimeout <= 0:
		return fmt.Errorf("%w: plugin timeout must be positive", ErrInvalid)
	case s.PluginDir == "":
		return fmt.Errorf("%w: plugin dir is empty", ErrInvalid)
	}
	for _, raw := range []string{s.Control.VictoryURL, s.Control.SwagURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: resource %q is not an absolute URL", ErrInvalid, raw)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}

// Template returns a commented config file listing every key and its default.
func Template() string {
	d := Defaults()
	return fmt.Sprintf(`# mudra configuration
# Uncomment a value to enable it. CLI flags override config values.

[camera]
# device = %d
# width = %d               # Requested frame width
# height = %d              # Requested frame height

[detector]
# min-detection = %.2f      # Minimum detection confidence (0-1)
# min-tracking = %.2f       # Minimum tracking confidence (0-1)
# script = ""               # Path to mediapipe_service.py
# python = ""               # Python interpreter running the script

[control]
# volume-step = %.1f        # Volume change per frame for INDEX/THUMB
# scroll-ticks = %d         # Scroll amount per frame for FIVE/FIST

[resources]
# victory = %q
# swag = %q

[plugins]
# dir = %q
# timeout-ms = %d

[server]
# addr = "127.0.0.1:8765"   # Status server; empty disables it

[ui]
# window = true             # Show the preview window
# tray = false              # Show the menu bar icon (runs without window)
`,
		d.Camera.Device,
		d.Camera.Width,
		d.Camera.Height,
		d.Detector.MinConfidence,
		d.Detector.MinTrackingConf,
		d.Control.VolumeStep,
		d.Control.ScrollTicks,
		d.Control.VictoryURL,
		d.Control.SwagURL,
		d.PluginDir,
		d.PluginTimeout.Milliseconds(),
	)
}
