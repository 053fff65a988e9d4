// Package control turns gesture labels into volume, scroll and browser effects.
package control

import (
	"context"
)

// Volume bar geometry in frame pixels. The bar is drawn top-down, so the
// loudest level maps to the smallest y.
const (
	BarBottom = 400
	BarTop    = 150
)

// Defaults applied by NewDispatcher when Options leaves a field zero.
const (
	DefaultVolumeStep  = 0.4
	DefaultScrollTicks = 25
	DefaultVictoryURL  = "https://www.netflix.com"
	DefaultSwagURL     = "https://www.youtube.com"
)

// VolumeRange holds the device-reported volume bounds.
type VolumeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// VolumeControl reads and writes the system output level. Units are
// device-defined; only comparisons and additive steps are applied to them.
type VolumeControl interface {
	Level(ctx context.Context) (float64, error)
	// SetLevel requests level and returns the level the device applied,
	// which may be coarser than the request.
	SetLevel(ctx context.Context, level float64) (float64, error)
	Range(ctx context.Context) (VolumeRange, error)
}

// Surface drives the desktop: scrolling and opening resources.
type Surface interface {
	// Scroll scrolls by ticks; positive scrolls up, negative scrolls down.
	Scroll(ctx context.Context, ticks int) error
	// OpenResource opens identifier (usually a URL) without waiting for it.
	OpenResource(ctx context.Context, identifier string) error
}

// Session is the state carried from one frame to the next. It is owned by
// the frame loop and passed by value through Dispatch.
type Session struct {
	VictoryOpened bool    `json:"victory_opened"`
	SwagOpened    bool    `json:"swag_opened"`
	VolumeBar     float64 `json:"volume_bar"`

	// VolumeLevel is the last requested level and VolumeApplied what the
	// device applied for it. While the device still reports VolumeApplied,
	// steps accumulate on VolumeLevel so steps finer than the device
	// resolution still add up.
	VolumeLevel   float64 `json:"volume_level"`
	VolumeApplied float64 `json:"volume_applied"`
	VolumeTracked bool    `json:"volume_tracked"`
}

// NewSession returns the state of a fresh session with an empty volume bar.
func NewSession() Session {
	return Session{VolumeBar: BarBottom}
}

// EffectKind identifies the kind of external request made by Dispatch.
type EffectKind string

const (
	EffectVolume EffectKind = "volume"
	EffectScroll EffectKind = "scroll"
	EffectOpen   EffectKind = "open"
)

// Effect records one request made to a collaborator.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Level  float64    `json:"level,omitempty"`
	Ticks  int        `json:"ticks,omitempty"`
	Target string     `json:"target,omitempty"`
}
