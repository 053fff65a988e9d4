package control

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scale"
)

// ErrNoCollaborator is returned by NewDispatcher when volume or surface is nil.
var ErrNoCollaborator = errors.New("dispatcher needs a volume control and a surface")

// Options tunes the dispatcher. Zero fields take the package defaults.
type Options struct {
	VolumeStep  float64
	ScrollTicks int
	VictoryURL  string
	SwagURL     string
}

// Dispatcher performs the effect bound to each gesture label.
type Dispatcher struct {
	volume  VolumeControl
	surface Surface
	rng     VolumeRange
	opts    Options
}

// NewDispatcher binds the collaborators and the volume range fetched at startup.
func NewDispatcher(volume VolumeControl, surface Surface, rng VolumeRange, opts Options) (*Dispatcher, error) {
	if volume == nil || surface == nil {
		return nil, ErrNoCollaborator
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = DefaultVolumeStep
	}
	if opts.ScrollTicks <= 0 {
		opts.ScrollTicks = DefaultScrollTicks
	}
	if opts.VictoryURL == "" {
		opts.VictoryURL = DefaultVictoryURL
	}
	if opts.SwagURL == "" {
		opts.SwagURL = DefaultSwagURL
	}

	return &Dispatcher{
		volume:  volume,
		surface: surface,
		rng:     rng,
		opts:    opts,
	}, nil
}

// Range returns the volume range bound at construction.
func (d *Dispatcher) Range() VolumeRange {
	return d.rng
}

// Dispatch performs the effect for label and returns the updated session
// with the effects that were requested. It runs every frame the gesture is
// held: volume and scroll repeat, browser opens fire once per session.
//
// On error the input session is returned unchanged, so a failed one-shot
// open is retried on the next frame.
func (d *Dispatcher) Dispatch(ctx context.Context, label gesture.Label, s Session) (Session, []Effect, error) {
	switch label {
	case gesture.LabelIndex:
		return d.stepVolume(ctx, s, d.opts.VolumeStep)

	case gesture.LabelThumb:
		return d.stepVolume(ctx, s, -d.opts.VolumeStep)

	case gesture.LabelFive:
		return d.scroll(ctx, s, -d.opts.ScrollTicks)

	case gesture.LabelFist:
		return d.scroll(ctx, s, d.opts.ScrollTicks)

	case gesture.LabelVictory:
		if s.VictoryOpened {
			return s, nil, nil
		}
		effect, err := d.open(ctx, d.opts.VictoryURL)
		if err != nil {
			return s, nil, err
		}
		s.VictoryOpened = true
		return s, []Effect{effect}, nil

	case gesture.LabelSwag:
		if s.SwagOpened {
			return s, nil, nil
		}
		effect, err := d.open(ctx, d.opts.SwagURL)
		if err != nil {
			return s, nil, err
		}
		s.SwagOpened = true
		return s, []Effect{effect}, nil
	}

	// MIDDLE and NONE do nothing.
	return s, nil, nil
}

func (d *Dispatcher) stepVolume(ctx context.Context, s Session, delta float64) (Session, []Effect, error) {
	current, err := d.volume.Level(ctx)
	if err != nil {
		return s, nil, fmt.Errorf("read volume: %w", err)
	}

	// Continue from the requested level unless the volume changed elsewhere.
	level := current
	if s.VolumeTracked && current == s.VolumeApplied {
		level = s.VolumeLevel
	}

	level += delta
	if delta > 0 {
		level = min(level, d.rng.Max)
	} else {
		level = max(level, d.rng.Min)
	}

	applied, err := d.volume.SetLevel(ctx, level)
	if err != nil {
		return s, nil, fmt.Errorf("set volume: %w", err)
	}

	bar, err := scale.RemapChecked(applied, d.rng.Min, d.rng.Max, BarBottom, BarTop)
	if err != nil {
		log.Printf("Volume bar remap (range %v..%v): %v", d.rng.Min, d.rng.Max, err)
	}
	s.VolumeBar = bar
	s.VolumeLevel = level
	s.VolumeApplied = applied
	s.VolumeTracked = true

	return s, []Effect{{Kind: EffectVolume, Level: applied}}, nil
}

func (d *Dispatcher) scroll(ctx context.Context, s Session, ticks int) (Session, []Effect, error) {
	if err := d.surface.Scroll(ctx, ticks); err != nil {
		return s, nil, fmt.Errorf("scroll: %w", err)
	}
	return s, []Effect{{Kind: EffectScroll, Ticks: ticks}}, nil
}

func (d *Dispatcher) open(ctx context.Context, target string) (Effect, error) {
	if err := d.surface.OpenResource(ctx, target); err != nil {
		return Effect{}, fmt.Errorf("open %s: %w", target, err)
	}
	return Effect{Kind: EffectOpen, Target: target}, nil
}
