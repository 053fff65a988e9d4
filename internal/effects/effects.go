// Package effects implements the control collaborators on top of plugin
// executables: system-control for the output volume, surface for scrolling
// and opening URLs.
package effects

import (
	"context"
	"fmt"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/plugin"
)

// Plugin names and the actions each must declare.
const (
	SystemControlPlugin = "system-control"
	SurfacePlugin       = "surface"
)

var (
	volumeActions  = []string{"volume-get", "volume-set", "volume-range"}
	surfaceActions = []string{"scroll", "open-url"}
)

// Runner executes plugin actions. *plugin.Executor satisfies it.
type Runner interface {
	Call(ctx context.Context, p *plugin.Plugin, action string, params, out any) error
}

// Volume is a control.VolumeControl backed by the system-control plugin.
type Volume struct {
	runner Runner
	plugin *plugin.Plugin
}

// NewVolume looks up the system-control plugin in mgr.
func NewVolume(mgr *plugin.Manager, runner Runner) (*Volume, error) {
	p, err := mgr.Require(SystemControlPlugin, volumeActions...)
	if err != nil {
		return nil, err
	}
	return &Volume{runner: runner, plugin: p}, nil
}

type levelParams struct {
	Level float64 `json:"level"`
}

// Level returns the current output level.
func (v *Volume) Level(ctx context.Context) (float64, error) {
	var out levelParams
	if err := v.runner.Call(ctx, v.plugin, "volume-get", nil, &out); err != nil {
		return 0, err
	}
	return out.Level, nil
}

// SetLevel sets the output level and returns the level the plugin applied.
func (v *Volume) SetLevel(ctx context.Context, level float64) (float64, error) {
	var out levelParams
	if err := v.runner.Call(ctx, v.plugin, "volume-set", levelParams{Level: level}, &out); err != nil {
		return 0, err
	}
	return out.Level, nil
}

// Range returns the bounds the plugin accepts.
func (v *Volume) Range(ctx context.Context) (control.VolumeRange, error) {
	var out control.VolumeRange
	if err := v.runner.Call(ctx, v.plugin, "volume-range", nil, &out); err != nil {
		return control.VolumeRange{}, err
	}
	if out.Min > out.Max {
		return control.VolumeRange{}, fmt.Errorf("plugin %s reported inverted range %v..%v", v.plugin.Manifest.Name, out.Min, out.Max)
	}
	return out, nil
}

// Surface is a control.Surface backed by the surface plugin.
type Surface struct {
	runner Runner
	plugin *plugin.Plugin
}

// NewSurface looks up the surface plugin in mgr.
func NewSurface(mgr *plugin.Manager, runner Runner) (*Surface, error) {
	p, err := mgr.Require(SurfacePlugin, surfaceActions...)
	if err != nil {
		return nil, err
	}
	return &Surface{runner: runner, plugin: p}, nil
}

// Scroll scrolls by ticks, positive is up.
func (s *Surface) Scroll(ctx context.Context, ticks int) error {
	return s.runner.Call(ctx, s.plugin, "scroll", struct {
		Ticks int `json:"ticks"`
	}{ticks}, nil)
}

// OpenResource opens identifier in the default browser.
func (s *Surface) OpenResource(ctx context.Context, identifier string) error {
	return s.runner.Call(ctx, s.plugin, "open-url", struct {
		URL string `json:"url"`
	}{identifier}, nil)
}

var (
	_ control.VolumeControl = (*Volume)(nil)
	_ control.Surface       = (*Surface)(nil)
	_ Runner                = (*plugin.Executor)(nil)
)
