package effects

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
)

// installPlugin writes a manifest and a shell script into root/name.
func installPlugin(t *testing.T, root, name string, actions []string, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest, err := json.Marshal(plugin.Manifest{Name: name, Executable: "run.sh", Actions: actions})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestFile), manifest, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
}

func discover(t *testing.T, root string) *plugin.Manager {
	t.Helper()
	mgr := plugin.NewManager(root)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return mgr
}

// A stateful volume plugin: the level lives in a file next to the script and,
// like the real backends, only takes whole percents.
const volumeScript = `INPUT=$(cat)
STATE="$(dirname "$0")/level"
[ -f "$STATE" ] || echo 50 > "$STATE"
case "$INPUT" in
*'"volume-get"'*) echo "{\"success\":true,\"data\":{\"level\":$(cat "$STATE")}}" ;;
*'"volume-range"'*) echo '{"success":true,"data":{"min":0,"max":100}}' ;;
*'"volume-set"'*)
  LEVEL=$(echo "$INPUT" | sed 's/.*"level":\([-0-9.]*\).*/\1/' | awk '{printf "%d", $1 + 0.5}')
  echo "$LEVEL" > "$STATE"
  echo "{\"success\":true,\"data\":{\"level\":$LEVEL}}" ;;
*) echo '{"success":false,"error":"unknown action"}' ;;
esac
`

func TestVolume(t *testing.T) {
	root := t.TempDir()
	installPlugin(t, root, SystemControlPlugin, volumeActions, volumeScript)

	vol, err := NewVolume(discover(t, root), plugin.NewExecutor(5*time.Second))
	if err != nil {
		t.Fatalf("NewVolume() error = %v", err)
	}
	ctx := context.Background()

	rng, err := vol.Range(ctx)
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if rng != (control.VolumeRange{Min: 0, Max: 100}) {
		t.Errorf("Range() = %+v, want 0..100", rng)
	}

	level, err := vol.Level(ctx)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if level != 50 {
		t.Errorf("Level() = %v, want 50", level)
	}

	tests := []struct {
		request float64
		applied float64
	}{
		{50.4, 50},
		{50.8, 51},
		{62.5, 63},
	}
	for _, tt := range tests {
		applied, err := vol.SetLevel(ctx, tt.request)
		if err != nil {
			t.Fatalf("SetLevel(%v) error = %v", tt.request, err)
		}
		if applied != tt.applied {
			t.Errorf("SetLevel(%v) applied %v, want %v", tt.request, applied, tt.applied)
		}
		if level, _ := vol.Level(ctx); level != tt.applied {
			t.Errorf("Level() after SetLevel(%v) = %v, want %v", tt.request, level, tt.applied)
		}
	}
}

func TestNewVolume_Missing(t *testing.T) {
	root := t.TempDir()
	if _, err := NewVolume(discover(t, root), plugin.NewExecutor(0)); !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}

	installPlugin(t, root, SystemControlPlugin, []string{"volume-get"}, volumeScript)
	if _, err := NewVolume(discover(t, root), plugin.NewExecutor(0)); !errors.Is(err, plugin.ErrActionUnsupported) {
		t.Errorf("expected ErrActionUnsupported, got %v", err)
	}
}

// fakeRunner answers Call from a table and records each request.
type fakeRunner struct {
	data   map[string]string
	err    error
	calls  []string
	params []string
}

func (f *fakeRunner) Call(ctx context.Context, p *plugin.Plugin, action string, params, out any) error {
	f.calls = append(f.calls, action)
	raw, _ := json.Marshal(params)
	f.params = append(f.params, string(raw))
	if f.err != nil {
		return f.err
	}
	if out != nil {
		return json.Unmarshal([]byte(f.data[action]), out)
	}
	return nil
}

func TestVolume_InvertedRange(t *testing.T) {
	runner := &fakeRunner{data: map[string]string{"volume-range": `{"min":0,"max":-65.25}`}}
	vol := &Volume{runner: runner, plugin: &plugin.Plugin{Manifest: plugin.Manifest{Name: SystemControlPlugin}}}

	if _, err := vol.Range(context.Background()); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestVolume_RunnerError(t *testing.T) {
	runner := &fakeRunner{err: plugin.ErrPluginFailed}
	vol := &Volume{runner: runner, plugin: &plugin.Plugin{}}

	if _, err := vol.Level(context.Background()); !errors.Is(err, plugin.ErrPluginFailed) {
		t.Errorf("Level() error = %v, want ErrPluginFailed", err)
	}
}

func TestSurface_Params(t *testing.T) {
	runner := &fakeRunner{}
	s := &Surface{runner: runner, plugin: &plugin.Plugin{}}
	ctx := context.Background()

	if err := s.Scroll(ctx, -25); err != nil {
		t.Fatal(err)
	}
	if err := s.OpenResource(ctx, "https://www.netflix.com"); err != nil {
		t.Fatal(err)
	}

	wantCalls := []string{"scroll", "open-url"}
	wantParams := []string{`{"ticks":-25}`, `{"url":"https://www.netflix.com"}`}
	for i := range wantCalls {
		if runner.calls[i] != wantCalls[i] {
			t.Errorf("call %d = %q, want %q", i, runner.calls[i], wantCalls[i])
		}
		if runner.params[i] != wantParams[i] {
			t.Errorf("params %d = %s, want %s", i, runner.params[i], wantParams[i])
		}
	}
}

func TestSurface_Plugin(t *testing.T) {
	root := t.TempDir()
	installPlugin(t, root, SurfacePlugin, surfaceActions, `INPUT=$(cat)
echo "$INPUT" >> "$(dirname "$0")/requests"
echo '{"success":true}'
`)

	s, err := NewSurface(discover(t, root), plugin.NewExecutor(5*time.Second))
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if err := s.Scroll(context.Background(), 25); err != nil {
		t.Fatalf("Scroll() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, SurfacePlugin, "requests"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `"action":"scroll"`) || !strings.Contains(string(got), `"ticks":25`) {
		t.Errorf("plugin received %s", got)
	}
}

func TestDispatcherOverPlugins(t *testing.T) {
	root := t.TempDir()
	installPlugin(t, root, SystemControlPlugin, volumeActions, volumeScript)
	installPlugin(t, root, SurfacePlugin, surfaceActions, `cat > /dev/null
echo '{"success":true}'
`)

	mgr := discover(t, root)
	runner := plugin.NewExecutor(5 * time.Second)
	vol, err := NewVolume(mgr, runner)
	if err != nil {
		t.Fatal(err)
	}
	surf, err := NewSurface(mgr, runner)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	rng, err := vol.Range(ctx)
	if err != nil {
		t.Fatal(err)
	}

	d, err := control.NewDispatcher(vol, surf, rng, control.Options{VolumeStep: 10})
	if err != nil {
		t.Fatal(err)
	}

	s, effects, err := d.Dispatch(ctx, gesture.LabelIndex, control.NewSession())
	if err != nil {
		t.Fatalf("Dispatch(INDEX) error = %v", err)
	}
	if len(effects) != 1 || effects[0].Level != 60 {
		t.Errorf("effects = %+v, want one volume effect at 60", effects)
	}
	// 60 on 0..100 maps to 400 - 0.6*250.
	if s.VolumeBar != 250 {
		t.Errorf("VolumeBar = %v, want 250", s.VolumeBar)
	}
}

func TestDispatcherOverPlugins_DefaultStep(t *testing.T) {
	root := t.TempDir()
	installPlugin(t, root, SystemControlPlugin, volumeActions, volumeScript)
	installPlugin(t, root, SurfacePlugin, surfaceActions, `cat > /dev/null
echo '{"success":true}'
`)

	mgr := discover(t, root)
	runner := plugin.NewExecutor(5 * time.Second)
	vol, err := NewVolume(mgr, runner)
	if err != nil {
		t.Fatal(err)
	}
	surf, err := NewSurface(mgr, runner)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	rng, err := vol.Range(ctx)
	if err != nil {
		t.Fatal(err)
	}

	d, err := control.NewDispatcher(vol, surf, rng, control.Options{})
	if err != nil {
		t.Fatal(err)
	}

	// Ten 0.4 steps from 50 have to reach 54 on a whole-percent device.
	s := control.NewSession()
	for i := 0; i < 10; i++ {
		s, _, err = d.Dispatch(ctx, gesture.LabelIndex, s)
		if err != nil {
			t.Fatalf("Dispatch(INDEX) frame %d error = %v", i, err)
		}
	}

	level, err := vol.Level(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if level != 54 {
		t.Errorf("level after 10 INDEX frames = %v, want 54", level)
	}
	// 54 on 0..100 maps to 400 - 0.54*250.
	if s.VolumeBar != 265 {
		t.Errorf("VolumeBar = %v, want 265", s.VolumeBar)
	}

	for i := 0; i < 5; i++ {
		s, _, err = d.Dispatch(ctx, gesture.LabelThumb, s)
		if err != nil {
			t.Fatalf("Dispatch(THUMB) frame %d error = %v", i, err)
		}
	}
	if level, _ := vol.Level(ctx); level != 52 {
		t.Errorf("level after 5 THUMB frames = %v, want 52", level)
	}
}
