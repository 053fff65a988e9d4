package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestPlugin_SystemControl_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("system-control plugin only works on macOS and Linux")
	}

	plug := builtPlugin(t, "system-control")
	executor := NewExecutor(5 * time.Second)

	// volume-range has no side effects.
	var r struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	if err := executor.Call(context.Background(), plug, "volume-range", nil, &r); err != nil {
		t.Fatalf("Call(volume-range) error = %v", err)
	}
	if r.Min >= r.Max {
		t.Errorf("volume range %+v is empty", r)
	}

	err := executor.Call(context.Background(), plug, "volume-mute", nil, nil)
	if !errors.Is(err, ErrPluginFailed) {
		t.Errorf("expected ErrPluginFailed for unknown action, got %v", err)
	}
}

func TestPlugin_Surface_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	plug := builtPlugin(t, "surface")
	executor := NewExecutor(5 * time.Second)

	// A rejected URL never reaches the browser.
	err := executor.Call(context.Background(), plug, "open-url", map[string]string{"url": "file:///etc/passwd"}, nil)
	if !errors.Is(err, ErrPluginFailed) {
		t.Errorf("expected ErrPluginFailed for file url, got %v", err)
	}
}

// builtPlugin returns the named plugin from the repo's plugins directory,
// skipping when its executable has not been built next to the manifest.
func builtPlugin(t *testing.T, name string) *Plugin {
	t.Helper()

	for _, dir := range []string{"../../plugins", "../../../plugins"} {
		if _, err := os.Stat(filepath.Join(dir, name, ManifestFile)); err != nil {
			continue
		}
		mgr := NewManager(dir)
		if err := mgr.Discover(); err != nil {
			t.Fatalf("Discover() error = %v", err)
		}
		plug, err := mgr.Get(name)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if _, err := os.Stat(plug.Executable); err != nil {
			t.Skipf("%s plugin not built", name)
		}
		return plug
	}
	t.Skipf("%s plugin not found", name)
	return nil
}
