package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
)

func landmarksJSON(t *testing.T, hand detector.HandLandmarks) []byte {
	t.Helper()
	var raw [][]int
	for _, p := range hand.Pixels(640, 480) {
		raw = append(raw, []int{p.X, p.Y})
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("failed to marshal landmarks: %v", err)
	}
	return data
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints(strings.NewReader(`[[1,2],[3,4]]`))
	if err != nil {
		t.Fatalf("parsePoints() error = %v", err)
	}
	if len(points) != 2 || points[1].X != 3 || points[1].Y != 4 {
		t.Errorf("parsePoints() = %v", points)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not json", `nope`},
		{"wrong arity", `[[1,2,3]]`},
		{"object", `{"x":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePoints(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestClassifyCmd(t *testing.T) {
	tests := []struct {
		name    string
		hand    detector.HandLandmarks
		fingers string
		label   string
	}{
		{"index", detector.IndexUpLandmarks(), "01000", "INDEX"},
		{"victory", detector.VictoryLandmarks(), "01100", "VICTORY"},
		{"swag", detector.SwagLandmarks(), "01001", "SWAG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetIn(bytes.NewReader(landmarksJSON(t, tt.hand)))
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"classify"})

			if err := cmd.Execute(); err != nil {
				t.Fatalf("classify error = %v", err)
			}
			got := out.String()
			if !strings.Contains(got, "fingers: "+tt.fingers) {
				t.Errorf("output %q missing fingers %s", got, tt.fingers)
			}
			if !strings.Contains(got, "label:   "+tt.label) {
				t.Errorf("output %q missing label %s", got, tt.label)
			}
		})
	}
}

func TestClassifyCmd_WrongCount(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(`[[1,2],[3,4]]`))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"classify"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for 2 landmarks")
	}
}

func TestStatusURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8765", "http://localhost:8765/api/status"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000/api/status"},
	}
	for _, tt := range tests {
		if got := statusURL(tt.addr); got != tt.want {
			t.Errorf("statusURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[control]\nvolume-step = 1.5\nscroll-ticks = 10\n\n[server]\naddr = \":9999\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--ticks", "40", "--tray"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	s, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	if s.Control.VolumeStep != 1.5 {
		t.Errorf("VolumeStep = %v, want 1.5 from file", s.Control.VolumeStep)
	}
	if s.Control.ScrollTicks != 40 {
		t.Errorf("ScrollTicks = %d, want 40 from flag", s.Control.ScrollTicks)
	}
	if s.ServerAddr != ":9999" {
		t.Errorf("ServerAddr = %q, want :9999", s.ServerAddr)
	}
	if !s.Tray {
		t.Error("Tray should be set by flag")
	}
	if s.Camera.Width != config.Defaults().Camera.Width {
		t.Errorf("Width = %d, want default", s.Camera.Width)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--step", "-1"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if _, err := loadSettings(cmd); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("loadSettings() error = %v, want ErrInvalid", err)
	}
}

func TestWriteConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mudra", "config.toml")

	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("writeConfigTemplate() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "[control]") {
		t.Error("template missing [control] section")
	}

	// An existing file is left alone.
	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("writeConfigTemplate() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Errorf("existing config overwritten: %q", data)
	}
}

func TestPluginsCmd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	pdir := filepath.Join(dir, "surface")
	if err := os.MkdirAll(pdir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"surface","version":"1.0.0","executable":"surface","actions":["scroll","open-url"]}`
	if err := os.WriteFile(filepath.Join(pdir, "plugin.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plugins", "--plugin-dir", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("plugins error = %v", err)
	}
	if !strings.Contains(out.String(), "scroll,open-url") {
		t.Errorf("output %q missing actions", out.String())
	}
}

func TestGesturesCmd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gestures"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("gestures error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"INDEX    01000",
		"volume +0.4 per frame",
		"scroll down 25",
		"open https://www.youtube.com once",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "NONE") {
		t.Error("NONE has no pattern and should not be listed")
	}
}
