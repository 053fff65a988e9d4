// Package main provides the CLI entrypoint for mudra.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/effects"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	runDevice        int
	runWidth         int
	runHeight        int
	runMinDetection  float64
	runMinTracking   float64
	runScript        string
	runPython        string
	runStep          float64
	runTicks         int
	runVictory       string
	runSwag          string
	runPluginDir     string
	runPluginTimeout time.Duration
	runAddr          string
	runWindow        bool
	runTray          bool

	pluginsDir string
)

// The preview window and the tray both need the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, app.ErrCapture) {
			logErrln("Failed to access the camera.")
		}
		logErrf("Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	d := config.Defaults()

	rootCmd := &cobra.Command{
		Use:           "mudra",
		Short:         "Control volume, scrolling and the browser with hand gestures",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runControlCmd,
	}

	rootCmd.Flags().IntVar(&runDevice, "device", d.Camera.Device, "camera device index")
	rootCmd.Flags().IntVar(&runWidth, "width", d.Camera.Width, "requested frame width")
	rootCmd.Flags().IntVar(&runHeight, "height", d.Camera.Height, "requested frame height")
	rootCmd.Flags().Float64Var(&runMinDetection, "min-detection", d.Detector.MinConfidence, "minimum detection confidence (0-1)")
	rootCmd.Flags().Float64Var(&runMinTracking, "min-tracking", d.Detector.MinTrackingConf, "minimum tracking confidence (0-1)")
	rootCmd.Flags().StringVar(&runScript, "script", "", "path to mediapipe_service.py")
	rootCmd.Flags().StringVar(&runPython, "python", "", "python interpreter for the detector service")
	rootCmd.Flags().Float64Var(&runStep, "step", d.Control.VolumeStep, "volume change per frame for INDEX/THUMB")
	rootCmd.Flags().IntVar(&runTicks, "ticks", d.Control.ScrollTicks, "scroll amount per frame for FIVE/FIST")
	rootCmd.Flags().StringVar(&runVictory, "victory", d.Control.VictoryURL, "URL opened once on VICTORY")
	rootCmd.Flags().StringVar(&runSwag, "swag", d.Control.SwagURL, "URL opened once on SWAG")
	rootCmd.Flags().StringVar(&runPluginDir, "plugin-dir", d.PluginDir, "directory searched for plugins")
	rootCmd.Flags().DurationVar(&runPluginTimeout, "plugin-timeout", d.PluginTimeout, "timeout for one plugin call")
	rootCmd.Flags().StringVar(&runAddr, "addr", "", "status server address (empty disables it)")
	rootCmd.Flags().BoolVar(&runWindow, "window", d.Window, "show the preview window")
	rootCmd.Flags().BoolVar(&runTray, "tray", d.Tray, "show the tray icon and run without window")

	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGesturesCmd())
	rootCmd.AddCommand(newPluginsCmd())

	return rootCmd
}

// loadSettings resolves defaults, then the config file, then changed flags.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	s := config.Defaults()
	s.Merge(fileCfg)
	applyFlags(cmd, &s)
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func applyFlags(cmd *cobra.Command, s *config.Settings) {
	applyIntFlag(cmd, "device", &s.Camera.Device, runDevice)
	applyIntFlag(cmd, "width", &s.Camera.Width, runWidth)
	applyIntFlag(cmd, "height", &s.Camera.Height, runHeight)
	applyFloatFlag(cmd, "min-detection", &s.Detector.MinConfidence, runMinDetection)
	applyFloatFlag(cmd, "min-tracking", &s.Detector.MinTrackingConf, runMinTracking)
	applyStringFlag(cmd, "script", &s.Detector.Script, runScript)
	applyStringFlag(cmd, "python", &s.Detector.Python, runPython)
	applyFloatFlag(cmd, "step", &s.Control.VolumeStep, runStep)
	applyIntFlag(cmd, "ticks", &s.Control.ScrollTicks, runTicks)
	applyStringFlag(cmd, "victory", &s.Control.VictoryURL, runVictory)
	applyStringFlag(cmd, "swag", &s.Control.SwagURL, runSwag)
	applyStringFlag(cmd, "plugin-dir", &s.PluginDir, runPluginDir)
	if cmd.Flags().Changed("plugin-timeout") {
		s.PluginTimeout = runPluginTimeout
	}
	applyStringFlag(cmd, "addr", &s.ServerAddr, runAddr)
	applyBoolFlag(cmd, "window", &s.Window, runWindow)
	applyBoolFlag(cmd, "tray", &s.Tray, runTray)
}

func runControlCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := plugin.NewManager(s.PluginDir)
	if err := mgr.Discover(); err != nil {
		return fmt.Errorf("failed to discover plugins: %w", err)
	}
	executor := plugin.NewExecutor(s.PluginTimeout)

	volume, err := effects.NewVolume(mgr, executor)
	if err != nil {
		return err
	}
	surface, err := effects.NewSurface(mgr, executor)
	if err != nil {
		return err
	}

	rng, err := volume.Range(ctx)
	if err != nil {
		return fmt.Errorf("failed to read volume range: %w", err)
	}
	dispatcher, err := control.NewDispatcher(volume, surface, rng, s.Control)
	if err != nil {
		return err
	}

	det, err := detector.NewMediaPipeDetector(s.Detector)
	if err != nil {
		return fmt.Errorf("failed to start detector: %w", err)
	}
	defer func() {
		if cerr := det.Close(); cerr != nil {
			log.Printf("Error closing detector: %v", cerr)
		}
	}()

	var renderer render.Renderer
	var snapshot *render.Snapshot
	if s.Window && !s.Tray {
		renderer = render.NewWindow(render.WindowTitle)
	} else {
		snapshot = render.NewSnapshot()
		renderer = snapshot
	}
	defer renderer.Close()

	loop, err := app.New(app.Config{
		Camera:     capture.NewCamera(s.Camera),
		Detector:   det,
		Dispatcher: dispatcher,
		Renderer:   renderer,
	})
	if err != nil {
		return err
	}

	st, err := store.New(store.DefaultCapacity)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer st.Close()

	loop.AddObserver(app.NewJournal(st.Events()))
	loop.AddObserver(app.LabelChanges(func(label string) {
		log.Printf("Gesture: %s", label)
	}))

	if s.ServerAddr != "" {
		hub := server.NewHub()
		loop.AddObserver(hub)
		cfg := server.Config{
			Controller: loop,
			Events:     st.Events(),
			Hub:        hub,
		}
		if snapshot != nil {
			cfg.Frames = snapshot
		}
		srv := server.New(cfg)
		go func() {
			if err := srv.Serve(ctx, s.ServerAddr); err != nil {
				log.Printf("Status server failed: %v", err)
			}
		}()
	}

	log.Printf("Volume range %.2f..%.2f, %d plugins loaded from %s (timeout %s)", rng.Min, rng.Max, len(mgr.List()), mgr.PluginDir(), executor.Timeout())

	if !s.Tray {
		return loop.Run(ctx)
	}
	return runWithTray(ctx, loop, surface, s.ServerAddr)
}

// runWithTray runs the frame loop in the background while the tray owns
// the main goroutine. Either side ending stops the other.
func runWithTray(ctx context.Context, loop *app.App, surface *effects.Surface, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := tray.New()
	t.OnToggle(loop.SetEnabled)
	t.OnQuit(cancel)
	if addr != "" {
		u := statusURL(addr)
		t.OnStatus(func() {
			if err := surface.OpenResource(ctx, u); err != nil {
				log.Printf("Error opening status page: %v", err)
			}
		})
	}
	loop.AddObserver(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(ctx)
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-errCh
}

// statusURL turns a listen address into the URL of the status endpoint.
func statusURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/api/status"
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify 21 pixel landmarks read as JSON [[x,y],...]",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClassifyCmd,
	}
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open landmarks: %w", err)
		}
		defer f.Close()
		r = f
	}

	points, err := parsePoints(r)
	if err != nil {
		return err
	}
	fingers, err := gesture.ExtractFingerStates(points)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fingers: %s\n", fingers)
	fmt.Fprintf(out, "label:   %s\n", gesture.Classify(fingers))
	return nil
}

// parsePoints decodes a JSON array of [x, y] pairs.
func parsePoints(r io.Reader) ([]image.Point, error) {
	var raw [][]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode landmarks: %w", err)
	}
	points := make([]image.Point, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return nil, fmt.Errorf("landmark %d: want [x, y], got %d values", i, len(p))
		}
		points[i] = image.Pt(p[0], p[1])
	}
	return points, nil
}

func newGesturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gestures",
		Short: "List recognized gestures, their finger patterns and effects",
		Args:  cobra.NoArgs,
		RunE:  runGesturesCmd,
	}
}

func runGesturesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s := config.Defaults()
	s.Merge(fileCfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GESTURE\tFINGERS\tEFFECT")
	for _, label := range gesture.Labels {
		fingers, ok := gesture.Pattern(label)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", label, fingers, gestureEffect(label, s.Control))
	}
	return w.Flush()
}

// gestureEffect describes what the dispatcher does for label.
func gestureEffect(label gesture.Label, opts control.Options) string {
	switch label {
	case gesture.LabelIndex:
		return fmt.Sprintf("volume +%g per frame", opts.VolumeStep)
	case gesture.LabelThumb:
		return fmt.Sprintf("volume -%g per frame", opts.VolumeStep)
	case gesture.LabelFive:
		return fmt.Sprintf("scroll down %d", opts.ScrollTicks)
	case gesture.LabelFist:
		return fmt.Sprintf("scroll up %d", opts.ScrollTicks)
	case gesture.LabelVictory:
		return "open " + opts.VictoryURL + " once"
	case gesture.LabelSwag:
		return "open " + opts.SwagURL + " once"
	}
	return "none"
}

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List discovered plugins",
		Args:  cobra.NoArgs,
		RunE:  runPluginsCmd,
	}
	cmd.Flags().StringVar(&pluginsDir, "plugin-dir", "", "directory searched for plugins")
	return cmd
}

func runPluginsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s := config.Defaults()
	s.Merge(fileCfg)
	applyStringFlag(cmd, "plugin-dir", &s.PluginDir, pluginsDir)

	mgr := plugin.NewManager(s.PluginDir)
	if err := mgr.Discover(); err != nil {
		return fmt.Errorf("failed to discover plugins: %w", err)
	}
	plugins := mgr.List()
	if len(plugins) == 0 {
		logErrf("No plugins found in %s\n", s.PluginDir)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tACTIONS\tPATH")
	for _, p := range plugins {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Manifest.Name, p.Manifest.Version, strings.Join(p.Manifest.Actions, ","), p.Path)
	}
	return w.Flush()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates path from the template unless it exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyFloatFlag(cmd *cobra.Command, name string, target *float64, value float64) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

func logErrln(args ...any) {
	_, _ = fmt.Fprintln(os.Stderr, args...)
}
