// Package main provides the surface plugin.
// It scrolls the focused window and opens URLs in the default browser.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ScrollParams carries a signed tick count, positive scrolls up.
type ScrollParams struct {
	Ticks int `json:"ticks"`
}

// OpenParams carries the resource to open.
type OpenParams struct {
	URL string `json:"url"`
}

// ticksPerKey is how many wheel ticks one arrow key press stands in for on macOS.
const ticksPerKey = 5

var errUnsupportedOS = errors.New("not supported on " + runtime.GOOS)

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	var err error
	switch req.Action {
	case "scroll":
		err = handleScroll(req.Params)
	case "open-url":
		err = handleOpen(req.Params)
	default:
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		err = fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	writeResponse(err)
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handleScroll(params json.RawMessage) error {
	var p ScrollParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	if p.Ticks == 0 {
		return nil
	}

	name, args, err := scrollCommand(runtime.GOOS, p.Ticks)
	if err != nil {
		return err
	}
	return run(name, args...)
}

// scrollCommand builds the command that scrolls by ticks on goos.
func scrollCommand(goos string, ticks int) (string, []string, error) {
	n := ticks
	if n < 0 {
		n = -n
	}

	switch goos {
	case "linux":
		// X11 buttons 4 and 5 are wheel up and wheel down.
		button := "4"
		if ticks < 0 {
			button = "5"
		}
		return "xdotool", []string{"click", "--repeat", strconv.Itoa(n), button}, nil
	case "darwin":
		keyCode := 126
		if ticks < 0 {
			keyCode = 125
		}
		presses := (n + ticksPerKey - 1) / ticksPerKey
		script := fmt.Sprintf(`tell application "System Events"
	repeat %d times
		key code %d
	end repeat
end tell`, presses, keyCode)
		return "osascript", []string{"-e", script}, nil
	default:
		return "", nil, errUnsupportedOS
	}
}

func handleOpen(params json.RawMessage) error {
	var p OpenParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	if err := validateURL(p.URL); err != nil {
		return err
	}

	name, args, err := openCommand(runtime.GOOS, p.URL)
	if err != nil {
		return err
	}
	// The browser outlives this process.
	return exec.Command(name, args...).Start()
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func openCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, errUnsupportedOS
	}
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
