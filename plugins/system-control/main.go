// Package main provides the system-control plugin.
// It reads and sets the output volume via AppleScript on macOS and amixer on Linux.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"regexp"
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
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type levelData struct {
	Level float64 `json:"level"`
}

type rangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Both backends report output volume as a percentage.
const (
	volumeMin = 0
	volumeMax = 100
)

var errUnsupportedOS = errors.New("volume control is not supported on " + runtime.GOOS)

// actionHandler handles one action and returns the data to send back.
type actionHandler func(params json.RawMessage) (any, error)

var actionHandlers = map[string]actionHandler{
	"volume-get":   volumeGet,
	"volume-set":   volumeSet,
	"volume-range": volumeRange,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	data, err := handler(req.Params)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse(data)
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse(data any) {
	resp := Response{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("failed to encode data: %v", err))
			return
		}
		resp.Data = raw
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func volumeRange(json.RawMessage) (any, error) {
	return rangeData{Min: volumeMin, Max: volumeMax}, nil
}

func volumeGet(json.RawMessage) (any, error) {
	var (
		out string
		err error
	)
	switch runtime.GOOS {
	case "darwin":
		out, err = run("osascript", "-e", "output volume of (get volume settings)")
	case "linux":
		out, err = run("amixer", "get", "Master")
		if err == nil {
			out, err = parseAmixerPercent(out)
		}
	default:
		return nil, errUnsupportedOS
	}
	if err != nil {
		return nil, err
	}

	level, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected volume output %q", out)
	}
	return levelData{Level: level}, nil
}

func volumeSet(params json.RawMessage) (any, error) {
	var p levelData
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	// Both backends take whole percents; the caller accumulates finer steps.
	level := math.Round(math.Max(volumeMin, math.Min(volumeMax, p.Level)))
	pct := strconv.Itoa(int(level))

	var err error
	switch runtime.GOOS {
	case "darwin":
		_, err = run("osascript", "-e", "set volume output volume "+pct)
	case "linux":
		_, err = run("amixer", "-q", "set", "Master", pct+"%")
	default:
		err = errUnsupportedOS
	}
	if err != nil {
		return nil, err
	}
	return levelData{Level: level}, nil
}

var amixerPercent = regexp.MustCompile(`\[(\d+)%\]`)

// parseAmixerPercent extracts the first channel percentage from amixer output.
func parseAmixerPercent(out string) (string, error) {
	m := amixerPercent.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("no volume percentage in amixer output")
	}
	return m[1], nil
}

func run(name string, args ...string) (string, error) {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
