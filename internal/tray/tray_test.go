package tray

import (
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("new tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected enabled after two toggles")
	}
}

func TestTray_Observe(t *testing.T) {
	tr := New()

	tr.Observe(app.FrameResult{Enabled: true, Hand: true, Label: gesture.LabelFive})
	if tr.LastGesture() != "FIVE" {
		t.Errorf("LastGesture() = %q, want FIVE", tr.LastGesture())
	}

	// Frames without a hand keep the last gesture.
	tr.Observe(app.FrameResult{Enabled: true, Label: gesture.LabelNone})
	if tr.LastGesture() != "FIVE" {
		t.Errorf("LastGesture() = %q after empty frame", tr.LastGesture())
	}

	tr.Observe(app.FrameResult{Enabled: false})
	if tr.IsEnabled() {
		t.Error("Observe should sync the disabled state")
	}
}

func TestTray_StatusCallback(t *testing.T) {
	tr := New()
	tr.handleStatus() // no callback set

	called := false
	tr.OnStatus(func() { called = true })
	tr.handleStatus()
	if !called {
		t.Error("status callback not called")
	}
}

func TestTitles(t *testing.T) {
	if toggleTitle(true) != "● Enabled" || toggleTitle(false) != "○ Disabled" {
		t.Error("unexpected toggle titles")
	}
	if lastTitle("") != "Last: none" || lastTitle("SWAG") != "Last: SWAG" {
		t.Error("unexpected last gesture titles")
	}
}
