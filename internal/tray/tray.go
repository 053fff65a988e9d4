// Package tray provides a system tray interface for toggling gesture control.
package tray

import (
	"sync"

	"github.com/ayusman/mudra/internal/app"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onStatus func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnStatus sets the callback for the status menu item. Without one the
// item is not shown.
func (t *Tray) OnStatus(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatus = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture control")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastTitle(t.last), "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	var statusCh <-chan struct{}
	if t.onStatus != nil {
		menuStatus := systray.AddMenuItem("Open Status...", "Open the status page in the browser")
		systray.AddSeparator()
		statusCh = menuStatus.ClickedCh
	}
	toggleCh := t.menuToggle.ClickedCh
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-toggleCh:
				t.handleToggle()
			case <-statusCh:
				t.handleStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleStatus handles the status menu item click.
func (t *Tray) handleStatus() {
	t.mu.RLock()
	callback := t.onStatus
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Observe keeps the menu in step with the frame loop: the last gesture
// seen with a hand, and the enabled state when it was changed elsewhere.
func (t *Tray) Observe(res app.FrameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if res.Enabled != t.enabled {
		t.enabled = res.Enabled
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(t.enabled))
		}
	}

	if res.Hand && string(res.Label) != t.last {
		t.last = string(res.Label)
		if t.menuLastGesture != nil {
			t.menuLastGesture.SetTitle(lastTitle(t.last))
		}
	}
}

// LastGesture returns the last gesture label shown in the menu.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

var _ app.Observer = (*Tray)(nil)
