package ui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"cmdpalette/internal/palette"
)

// Built-in commands that items can bind with `command = "..."`
const (
	CommandHelp        = "palette.help"
	CommandQuit        = "palette.quit"
	CommandClearRecent = "palette.clear-recent"
)

// LookupCommand resolves built-in command names. The returned functions are
// placeholders; the model runs built-ins itself since they touch UI state.
func LookupCommand(name string) (func() error, bool) {
	switch name {
	case CommandHelp, CommandQuit, CommandClearRecent:
		return func() error { return nil }, true
	}
	return nil, false
}

// Opener opens a navigation target outside the terminal
type Opener interface {
	Open(target string, newTab bool) error
}

// SystemOpener hands URLs to the desktop's default handler. There are no tabs
// in a terminal, so newTab only affects logging.
type SystemOpener struct{}

func (SystemOpener) Open(target string, newTab bool) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Opened is one call recorded by a RecordingOpener
type Opened struct {
	Target string
	NewTab bool
}

// RecordingOpener remembers targets instead of opening them
type RecordingOpener struct {
	mu     sync.Mutex
	opened []Opened
}

func (r *RecordingOpener) Open(target string, newTab bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, Opened{Target: target, NewTab: newTab})
	return nil
}

// Opened returns a copy of the recorded calls
func (r *RecordingOpener) Opened() []Opened {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Opened, len(r.opened))
	copy(out, r.opened)
	return out
}

// ResolveURL resolves a navigation target against base. Absolute and
// protocol-relative targets are returned unchanged, as are all targets when
// base is empty.
func ResolveURL(base, target string) string {
	if base == "" || strings.HasPrefix(target, "//") {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil || ref.IsAbs() {
		return target
	}
	b, err := url.Parse(base)
	if err != nil {
		return target
	}
	return b.ResolveReference(ref).String()
}

// Forwarder posts controller events into a running program. Controllers are
// built before the program exists, so the program is attached afterwards.
type Forwarder struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Attach routes events to p
func (f *Forwarder) Attach(p *tea.Program) {
	f.SetSend(p.Send)
}

// SetSend routes events to fn
func (f *Forwarder) SetSend(fn func(tea.Msg)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.send = fn
}

// Dispatch is a palette.Dispatcher. Events arriving before Attach are dropped.
func (f *Forwarder) Dispatch(ev palette.Event) {
	f.Send(PaletteEventMsg{Event: ev})
}

// Send posts an arbitrary message
func (f *Forwarder) Send(msg tea.Msg) {
	f.mu.RLock()
	send := f.send
	f.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}
