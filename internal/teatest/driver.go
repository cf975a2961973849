// Package teatest drives a bubbletea model synchronously in tests.
//
// Update is called directly and every returned Cmd is run to completion
// before the next input, so assertions never race with the model. Cmds that
// do not return within the driver's timeout (cursor blinks, spinner ticks)
// are dropped. Messages a real program would receive through Program.Send
// are queued with Post and delivered with Deliver.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds Cmd chains so a self-renewing Cmd cannot hang a test.
const MaxDrainDepth = 100

// DefaultCmdTimeout separates message factories from timer-driven Cmds.
const DefaultCmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been observed.
	Quitting bool

	cmdTimeout time.Duration
	inbox      chan tea.Msg
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize sends an initial WindowSizeMsg.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout lets Cmds that perform real I/O, such as HTTP calls against
// a test server, finish before being dropped.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// New creates a Driver. Call DrainInit to run the model's Init.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{
		T:          t,
		Model:      model,
		cmdTimeout: DefaultCmdTimeout,
		inbox:      make(chan tea.Msg, 256),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs Init and everything it produces.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send feeds msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

// Post queues msg from any goroutine, standing in for Program.Send. It never
// blocks; the message is dropped with a test log if the queue is full.
func (d *Driver) Post(msg tea.Msg) {
	select {
	case d.inbox <- msg:
	default:
		d.T.Logf("teatest.Driver: inbox full, dropping %T", msg)
	}
}

// Deliver sends every queued message in arrival order, including any posted
// while delivering, and returns how many were sent.
func (d *Driver) Deliver() int {
	d.T.Helper()
	n := 0
	for {
		select {
		case msg := <-d.inbox:
			d.Send(msg)
			n++
		default:
			return n
		}
	}
}

// PressKey sends a rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressEnter sends Enter.
func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEnter})
}

// PressEsc sends Escape.
func (d *Driver) PressEsc() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEsc})
}

// PressCtrlC sends Ctrl+C.
func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest.Driver: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.run(cmd)
	switch m := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range m {
			d.drain(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		d.Model, _ = d.Model.Update(m)
		return
	}
	if isBlink(msg) {
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drain(next, depth+1)
}

// run executes cmd, giving up after the driver's timeout.
func (d *Driver) run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported cursor blink messages of bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
