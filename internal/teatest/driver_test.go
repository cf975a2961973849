package teatest

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type bumpMsg struct{}

type slowMsg struct{}

// counter counts bumps; "+" bumps through a Cmd, "s" starts a Cmd that never
// returns in time, "q" quits.
type counter struct {
	n     int
	typed string
	width int
}

func (c counter) Init() tea.Cmd {
	return func() tea.Msg { return bumpMsg{} }
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case bumpMsg:
		c.n++
	case slowMsg:
		c.n += 100
	case tea.KeyMsg:
		switch msg.String() {
		case "+":
			return c, tea.Batch(
				func() tea.Msg { return bumpMsg{} },
				func() tea.Msg { return bumpMsg{} },
			)
		case "s":
			return c, func() tea.Msg {
				time.Sleep(200 * time.Millisecond)
				return slowMsg{}
			}
		case "q":
			return c, tea.Quit
		default:
			c.typed += msg.String()
		}
	}
	return c, nil
}

func (c counter) View() string { return fmt.Sprintf("n=%d typed=%s", c.n, c.typed) }

func TestDriver_DrainsInitAndBatches(t *testing.T) {
	d := New(t, counter{}, WithSize(80, 24))
	assert.Equal(t, 80, d.Model.(counter).width)

	d.DrainInit()
	assert.Equal(t, "n=1 typed=", d.View())

	d.PressKey('+')
	assert.Equal(t, 3, d.Model.(counter).n)
}

func TestDriver_DropsSlowCmds(t *testing.T) {
	d := New(t, counter{})
	d.PressKey('s')
	assert.Zero(t, d.Model.(counter).n)

	patient := New(t, counter{}, WithCmdTimeout(2*time.Second))
	patient.PressKey('s')
	assert.Equal(t, 100, patient.Model.(counter).n)
}

func TestDriver_PostAndDeliver(t *testing.T) {
	d := New(t, counter{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Post(bumpMsg{})
		d.Post(bumpMsg{})
	}()
	<-done

	assert.Equal(t, 2, d.Deliver())
	assert.Equal(t, 2, d.Model.(counter).n)
	assert.Zero(t, d.Deliver())
}

func TestDriver_QuitStopsInput(t *testing.T) {
	d := New(t, counter{})
	d.Type("ab")
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.Type("cd")
	assert.Equal(t, "n=0 typed=ab", d.View())
}
