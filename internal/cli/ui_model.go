package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/JeevithaAnandhan/marksheetpro/internal/cli/formatter"
	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/fileinfo"
	"github.com/JeevithaAnandhan/marksheetpro/internal/service"
	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxNotices        = 4
	maxHistoryPreview = 5
)

// controllerEventMsg carries a session event into the program loop.
type controllerEventMsg struct{ Event session.Event }

// opDoneMsg reports a finished controller operation. local is set for
// failures the controller never saw, such as an unreadable path.
type opDoneMsg struct {
	op    string
	err   error
	local bool
}

type savedMsg struct {
	path string
	err  error
}

type historyLoadedMsg struct {
	entries []domain.HistoryEntry
	err     error
}

type uiKeyMap struct {
	Tenth    key.Binding
	Twelfth  key.Binding
	Semester key.Binding
	File     key.Binding
	Submit   key.Binding
	Download key.Binding
	Clear    key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func newUIKeyMap() uiKeyMap {
	return uiKeyMap{
		Tenth:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "10th")),
		Twelfth:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "12th")),
		Semester: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "semester")),
		File:     key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "file")),
		Submit:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
		Download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear file")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k uiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tenth, k.Twelfth, k.Semester, k.File, k.Submit, k.Download, k.Clear, k.Reset, k.Quit}
}

func (k uiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tenth, k.Twelfth, k.Semester},
		{k.File, k.Submit, k.Download, k.Clear, k.Reset},
		{k.Quit},
	}
}

// uploadModel renders one upload session. Every controller call runs inside a
// Cmd; the model only learns about the outcome through controller events.
type uploadModel struct {
	ctx  context.Context
	app  *App
	ctrl *session.Controller

	keys  uiKeyMap
	help  help.Model
	path  textinput.Model
	spin  spinner.Model
	width int

	sess       session.Session
	notices    []session.Notice
	history    []domain.HistoryEntry
	submitting bool
	quitting   bool
}

func newUploadModel(ctx context.Context, app *App, ctrl *session.Controller) uploadModel {
	ti := textinput.New()
	ti.Prompt = "path › "
	ti.Placeholder = "/path/to/marksheet.pdf"
	ti.CharLimit = 1024
	ti.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	return uploadModel{
		ctx:  ctx,
		app:  app,
		ctrl: ctrl,
		keys: newUIKeyMap(),
		help: help.New(),
		path: ti,
		spin: sp,
		sess: ctrl.Snapshot(),
	}
}

func (m uploadModel) Init() tea.Cmd {
	return m.loadHistory
}

func (m uploadModel) loadHistory() tea.Msg {
	entries, err := m.app.History.Refresh(m.ctx)
	return historyLoadedMsg{entries: entries, err: err}
}

func (m uploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.path.Width = msg.Width - lipgloss.Width(m.path.Prompt) - 2
		return m, nil

	case controllerEventMsg:
		m.apply(msg.Event)
		return m, nil

	case opDoneMsg:
		if msg.op == "submit" {
			m.submitting = false
		}
		if msg.local && msg.err != nil {
			m.addNotice(session.Notice{Level: session.LevelError, Message: msg.err.Error(), Err: msg.err})
		}
		if msg.op == "file" && msg.err == nil {
			m.path.Reset()
			m.path.Blur()
		}
		return m, nil

	case savedMsg:
		var pathErr *fs.PathError
		switch {
		case msg.err == nil:
			m.addNotice(session.Notice{Level: session.LevelSuccess, Message: "Saved to " + msg.path})
		case errors.Is(msg.err, session.ErrNoArtifact):
			m.addNotice(session.Notice{Level: session.LevelWarning, Message: "Nothing to download yet", Err: msg.err})
		case errors.As(msg.err, &pathErr):
			m.addNotice(session.Notice{Level: session.LevelError, Message: msg.err.Error(), Err: msg.err})
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err == nil {
			m.history = msg.entries
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting && !m.sess.IsProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.path.Focused() {
			return m.updatePath(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m uploadModel) updatePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.path.Blur()
		return m, nil
	case tea.KeyEnter:
		return m, m.selectFile(strings.TrimSpace(m.path.Value()))
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m uploadModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tenth):
		return m, m.selectType(domain.MarksheetTenth)
	case key.Matches(msg, m.keys.Twelfth):
		return m, m.selectType(domain.MarksheetTwelfth)
	case key.Matches(msg, m.keys.Semester):
		return m, m.selectType(domain.MarksheetSemester)
	case key.Matches(msg, m.keys.File):
		cmd := m.path.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		m.submitting = true
		return m, tea.Batch(m.submit, m.spin.Tick)
	case key.Matches(msg, m.keys.Download):
		return m, m.download
	case key.Matches(msg, m.keys.Clear):
		return m, m.op("clear", m.ctrl.ClearFile)
	case key.Matches(msg, m.keys.Reset):
		return m, m.op("reset", func() error { return m.ctrl.Reset(false) })
	}
	return m, nil
}

func (m *uploadModel) apply(e session.Event) {
	switch e := e.(type) {
	case session.StateChanged:
		m.sess = e.Session
	case session.Notice:
		m.addNotice(e)
	case session.HistoryRefreshed:
		if e.Err == nil {
			m.history = e.Entries
		}
	}
}

func (m *uploadModel) addNotice(n session.Notice) {
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// ── controller commands ──────────────────────────────────────────────────────

func (m uploadModel) op(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: name, err: fn()}
	}
}

func (m uploadModel) selectType(t domain.MarksheetType) tea.Cmd {
	return m.op("type", func() error { return m.ctrl.SelectType(m.ctx, t) })
}

func (m uploadModel) selectFile(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return opDoneMsg{op: "file", err: errors.New("enter a file path"), local: true}
		}
		fh, err := fileinfo.Inspect(path)
		if err != nil {
			return opDoneMsg{op: "file", err: err, local: true}
		}
		return opDoneMsg{op: "file", err: m.ctrl.SelectFile(fh)}
	}
}

func (m uploadModel) submit() tea.Msg {
	_, err := m.ctrl.Submit(m.ctx)
	return opDoneMsg{op: "submit", err: err}
}

func (m uploadModel) download() tea.Msg {
	ref, err := m.ctrl.DownloadHandle()
	if err != nil {
		return savedMsg{err: err}
	}
	source := ""
	if f := m.ctrl.Snapshot().SelectedFile; f != nil {
		source = f.Name
	}
	saved, err := service.SaveArtifact(m.ctx, m.ctrl, m.app.Config.OutputDir, service.ArtifactName(ref, source))
	return savedMsg{path: saved, err: err}
}

// ── rendering ────────────────────────────────────────────────────────────────

func (m uploadModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(formatter.Header("Marksheet Processor"))
	b.WriteString("\n\n")
	b.WriteString(m.viewTypes())
	b.WriteString("\n")
	b.WriteString(m.viewFile())
	b.WriteString("\n")
	if m.path.Focused() {
		b.WriteString("  " + m.path.View() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")

	for _, n := range m.notices {
		b.WriteString("  " + formatter.NoticeStyle(string(n.Level)).Render(n.Message) + "\n")
	}

	if len(m.history) > 0 {
		recent := m.history
		if len(recent) > maxHistoryPreview {
			recent = recent[:maxHistoryPreview]
		}
		b.WriteString("\n" + formatter.Header("Recent") + "\n")
		b.WriteString(formatter.FormatHistory(recent, nil, m.app.Now()))
	}

	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m uploadModel) viewTypes() string {
	parts := make([]string, 0, 3)
	for i, d := range domain.Catalog() {
		label := fmt.Sprintf("[%d] %s %s", i+1, d.Icon, d.Name)
		if m.sess.SelectedType != nil && *m.sess.SelectedType == d.ID {
			parts = append(parts, formatter.TypeStyle(d.ID).Bold(true).Render("▸ "+label))
			continue
		}
		parts = append(parts, formatter.Dim("  "+label))
	}
	return "  " + strings.Join(parts, "   ")
}

func (m uploadModel) viewFile() string {
	f := m.sess.SelectedFile
	if f == nil {
		return "  File: " + formatter.Dim("none (press f to choose)")
	}
	details := []string{formatter.Bytes(f.Size), f.MIMEType}
	if f.Pages > 0 {
		details = append(details, fmt.Sprintf("%d page(s)", f.Pages))
	}
	return fmt.Sprintf("  File: %s %s", formatter.Bold(f.Name), formatter.Dim("("+strings.Join(details, ", ")+")"))
}

func (m uploadModel) viewStatus() string {
	switch m.sess.State() {
	case session.Idle:
		return "  " + formatter.Dim("Choose a marksheet type to begin")
	case session.TypeSelected:
		return "  " + formatter.Dim("Choose a file to upload")
	case session.FileReady:
		return "  " + formatter.StyleYellow.Render("Ready to submit")
	case session.Processing:
		return fmt.Sprintf("  %s Processing %s…", m.spin.View(), m.sess.SelectedFile.Name)
	case session.Completed:
		return fmt.Sprintf("  %s %s records → %s",
			formatter.StyleGreen.Render("✔"),
			formatter.Bold(formatter.Count(m.sess.RecordsCount)),
			formatter.StyleBlue.Render(m.sess.DownloadHandle))
	}
	return ""
}
