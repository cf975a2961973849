package cli

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"github.com/JeevithaAnandhan/marksheetpro/internal/teatest"
	"github.com/JeevithaAnandhan/marksheetpro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uiHarness drives an uploadModel with controller events posted the way
// tea.Program.Send would deliver them.
type uiHarness struct {
	*teatest.Driver
	app  *App
	ctrl *session.Controller
}

func newUIHarness(t *testing.T, app *App) *uiHarness {
	t.Helper()
	ctrl := app.NewController()
	d := teatest.New(t, newUploadModel(context.Background(), app, ctrl),
		teatest.WithSize(120, 40),
		teatest.WithCmdTimeout(5*time.Second),
	)
	t.Cleanup(ctrl.Subscribe(func(e session.Event) {
		d.Post(controllerEventMsg{Event: e})
	}))
	d.DrainInit()
	return &uiHarness{Driver: d, app: app, ctrl: ctrl}
}

// press sends a key and applies the events it caused.
func (h *uiHarness) press(r rune) {
	h.T.Helper()
	h.PressKey(r)
	h.ctrl.Wait()
	h.Deliver()
}

func (h *uiHarness) choose(path string) {
	h.T.Helper()
	h.PressKey('f')
	h.Type(path)
	h.PressEnter()
	h.Deliver()
}

func (h *uiHarness) model() uploadModel {
	return h.Model.(uploadModel)
}

func TestUploadModel_FullFlow(t *testing.T) {
	app, _ := loggedInApp(t, testutil.WithRecords(42))
	h := newUIHarness(t, app)
	assert.Contains(t, h.View(), "Choose a marksheet type to begin")

	h.press('1')
	assert.Contains(t, h.View(), "▸ [1] 📘 10th Grade")
	assert.Contains(t, h.View(), "Selected 📘 10th Grade marksheet")
	assert.Contains(t, h.View(), "Choose a file to upload")

	h.choose(testutil.WriteTestPDF(t, "x.pdf"))
	view := h.View()
	assert.Contains(t, view, "x.pdf")
	assert.Contains(t, view, "1 page(s)")
	assert.Contains(t, view, "Ready to submit")
	assert.False(t, h.model().path.Focused())

	h.press('s')
	view = h.View()
	assert.Contains(t, view, "Successfully processed! Extracted 42 records")
	assert.Contains(t, view, "/download/10th_x.xlsx")
	assert.Contains(t, view, "RECENT")
	assert.False(t, h.model().submitting)
	assert.Equal(t, session.Completed, h.model().sess.State())

	h.press('d')
	data, err := os.ReadFile(filepath.Join(app.Config.OutputDir, "10th_x.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx:10th_x.xlsx", string(data))
	assert.Contains(t, h.View(), "Saved to")

	notices := h.model().notices
	require.Len(t, notices, maxNotices)
	assert.Equal(t, session.LevelSuccess, notices[len(notices)-1].Level)
}

func TestUploadModel_ClearAndReset(t *testing.T) {
	app, _ := loggedInApp(t)
	h := newUIHarness(t, app)

	h.press('2')
	h.choose(testutil.WriteTestPDF(t, "b.pdf"))
	require.Equal(t, session.FileReady, h.model().sess.State())

	h.press('x')
	assert.Equal(t, session.TypeSelected, h.model().sess.State())
	assert.Contains(t, h.View(), "none (press f to choose)")

	h.press('r')
	assert.Equal(t, session.Idle, h.model().sess.State())
	assert.Contains(t, h.View(), "Choose a marksheet type to begin")
}

func TestUploadModel_RequiresLogin(t *testing.T) {
	app := testApp(t, testutil.NewFakeService(t))
	h := newUIHarness(t, app)

	h.press('3')
	assert.Contains(t, h.View(), "Please log in to process marksheets")
	assert.Equal(t, session.Idle, h.model().sess.State())
}

func TestUploadModel_UnreadablePath(t *testing.T) {
	app, _ := loggedInApp(t)
	h := newUIHarness(t, app)

	h.press('1')
	h.choose(filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Contains(t, h.View(), "missing.pdf")
	assert.True(t, h.model().path.Focused(), "input stays open for another try")
	assert.Equal(t, session.TypeSelected, h.model().sess.State())

	h.PressEsc()
	assert.False(t, h.model().path.Focused())
}

func TestUploadModel_SubmitFailureRollsBack(t *testing.T) {
	app, _ := loggedInApp(t, testutil.WithProcessFailure(http.StatusInternalServerError, "OCR engine crashed"))
	h := newUIHarness(t, app)

	h.press('3')
	h.choose(testutil.WriteTestPDF(t, "sem.pdf"))
	h.press('s')

	assert.Contains(t, h.View(), "OCR engine crashed")
	assert.Contains(t, h.View(), "Choose a file to upload")
	assert.Nil(t, h.model().sess.SelectedFile)
}

func TestUploadModel_DownloadBeforeCompletion(t *testing.T) {
	app, _ := loggedInApp(t)
	h := newUIHarness(t, app)

	h.press('d')
	assert.Contains(t, h.View(), "Nothing to download yet")
}

func TestUploadModel_SubmitWithoutFileWarns(t *testing.T) {
	app, _ := loggedInApp(t)
	h := newUIHarness(t, app)

	h.press('1')
	h.press('s')
	assert.Contains(t, h.View(), "Select a marksheet type and file first")
	assert.False(t, h.model().submitting)
}

func TestUploadModel_Quit(t *testing.T) {
	app := testApp(t, testutil.NewFakeService(t))
	h := newUIHarness(t, app)

	h.PressKey('q')
	assert.True(t, h.Quitting)
	assert.Empty(t, h.View())
}

func TestUploadModel_TypingDoesNotTriggerShortcuts(t *testing.T) {
	app, svc := loggedInApp(t)
	h := newUIHarness(t, app)

	h.press('1')
	h.PressKey('f')
	h.Type("sq")
	h.Deliver()

	assert.False(t, h.Quitting)
	assert.Equal(t, "sq", h.model().path.Value())
	assert.Zero(t, svc.ProcessCalls())
}
