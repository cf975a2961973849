package session_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"github.com/JeevithaAnandhan/marksheetpro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alwaysAuthenticated struct{}

func (alwaysAuthenticated) Authenticated(context.Context) bool { return true }

type clientHistory struct{ c *processing.Client }

func (h clientHistory) Refresh(ctx context.Context) ([]domain.HistoryEntry, error) {
	return h.c.History(ctx)
}

// loggedInController wires a controller to a real client against the fake
// service, already holding a session cookie.
func loggedInController(t *testing.T, svc *testutil.FakeService) (*session.Controller, *processing.Client) {
	t.Helper()
	client, err := processing.NewClient(processing.Config{Endpoint: svc.URL})
	require.NoError(t, err)
	client.SetCookies([]*http.Cookie{svc.Login("asha")})

	c := session.New(session.Deps{
		Auth:     alwaysAuthenticated{},
		Uploader: client,
		Fetcher:  client,
		History:  clientHistory{c: client},
	})
	return c, client
}

func TestScenario_TenthGradePDFSucceeds(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.WithRecords(42))
	c, _ := loggedInController(t, svc)
	ctx := context.Background()

	var refreshed []domain.HistoryEntry
	c.Subscribe(func(e session.Event) {
		if h, ok := e.(session.HistoryRefreshed); ok {
			refreshed = h.Entries
		}
	})

	require.NoError(t, c.SelectType(ctx, domain.MarksheetTenth))
	require.NoError(t, c.SelectFile(testutil.NewTestPDF("x.pdf", 2*1024*1024)))

	res, err := c.Submit(ctx)
	require.NoError(t, err)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, session.Completed, snap.State())
	assert.Equal(t, "/download/10th_x.xlsx", snap.DownloadHandle)
	assert.Equal(t, 42, res.RecordsCount)
	assert.Equal(t, 1, svc.ProcessCalls())

	upload := svc.LastUpload()
	assert.Equal(t, processing.UploadField, upload.Field)
	assert.Equal(t, "application/pdf", upload.ContentType)
	assert.Equal(t, int64(2*1024*1024), upload.Size)
	assert.Equal(t, "10th", upload.MarksheetType)

	require.Len(t, refreshed, 1)
	assert.Equal(t, "x.pdf", refreshed[0].Filename)

	var buf bytes.Buffer
	_, err = c.Download(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "xlsx:10th_x.xlsx", buf.String())
	assert.Equal(t, snap, c.Snapshot())
}

func TestScenario_TwelfthGradeOversizedPNGRejected(t *testing.T) {
	svc := testutil.NewFakeService(t)
	c, _ := loggedInController(t, svc)

	require.NoError(t, c.SelectType(context.Background(), domain.MarksheetTwelfth))
	big := &domain.FileHandle{Name: "scan.png", Size: 12 * 1024 * 1024, MIMEType: "image/png"}

	err := c.SelectFile(big)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.FileTooLarge, verr.Kind)
	assert.Equal(t, session.TypeSelected, c.Snapshot().State())
	assert.Zero(t, svc.ProcessCalls())
}

func TestScenario_SemesterServerErrorRollsBack(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.WithProcessFailure(http.StatusInternalServerError, "OCR engine crashed"))
	c, _ := loggedInController(t, svc)
	ctx := context.Background()

	var surfaced []string
	c.Subscribe(func(e session.Event) {
		if n, ok := e.(session.Notice); ok && n.Level == session.LevelError {
			surfaced = append(surfaced, n.Message)
		}
	})

	require.NoError(t, c.SelectType(ctx, domain.MarksheetSemester))
	require.NoError(t, c.SelectFile(testutil.NewTestPDF("sem.pdf", 1024)))

	_, err := c.Submit(ctx)

	var svcErr *processing.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)

	snap := c.Snapshot()
	assert.Equal(t, session.TypeSelected, snap.State())
	assert.Nil(t, snap.SelectedFile)
	assert.False(t, snap.IsProcessing)
	assert.Equal(t, []string{"OCR engine crashed"}, surfaced)
}

func TestScenario_SuccessFalseUsesGenericMessageWhenEmpty(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.WithProcessFailure(0, ""))
	c, _ := loggedInController(t, svc)
	ctx := context.Background()

	require.NoError(t, c.SelectType(ctx, domain.MarksheetTenth))
	require.NoError(t, c.SelectFile(testutil.NewTestPDF("a.pdf", 10)))

	_, err := c.Submit(ctx)
	require.ErrorIs(t, err, processing.ErrServiceFailure)
	assert.Equal(t, processing.GenericFailureMessage, c.Snapshot().LastMessage)
}

func TestScenario_LegacyOutputFileReference(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.WithLegacyOutputFile(), testutil.WithRecords(23))
	c, _ := loggedInController(t, svc)
	ctx := context.Background()

	require.NoError(t, c.SelectType(ctx, domain.MarksheetTwelfth))
	require.NoError(t, c.SelectFile(testutil.NewTestPDF("b.pdf", 10)))
	_, err := c.Submit(ctx)
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, "12th_b.xlsx", c.Snapshot().DownloadHandle)
	assert.Equal(t, 23, c.Snapshot().RecordsCount)

	var buf bytes.Buffer
	_, err = c.Download(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "xlsx:12th_b.xlsx", buf.String())
}
