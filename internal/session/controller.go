package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/dustin/go-humanize"
)

// Authenticator reports whether the user currently holds a session.
type Authenticator interface {
	Authenticated(ctx context.Context) bool
}

// Uploader submits a marksheet to the processing service.
type Uploader interface {
	Process(ctx context.Context, t domain.MarksheetType, file *domain.FileHandle) (processing.ProcessResult, error)
}

// Fetcher retrieves a processed artifact.
type Fetcher interface {
	Download(ctx context.Context, ref string, w io.Writer) (int64, error)
}

// HistoryRefresher reloads the processing history collection.
type HistoryRefresher interface {
	Refresh(ctx context.Context) ([]domain.HistoryEntry, error)
}

// AttemptRecorder persists a log line per submission.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a *domain.SubmissionAttempt) error
}

// Deps are the collaborators a Controller talks to. Uploader is required;
// a nil Auth treats the user as authenticated, and nil History, Fetcher or
// Recorder disable those features.
type Deps struct {
	Auth     Authenticator
	Uploader Uploader
	Fetcher  Fetcher
	History  HistoryRefresher
	Recorder AttemptRecorder
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for background failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type subscription struct {
	id int
	fn EventHandler
}

// Controller owns one Session and is its only writer. The mutex guards field
// access; it is never held across a network call. Upload admission is gated by
// Session.IsProcessing alone.
type Controller struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	sess   Session
	subs   []subscription
	nextID int

	refreshes sync.WaitGroup
}

// New creates a Controller in the Idle state.
func New(deps Deps, opts ...Option) *Controller {
	c := &Controller{
		deps:   deps,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers h for all future events and returns a function that
// removes it. Handlers run synchronously after the controller releases its lock.
func (c *Controller) Subscribe(h EventHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscription{id: id, fn: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.clone()
}

// Wait blocks until every background history refresh has finished.
func (c *Controller) Wait() {
	c.refreshes.Wait()
}

// SelectType chooses the marksheet category and starts a fresh attempt.
// Selecting the same type again clears the file and download as well.
func (c *Controller) SelectType(ctx context.Context, t domain.MarksheetType) error {
	desc, ok := domain.Describe(t)
	if !ok {
		err := fmt.Errorf("%w: %q", domain.ErrUnknownMarksheetType, t)
		c.publish(Notice{Level: LevelError, Message: err.Error(), Err: err})
		return err
	}
	if c.deps.Auth != nil && !c.deps.Auth.Authenticated(ctx) {
		err := &AuthRequiredError{Action: "select marksheet type"}
		c.publish(Notice{Level: LevelWarning, Message: "Please log in to process marksheets", Err: err})
		return err
	}

	c.mu.Lock()
	if c.sess.IsProcessing {
		c.mu.Unlock()
		return c.warn(ErrAlreadyProcessing, "A marksheet is already being processed")
	}
	from := c.sess.State()
	c.sess = Session{SelectedType: &t}
	changed := c.changedLocked(from)
	c.mu.Unlock()

	c.publish(changed, Notice{Level: LevelInfo, Message: fmt.Sprintf("Selected %s %s marksheet", desc.Icon, desc.Name)})
	return nil
}

// SelectFile validates f and holds it for submission. Rejected files leave
// the session unchanged.
func (c *Controller) SelectFile(f *domain.FileHandle) error {
	if f == nil {
		return c.warn(fmt.Errorf("%w: %w", ErrInvalidTransition, domain.ErrNoFile), "Choose a file to upload")
	}
	c.mu.Lock()
	switch {
	case c.sess.IsProcessing:
		c.mu.Unlock()
		return c.warn(ErrAlreadyProcessing, "A marksheet is already being processed")
	case c.sess.SelectedType == nil:
		c.mu.Unlock()
		return c.warn(fmt.Errorf("%w: select a marksheet type first", ErrInvalidTransition), "Select a marksheet type first")
	case c.sess.SelectedFile != nil:
		c.mu.Unlock()
		return c.warn(fmt.Errorf("%w: a file is already selected", ErrInvalidTransition), "Clear the current file before choosing another")
	}

	if err := domain.ValidateFile(f); err != nil {
		c.mu.Unlock()
		c.publish(Notice{Level: LevelError, Message: validationMessage(err), Err: err})
		return err
	}

	from := c.sess.State()
	c.sess.SelectedFile = f
	c.sess.DownloadHandle = ""
	c.sess.RecordsCount = 0
	changed := c.changedLocked(from)
	c.mu.Unlock()

	c.publish(changed, Notice{Level: LevelInfo, Message: fmt.Sprintf("Ready: %s (%s)", f.Name, humanize.IBytes(uint64(f.Size)))})
	return nil
}

// ClearFile drops the selected file and any download handle. It is a no-op
// when no file is held, and refused while an upload is in flight.
func (c *Controller) ClearFile() error {
	c.mu.Lock()
	if c.sess.IsProcessing {
		c.mu.Unlock()
		return c.warn(ErrAlreadyProcessing, "Cannot clear the file while it is being processed")
	}
	if c.sess.SelectedFile == nil && c.sess.DownloadHandle == "" {
		c.mu.Unlock()
		return nil
	}
	from := c.sess.State()
	c.sess.SelectedFile = nil
	c.sess.DownloadHandle = ""
	c.sess.RecordsCount = 0
	changed := c.changedLocked(from)
	c.mu.Unlock()

	c.publish(changed)
	return nil
}

// Submit uploads the held file. Exactly one request is issued per call. On
// failure the attempt is rolled back to TypeSelected; on success the session
// is Completed and a history refresh starts in the background.
//
// Submit ignores cancellation of ctx once the upload has started; the
// transport timeout bounds it instead.
func (c *Controller) Submit(ctx context.Context) (processing.ProcessResult, error) {
	c.mu.Lock()
	if c.sess.IsProcessing {
		c.mu.Unlock()
		return processing.ProcessResult{}, c.warn(ErrAlreadyProcessing, "A marksheet is already being processed")
	}
	if c.sess.State() != FileReady {
		c.mu.Unlock()
		return processing.ProcessResult{}, c.warn(ErrNothingToSubmit, "Select a marksheet type and file first")
	}
	from := c.sess.State()
	t := *c.sess.SelectedType
	file := c.sess.SelectedFile
	c.sess.IsProcessing = true
	c.sess.LastMessage = ""
	changed := c.changedLocked(from)
	c.mu.Unlock()

	c.publish(changed, Notice{Level: LevelInfo, Message: fmt.Sprintf("Processing %s…", file.Name)})

	ctx = context.WithoutCancel(ctx)
	attempt := &domain.SubmissionAttempt{
		MarksheetType: t,
		Filename:      file.Name,
		FileSize:      file.Size,
		Pages:         file.Pages,
		StartedAt:     c.now(),
	}

	settled := false
	defer func() {
		if !settled {
			c.fail(ctx, attempt, errors.New("upload aborted"))
		}
	}()

	res, err := c.deps.Uploader.Process(ctx, t, file)
	if err == nil && res.DownloadURL == "" {
		err = &processing.TransportError{Op: "process", Err: processing.ErrMalformedResponse}
	}
	if err != nil {
		settled = true
		c.fail(ctx, attempt, err)
		return processing.ProcessResult{}, err
	}

	c.mu.Lock()
	from = c.sess.State()
	c.sess.IsProcessing = false
	c.sess.DownloadHandle = res.DownloadURL
	c.sess.RecordsCount = res.RecordsCount
	c.sess.LastMessage = res.Message
	changed = c.changedLocked(from)
	c.mu.Unlock()
	settled = true

	attempt.Outcome = domain.OutcomeSucceeded
	attempt.RecordsCount = res.RecordsCount
	attempt.DownloadHandle = res.DownloadURL
	attempt.Message = res.Message
	c.record(ctx, attempt)

	c.publish(changed, Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Successfully processed! Extracted %d records", res.RecordsCount),
	})
	c.refreshHistory()
	return res, nil
}

// fail clears the in-flight flag and discards the attempt's file and handle.
func (c *Controller) fail(ctx context.Context, attempt *domain.SubmissionAttempt, err error) {
	msg := processing.UserMessage(err)

	c.mu.Lock()
	from := c.sess.State()
	c.sess.IsProcessing = false
	c.sess.SelectedFile = nil
	c.sess.DownloadHandle = ""
	c.sess.RecordsCount = 0
	c.sess.LastMessage = msg
	changed := c.changedLocked(from)
	c.mu.Unlock()

	attempt.Outcome = domain.OutcomeFailed
	attempt.Message = msg
	c.record(ctx, attempt)

	c.publish(changed, Notice{Level: LevelError, Message: msg, Err: err})
}

func (c *Controller) record(ctx context.Context, attempt *domain.SubmissionAttempt) {
	if c.deps.Recorder == nil {
		return
	}
	attempt.FinishedAt = c.now()
	if err := c.deps.Recorder.RecordAttempt(ctx, attempt); err != nil {
		c.logger.Warn("recording submission attempt", "file", attempt.Filename, "error", err)
	}
}

func (c *Controller) refreshHistory() {
	if c.deps.History == nil {
		return
	}
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		entries, err := c.deps.History.Refresh(context.Background())
		if err != nil {
			c.logger.Warn("refreshing history", "error", err)
		}
		c.publish(HistoryRefreshed{Entries: entries, Err: err})
	}()
}

// DownloadHandle returns the artifact reference of the completed attempt.
func (c *Controller) DownloadHandle() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.DownloadHandle == "" {
		return "", ErrNoArtifact
	}
	return c.sess.DownloadHandle, nil
}

// Download streams the completed artifact into w. It never changes the session.
func (c *Controller) Download(ctx context.Context, w io.Writer) (int64, error) {
	ref, err := c.DownloadHandle()
	if err != nil {
		return 0, c.warn(err, "No processed file to download")
	}
	if c.deps.Fetcher == nil {
		return 0, fmt.Errorf("download is not configured")
	}
	n, err := c.deps.Fetcher.Download(ctx, ref, w)
	if err != nil {
		c.publish(Notice{Level: LevelError, Message: "Download failed: " + processing.UserMessage(err), Err: err})
		return n, err
	}
	c.publish(Notice{Level: LevelSuccess, Message: fmt.Sprintf("Downloaded %s", humanize.IBytes(uint64(n)))})
	return n, nil
}

// Reset abandons the current attempt. The marksheet type survives when
// keepType is set. Refused while an upload is in flight.
func (c *Controller) Reset(keepType bool) error {
	c.mu.Lock()
	if c.sess.IsProcessing {
		c.mu.Unlock()
		return c.warn(ErrResetWhileProcessing, "Cannot reset while a marksheet is being processed")
	}
	from := c.sess.State()
	next := Session{}
	if keepType {
		next.SelectedType = c.sess.SelectedType
	}
	c.sess = next
	changed := c.changedLocked(from)
	c.mu.Unlock()

	c.publish(changed)
	return nil
}

func (c *Controller) changedLocked(from State) StateChanged {
	return StateChanged{From: from, To: c.sess.State(), Session: c.sess.clone()}
}

func (c *Controller) warn(err error, msg string) error {
	c.publish(Notice{Level: LevelWarning, Message: msg, Err: err})
	return err
}

func (c *Controller) publish(events ...Event) {
	c.mu.Lock()
	handlers := make([]EventHandler, len(c.subs))
	for i, s := range c.subs {
		handlers[i] = s.fn
	}
	c.mu.Unlock()

	for _, ev := range events {
		for _, h := range handlers {
			h(ev)
		}
	}
}

func validationMessage(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	switch verr.Kind {
	case domain.UnsupportedType:
		return "Please select a PDF, JPEG, or PNG file"
	case domain.FileTooLarge:
		return fmt.Sprintf("File size must be less than %s", humanize.IBytes(uint64(domain.MaxUploadBytes)))
	default:
		return err.Error()
	}
}
