package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"golang.org/x/net/publicsuffix"
)

// UploadField is the multipart field name the service reads the marksheet from.
const UploadField = "uploaded_file"

// Client talks to the processing service over its HTTP contract. Auth state
// lives in the client's cookie jar.
type Client struct {
	cfg      Config
	base     *url.URL
	http     *http.Client
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithObserver sets the call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithTransport replaces the HTTP transport. Used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// NewClient creates a Client for cfg.Endpoint.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", cfg.Endpoint, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute URL", cfg.Endpoint)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultConfig().UploadTimeout
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service endpoint.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Cookies returns the session cookies held for the service.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.http.Jar.SetCookies(c.base, cookies)
}

// ── wire types ───────────────────────────────────────────────────────────────

type wireUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (u *wireUser) toDomain() domain.User {
	if u == nil {
		return domain.User{}
	}
	return domain.User{Username: u.Username, Email: u.Email, FullName: u.FullName}
}

type envelope struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	User         *wireUser `json:"user"`
	RecordsCount *int      `json:"records_count"`
	DownloadURL  string    `json:"download_url"`
	OutputFile   string    `json:"output_file"`
}

type wireHistoryEntry struct {
	Filename          string   `json:"filename"`
	MarksheetType     string   `json:"marksheet_type"`
	RecordsExtracted  int      `json:"records_extracted"`
	FileSize          int64    `json:"file_size"`
	Date              flexTime `json:"date"`
	ProcessedFilename string   `json:"processed_filename"`
}

// flexTime accepts the timestamp layouts a Python backend commonly emits.
type flexTime struct{ time.Time }

var historyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		// null, numbers and empty strings leave the zero time.
		return nil
	}
	for _, layout := range historyTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// ── auth ─────────────────────────────────────────────────────────────────────

// CurrentUser asks the service who the cookie jar is logged in as.
// Any non-200 status or a false success flag is LoggedOut.
func (c *Client) CurrentUser(ctx context.Context) (UserResult, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, "", c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return LoggedOut{}, nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "current user", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if !env.Success || env.User == nil {
		return LoggedOut{}, nil
	}
	return LoggedIn{User: env.User.toDomain()}, nil
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(payload), "application/json", c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	env, decodeErr := decodeEnvelope(body)
	if decodeErr != nil {
		if !is2xx(status) {
			return LoginFailure{Message: fmt.Sprintf("Login failed (status %d)", status)}, nil
		}
		return nil, &TransportError{Op: "login", Err: decodeErr}
	}
	if !env.Success || !is2xx(status) {
		return LoginFailure{Message: firstNonEmpty(env.Message, "Login failed")}, nil
	}
	return LoginSuccess{User: env.User.toDomain()}, nil
}

// Logout ends the server session. Callers treat it as best effort; only
// transport failures are reported.
func (c *Client) Logout(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/api/auth/logout", nil, "", c.cfg.Timeout)
	return err
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (RegisterResult, error) {
	payload, _ := json.Marshal(map[string]string{"username": username, "email": email, "password": password})
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/register", bytes.NewReader(payload), "application/json", c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	env, decodeErr := decodeEnvelope(body)
	if decodeErr != nil {
		if !is2xx(status) {
			return RegisterFailure{Message: fmt.Sprintf("Registration failed (status %d)", status)}, nil
		}
		return nil, &TransportError{Op: "register", Err: decodeErr}
	}
	if !env.Success || !is2xx(status) {
		return RegisterFailure{Message: firstNonEmpty(env.Message, "Registration failed")}, nil
	}
	return RegisterSuccess{Message: env.Message}, nil
}

// ── processing ───────────────────────────────────────────────────────────────

// Process uploads file for extraction as marksheet type t. Exactly one request
// is issued; there is no retry.
func (c *Client) Process(ctx context.Context, t domain.MarksheetType, file *domain.FileHandle) (ProcessResult, error) {
	src, err := file.Open()
	if err != nil {
		return ProcessResult{}, fmt.Errorf("opening %s: %w", file.Name, err)
	}

	// src is owned by the writer goroutine, which may still be reading it
	// after the request has failed.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeUpload(mw, file, src)
		src.Close()
		pw.CloseWithError(err)
	}()
	defer pr.Close()

	path := "/process/" + url.PathEscape(string(t))
	status, body, err := c.do(ctx, http.MethodPost, path, pr, mw.FormDataContentType(), c.cfg.UploadTimeout)
	if err != nil {
		return ProcessResult{}, err
	}

	env, decodeErr := decodeEnvelope(body)
	if !is2xx(status) {
		msg := ""
		if decodeErr == nil {
			msg = env.Message
		}
		return ProcessResult{}, &ServiceError{Op: "process", Status: status, Message: msg}
	}
	if decodeErr != nil {
		return ProcessResult{}, &TransportError{Op: "process", Err: decodeErr}
	}
	if !env.Success {
		return ProcessResult{}, &ServiceError{Op: "process", Status: status, Message: env.Message}
	}

	ref := firstNonEmpty(env.DownloadURL, env.OutputFile)
	if ref == "" {
		return ProcessResult{}, &TransportError{Op: "process", Err: fmt.Errorf("%w: success without download reference", ErrMalformedResponse)}
	}
	return ProcessResult{
		RecordsCount: env.recordsCount(),
		DownloadURL:  ref,
		Message:      env.Message,
	}, nil
}

func writeUpload(mw *multipart.Writer, file *domain.FileHandle, src io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadField, escapeQuotes(file.Name)))
	h.Set("Content-Type", file.MIMEType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// History fetches the processing history for the logged-in user. A non-200
// status yields an empty list together with a *ServiceError, so callers can
// show nothing while still telling a rejected request from a real empty
// listing.
func (c *Client) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/history", nil, "", c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		msg := http.StatusText(status)
		if env, err := decodeEnvelope(body); err == nil && env.Message != "" {
			msg = env.Message
		}
		return []domain.HistoryEntry{}, &ServiceError{Op: "history", Status: status, Message: msg}
	}
	var wire []wireHistoryEntry
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &TransportError{Op: "history", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	entries := make([]domain.HistoryEntry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, domain.HistoryEntry{
			Filename:          w.Filename,
			MarksheetType:     w.MarksheetType,
			RecordsExtracted:  w.RecordsExtracted,
			FileSize:          w.FileSize,
			Date:              w.Date.Time,
			ProcessedFilename: w.ProcessedFilename,
		})
	}
	return entries, nil
}

// ResolveDownloadURL turns a download reference into an absolute URL. Absolute
// URLs pass through, rooted paths resolve against the endpoint, and bare
// processed filenames map to /download/{name}.
func (c *Client) ResolveDownloadURL(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/download/" + url.PathEscape(ref)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return c.base.String() + ref
	}
	return c.base.ResolveReference(rel).String()
}

// Download streams the artifact behind ref into w.
func (c *Client) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	target := c.ResolveDownloadURL(ref)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		err = classifyTransport(ctx, "download", err)
		c.report(http.MethodGet, "/download", 0, start, err)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		svcErr := &ServiceError{Op: "download", Status: resp.StatusCode, Message: "Download failed"}
		c.report(http.MethodGet, "/download", resp.StatusCode, start, svcErr)
		return 0, svcErr
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		err = classifyTransport(ctx, "download", err)
	}
	c.report(http.MethodGet, "/download", resp.StatusCode, start, err)
	return n, err
}

// ── plumbing ─────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	target := c.base.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		err = classifyTransport(ctx, path, err)
		c.report(method, path, 0, start, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = classifyTransport(ctx, path, fmt.Errorf("reading response: %w", err))
		c.report(method, path, resp.StatusCode, start, err)
		return 0, nil, err
	}

	var callErr error
	if !is2xx(resp.StatusCode) {
		callErr = &ServiceError{Op: path, Status: resp.StatusCode}
	}
	c.report(method, path, resp.StatusCode, start, callErr)
	return resp.StatusCode, respBody, nil
}

func (c *Client) report(method, endpoint string, status int, start time.Time, err error) {
	c.observer.OnCallComplete(APICallEvent{
		Endpoint:  endpoint,
		Method:    method,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func classifyTransport(ctx context.Context, op string, err error) error {
	switch {
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	case isConnectionError(err):
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	default:
		return &TransportError{Op: op, Err: err}
	}
}

// recordsInMessage matches the "Processed N records" text older servers send
// in place of records_count.
var recordsInMessage = regexp.MustCompile(`(?i)\b(\d+)\s+records?\b`)

func (e envelope) recordsCount() int {
	if e.RecordsCount != nil {
		return *e.RecordsCount
	}
	m := recordsInMessage.FindStringSubmatch(e.Message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func decodeEnvelope(body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return env, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
