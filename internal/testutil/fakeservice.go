package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie the fake service issues on login.
const SessionCookie = "session"

// FakeService is an in-process stand-in for the marksheet processing service.
// It speaks the same JSON contract and keeps accounts, sessions, history and
// artifacts in memory.
type FakeService struct {
	URL string

	mu        sync.Mutex
	users     map[string]fakeUser
	sessions  map[string]string
	history   []map[string]any
	artifacts map[string][]byte

	records       int
	failStatus    int
	failMessage   string
	omitReference bool
	processGate   chan struct{}
	processCalls  int
	lastUpload    UploadedFile
}

type fakeUser struct {
	email    string
	password string
}

// UploadedFile describes the last multipart upload received.
type UploadedFile struct {
	Field         string
	Filename      string
	ContentType   string
	Size          int64
	MarksheetType string
}

// FakeOption configures a FakeService.
type FakeOption func(*FakeService)

// WithAccount seeds a registered user.
func WithAccount(username, password string) FakeOption {
	return func(f *FakeService) {
		f.users[username] = fakeUser{email: username + "@example.com", password: password}
	}
}

// WithRecords sets the records_count returned by successful processing.
func WithRecords(n int) FakeOption {
	return func(f *FakeService) { f.records = n }
}

// WithProcessFailure makes /process answer with status and message.
// A zero status keeps the 200 status but reports success=false.
func WithProcessFailure(status int, message string) FakeOption {
	return func(f *FakeService) {
		f.failStatus = status
		f.failMessage = message
		if status == 0 {
			f.failStatus = -1
		}
	}
}

// WithLegacyOutputFile answers /process the way the original server does:
// output_file instead of download_url, and the record count only in the
// message.
func WithLegacyOutputFile() FakeOption {
	return func(f *FakeService) { f.omitReference = true }
}

// WithProcessGate blocks each /process request until gate is closed.
func WithProcessGate(gate chan struct{}) FakeOption {
	return func(f *FakeService) { f.processGate = gate }
}

// NewFakeService starts the fake service and stops it when the test ends.
func NewFakeService(t *testing.T, opts ...FakeOption) *FakeService {
	t.Helper()
	f := &FakeService{
		users:     map[string]fakeUser{},
		sessions:  map[string]string{},
		artifacts: map[string][]byte{},
		records:   3,
	}
	for _, opt := range opts {
		opt(f)
	}

	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

func (f *FakeService) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/api/auth/user", f.handleCurrentUser)
	e.POST("/api/auth/login", f.handleLogin)
	e.GET("/api/auth/logout", f.handleLogout)
	e.POST("/api/auth/register", f.handleRegister)
	e.POST("/process/:type", f.handleProcess)
	e.GET("/api/history", f.handleHistory)
	e.GET("/download/:name", f.handleDownload)
	return e
}

// ProcessCalls reports how many /process requests arrived.
func (f *FakeService) ProcessCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processCalls
}

// LastUpload returns the metadata of the most recent upload.
func (f *FakeService) LastUpload() UploadedFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpload
}

// Login issues a session for username directly and returns the cookie.
func (f *FakeService) Login(username string) *http.Cookie {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.sessions[token] = username
	return &http.Cookie{Name: SessionCookie, Value: token, Path: "/"}
}

// AddHistory appends a raw history row as the service would report it.
func (f *FakeService) AddHistory(row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, row)
}

func (f *FakeService) currentUser(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.sessions[cookie.Value]
	return name, ok
}

func (f *FakeService) userJSON(name string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]any{"username": name, "email": f.users[name].email}
}

func (f *FakeService) handleCurrentUser(c echo.Context) error {
	name, ok := f.currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Not logged in"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": f.userJSON(name)})
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *FakeService) handleLogin(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid request"})
	}
	f.mu.Lock()
	u, ok := f.users[req.Username]
	f.mu.Unlock()
	if !ok || u.password != req.Password {
		return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid username or password"})
	}
	c.SetCookie(f.Login(req.Username))
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Login successful", "user": f.userJSON(req.Username)})
}

func (f *FakeService) handleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		f.mu.Lock()
		delete(f.sessions, cookie.Value)
		f.mu.Unlock()
	}
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (f *FakeService) handleRegister(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Username and password are required"})
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[req.Username]; exists {
		return c.JSON(http.StatusConflict, map[string]any{"success": false, "message": "Username already exists"})
	}
	f.users[req.Username] = fakeUser{email: req.Email, password: req.Password}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "message": "Registration successful"})
}

func (f *FakeService) handleProcess(c echo.Context) error {
	f.mu.Lock()
	f.processCalls++
	gate := f.processGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	if _, ok := f.currentUser(c); !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Please log in"})
	}

	kind := strings.ToLower(c.Param("type"))
	switch kind {
	case "10th", "12th", "semester":
	default:
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid marksheet type"})
	}

	fh, err := c.FormFile("uploaded_file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "No file uploaded"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Empty file"})
	}
	defer src.Close()
	n, _ := io.Copy(io.Discard, src)

	f.mu.Lock()
	f.lastUpload = UploadedFile{
		Field:         "uploaded_file",
		Filename:      fh.Filename,
		ContentType:   fh.Header.Get("Content-Type"),
		Size:          n,
		MarksheetType: kind,
	}
	failStatus, failMessage := f.failStatus, f.failMessage
	records, legacy := f.records, f.omitReference
	f.mu.Unlock()

	switch {
	case failStatus > 0:
		return c.JSON(failStatus, map[string]any{"success": false, "message": failMessage})
	case failStatus < 0:
		return c.JSON(http.StatusOK, map[string]any{"success": false, "message": failMessage})
	}

	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	processed := fmt.Sprintf("%s_%s.xlsx", kind, base)

	f.mu.Lock()
	f.artifacts[processed] = []byte("xlsx:" + processed)
	f.history = append(f.history, map[string]any{
		"filename":           fh.Filename,
		"marksheet_type":     kind,
		"records_extracted":  records,
		"file_size":          n,
		"date":               time.Now().UTC().Format("2006-01-02T15:04:05.999999"),
		"processed_filename": processed,
	})
	f.mu.Unlock()

	resp := map[string]any{
		"success": true,
		"message": fmt.Sprintf("Processed %d records", records),
	}
	if legacy {
		resp["output_file"] = processed
	} else {
		resp["records_count"] = records
		resp["download_url"] = "/download/" + processed
	}
	return c.JSON(http.StatusOK, resp)
}

func (f *FakeService) handleHistory(c echo.Context) error {
	if _, ok := f.currentUser(c); !ok {
		return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Please log in"})
	}
	f.mu.Lock()
	rows := append([]map[string]any{}, f.history...)
	f.mu.Unlock()
	return c.JSON(http.StatusOK, rows)
}

func (f *FakeService) handleDownload(c echo.Context) error {
	name := c.Param("name")
	f.mu.Lock()
	data, ok := f.artifacts[name]
	f.mu.Unlock()
	if !ok {
		return c.String(http.StatusNotFound, "not found")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
