package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/repository"
)

// AccountClient is the slice of processing.Client the account service needs.
type AccountClient interface {
	BaseURL() *url.URL
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	CurrentUser(ctx context.Context) (processing.UserResult, error)
	Login(ctx context.Context, username, password string) (processing.LoginResult, error)
	Register(ctx context.Context, username, email, password string) (processing.RegisterResult, error)
	Logout(ctx context.Context) error
}

type accountService struct {
	client   AccountClient
	cookies  repository.CookieRepo
	observer UseCaseObserver
}

func NewAccountService(client AccountClient, cookies repository.CookieRepo, observers ...UseCaseObserver) AccountService {
	return &accountService{
		client:   client,
		cookies:  cookies,
		observer: combineObservers(observers),
	}
}

func (s *accountService) host() string {
	return s.client.BaseURL().Host
}

// Restore loads the cookies saved by a previous run into the client.
func (s *accountService) Restore(ctx context.Context) error {
	saved, err := s.cookies.Load(ctx, s.host())
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	s.client.SetCookies(saved)
	return nil
}

func (s *accountService) CurrentUser(ctx context.Context) (processing.UserResult, error) {
	return s.client.CurrentUser(ctx)
}

// Authenticated reports whether the service recognises the current session.
// Transport failures count as not authenticated.
func (s *accountService) Authenticated(ctx context.Context) bool {
	res, err := s.client.CurrentUser(ctx)
	if err != nil {
		return false
	}
	_, ok := res.(processing.LoggedIn)
	return ok
}

func (s *accountService) Login(ctx context.Context, username, password string) (res processing.LoginResult, err error) {
	fields := map[string]any{"username": username}
	done := track(ctx, s.observer, "login", fields)
	defer func() { done(err) }()

	res, err = s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	success, ok := res.(processing.LoginSuccess)
	fields["success"] = ok
	if !ok {
		return res, nil
	}
	if err = s.cookies.Save(ctx, s.host(), s.client.Cookies()); err != nil {
		return nil, fmt.Errorf("saving session for %s: %w", success.User.Username, err)
	}
	return res, nil
}

func (s *accountService) Register(ctx context.Context, username, email, password string) (res processing.RegisterResult, err error) {
	done := track(ctx, s.observer, "register", map[string]any{"username": username})
	defer func() { done(err) }()

	return s.client.Register(ctx, username, email, password)
}

// Logout ends the remote session on a best-effort basis and always forgets
// the locally stored cookies.
func (s *accountService) Logout(ctx context.Context) (err error) {
	done := track(ctx, s.observer, "logout", nil)
	defer func() { done(err) }()

	remoteErr := s.client.Logout(ctx)
	if err = s.cookies.Clear(ctx, s.host()); err != nil {
		return fmt.Errorf("clearing saved session: %w", err)
	}
	return remoteErr
}
