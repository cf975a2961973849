package processing

import "github.com/JeevithaAnandhan/marksheetpro/internal/domain"

// UserResult is the outcome of a current-user lookup: LoggedIn or LoggedOut.
type UserResult interface{ isUserResult() }

type LoggedIn struct{ User domain.User }
type LoggedOut struct{}

func (LoggedIn) isUserResult()  {}
func (LoggedOut) isUserResult() {}

// LoginResult is LoginSuccess or LoginFailure.
type LoginResult interface{ isLoginResult() }

type LoginSuccess struct{ User domain.User }
type LoginFailure struct{ Message string }

func (LoginSuccess) isLoginResult() {}
func (LoginFailure) isLoginResult() {}

// RegisterResult is RegisterSuccess or RegisterFailure.
type RegisterResult interface{ isRegisterResult() }

type RegisterSuccess struct{ Message string }
type RegisterFailure struct{ Message string }

func (RegisterSuccess) isRegisterResult() {}
func (RegisterFailure) isRegisterResult() {}

// ProcessResult is a successful marksheet extraction.
type ProcessResult struct {
	RecordsCount int
	DownloadURL  string
	Message      string
}
