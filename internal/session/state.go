package session

import (
	"fmt"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
)

// State is the derived position of a Session in the upload flow.
type State int

const (
	Idle State = iota
	TypeSelected
	FileReady
	Processing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TypeSelected:
		return "type_selected"
	case FileReady:
		return "file_ready"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the client-visible state of one marksheet submission.
type Session struct {
	SelectedType   *domain.MarksheetType
	SelectedFile   *domain.FileHandle
	IsProcessing   bool
	DownloadHandle string

	RecordsCount int
	LastMessage  string
}

// State derives the flow position from the session fields.
func (s Session) State() State {
	switch {
	case s.IsProcessing:
		return Processing
	case s.DownloadHandle != "":
		return Completed
	case s.SelectedFile != nil:
		return FileReady
	case s.SelectedType != nil:
		return TypeSelected
	default:
		return Idle
	}
}

// Type returns the selected type, or "" when unset.
func (s Session) Type() domain.MarksheetType {
	if s.SelectedType == nil {
		return ""
	}
	return *s.SelectedType
}

// Check reports the first violated session invariant.
func (s Session) Check() error {
	if s.SelectedFile != nil && s.SelectedType == nil {
		return fmt.Errorf("file %q held without a marksheet type", s.SelectedFile.Name)
	}
	if s.IsProcessing && (s.SelectedType == nil || s.SelectedFile == nil) {
		return fmt.Errorf("processing without both type and file")
	}
	if s.DownloadHandle != "" && (s.SelectedType == nil || s.SelectedFile == nil) {
		return fmt.Errorf("download handle held without the submitted type and file")
	}
	return nil
}

func (s Session) clone() Session {
	out := s
	if s.SelectedType != nil {
		t := *s.SelectedType
		out.SelectedType = &t
	}
	return out
}
