// Package audit defines query run records and the sink that persists them.
package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusDraft   = "draft"
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// ValidStatuses lists the accepted run statuses.
var ValidStatuses = []string{StatusDraft, StatusSuccess, StatusFail}

// Run records one rendered command handed to a user.
type Run struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	ClassName string `json:"class_name"`
	Command   string `json:"command"`
	Status    string `json:"status"`
	ErrorText string `json:"error_text,omitempty"`
	RanAt     string `json:"ran_at"`
}

// Sink persists runs.
type Sink interface {
	LogRun(run Run) error
}

// Validation errors.
var (
	ErrEmptyCommand  = errors.New("command is required")
	ErrInvalidStatus = errors.New("invalid status")
)

// NewRun builds a run stamped with a fresh ID and the current UTC time.
// An empty status defaults to draft.
func NewRun(user, className, command, status, errorText string) Run {
	if status == "" {
		status = StatusDraft
	}
	return Run{
		ID:        uuid.NewString(),
		User:      user,
		ClassName: className,
		Command:   command,
		Status:    status,
		ErrorText: errorText,
		RanAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Validate checks a run before it is stored.
func (r *Run) Validate() error {
	if r.Command == "" {
		return ErrEmptyCommand
	}
	if !IsValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}
