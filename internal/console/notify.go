package console

import (
	"fmt"
	"io"
	"sync"
)

// Notification messages
const (
	MsgSignInOK       = "Logged in successfully"
	MsgSignInFailed   = "Sign-in failed. Please check your credentials."
	MsgSignUpOK       = "Signup successfully"
	MsgSignUpFailed   = "Signup failed.. Please check your credentials."
	MsgUnexpected     = "Something went wrong"
	MsgSignedOut      = "Signed out"
	MsgSessionExpired = "Your session has ended. Please sign in again."
	MsgNotSignedIn    = "You are not signed in. Run 'ems signin' first."
)

// Level is a notification severity
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one toast shown to the user
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows transient feedback to the user
type Notifier interface {
	Notify(n Notification)
}

// WriterNotifier prints notifications as single lines
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify prints n
func (wn *WriterNotifier) Notify(n Notification) {
	mark := "✓"
	if n.Level == LevelError {
		mark = "✗"
	}
	fmt.Fprintf(wn.w, "%s %s\n", mark, n.Message)
}

// RecordingNotifier keeps every notification, for tests and scripting
type RecordingNotifier struct {
	mu   sync.Mutex
	seen []Notification
}

// Notify records n
func (r *RecordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

// All returns the recorded notifications in order
func (r *RecordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}
