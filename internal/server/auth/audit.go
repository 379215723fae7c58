package auth

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditEvent represents an audit log event type
type AuditEvent string

const (
	// Authentication events
	AuditSignInSuccess AuditEvent = "auth.signin.success"
	AuditSignInFailure AuditEvent = "auth.signin.failure"
	AuditSignUp        AuditEvent = "auth.signup"

	// Employee events
	AuditEmployeeCreated AuditEvent = "employee.created"
	AuditEmployeeUpdated AuditEvent = "employee.updated"
	AuditEmployeeDeleted AuditEvent = "employee.deleted"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         uuid.UUID
	EventType  AuditEvent
	ActorID    *uuid.UUID
	TargetType string
	TargetID   string
	Details    map[string]string
	ClientIP   string
	UserAgent  string
	CreatedAt  time.Time
}

// AuditLogger is an interface for logging audit events
type AuditLogger interface {
	Log(entry *AuditLog) error
}

func stamp(entry *AuditLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

// LogAuditLogger writes audit entries as structured log lines
type LogAuditLogger struct {
	log zerolog.Logger
}

// NewLogAuditLogger creates an audit logger on top of log
func NewLogAuditLogger(log zerolog.Logger) *LogAuditLogger {
	return &LogAuditLogger{log: log.With().Str("component", "audit").Logger()}
}

// Log writes one entry
func (l *LogAuditLogger) Log(entry *AuditLog) error {
	stamp(entry)

	ev := l.log.Info().
		Str("audit_id", entry.ID.String()).
		Str("event", string(entry.EventType)).
		Str("target_type", entry.TargetType).
		Str("target_id", entry.TargetID).
		Str("client_ip", entry.ClientIP).
		Str("user_agent", entry.UserAgent).
		Time("at", entry.CreatedAt)
	if entry.ActorID != nil {
		ev = ev.Str("actor_id", entry.ActorID.String())
	}
	if len(entry.Details) > 0 {
		d := zerolog.Dict()
		for k, v := range entry.Details {
			d = d.Str(k, v)
		}
		ev = ev.Dict("details", d)
	}
	ev.Msg("audit")
	return nil
}

// InMemoryAuditLogger keeps entries in memory for tests and development
type InMemoryAuditLogger struct {
	mu   sync.Mutex
	logs []AuditLog
}

// NewInMemoryAuditLogger creates a new in-memory audit logger
func NewInMemoryAuditLogger() *InMemoryAuditLogger {
	return &InMemoryAuditLogger{}
}

// Log adds an audit log entry
func (l *InMemoryAuditLogger) Log(entry *AuditLog) error {
	stamp(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, *entry)
	return nil
}

// GetLogs returns a copy of the recorded entries
func (l *InMemoryAuditLogger) GetLogs() []AuditLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditLog(nil), l.logs...)
}

// CreateSignInAuditLog creates an audit log for a sign-in attempt
func CreateSignInAuditLog(success bool, userID *uuid.UUID, email, clientIP, userAgent string) *AuditLog {
	eventType := AuditSignInFailure
	details := map[string]string{"email": email}
	if success {
		eventType = AuditSignInSuccess
	} else {
		details["reason"] = "invalid_credentials"
	}

	target := ""
	if userID != nil {
		target = userID.String()
	}

	return &AuditLog{
		EventType:  eventType,
		ActorID:    userID,
		TargetType: "user",
		TargetID:   target,
		Details:    details,
		ClientIP:   clientIP,
		UserAgent:  userAgent,
	}
}

// CreateSignUpAuditLog creates an audit log for a new account
func CreateSignUpAuditLog(user *User, clientIP, userAgent string) *AuditLog {
	return &AuditLog{
		EventType:  AuditSignUp,
		ActorID:    &user.ID,
		TargetType: "user",
		TargetID:   user.ID.String(),
		Details:    map[string]string{"email": user.Email, "username": user.Username},
		ClientIP:   clientIP,
		UserAgent:  userAgent,
	}
}

// CreateEmployeeAuditLog creates an audit log for an employee write
func CreateEmployeeAuditLog(event AuditEvent, actorID *uuid.UUID, employeeID int64, clientIP string) *AuditLog {
	return &AuditLog{
		EventType:  event,
		ActorID:    actorID,
		TargetType: "employee",
		TargetID:   strconv.FormatInt(employeeID, 10),
		ClientIP:   clientIP,
	}
}
