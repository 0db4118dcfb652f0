package advisor

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is the per-user conversation state: the authentication flag, the
// bound student record and the append-only transcript. A Session is owned by
// one interactive context and is not safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	authenticated bool
	student       *StudentRecord
	transcript    []Message
	firstTurn     bool
}

// NewSession creates an unauthenticated session with a fresh identifier.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		firstTurn: true,
	}
}

// Authenticated reports whether a student is signed in.
func (s *Session) Authenticated() bool { return s.authenticated }

// Student returns a copy of the bound record, if any.
func (s *Session) Student() (StudentRecord, bool) {
	if s.student == nil {
		return StudentRecord{}, false
	}
	return s.student.Clone(), true
}

// Transcript returns a copy of the conversation so far, oldest first.
func (s *Session) Transcript() []Message {
	return slices.Clone(s.transcript)
}

// Len returns the number of transcript messages.
func (s *Session) Len() int { return len(s.transcript) }

// FirstTurn reports whether no user message has been recorded since the
// session was created or last signed out.
func (s *Session) FirstTurn() bool { return s.firstTurn }

// Login binds rec and marks the session authenticated, replacing any
// previously bound record.
func (s *Session) Login(rec StudentRecord, now time.Time) {
	r := rec.Clone()
	s.student = &r
	s.authenticated = true
	s.UpdatedAt = now
}

// Logout clears authentication, the bound record and the transcript.
func (s *Session) Logout(now time.Time) {
	s.authenticated = false
	s.student = nil
	s.transcript = nil
	s.firstTurn = true
	s.UpdatedAt = now
}

// Append adds msg to the end of the transcript. Recording a user message
// ends the first turn.
func (s *Session) Append(msg Message) {
	s.transcript = append(s.transcript, msg)
	if msg.Role == RoleUser {
		s.firstTurn = false
	}
	s.UpdatedAt = msg.Timestamp
}
