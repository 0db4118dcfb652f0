package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Loop drives a session between its two states, Unauthenticated and
// Authenticated, and runs one generation call per user turn.
type Loop struct {
	generator Generator
	config    KnowledgeBaseConfig
	composer  Composer
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithComposer replaces the default prompt composer.
func WithComposer(c Composer) Option {
	return func(l *Loop) { l.composer = c }
}

// WithClock sets the time source used for prompts and message timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates a Loop that sends every turn to generator with config.
func NewLoop(generator Generator, config KnowledgeBaseConfig, opts ...Option) *Loop {
	l := &Loop{
		generator: generator,
		config:    config,
		composer:  NewComposer(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Composer returns the composer used for prompts.
func (l *Loop) Composer() Composer { return l.composer }

// Login authenticates submitted against roster and binds the matched record.
// Non-numeric input fails with ErrInvalidStudentID, unknown identifiers with
// ErrStudentNotFound. The guest identity always succeeds.
func (l *Loop) Login(s *Session, roster *Roster, submitted string) (StudentRecord, error) {
	if s.Authenticated() {
		return StudentRecord{}, ErrAlreadyAuthenticated
	}
	rec, ok := Authenticate(roster, submitted)
	if !ok {
		if _, numeric := ParseSubmittedID(submitted); !numeric {
			l.logger.Info("login rejected", zap.String("session", s.ID), zap.String("reason", "malformed"))
			return StudentRecord{}, ErrInvalidStudentID
		}
		l.logger.Info("login rejected", zap.String("session", s.ID), zap.String("reason", "not_found"))
		return StudentRecord{}, ErrStudentNotFound
	}
	s.Login(rec, l.now())
	l.logger.Info("login", zap.String("session", s.ID), zap.Bool("guest", rec.Guest))
	return rec, nil
}

// Guest binds the guest placeholder record without consulting a roster.
func (l *Loop) Guest(s *Session) (StudentRecord, error) {
	if s.Authenticated() {
		return StudentRecord{}, ErrAlreadyAuthenticated
	}
	rec := GuestRecord()
	s.Login(rec, l.now())
	l.logger.Info("login", zap.String("session", s.ID), zap.Bool("guest", true))
	return rec, nil
}

// Logout returns the session to the Unauthenticated state unconditionally.
func (l *Loop) Logout(s *Session) {
	s.Logout(l.now())
	l.logger.Info("logout", zap.String("session", s.ID))
}

// Ask runs one turn: it composes the prompt from the session as it stood
// before text, records text as a user message, calls the generator and
// records the reply. On failure the transcript keeps only the user message
// and the returned error is a *GenerationError.
func (l *Loop) Ask(ctx context.Context, s *Session, text string) (Message, error) {
	if !s.Authenticated() {
		return Message{}, ErrNotAuthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyQuestion
	}

	now := l.now()
	prompt := l.composer.Compose(s, text, now)
	s.Append(UserMessage(text, now))

	start := time.Now()
	answer, err := l.generator.Generate(ctx, GenerationRequest{Prompt: prompt, Config: l.config})
	if err == nil && strings.TrimSpace(answer.Text) == "" {
		err = ErrEmptyAnswer
	}
	if err != nil {
		l.logger.Error("generation failed",
			zap.String("session", s.ID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Message{}, &GenerationError{Err: err}
	}
	l.logger.Debug("generation complete",
		zap.String("session", s.ID),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("citations", len(answer.Citations)),
		zap.Duration("elapsed", time.Since(start)))

	reply := AssistantMessage(answer.String(), l.now())
	s.Append(reply)
	return reply, nil
}

// Describe returns a short status string for the session, e.g. for a UI
// status line.
func Describe(s *Session) string {
	rec, ok := s.Student()
	if !s.Authenticated() || !ok {
		return "signed out"
	}
	if rec.Guest {
		return "signed in as guest"
	}
	return fmt.Sprintf("signed in as %s", rec.Name())
}
