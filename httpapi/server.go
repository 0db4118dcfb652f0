// Package httpapi serves advisor sessions over HTTP with chi.
//
// Clients create a session and receive a signed token naming it. Every
// other call carries the token as a bearer credential; the session id is
// never taken from the URL.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/advisor"
	advjson "github.com/fwojciec/advisor/json"
	"github.com/fwojciec/advisor/prometheus"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const defaultTokenTTL = 12 * time.Hour

type contextKey string

const sessionIDKey contextKey = "session_id"

// Config holds server settings.
type Config struct {
	Secret   []byte        // HMAC key for session tokens
	TokenTTL time.Duration // default 12h
}

// Server exposes the conversation loop over HTTP.
type Server struct {
	cfg      Config
	loop     *advisor.Loop
	roster   *advisor.RosterCache
	sessions *Registry
	metrics  *prometheus.Metrics
	logger   *zap.Logger
}

// New creates a Server. metrics and logger may be nil.
func New(cfg Config, loop *advisor.Loop, roster *advisor.RosterCache, sessions *Registry, metrics *prometheus.Metrics, logger *zap.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if metrics == nil {
		metrics = prometheus.NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		loop:     loop,
		roster:   roster,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
	sessions.SetExpireHook(func(id string) {
		s.metrics.ActiveSessions.Dec()
		s.logger.Info("session expired", zap.String("session", id))
	})
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/v1/session", s.handleGetSession)
		r.Delete("/v1/session", s.handleDeleteSession)
		r.Post("/v1/session/login", s.handleLogin)
		r.Post("/v1/session/guest", s.handleGuest)
		r.Post("/v1/session/logout", s.handleLogout)
		r.Post("/v1/session/ask", s.handleAsk)
		r.Get("/v1/session/transcript", s.handleTranscript)
	})
	return r
}

type sessionResponse struct {
	SessionID     string `json:"session_id"`
	Authenticated bool   `json:"authenticated"`
	Guest         bool   `json:"guest"`
	Status        string `json:"status"`
	Messages      int    `json:"messages"`
}

type createResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type loginRequest struct {
	StudentID string `json:"student_id"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"roster":   s.roster.Loaded(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id := s.sessions.Create()
	expires := time.Now().Add(s.cfg.TokenTTL)
	token, err := s.signToken(id, expires)
	if err != nil {
		s.sessions.Remove(id)
		respondError(w, http.StatusInternalServerError, "token_error", err.Error())
		return
	}
	s.metrics.ActiveSessions.Inc()
	s.logger.Info("session created", zap.String("session", id))
	respondJSON(w, http.StatusCreated, createResponse{SessionID: id, Token: token, ExpiresAt: expires.UTC()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *advisor.Session) {
		respondJSON(w, http.StatusOK, describe(sess))
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	_, release, err := s.sessions.acquire(id)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	release()
	if s.sessions.Remove(id) {
		s.metrics.ActiveSessions.Dec()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	roster, err := s.roster.Get(r.Context())
	if err != nil && !errors.Is(err, advisor.ErrRosterUnavailable) {
		s.logger.Error("roster load failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "roster_unavailable", "Student roster could not be loaded.")
		return
	}
	s.withSession(w, r, func(sess *advisor.Session) {
		rec, err := s.loop.Login(sess, roster, req.StudentID)
		s.metrics.ObserveLogin(rec, err)
		switch {
		case errors.Is(err, advisor.ErrAlreadyAuthenticated):
			respondError(w, http.StatusConflict, "already_authenticated", "Log out before signing in again.")
		case errors.Is(err, advisor.ErrInvalidStudentID), errors.Is(err, advisor.ErrStudentNotFound):
			respondError(w, http.StatusUnauthorized, "invalid_student_id", "Invalid Student ID. Please try again.")
		case err != nil:
			respondError(w, http.StatusInternalServerError, "login_failed", err.Error())
		default:
			respondJSON(w, http.StatusOK, describe(sess))
		}
	})
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *advisor.Session) {
		rec, err := s.loop.Guest(sess)
		s.metrics.ObserveLogin(rec, err)
		if errors.Is(err, advisor.ErrAlreadyAuthenticated) {
			respondError(w, http.StatusConflict, "already_authenticated", "Log out before signing in again.")
			return
		}
		respondJSON(w, http.StatusOK, describe(sess))
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *advisor.Session) {
		s.loop.Logout(sess)
		respondJSON(w, http.StatusOK, describe(sess))
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	// An issued generation call runs to completion even if the client leaves.
	ctx := context.WithoutCancel(r.Context())
	s.withSession(w, r, func(sess *advisor.Session) {
		reply, err := s.loop.Ask(ctx, sess, req.Question)
		var genErr *advisor.GenerationError
		switch {
		case errors.Is(err, advisor.ErrNotAuthenticated):
			respondError(w, http.StatusUnauthorized, "not_authenticated", "Sign in before asking a question.")
		case errors.Is(err, advisor.ErrEmptyQuestion):
			respondError(w, http.StatusBadRequest, "empty_question", "Question must not be empty.")
		case errors.As(err, &genErr):
			respondError(w, http.StatusBadGateway, "generation_failed", genErr.UserMessage())
		case err != nil:
			respondError(w, http.StatusInternalServerError, "ask_failed", err.Error())
		default:
			respondJSON(w, http.StatusOK, askResponse{
				Role:      string(reply.Role),
				Content:   reply.Content,
				Timestamp: reply.Timestamp,
			})
		}
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *advisor.Session) {
		data, err := advjson.MarshalSession(sess)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// withSession runs fn with exclusive access to the caller's session.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*advisor.Session)) {
	sess, release, err := s.sessions.acquire(sessionID(r.Context()))
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	defer release()
	fn(sess)
}

func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "Session not found or expired.")
	case errors.Is(err, advisor.ErrTurnInProgress):
		respondError(w, http.StatusConflict, "turn_in_progress", "A question is already being answered.")
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func describe(sess *advisor.Session) sessionResponse {
	rec, _ := sess.Student()
	return sessionResponse{
		SessionID:     sess.ID,
		Authenticated: sess.Authenticated(),
		Guest:         rec.Guest,
		Status:        advisor.Describe(sess),
		Messages:      sess.Len(),
	}
}

func (s *Server) signToken(id string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": id,
		"exp": expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("httpapi: sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tokenStr == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.cfg.Secret, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		id, ok := claims["sid"].(string)
		if !ok || id == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
