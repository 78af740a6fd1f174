// Package interview runs the lifecycle of an interview session: it creates
// sessions, applies answers, enforces the question and time limits and
// persists every decision before replying.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/txn2/interview-platform/pkg/catalog"
	"github.com/txn2/interview-platform/pkg/dialogue"
	"github.com/txn2/interview-platform/pkg/session"
)

// Client errors. Callers map these to 4xx responses.
var (
	ErrInvalidSession  = errors.New("invalid or finished session")
	ErrMissingAnswer   = errors.New("answer is required")
	ErrMissingSettings = errors.New("max questions and time limit must be positive")
)

// ErrStoreUnavailable wraps any session store failure. It is fatal to the
// request and never retried here.
var ErrStoreUnavailable = errors.New("session store unavailable")

// End reasons reported in Reply.EndReason.
const (
	EndReasonCompleted     = "completed"
	EndReasonTimeLimit     = "time_limit"
	EndReasonQuestionLimit = "question_limit"
)

// Recorder receives lifecycle events, typically for metrics.
type Recorder interface {
	SessionStarted()
	QuestionAsked(id catalog.QuestionID, rule string)
	SessionFinished(reason string, questions int, elapsed time.Duration)
	StoreFailed(op string)
}

// StartParams configures a new session.
type StartParams struct {
	MaxQuestions     int
	TimeLimitMinutes int

	// UserID links the session to its owner when set.
	UserID string
}

// Reply is what the interviewer says next.
type Reply struct {
	SessionID    string             `json:"sessionId"`
	QuestionID   catalog.QuestionID `json:"questionId"`
	QuestionText string             `json:"questionText"`
	Finished     bool               `json:"finished"`
	EndReason    string             `json:"endReason,omitempty"`
}

// Service is the session lifecycle controller.
type Service struct {
	store    session.Store
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	recorder Recorder
	reviewer Reviewer
	locks    *keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides session id generation. Defaults to random UUIDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithRecorder installs a lifecycle event recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithReviewer installs the transcript reviewer used by Review.
func WithReviewer(r Reviewer) Option {
	return func(s *Service) { s.reviewer = r }
}

// NewService creates a lifecycle controller over store.
func NewService(store session.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates and persists a new session and returns the opening
// question.
func (s *Service) Start(ctx context.Context, p StartParams) (*Reply, error) {
	if p.MaxQuestions <= 0 || p.TimeLimitMinutes <= 0 {
		return nil, ErrMissingSettings
	}

	sess := &session.Session{
		ID:               s.newID(),
		QuestionCount:    1,
		StartTime:        s.now(),
		MaxQuestions:     p.MaxQuestions,
		TimeLimitMinutes: p.TimeLimitMinutes,
		History:          []session.QA{},
		LastAskedID:      catalog.QuestionFirst,
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	if p.UserID != "" {
		if err := s.store.Link(ctx, p.UserID, sess.ID); err != nil {
			return nil, s.storeError("link", sess.ID, err)
		}
	}

	s.logger.Info("interview started",
		"session_id", sess.ID,
		"max_questions", sess.MaxQuestions,
		"time_limit_minutes", sess.TimeLimitMinutes)
	if s.recorder != nil {
		s.recorder.SessionStarted()
		s.recorder.QuestionAsked(catalog.QuestionFirst, "")
	}

	return &Reply{
		SessionID:    sess.ID,
		QuestionID:   catalog.QuestionFirst,
		QuestionText: catalog.Opening(),
	}, nil
}

// Answer applies the applicant's answer to the question last asked in the
// session and returns the next question. Limits are evaluated before the
// dialogue runs; when one is reached the session ends without recording
// the answer.
func (s *Service) Answer(ctx context.Context, sessionID, answer string) (*Reply, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Finished {
		return nil, ErrInvalidSession
	}
	if strings.TrimSpace(answer) == "" {
		return nil, ErrMissingAnswer
	}

	now := s.now()
	if kind, limit, ok := limitReached(sess, now); ok {
		return s.finishOnLimit(ctx, sess, now, kind, limit)
	}

	sess.History = append(sess.History, session.QA{
		QuestionID: sess.LastAskedID,
		Question:   catalog.Text(sess.LastAskedID, sess.LanguageKey),
		Answer:     answer,
	})

	d := dialogue.Decide(sess, answer)
	sess.LastAskedID = d.QuestionID
	sess.QuestionCount++
	if d.Final {
		sess.Finish(now)
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	reply := &Reply{
		SessionID:    sess.ID,
		QuestionID:   d.QuestionID,
		QuestionText: d.Text,
		Finished:     d.Final,
	}
	if d.Final {
		reply.EndReason = EndReasonCompleted
		s.logger.Info("interview completed",
			"session_id", sess.ID,
			"questions", sess.QuestionCount)
	} else {
		s.logger.Debug("question decided",
			"session_id", sess.ID,
			"question_id", d.QuestionID,
			"rule", d.Rule)
	}

	if s.recorder != nil {
		s.recorder.QuestionAsked(d.QuestionID, d.Rule)
		if d.Final {
			s.recorder.SessionFinished(EndReasonCompleted, sess.QuestionCount, sess.Elapsed(now))
		}
	}
	return reply, nil
}

// limitReached reports which configured limit, if any, the session has hit.
// The question limit takes precedence when both are reached.
func limitReached(sess *session.Session, now time.Time) (catalog.LimitKind, int, bool) {
	if sess.QuestionCount >= sess.MaxQuestions {
		return catalog.LimitQuestions, sess.MaxQuestions, true
	}
	limit := time.Duration(sess.TimeLimitMinutes) * time.Minute
	if sess.Elapsed(now) >= limit {
		return catalog.LimitTime, sess.TimeLimitMinutes, true
	}
	return "", 0, false
}

func (s *Service) finishOnLimit(ctx context.Context, sess *session.Session, now time.Time, kind catalog.LimitKind, limit int) (*Reply, error) {
	sess.Finish(now)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	reason := EndReasonQuestionLimit
	if kind == catalog.LimitTime {
		reason = EndReasonTimeLimit
	}
	s.logger.Info("interview ended by limit",
		"session_id", sess.ID,
		"reason", reason,
		"questions", sess.QuestionCount,
		"elapsed", sess.Elapsed(now))
	if s.recorder != nil {
		s.recorder.QuestionAsked(catalog.QuestionFinal, reason)
		s.recorder.SessionFinished(reason, sess.QuestionCount, sess.Elapsed(now))
	}

	return &Reply{
		SessionID:    sess.ID,
		QuestionID:   catalog.QuestionFinal,
		QuestionText: catalog.LimitReason(kind, limit) + " " + catalog.Closing(),
		Finished:     true,
		EndReason:    reason,
	}, nil
}

func (s *Service) load(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.storeError("get", id, err)
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *session.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		return s.storeError("save", sess.ID, err)
	}
	return nil
}

func (s *Service) storeError(op, id string, err error) error {
	s.logger.Error("session store failure", "op", op, "session_id", id, "error", err)
	if s.recorder != nil {
		s.recorder.StoreFailed(op)
	}
	return fmt.Errorf("%w: %s session %s: %w", ErrStoreUnavailable, op, id, err)
}
