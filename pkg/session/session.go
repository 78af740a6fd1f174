// Package session provides session persistence for the interview platform.
// It defines the Session record threaded through one interview and the Store
// interface used to load and save it.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/txn2/interview-platform/pkg/catalog"
)

// ErrNoID is returned when saving a session without an identifier.
var ErrNoID = errors.New("session has no id")

// QA is one answered question in a session transcript.
type QA struct {
	QuestionID catalog.QuestionID `json:"qId"`
	Question   string             `json:"qText"`
	Answer     string             `json:"aText"`
}

// Session is the mutable record of one interview. It is persisted as a
// single JSON object keyed by ID.
type Session struct {
	// ID is the opaque store key, fixed at creation.
	ID string `json:"id"`

	// QuestionCount is the number of questions issued so far, including the
	// opening one. It starts at 1.
	QuestionCount int `json:"questionCount"`

	// Finished is terminal: a finished session accepts no further answers.
	Finished bool `json:"finished"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	MaxQuestions     int `json:"maxQuestions"`
	TimeLimitMinutes int `json:"timeLimitMinutes"`

	// History is append-only, in chronological order.
	History []QA `json:"history"`

	// LastAskedID is the question the next answer responds to.
	LastAskedID catalog.QuestionID `json:"lastAskedId"`

	ConceptAsked    bool `json:"conceptAsked"`
	BackgroundAsked bool `json:"backgroundAsked"`
	AskedTeamRole   bool `json:"askedTeamRole"`

	// LanguageKey is set once, from the answer to the second question.
	LanguageKey catalog.Language `json:"languageKey,omitempty"`

	// TeamSeen is sticky once true.
	TeamSeen bool `json:"teamSeen"`

	// MainIndex is the cursor into catalog.MainSequence. It never decreases.
	MainIndex int `json:"mainIndex"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = slices.Clone(s.History)
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}

// Finish marks the session terminal at now.
func (s *Session) Finish(now time.Time) {
	s.Finished = true
	s.EndTime = &now
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}

// Summary is the listing view of a session used by history pages.
type Summary struct {
	ID            string     `json:"id"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Finished      bool       `json:"finished"`
	QuestionCount int        `json:"questionCount"`
}

// Summarize returns the listing view of s.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:            s.ID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Finished:      s.Finished,
		QuestionCount: s.QuestionCount,
	}
}

// Store defines the interface for session persistence.
type Store interface {
	// Get retrieves a session by ID. Returns nil, nil if not found or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Save inserts or replaces the session and refreshes its expiry.
	Save(ctx context.Context, s *Session) error

	// Link records that userID owns sessionID.
	Link(ctx context.Context, userID, sessionID string) error

	// ListByUser returns the session IDs linked to userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]string, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Close stops background routines and releases resources.
	Close() error
}
