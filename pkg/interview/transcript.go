package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/txn2/interview-platform/pkg/session"
)

// ErrSessionNotFound is returned when a transcript is requested for an
// unknown or expired session.
var ErrSessionNotFound = errors.New("session not found")

// ErrReviewUnavailable is returned by Review when no reviewer is configured.
var ErrReviewUnavailable = errors.New("review is not configured")

// Reviewer produces written feedback for a transcript.
type Reviewer interface {
	Review(ctx context.Context, history []session.QA) (string, error)
}

// Transcript returns the stored record of a session.
func (s *Service) Transcript(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// TranscriptFor returns the stored record of a session owned by userID. An
// empty userID skips the ownership check. Sessions owned by someone else are
// reported as ErrSessionNotFound so their existence is not revealed.
func (s *Service) TranscriptFor(ctx context.Context, userID, sessionID string) (*session.Session, error) {
	if userID != "" {
		ids, err := s.store.ListByUser(ctx, userID)
		if err != nil {
			return nil, s.storeError("list", userID, err)
		}
		if !slices.Contains(ids, sessionID) {
			return nil, ErrSessionNotFound
		}
	}
	return s.Transcript(ctx, sessionID)
}

// Sessions lists the sessions owned by userID, newest first. Sessions that
// have expired from the store are skipped.
func (s *Service) Sessions(ctx context.Context, userID string) ([]session.Summary, error) {
	ids, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.storeError("list", userID, err)
	}

	summaries := make([]session.Summary, 0, len(ids))
	for _, id := range ids {
		sess, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			continue
		}
		summaries = append(summaries, sess.Summarize())
	}
	return summaries, nil
}

// Review generates feedback for the stored transcript of sessionID, subject
// to the same ownership rule as TranscriptFor.
func (s *Service) Review(ctx context.Context, userID, sessionID string) (string, error) {
	sess, err := s.TranscriptFor(ctx, userID, sessionID)
	if err != nil {
		return "", err
	}
	return s.ReviewHistory(ctx, sess.History)
}

// ReviewHistory generates feedback for a transcript supplied by the caller.
func (s *Service) ReviewHistory(ctx context.Context, history []session.QA) (string, error) {
	if s.reviewer == nil {
		return "", ErrReviewUnavailable
	}
	text, err := s.reviewer.Review(ctx, history)
	if err != nil {
		return "", fmt.Errorf("reviewing transcript: %w", err)
	}
	return text, nil
}
