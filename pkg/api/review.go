package api

import (
	"errors"
	"net/http"

	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/review"
	"github.com/txn2/interview-platform/pkg/session"
)

// reviewRequest is the body of POST /api/review. SessionID takes
// precedence over an inline history.
type reviewRequest struct {
	SessionID string       `json:"sessionId,omitempty"`
	History   []session.QA `json:"history,omitempty"`
}

// reviewResponse is the body of a successful review.
type reviewResponse struct {
	Review string `json:"review"`
}

// handleReview generates written feedback for a transcript.
//
// @Summary      Review transcript
// @Description  Generates interviewer feedback for a stored session or an inline history.
// @Tags         Review
// @Accept       json
// @Produce      json
// @Param        body  body  reviewRequest  true  "Session to review"
// @Success      200  {object}  reviewResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Router       /review [post]
func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		text string
		err  error
	)
	if req.SessionID != "" {
		text, err = h.service.Review(r.Context(), userID(r), req.SessionID)
	} else {
		text, err = h.service.ReviewHistory(r.Context(), req.History)
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reviewResponse{Review: text})
	case errors.Is(err, review.ErrEmptyHistory):
		writeError(w, http.StatusBadRequest, kindEmptyHistory, "history is empty")
	case errors.Is(err, interview.ErrReviewUnavailable):
		writeError(w, http.StatusServiceUnavailable, "", err.Error())
	case errors.Is(err, review.ErrRateLimited), errors.Is(err, review.ErrReviewFailed):
		h.logger.Warn("review failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusBadGateway, "", "review generation failed")
	default:
		h.writeServiceError(w, r, err)
	}
}
