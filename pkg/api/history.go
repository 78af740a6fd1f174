package api

import (
	"net/http"

	"github.com/txn2/interview-platform/pkg/session"
)

// historyListResponse is the body of GET /api/history.
type historyListResponse struct {
	Sessions []session.Summary `json:"sessions"`
}

// handleListHistory lists the caller's sessions, newest first.
//
// @Summary      List interview history
// @Description  Returns summaries of the authenticated caller's sessions, newest first. Anonymous callers have no history.
// @Tags         History
// @Produce      json
// @Success      200  {object}  historyListResponse
// @Failure      500  {object}  errorResponse
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Router       /history [get]
func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSON(w, http.StatusOK, historyListResponse{Sessions: []session.Summary{}})
		return
	}

	summaries, err := h.service.Sessions(r.Context(), uid)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyListResponse{Sessions: summaries})
}

// handleGetHistory returns one stored session record. Authenticated callers
// only see their own sessions.
//
// @Summary      Get interview transcript
// @Description  Returns the stored session record, including the full question and answer history.
// @Tags         History
// @Produce      json
// @Param        sessionId  path  string  true  "Session ID"
// @Success      200  {object}  session.Session
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Router       /history/{sessionId} [get]
func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.TranscriptFor(r.Context(), userID(r), r.PathValue("sessionId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
