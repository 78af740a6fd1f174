package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/txn2/interview-platform/pkg/interview"
	"github.com/txn2/interview-platform/pkg/metrics"
	"github.com/txn2/interview-platform/pkg/speech"
)

// Stages accepted by the interview endpoint.
const (
	stageInit   = "init"
	stageAnswer = "answer"
)

// Reply headers describing the decided question on audio responses.
const (
	headerSessionID    = "X-Session-Id"
	headerQuestionID   = "X-Question-Id"
	headerQuestionText = "X-Question-Text"
	headerFinished     = "X-Finished"
)

// interviewSettings are the per-session limits chosen by the applicant.
type interviewSettings struct {
	Questions int `json:"questions"`
	Minutes   int `json:"minutes"`
}

// interviewRequest is the body of POST /api/interview.
type interviewRequest struct {
	Stage     string             `json:"stage"`
	Settings  *interviewSettings `json:"settings,omitempty"`
	SessionID string             `json:"sessionId,omitempty"`
	Answer    string             `json:"answer,omitempty"`
}

// handleInterview runs one interview turn.
//
// @Summary      Interview turn
// @Description  Starts an interview (stage "init") or answers the current question (stage "answer"). Replies with JSON, or with WAV audio and X-* headers when the client accepts audio/wav and speech is enabled.
// @Tags         Interview
// @Accept       json
// @Produce      json
// @Produce      audio/wav
// @Param        body  body  interviewRequest  true  "Turn request"
// @Success      200  {object}  interview.Reply
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Router       /interview [post]
func (h *Handler) handleInterview(w http.ResponseWriter, r *http.Request) {
	var req interviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		reply *interview.Reply
		err   error
	)
	switch req.Stage {
	case stageInit:
		reply, err = h.service.Start(r.Context(), h.startParams(r, req.Settings))
	case stageAnswer:
		if req.SessionID == "" {
			writeError(w, http.StatusBadRequest, kindInvalidSession, interview.ErrInvalidSession.Error())
			return
		}
		reply, err = h.service.Answer(r.Context(), req.SessionID, req.Answer)
	default:
		writeError(w, http.StatusBadRequest, kindUnknownStage, "stage must be init or answer")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if h.synthesizer != nil && acceptsAudio(r) {
		h.writeAudio(w, r, reply)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) startParams(r *http.Request, s *interviewSettings) interview.StartParams {
	p := interview.StartParams{
		MaxQuestions:     h.cfg.DefaultMaxQuestions,
		TimeLimitMinutes: h.cfg.DefaultTimeLimitMinutes,
		UserID:           userID(r),
	}
	if s != nil {
		p.MaxQuestions = s.Questions
		p.TimeLimitMinutes = s.Minutes
	}
	return p
}

// writeAudio speaks the reply. The session is already persisted, so a
// synthesis failure still reports the decided question in the headers.
func (h *Handler) writeAudio(w http.ResponseWriter, r *http.Request, reply *interview.Reply) {
	w.Header().Set(headerSessionID, reply.SessionID)
	w.Header().Set(headerQuestionID, string(reply.QuestionID))
	w.Header().Set(headerQuestionText, url.QueryEscape(reply.QuestionText))
	w.Header().Set(headerFinished, strconv.FormatBool(reply.Finished))

	start := time.Now()
	audio, err := h.synthesizer.Synthesize(r.Context(), reply.QuestionText)
	metrics.ObserveSynthesis(time.Since(start), err)
	if err != nil {
		h.logger.Error("speech synthesis failed",
			"session_id", reply.SessionID,
			"question_id", reply.QuestionID,
			"error", err)
		writeError(w, http.StatusBadGateway, "", "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", speech.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func acceptsAudio(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(mediaType, speech.ContentType) {
			return true
		}
	}
	return false
}
