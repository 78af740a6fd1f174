package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/txn2/interview-platform/pkg/catalog"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	started := testutil.ToFloat64(SessionsStarted)
	r.SessionStarted()
	assert.InDelta(t, started+1, testutil.ToFloat64(SessionsStarted), 0)

	asked := QuestionsAsked.WithLabelValues(string(catalog.QuestionGenAI), "main_sequence")
	before := testutil.ToFloat64(asked)
	r.QuestionAsked(catalog.QuestionGenAI, "main_sequence")
	assert.InDelta(t, before+1, testutil.ToFloat64(asked), 0)

	finished := SessionsFinished.WithLabelValues("time_limit")
	before = testutil.ToFloat64(finished)
	r.SessionFinished("time_limit", 4, 15*time.Minute)
	assert.InDelta(t, before+1, testutil.ToFloat64(finished), 0)

	storeErr := StoreErrors.WithLabelValues("save")
	before = testutil.ToFloat64(storeErr)
	r.StoreFailed("save")
	assert.InDelta(t, before+1, testutil.ToFloat64(storeErr), 0)
}

func TestObserveSynthesis(t *testing.T) {
	before := testutil.ToFloat64(SynthesisFailures)
	ObserveSynthesis(time.Second, nil)
	ObserveSynthesis(time.Second, errors.New("engine down"))
	assert.InDelta(t, before+1, testutil.ToFloat64(SynthesisFailures), 0)
}

func TestObserveToolCall(t *testing.T) {
	ok := ToolCalls.WithLabelValues("interview_start", "success")
	failed := ToolCalls.WithLabelValues("interview_start", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveToolCall("interview_start", time.Millisecond, true)
	ObserveToolCall("interview_start", time.Millisecond, false)
	ObserveToolCall("interview_start", time.Millisecond, false)

	assert.InDelta(t, beforeOK+1, testutil.ToFloat64(ok), 0)
	assert.InDelta(t, beforeFailed+2, testutil.ToFloat64(failed), 0)
}

func TestMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/{sessionId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Middleware(mux)

	counter := RequestCount.WithLabelValues(http.MethodGet, "GET /api/history/{sessionId}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0)
}

func TestHandler(t *testing.T) {
	SessionsStarted.Add(0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "interview_sessions_started_total"))
}
