// Package metrics exposes Prometheus metrics for interviews, the session
// store, speech synthesis and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/txn2/interview-platform/pkg/catalog"
	"github.com/txn2/interview-platform/pkg/interview"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total number of interview sessions started",
		},
	)

	SessionsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_sessions_finished_total",
			Help: "Total number of interview sessions finished, by end reason",
		},
		[]string{"reason"},
	)

	QuestionsAsked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_questions_asked_total",
			Help: "Total number of questions issued, by question id and deciding rule",
		},
		[]string{"question_id", "rule"},
	)

	SessionQuestions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_session_questions",
			Help:    "Number of questions asked in finished sessions",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)

	SessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_session_duration_seconds",
			Help:    "Wall-clock duration of finished sessions",
			Buckets: prometheus.ExponentialBuckets(30, 2, 8),
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_store_errors_total",
			Help: "Total number of session store failures, by operation",
		},
		[]string{"op"},
	)

	SynthesisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "interview_synthesis_duration_seconds",
			Help: "Speech synthesis latency in seconds",
		},
	)

	SynthesisFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_synthesis_failures_total",
			Help: "Total number of failed speech synthesis calls",
		},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "interview_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_mcp_tool_calls_total",
			Help: "Total number of MCP tool calls, by tool and status",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "interview_mcp_tool_call_duration_seconds",
			Help: "MCP tool call duration in seconds",
		},
		[]string{"tool"},
	)
)

// Recorder feeds interview lifecycle events into the package metrics.
type Recorder struct{}

// NewRecorder creates a lifecycle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SessionStarted counts a new session.
func (*Recorder) SessionStarted() {
	SessionsStarted.Inc()
}

// QuestionAsked counts an issued question.
func (*Recorder) QuestionAsked(id catalog.QuestionID, rule string) {
	QuestionsAsked.WithLabelValues(string(id), rule).Inc()
}

// SessionFinished records the outcome of a session.
func (*Recorder) SessionFinished(reason string, questions int, elapsed time.Duration) {
	SessionsFinished.WithLabelValues(reason).Inc()
	SessionQuestions.Observe(float64(questions))
	SessionDuration.Observe(elapsed.Seconds())
}

// StoreFailed counts a session store failure.
func (*Recorder) StoreFailed(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// ObserveSynthesis records one speech synthesis call.
func ObserveSynthesis(elapsed time.Duration, err error) {
	SynthesisDuration.Observe(elapsed.Seconds())
	if err != nil {
		SynthesisFailures.Inc()
	}
}

// ObserveToolCall records one MCP tool call.
func ObserveToolCall(tool string, elapsed time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ToolCalls.WithLabelValues(tool, status).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts and times requests. The endpoint label is the matched
// ServeMux pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Verify interface compliance.
var _ interview.Recorder = (*Recorder)(nil)
