// Package interview exposes the interview engine to MCP clients as tools and
// a transcript resource template, so an agent can conduct a mock interview.
package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"

	"github.com/txn2/interview-platform/pkg/auth"
	"github.com/txn2/interview-platform/pkg/interview"
)

// Tool, prompt and resource names.
const (
	toolStart      = "interview_start"
	toolAnswer     = "interview_answer"
	toolTranscript = "interview_transcript"
	promptName     = "interview_guidance"

	// transcriptTemplateURI addresses one stored session record.
	transcriptTemplateURI = "interview://sessions/{session_id}"
)

// startInput defines the input schema for interview_start.
type startInput struct {
	MaxQuestions     int `json:"max_questions,omitempty" jsonschema:"Maximum number of questions. Defaults to the server setting."`
	TimeLimitMinutes int `json:"time_limit_minutes,omitempty" jsonschema:"Time limit in minutes. Defaults to the server setting."`
}

// answerInput defines the input schema for interview_answer.
type answerInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by interview_start"`
	Answer    string `json:"answer" jsonschema:"The applicant's answer to the current question"`
}

// transcriptInput defines the input schema for interview_transcript.
type transcriptInput struct {
	SessionID string `json:"session_id" jsonschema:"Session id returned by interview_start"`
}

// Config holds toolkit defaults.
type Config struct {
	DefaultMaxQuestions     int
	DefaultTimeLimitMinutes int

	// Authenticator resolves the caller from the HTTP headers of a tool
	// call. Sessions started by an identified caller are linked to them and
	// their transcripts are hidden from other callers. Nil treats every
	// caller as anonymous.
	Authenticator auth.Authenticator
}

// Toolkit registers the interview tools on an MCP server.
type Toolkit struct {
	name    string
	service *interview.Service
	cfg     Config
	logger  *slog.Logger
}

// New creates a new interview toolkit.
func New(name string, svc *interview.Service, cfg Config) (*Toolkit, error) {
	if svc == nil {
		return nil, errors.New("interview service is required")
	}
	return &Toolkit{
		name:    name,
		service: svc,
		cfg:     cfg,
		logger:  slog.Default(),
	}, nil
}

// Kind returns the toolkit kind.
func (*Toolkit) Kind() string {
	return "interview"
}

// Name returns the toolkit instance name.
func (t *Toolkit) Name() string {
	return t.name
}

// Tools returns the list of tool names provided by this toolkit.
func (*Toolkit) Tools() []string {
	return []string{toolStart, toolAnswer, toolTranscript}
}

// RegisterTools registers the tools, the guidance prompt and the transcript
// resource template with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: toolStart,
		Description: "Starts a new Japanese-language mock technical interview and returns the opening question. " +
			"Relay the question text to the applicant verbatim.",
	}, t.handleStart)

	mcp.AddTool(s, &mcp.Tool{
		Name: toolAnswer,
		Description: "Submits the applicant's answer to the current question and returns the next one. " +
			"When finished is true the interview is over and no further answers are accepted.",
	}, t.handleAnswer)

	mcp.AddTool(s, &mcp.Tool{
		Name:        toolTranscript,
		Description: "Returns the stored record of an interview session, including every question and answer so far.",
	}, t.handleTranscript)

	s.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: transcriptTemplateURI,
		Name:        "Interview Transcript",
		Description: "Stored interview session record with question and answer history",
		MIMEType:    "application/json",
	}, t.handleTranscriptResource)

	s.AddPrompt(&mcp.Prompt{
		Name:        promptName,
		Description: "How to conduct a mock interview with the interview tools",
	}, func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: guidancePrompt},
				},
			},
		}, nil
	})
}

// Close releases resources.
func (*Toolkit) Close() error {
	return nil
}

func (t *Toolkit) handleStart(ctx context.Context, req *mcp.CallToolRequest, input startInput) (*mcp.CallToolResult, any, error) {
	p := interview.StartParams{
		UserID:           t.callerID(ctx, req.Extra),
		MaxQuestions:     t.cfg.DefaultMaxQuestions,
		TimeLimitMinutes: t.cfg.DefaultTimeLimitMinutes,
	}
	if input.MaxQuestions != 0 {
		p.MaxQuestions = input.MaxQuestions
	}
	if input.TimeLimitMinutes != 0 {
		p.TimeLimitMinutes = input.TimeLimitMinutes
	}

	reply, err := t.service.Start(ctx, p)
	if err != nil {
		return t.serviceErrorResult(err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return jsonResult(reply)
}

func (t *Toolkit) handleAnswer(ctx context.Context, _ *mcp.CallToolRequest, input answerInput) (*mcp.CallToolResult, any, error) {
	if input.SessionID == "" {
		return errorResult(interview.ErrInvalidSession.Error()), nil, nil
	}
	reply, err := t.service.Answer(ctx, input.SessionID, input.Answer)
	if err != nil {
		return t.serviceErrorResult(err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return jsonResult(reply)
}

func (t *Toolkit) handleTranscript(ctx context.Context, req *mcp.CallToolRequest, input transcriptInput) (*mcp.CallToolResult, any, error) {
	sess, err := t.service.TranscriptFor(ctx, t.callerID(ctx, req.Extra), input.SessionID)
	if err != nil {
		return t.serviceErrorResult(err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return jsonResult(sess)
}

// handleTranscriptResource handles interview://sessions/{session_id} requests.
func (t *Toolkit) handleTranscriptResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, err := sessionIDFromURI(uri)
	if err != nil || id == "" {
		return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
	}

	sess, err := t.service.TranscriptFor(ctx, t.callerID(ctx, req.Extra), id)
	if errors.Is(err, interview.ErrSessionNotFound) {
		return nil, mcp.ResourceNotFoundError(uri) //nolint:wrapcheck // MCP protocol error returned as-is for SDK type matching
	}
	if err != nil {
		t.logger.Error("reading transcript resource", "session_id", id, "error", err)
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

// callerID returns the authenticated user behind a request, or "" for
// anonymous callers and transports without HTTP headers.
func (t *Toolkit) callerID(ctx context.Context, extra *mcp.RequestExtra) string {
	if t.cfg.Authenticator == nil || extra == nil {
		return ""
	}
	token := auth.TokenFromHeader(extra.Header)
	if token == "" {
		return ""
	}
	user, err := t.cfg.Authenticator.Authenticate(auth.WithToken(ctx, token))
	if err != nil || user.Anonymous() {
		return ""
	}
	return user.UserID
}

// sessionIDFromURI extracts the session id from a transcript resource URI.
func sessionIDFromURI(uri string) (string, error) {
	tmpl, err := uritemplate.New(transcriptTemplateURI)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", transcriptTemplateURI, err)
	}
	match := tmpl.Match(uri)
	if match == nil {
		return "", fmt.Errorf("uri %q does not match template %q", uri, transcriptTemplateURI)
	}
	return match.Get("session_id").String(), nil
}

// serviceErrorResult converts controller errors into tool errors. Client
// errors are reported verbatim; infrastructure failures are logged and
// reported opaquely.
func (t *Toolkit) serviceErrorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, interview.ErrInvalidSession),
		errors.Is(err, interview.ErrMissingAnswer),
		errors.Is(err, interview.ErrMissingSettings),
		errors.Is(err, interview.ErrSessionNotFound):
		return errorResult(err.Error())
	default:
		t.logger.Error("interview tool failed", "error", err)
		return errorResult("internal error")
	}
}

// errorResult creates an error CallToolResult.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(`{"error": %q}`, msg)},
		},
		IsError: true,
	}
}

// jsonResult creates a success CallToolResult carrying v as JSON text.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("internal error marshaling response"), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

// guidancePrompt tells the agent how to drive the interview tools.
const guidancePrompt = `## Conducting a Mock Interview

1. Call interview_start once. Read the returned questionText to the applicant exactly as written.
2. Pass the applicant's reply, unedited, to interview_answer with the session id.
3. Read the next questionText aloud. Repeat until finished is true.
4. When finished, the last text is the interviewer's closing remark. Do not ask further questions.

Do not answer on the applicant's behalf and do not paraphrase the questions.
Use interview_transcript or the interview://sessions/{session_id} resource to review the conversation afterwards.`
