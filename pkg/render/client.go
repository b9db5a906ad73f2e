package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mathfmt/pkg/buildinfo"
	"github.com/matzehuels/mathfmt/pkg/httputil"
	"github.com/matzehuels/mathfmt/pkg/mathml"
	"github.com/matzehuels/mathfmt/pkg/observability"
)

const (
	// DefaultEndpoint is the address of a locally running rendering service.
	DefaultEndpoint = "http://localhost:10044"

	// DefaultTimeout bounds a single request to the rendering service.
	DefaultTimeout = 10 * time.Second

	// ClassInvalidResponse is the class of a 2xx response without MathML.
	ClassInvalidResponse = "invalid response"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// ClientOptions configures a [Client].
type ClientOptions struct {
	Endpoint   string        // base URL; requests go to Endpoint + "/render"
	HTTPClient *http.Client  // defaults to a new client
	Timeout    time.Duration // per attempt, defaults to DefaultTimeout
	Attempts   int           // total attempts, defaults to 1
	RetryDelay time.Duration // initial backoff between attempts
	UserAgent  string        // defaults to buildinfo.UserAgent()
	Logger     *log.Logger   // defaults to a discarding logger
}

// Client renders TeX through a remote rendering service. It holds only
// immutable configuration and is safe for concurrent use.
type Client struct {
	endpoint  string
	http      *http.Client
	timeout   time.Duration
	policy    httputil.Policy
	userAgent string
	logger    *log.Logger
}

// NewClient creates a Client. Zero options fall back to defaults.
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		http:      opts.HTTPClient,
		timeout:   opts.Timeout,
		policy:    httputil.Policy{Attempts: opts.Attempts, Delay: opts.RetryDelay},
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = buildinfo.UserAgent()
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Endpoint returns the base URL of the rendering service.
func (c *Client) Endpoint() string { return c.endpoint }

// ID identifies the backend in cache keys.
func (c *Client) ID() string { return "remote:" + c.endpoint }

// Render sends tex to the service. Each attempt is exactly one request.
// Transport failures and 5xx responses are retried when the client was
// configured with more than one attempt; the last failure is returned once
// all attempts are used up.
func (c *Client) Render(ctx context.Context, tex TeX) Outcome {
	var out Outcome
	_ = c.policy.Do(ctx, func() error {
		out = c.attempt(ctx, tex)
		if f, ok := out.(*Failure); ok && f.retryable() {
			c.logger.Debug("render attempt failed", "class", f.Class, "status", f.Status)
			return httputil.Retryable(f)
		}
		return nil
	})

	if f, ok := out.(*Failure); ok {
		logFailure(c.logger, tex, f)
	}
	return out
}

type renderRequest struct {
	Q    string `json:"q"`
	Type string `json:"type"`
}

type renderResponse struct {
	Success *bool  `json:"success"`
	MML     string `json:"mml"`
	Checked string `json:"checked"`
	Hash    string `json:"hash"`
}

func (c *Client) attempt(ctx context.Context, tex TeX) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(renderRequest{Q: string(tex), Type: "tex"})
	if err != nil {
		return transportFailure(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/render", bytes.NewReader(body))
	if err != nil {
		return transportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, application/mathml+xml")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return transportFailure(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportFailure(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp.StatusCode, data)
	}
	return decodeSuccess(resp, data)
}

func decodeSuccess(resp *http.Response, data []byte) Outcome {
	checksum := resp.Header.Get("X-Resource-Location")

	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "mathml") || strings.Contains(ct, "xml") {
		mml := strings.TrimSpace(string(data))
		if !mathml.IsMathML(mml) {
			return invalidResponse(resp.StatusCode, "response body is not a math element")
		}
		return &Success{MathML: mml, Checksum: checksum}
	}

	var r renderResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return invalidResponse(resp.StatusCode, "malformed JSON: "+err.Error())
	}
	if r.Success != nil && !*r.Success {
		return decodeFailure(resp.StatusCode, data)
	}
	mml := strings.TrimSpace(r.MML)
	if !mathml.IsMathML(mml) {
		return invalidResponse(resp.StatusCode, "response contains no MathML")
	}
	if r.Hash != "" {
		checksum = r.Hash
	}
	return &Success{MathML: mml, Checksum: checksum, Checked: r.Checked}
}

func invalidResponse(status int, msg string) *Failure {
	return &Failure{Kind: FailureUpstream, Class: ClassInvalidResponse, Message: msg, Status: status}
}

// errorBody covers the error shapes produced by rendering services:
//
//	{"error": {"type": "unknown function", "message": "..."}}
//	{"error": "..."}
//	{"title": "Bad Request", "detail": "..."}
//	{"title": "Bad Request", "detail": {"error": {"message": "..."}}}
type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Title  string          `json:"title"`
	Detail json.RawMessage `json:"detail"`
	Log    string          `json:"log"`
}

type errorObject struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Found   string `json:"found"`
}

func decodeFailure(status int, data []byte) *Failure {
	f := &Failure{Kind: FailureUpstream, Status: status}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		f.Class, f.Message = parseErrorField(body.Error)
		if f.Message == "" && len(body.Detail) > 0 {
			f.Class, f.Message = parseDetail(body.Detail)
		}
		if f.Message == "" {
			f.Message = body.Log
		}
		if f.Message == "" {
			f.Message = body.Title
		}
	} else if text := strings.TrimSpace(string(data)); text != "" && len(text) < 1024 {
		f.Message = text
	}

	statusText := http.StatusText(status)
	if f.Class == "" {
		f.Class = classify(f.Message)
	}
	if f.Class == "" {
		if status < 300 {
			f.Class = ClassInvalidResponse
		} else {
			f.Class = strings.ToLower(statusText)
		}
	}
	if f.Message == "" {
		f.Message = statusText
	}
	return f
}

func parseErrorField(raw json.RawMessage) (class, message string) {
	if len(raw) == 0 {
		return "", ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return "", s
	}
	var obj errorObject
	if json.Unmarshal(raw, &obj) != nil {
		return "", ""
	}
	message = obj.Message
	if obj.Found != "" && !strings.Contains(message, obj.Found) {
		message += ` "` + obj.Found + `"`
	}
	class = obj.Type
	if class == "" {
		class = classify(obj.Message)
	}
	if class == "" {
		class = strings.ToLower(obj.Name)
	}
	return class, message
}

func parseDetail(raw json.RawMessage) (class, message string) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return "", s
	}
	var nested struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &nested) == nil {
		return parseErrorField(nested.Error)
	}
	return "", ""
}

// Error classes recognized in service messages.
const (
	ClassUnknownFunction = "unknown function"
	ClassSyntax          = "syntax error"
	ClassLexing          = "lexing error"
)

// classify derives an error class from a service message.
func classify(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "illegal tex function"), strings.Contains(m, "unknown function"):
		return ClassUnknownFunction
	case strings.Contains(m, "lexer"), strings.Contains(m, "lexing"):
		return ClassLexing
	case strings.Contains(m, "syntaxerror"), strings.Contains(m, "syntax error"):
		return ClassSyntax
	}
	return ""
}

var _ Renderer = (*Client)(nil)
