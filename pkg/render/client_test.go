package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mathfmt/pkg/errors"
)

const sinX TeX = `\sin x`

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// newServer starts a fake rendering service answering every request with
// status and body, and counts the requests it receives.
func newServer(t *testing.T, status int, contentType string, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClientRender_Success(t *testing.T) {
	var got renderRequest
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/render" {
			t.Errorf("path = %s, want /render", r.URL.Path)
		}
		header = r.Header
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture(t, "sinx.json"))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Endpoint: server.URL + "/", HTTPClient: server.Client()})
	out := client.Render(context.Background(), sinX)

	s, ok := out.(*Success)
	if !ok {
		t.Fatalf("Render() = %#v, want *Success", out)
	}
	if !strings.HasSuffix(s.MathML, "</math>") {
		t.Errorf("MathML does not end with </math>: %s", s.MathML)
	}
	if !strings.Contains(s.MathML, "<mi>sin</mi>") {
		t.Errorf("MathML missing sin: %s", s.MathML)
	}
	if s.Checksum != "0b8cd0b5a1b6e3d1e4b0c5c6d4e1d3cd" {
		t.Errorf("Checksum = %q", s.Checksum)
	}
	if s.Checked != `\sin x` {
		t.Errorf("Checked = %q", s.Checked)
	}

	if got.Q != string(sinX) || got.Type != "tex" {
		t.Errorf("request body = %+v", got)
	}
	if header.Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header not set")
	}
	if !strings.HasPrefix(header.Get("User-Agent"), "mathfmt/") {
		t.Errorf("User-Agent = %q", header.Get("User-Agent"))
	}
}

func TestClientRender_RawMathML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/mathml+xml")
		w.Header().Set("X-Resource-Location", "abc123")
		w.Write([]byte("<math><mi>x</mi></math>\n"))
	}))
	defer server.Close()

	out := NewClient(ClientOptions{Endpoint: server.URL}).Render(context.Background(), "x")
	s, ok := out.(*Success)
	if !ok {
		t.Fatalf("Render() = %#v, want *Success", out)
	}
	if s.MathML != "<math><mi>x</mi></math>" {
		t.Errorf("MathML = %q", s.MathML)
	}
	if s.Checksum != "abc123" {
		t.Errorf("Checksum = %q, want abc123", s.Checksum)
	}
}

func TestClientRender_UpstreamFailure(t *testing.T) {
	server, calls := newServer(t, http.StatusBadRequest, "application/problem+json", fixture(t, "invalidF.json"))

	out := NewClient(ClientOptions{Endpoint: server.URL, Attempts: 3}).Render(context.Background(), `\noTex`)
	f, ok := out.(*Failure)
	if !ok {
		t.Fatalf("Render() = %#v, want *Failure", out)
	}
	if f.Kind != FailureUpstream {
		t.Errorf("Kind = %v, want upstream", f.Kind)
	}
	if f.Class != ClassUnknownFunction {
		t.Errorf("Class = %q, want %q", f.Class, ClassUnknownFunction)
	}
	if !strings.Contains(f.Message, `\noTex`) {
		t.Errorf("Message should name the offending token: %q", f.Message)
	}
	if f.Status != http.StatusBadRequest {
		t.Errorf("Status = %d", f.Status)
	}
	if !errors.Is(f, errors.ErrCodeUpstreamRender) {
		t.Errorf("Code() = %s", f.Code())
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("4xx must not be retried: %d calls", n)
	}
}

func TestClientRender_ErrorShapes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantClass string
		wantMsg   string
	}{
		{
			name:      "typed error object",
			status:    400,
			body:      `{"error": {"type": "unknown function", "message": "\\foo is not defined"}}`,
			wantClass: "unknown function",
			wantMsg:   `\foo is not defined`,
		},
		{
			name:      "string error",
			status:    400,
			body:      `{"error": "Lexer error near }"}`,
			wantClass: ClassLexing,
			wantMsg:   "Lexer error near }",
		},
		{
			name:      "problem detail string",
			status:    422,
			body:      `{"title": "Unprocessable", "detail": "bad input"}`,
			wantClass: "unprocessable entity",
			wantMsg:   "bad input",
		},
		{
			name:      "empty body",
			status:    404,
			body:      ``,
			wantClass: "not found",
			wantMsg:   "Not Found",
		},
		{
			name:      "plain text body",
			status:    400,
			body:      `unknown function \bar`,
			wantClass: ClassUnknownFunction,
			wantMsg:   `unknown function \bar`,
		},
		{
			name:      "success false on 200",
			status:    200,
			body:      `{"success": false, "error": {"message": "SyntaxError: Expected }"}}`,
			wantClass: ClassSyntax,
			wantMsg:   "SyntaxError: Expected }",
		},
		{
			name:      "200 without mml",
			status:    200,
			body:      `{"success": true}`,
			wantClass: ClassInvalidResponse,
			wantMsg:   "response contains no MathML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newServer(t, tt.status, "application/json", []byte(tt.body))
			out := NewClient(ClientOptions{Endpoint: server.URL}).Render(context.Background(), "x")
			f, ok := out.(*Failure)
			if !ok {
				t.Fatalf("Render() = %#v, want *Failure", out)
			}
			if f.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", f.Class, tt.wantClass)
			}
			if f.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", f.Message, tt.wantMsg)
			}
		})
	}
}

func TestClientRender_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	out := NewClient(ClientOptions{Endpoint: url}).Render(context.Background(), sinX)
	f, ok := out.(*Failure)
	if !ok {
		t.Fatalf("Render() = %#v, want *Failure", out)
	}
	if f.Kind != FailureTransport || f.Class != ClassTransport {
		t.Errorf("got kind %v class %q, want transport", f.Kind, f.Class)
	}
	if f.Err == nil {
		t.Error("transport failure should carry the underlying error")
	}
	if f.Code() != errors.ErrCodeTransport {
		t.Errorf("Code() = %s", f.Code())
	}
}

func TestClientRender_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(block)

	out := NewClient(ClientOptions{Endpoint: server.URL, Timeout: 20 * time.Millisecond}).Render(context.Background(), sinX)
	if f, ok := out.(*Failure); !ok || f.Kind != FailureTransport {
		t.Fatalf("Render() = %#v, want transport failure", out)
	}
}

func TestClientRender_SingleAttemptByDefault(t *testing.T) {
	server, calls := newServer(t, http.StatusServiceUnavailable, "text/plain", nil)

	out := NewClient(ClientOptions{Endpoint: server.URL}).Render(context.Background(), sinX)
	if _, ok := out.(*Failure); !ok {
		t.Fatalf("Render() = %#v, want *Failure", out)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestClientRender_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture(t, "sinx.json"))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Endpoint: server.URL, Attempts: 3, RetryDelay: time.Millisecond})
	if _, ok := client.Render(context.Background(), sinX).(*Success); !ok {
		t.Fatal("expected success after retries")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestClientRender_RetriesExhausted(t *testing.T) {
	server, calls := newServer(t, http.StatusInternalServerError, "application/json",
		[]byte(`{"error": {"type": "internal", "message": "worker crashed"}}`))

	client := NewClient(ClientOptions{Endpoint: server.URL, Attempts: 2, RetryDelay: time.Millisecond})
	f, ok := client.Render(context.Background(), sinX).(*Failure)
	if !ok {
		t.Fatal("expected failure")
	}
	if f.Status != http.StatusInternalServerError || f.Message != "worker crashed" {
		t.Errorf("unexpected failure %+v", f)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(ClientOptions{})
	if c.Endpoint() != DefaultEndpoint {
		t.Errorf("Endpoint() = %s", c.Endpoint())
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.timeout)
	}
	if c.ID() != "remote:"+DefaultEndpoint {
		t.Errorf("ID() = %s", c.ID())
	}
}

func TestFailureError(t *testing.T) {
	tests := []struct {
		f    Failure
		want string
	}{
		{Failure{Class: "bad request", Message: "boom"}, "bad request: boom"},
		{Failure{Class: "bad request"}, "bad request"},
		{Failure{Message: "boom"}, "boom"},
	}
	for _, tt := range tests {
		if got := tt.f.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
