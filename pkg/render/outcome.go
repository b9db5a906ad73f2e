package render

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mathfmt/pkg/errors"
)

// Renderer produces an [Outcome] for TeX source.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, tex TeX) Outcome
}

// Outcome is the result of a rendering: either [*Success] or [*Failure].
type Outcome interface {
	outcome()
}

// Success is a completed rendering.
type Success struct {
	// MathML is a complete math element. It is never empty.
	MathML string `json:"mathml"`
	// Checksum identifies the rendering on the service, e.g. for fetching
	// a fallback image. Optional.
	Checksum string `json:"checksum,omitempty"`
	// Checked is the TeX as normalized by the service. Optional.
	Checked string `json:"checked,omitempty"`
}

// FailureKind distinguishes why a rendering failed.
type FailureKind int

const (
	// FailureUpstream means the service answered but rejected the input or
	// produced no usable MathML.
	FailureUpstream FailureKind = iota
	// FailureTransport means the service could not be reached or its
	// response could not be read.
	FailureTransport
)

func (k FailureKind) String() string {
	if k == FailureTransport {
		return "transport"
	}
	return "upstream"
}

// ClassTransport is the class of every transport failure.
const ClassTransport = "transport error"

// Failure is a rendering that produced no MathML.
type Failure struct {
	Kind    FailureKind
	Class   string // short error class, e.g. "unknown function"
	Message string // diagnostic text from the service
	Status  int    // HTTP status, 0 when there was no response
	Err     error  // underlying transport error, if any
}

func (*Success) outcome() {}
func (*Failure) outcome() {}

// Error implements the error interface.
func (f *Failure) Error() string {
	switch {
	case f.Message == "":
		return f.Class
	case f.Class == "":
		return f.Message
	default:
		return fmt.Sprintf("%s: %s", f.Class, f.Message)
	}
}

// Unwrap returns the transport error, if any.
func (f *Failure) Unwrap() error { return f.Err }

// Code maps the failure onto an error code.
func (f *Failure) Code() errors.Code {
	if f.Kind == FailureTransport {
		return errors.ErrCodeTransport
	}
	return errors.ErrCodeUpstreamRender
}

// retryable reports whether another attempt could change the result.
func (f *Failure) retryable() bool {
	return f.Kind == FailureTransport || f.Status >= 500
}

func transportFailure(err error) *Failure {
	return &Failure{
		Kind:    FailureTransport,
		Class:   ClassTransport,
		Message: err.Error(),
		Err:     err,
	}
}

// logFailure reports a failure. Transport problems are operational and
// logged as errors; rejected input only warrants a warning.
func logFailure(logger *log.Logger, tex TeX, f *Failure) {
	if f.Kind == FailureTransport {
		logger.Error("renderer unreachable", "code", f.Code(), "error", f.Message)
		return
	}
	logger.Warn("render failed", "code", f.Code(), "class", f.Class, "message", f.Message, "tex", string(tex))
}
