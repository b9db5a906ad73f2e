// Package formatter turns TeX values into output strings for a fixed set of
// presentation formats.
//
// Plain and wiki output are produced locally. HTML output, including the
// diff view and any unrecognized format, goes through a [render.Renderer].
// A failed rendering never surfaces as an error: the output then carries an
// error math element naming the problem, so HTML consumers always get a
// well-formed math element. The only error [Formatter.Format] returns is
// INVALID_ARGUMENT for values that are not non-empty strings.
package formatter

import (
	"context"
	"html"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/mathml"
	"github.com/matzehuels/mathfmt/pkg/observability"
	"github.com/matzehuels/mathfmt/pkg/render"
)

// CSS classes of the generated HTML.
const (
	ClassElement       = "mwe-math-element"
	ClassFallbackImage = "mwe-math-fallback-image-inline"
	ClassDetails       = "wb-details"
)

// Option configures a [Formatter].
type Option func(*Formatter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(f *Formatter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithImageURL sets the base URL of rendered fallback images. HTML output
// then includes an <img> pointing at base/<checksum> whenever the renderer
// reported a checksum.
func WithImageURL(base string) Option {
	return func(f *Formatter) { f.imageURL = strings.TrimRight(base, "/") }
}

// WithWarnUnknown logs a warning when the formatter is created for an
// unrecognized format identifier.
func WithWarnUnknown(warn bool) Option {
	return func(f *Formatter) { f.warnUnknown = warn }
}

// Formatter formats TeX values for one output format. It holds only
// immutable configuration and is safe for concurrent use.
type Formatter struct {
	format      string
	kind        Kind
	renderer    render.Renderer
	imageURL    string
	warnUnknown bool
	logger      *log.Logger
}

// New creates a formatter for format. Unrecognized identifiers are accepted
// and formatted like [FormatHTML]. r may be nil when format never renders.
func New(format string, r render.Renderer, opts ...Option) *Formatter {
	f := &Formatter{
		format:   format,
		kind:     KindOf(format),
		renderer: r,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.kind == KindUnknown && f.warnUnknown {
		f.logger.Warn("unknown output format, falling back to html", "format", format)
	}
	return f
}

// GetFormat returns the format identifier the formatter was created with.
func (f *Formatter) GetFormat() string { return f.format }

// Kind returns the resolved output kind.
func (f *Formatter) Kind() Kind { return f.kind }

// Format formats v. v must be a non-empty [datamodel.StringValue]; anything
// else yields an INVALID_ARGUMENT error before any rendering happens.
func (f *Formatter) Format(ctx context.Context, v datamodel.Value) (string, error) {
	tex, err := render.TeXFromValue(v)
	if err != nil {
		return "", err
	}

	switch f.kind {
	case KindPlain:
		return string(tex), nil
	case KindWiki:
		return "<math>" + string(tex) + "</math>", nil
	}

	hooks := observability.Format()
	hooks.OnFormatStart(ctx, f.format)
	start := time.Now()

	body, degraded := f.renderHTML(ctx, tex)
	if f.kind == KindHTMLDiff {
		body += details(tex)
	}

	hooks.OnFormatComplete(ctx, f.format, time.Since(start), degraded)
	f.logger.Debug("formatted", "format", f.kind, "degraded", degraded, "duration", time.Since(start))
	return body, nil
}

// renderHTML renders tex into a math element wrapped in a span. degraded is
// true when the output describes a failed rendering.
func (f *Formatter) renderHTML(ctx context.Context, tex render.TeX) (string, bool) {
	var out render.Outcome
	if f.renderer == nil {
		out = &render.Failure{Kind: render.FailureTransport, Class: render.ClassTransport, Message: "no renderer configured"}
	} else {
		out = f.renderer.Render(ctx, tex)
	}

	var sb strings.Builder
	sb.WriteString(`<span class="` + ClassElement + `">`)

	degraded := false
	switch o := out.(type) {
	case *render.Success:
		sb.WriteString(o.MathML)
		if img := f.fallbackImage(o.Checksum, tex); img != "" {
			sb.WriteString(img)
		}
	case *render.Failure:
		degraded = true
		observability.Format().OnRenderFailure(ctx, string(o.Code()), o.Class)
		sb.WriteString(mathml.Error(o.Class, o.Message, string(tex)))
	default:
		degraded = true
		f.logger.Warn("renderer returned no outcome", "tex", string(tex))
		sb.WriteString(mathml.Error("", "", string(tex)))
	}

	sb.WriteString("</span>")
	return sb.String(), degraded
}

func (f *Formatter) fallbackImage(checksum string, tex render.TeX) string {
	if checksum == "" || f.imageURL == "" {
		return ""
	}
	src := f.imageURL + "/" + url.PathEscape(checksum)
	return `<img class="` + ClassFallbackImage + `" src="` + html.EscapeString(src) +
		`" alt="` + html.EscapeString(string(tex)) + `" aria-hidden="true">`
}

// specialChars escapes the five HTML special characters with the entities
// used by htmlspecialchars, so diff views match those produced elsewhere
// byte for byte (&#039; rather than &#39;).
var specialChars = strings.NewReplacer(
	`&`, "&amp;",
	`"`, "&quot;",
	`'`, "&#039;",
	`<`, "&lt;",
	`>`, "&gt;",
)

// details renders the TeX source block appended to diff views.
func details(tex render.TeX) string {
	return `<div class="` + ClassDetails + `"><h4>TeX source</h4><code>` +
		specialChars.Replace(string(tex)) + `</code></div>`
}
