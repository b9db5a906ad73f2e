// Package rdf emits RDF statements for math values.
//
// [MathMLBuilder] renders the TeX of a snak and writes it as a single literal
// typed with the MathML namespace. Failed renderings are written too, as an
// error math element, so every math value yields exactly one statement.
package rdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/mathml"
	"github.com/matzehuels/mathfmt/pkg/observability"
	"github.com/matzehuels/mathfmt/pkg/render"
)

// MathMLDatatype is the datatype IRI of MathML literals.
const MathMLDatatype = mathml.Namespace

// hookFormat labels builder events in the format hooks.
const hookFormat = "application/n-triples"

// MathMLBuilder adds MathML literals for math snaks. It is safe for
// concurrent use as long as each call gets its own Writer.
type MathMLBuilder struct {
	renderer render.Renderer
	logger   *log.Logger
}

// NewMathMLBuilder creates a builder rendering through r. A nil logger
// discards output.
func NewMathMLBuilder(r render.Renderer, logger *log.Logger) *MathMLBuilder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &MathMLBuilder{renderer: r, logger: logger}
}

// AddValue writes one statement for snak to w: the current subject of w,
// the predicate propertyNamespace:propertyLocalName and the rendered MathML
// as object. dataType and snakNamespace are accepted for signature
// compatibility with other value builders and are not used.
//
// Render failures are written as error math elements. Errors are returned for
// an invalid snak value, in which case nothing is written, and for statements
// the writer rejects.
func (b *MathMLBuilder) AddValue(
	ctx context.Context,
	w Writer,
	propertyNamespace, propertyLocalName, dataType, snakNamespace string,
	snak datamodel.Snak,
) error {
	tex, err := render.TeXFromValue(snak.Value)
	if err != nil {
		return err
	}

	hooks := observability.Format()
	hooks.OnFormatStart(ctx, hookFormat)
	start := time.Now()

	literal, degraded := b.literal(ctx, tex)
	w.Say(propertyNamespace, propertyLocalName)
	err = w.Value(literal, MathMLDatatype)

	hooks.OnFormatComplete(ctx, hookFormat, time.Since(start), degraded)
	if err != nil {
		return fmt.Errorf("write %s value: %w", snak.PropertyID, err)
	}
	b.logger.Debug("rdf value added", "property", snak.PropertyID, "degraded", degraded)
	return nil
}

// literal returns the MathML to store for tex and whether it describes a
// failure.
func (b *MathMLBuilder) literal(ctx context.Context, tex render.TeX) (string, bool) {
	if b.renderer == nil {
		return mathml.Error(render.ClassTransport, "no renderer configured", string(tex)), true
	}
	switch o := b.renderer.Render(ctx, tex).(type) {
	case *render.Success:
		mml, err := mathml.EnsureAnnotation(o.MathML, string(tex))
		if err != nil {
			b.logger.Warn("rendered MathML could not be annotated", "error", err)
			return o.MathML, false
		}
		return mml, false
	case *render.Failure:
		observability.Format().OnRenderFailure(ctx, string(o.Code()), o.Class)
		return mathml.Error(o.Class, o.Message, string(tex)), true
	}
	return mathml.Error("", "", string(tex)), true
}
