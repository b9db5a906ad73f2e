// Package api exposes formatting and RDF generation over HTTP.
//
// Routes:
//
//	POST /v1/format?format=<id>                 body: TeX or a JSON value
//	POST /v1/rdf?subject=<local>&property=<local>
//	GET  /healthz
//
// Every response carries an X-Request-Id header.
package api

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mathfmt/pkg/formatter"
	"github.com/matzehuels/mathfmt/pkg/rdf"
	"github.com/matzehuels/mathfmt/pkg/render"
)

// Default namespaces for RDF statements.
const (
	DefaultEntityNamespace   = "http://www.wikidata.org/entity/"
	DefaultPropertyNamespace = "http://www.wikidata.org/prop/direct/"
)

// maxBodySize caps request bodies.
const maxBodySize = 64 << 10

// Options configures a [Handler].
type Options struct {
	Renderer          render.Renderer
	Logger            *log.Logger
	DefaultFormat     string             // used when the request names none
	FormatterOptions  []formatter.Option // applied to every formatter
	EntityNamespace   string
	PropertyNamespace string
}

// Handler serves the API.
type Handler struct {
	renderer      render.Renderer
	logger        *log.Logger
	defaultFormat string
	formatOpts    []formatter.Option
	builder       *rdf.MathMLBuilder
	entityNS      string
	propertyNS    string
}

// New creates a Handler.
func New(opts Options) *Handler {
	h := &Handler{
		renderer:      opts.Renderer,
		logger:        opts.Logger,
		defaultFormat: opts.DefaultFormat,
		formatOpts:    opts.FormatterOptions,
		entityNS:      opts.EntityNamespace,
		propertyNS:    opts.PropertyNamespace,
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	if h.defaultFormat == "" {
		h.defaultFormat = formatter.FormatHTML
	}
	if h.entityNS == "" {
		h.entityNS = DefaultEntityNamespace
	}
	if h.propertyNS == "" {
		h.propertyNS = DefaultPropertyNamespace
	}
	h.formatOpts = append([]formatter.Option{formatter.WithLogger(h.logger)}, h.formatOpts...)
	h.builder = rdf.NewMathMLBuilder(h.renderer, h.logger)
	return h
}

// Attach registers the API routes on r.
func (h *Handler) Attach(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/format", h.handleFormat)
		r.Post("/rdf", h.handleRDF)
	})
}

// Router returns a complete router with request IDs, access logging and
// panic recovery.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	h.Attach(r)
	return r
}
