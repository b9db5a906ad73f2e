package api

import (
	"net/http"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/errors"
	"github.com/matzehuels/mathfmt/pkg/rdf"
)

const (
	prefixEntity   = "wd"
	prefixProperty = "wdt"
)

func (h *Handler) handleRDF(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	property := r.URL.Query().Get("property")
	for _, name := range []string{subject, property} {
		if err := errors.ValidateLocalName(name); err != nil {
			writeError(w, err)
			return
		}
	}

	v, err := readValue(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writer := rdf.NewNTriplesWriter()
	writer.Prefix(prefixEntity, h.entityNS)
	writer.Prefix(prefixProperty, h.propertyNS)
	writer.Start()
	writer.About(prefixEntity, subject)

	snak := datamodel.NewPropertyValueSnak(property, v)
	if err := h.builder.AddValue(r.Context(), writer, prefixProperty, property, "", "", snak); err != nil {
		writeError(w, err)
		return
	}
	writeText(w, "application/n-triples; charset=utf-8", writer.Drain())
}
