package api

import (
	"net/http"

	"github.com/matzehuels/mathfmt/pkg/buildinfo"
	"github.com/matzehuels/mathfmt/pkg/formatter"
)

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}

	v, err := readValue(r)
	if err != nil {
		writeError(w, err)
		return
	}

	f := formatter.New(formatter.Canonical(format), h.renderer, h.formatOpts...)
	out, err := f.Format(r.Context(), v)
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := "text/html; charset=utf-8"
	if !f.Kind().Renders() {
		contentType = "text/plain; charset=utf-8"
	}
	writeText(w, contentType, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}
