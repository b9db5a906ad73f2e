package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mathfmt/pkg/observability"
)

// logHooks reports observability events as debug logs.
type logHooks struct {
	logger *log.Logger
}

// InstallHooks routes format, cache and HTTP events to the CLI logger.
// main calls it in verbose mode.
func (c *CLI) InstallHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetFormatHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnFormatStart(_ context.Context, format string) {
	h.logger.Debug("format start", "format", format)
}

func (h *logHooks) OnFormatComplete(_ context.Context, format string, d time.Duration, degraded bool) {
	h.logger.Debug("format done", "format", format, "duration", d.Round(time.Microsecond), "degraded", degraded)
}

func (h *logHooks) OnRenderFailure(_ context.Context, code, class string) {
	h.logger.Debug("render failure", "code", code, "class", class)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

var (
	_ observability.FormatHooks = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
	_ observability.HTTPHooks   = (*logHooks)(nil)
)
