package formatter

import "strings"

// Format identifiers understood by [New].
const (
	FormatPlain    = "text/plain"
	FormatWiki     = "text/x-wiki"
	FormatHTML     = "text/html"
	FormatHTMLDiff = "text/html; disposition=diff"
)

// Kind is the closed set of output shapes. Every format identifier maps to
// exactly one Kind; identifiers nobody recognizes map to KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlain
	KindWiki
	KindHTML
	KindHTMLDiff
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindWiki:
		return "wiki"
	case KindHTML:
		return "html"
	case KindHTMLDiff:
		return "html-diff"
	default:
		return "unknown"
	}
}

// Renders reports whether formatting this kind needs a renderer call.
func (k Kind) Renders() bool {
	return k != KindPlain && k != KindWiki
}

var kinds = map[string]Kind{
	FormatPlain:    KindPlain,
	FormatWiki:     KindWiki,
	FormatHTML:     KindHTML,
	FormatHTMLDiff: KindHTMLDiff,

	"plain":     KindPlain,
	"wiki":      KindWiki,
	"html":      KindHTML,
	"html-diff": KindHTMLDiff,
}

// KindOf resolves a format identifier or one of its short aliases
// ("plain", "wiki", "html", "html-diff").
func KindOf(format string) Kind {
	if k, ok := kinds[strings.TrimSpace(format)]; ok {
		return k
	}
	return KindUnknown
}

// Canonical returns the full identifier for a short alias. Other values,
// unknown ones included, are returned unchanged.
func Canonical(format string) string {
	switch strings.TrimSpace(format) {
	case "plain":
		return FormatPlain
	case "wiki":
		return FormatWiki
	case "html":
		return FormatHTML
	case "html-diff":
		return FormatHTMLDiff
	}
	return format
}

// Known lists the recognized format identifiers.
func Known() []string {
	return []string{FormatPlain, FormatWiki, FormatHTML, FormatHTMLDiff}
}
