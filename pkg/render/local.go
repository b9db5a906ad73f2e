package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"

	"github.com/matzehuels/mathfmt/pkg/mathml"
)

// Class values used by [Local].
const (
	ClassConversion = "conversion error"
	ClassParse      = "parse error"
)

// Local renders TeX in-process. It needs no rendering service, which makes
// it the backend of choice for offline use. Local never reports a checksum.
type Local struct {
	logger *log.Logger
}

// NewLocal creates a Local renderer. A nil logger discards output.
func NewLocal(logger *log.Logger) *Local {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Local{logger: logger}
}

// ID identifies the backend in cache keys.
func (*Local) ID() string { return "local" }

// Render converts tex as display math and returns the resulting math
// element with a TeX annotation.
func (l *Local) Render(_ context.Context, tex TeX) Outcome {
	if msg := checkGroups(string(tex)); msg != "" {
		return l.fail(tex, ClassParse, msg)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte("$$"+string(tex)+"$$"), &buf); err != nil {
		return l.fail(tex, ClassConversion, err.Error())
	}

	mml, err := mathml.Extract(buf.String())
	if errors.Is(err, mathml.ErrNoMath) {
		return l.fail(tex, ClassParse, `no math could be read from "`+string(tex)+`"`)
	}
	if err != nil {
		return l.fail(tex, ClassConversion, err.Error())
	}
	if text, ok := mathml.ErrorText(mml); ok {
		class, msg := classifyLocal(string(tex), text)
		return l.fail(tex, class, msg)
	}
	mml, err = mathml.EnsureAnnotation(mml, string(tex))
	if err != nil {
		return l.fail(tex, ClassConversion, err.Error())
	}
	return &Success{MathML: mml}
}

// classifyLocal turns the text of an <merror> into a class and message.
// The converter reports an undefined command by its bare name, which is
// mapped back to the command as written.
func classifyLocal(tex, text string) (class, message string) {
	name := strings.TrimPrefix(text, `\`)
	if isCommandName(name) && containsCommand(tex, name) {
		return ClassUnknownFunction, `\` + name
	}
	if class := classify(text); class != "" {
		return class, text
	}
	return ClassParse, text
}

func isCommandName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// containsCommand reports whether tex uses \name as a whole command.
func containsCommand(tex, name string) bool {
	cmd := `\` + name
	for i := 0; ; {
		j := strings.Index(tex[i:], cmd)
		if j < 0 {
			return false
		}
		end := i + j + len(cmd)
		if end == len(tex) || !unicode.IsLetter(rune(tex[end])) {
			return true
		}
		i = end
	}
}

// checkGroups reports unbalanced braces in tex. Escaped braces do not count.
// It returns an empty string for balanced input.
func checkGroups(tex string) string {
	depth := 0
	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return fmt.Sprintf(`unexpected "}" at offset %d in "%s"`, i, tex)
			}
			depth--
		}
	}
	if depth > 0 {
		return fmt.Sprintf(`unbalanced group in "%s": missing %d closing "}"`, tex, depth)
	}
	return ""
}

func (l *Local) fail(tex TeX, class, msg string) *Failure {
	f := &Failure{Kind: FailureUpstream, Class: class, Message: msg}
	logFailure(l.logger, tex, f)
	return f
}

var _ Renderer = (*Local)(nil)
