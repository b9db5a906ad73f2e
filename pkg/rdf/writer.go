package rdf

import (
	"fmt"
	"strings"

	krdf "github.com/knakk/rdf"
)

// Writer is the subset of an RDF writer the builders need. Resources are
// addressed as prefix + local name; prefixes are declared up front.
type Writer interface {
	// Prefix declares a namespace prefix.
	Prefix(name, uri string)
	// Start begins a new document, discarding buffered output.
	Start()
	// About sets the subject of the following statements.
	About(prefix, local string)
	// Say sets the predicate of the following statements.
	Say(prefix, local string)
	// Value emits a typed literal for the current subject and predicate.
	// An empty datatype emits a plain string literal.
	Value(lexical, datatype string) error
	// Drain returns buffered output and clears the buffer.
	Drain() string
}

// blankSubject labels the subject of statements written before any About.
const blankSubject = "b0"

// NTriplesWriter writes statements as N-Triples, one triple per line.
// It is not safe for concurrent use.
type NTriplesWriter struct {
	prefixes  map[string]string
	subject   string
	predicate string
	buf       strings.Builder
}

// NewNTriplesWriter creates an empty writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{prefixes: make(map[string]string)}
}

func (w *NTriplesWriter) Prefix(name, uri string) {
	w.prefixes[name] = uri
}

func (w *NTriplesWriter) Start() {
	w.buf.Reset()
	w.subject = ""
	w.predicate = ""
}

func (w *NTriplesWriter) About(prefix, local string) {
	w.subject = w.expand(prefix, local)
}

func (w *NTriplesWriter) Say(prefix, local string) {
	w.predicate = w.expand(prefix, local)
}

// Value encodes one triple. Without a preceding About the subject is a
// blank node. Nothing is written when the subject or predicate is not a
// valid IRI.
func (w *NTriplesWriter) Value(lexical, datatype string) error {
	subj, err := w.subjectTerm()
	if err != nil {
		return err
	}
	pred, err := krdf.NewIRI(w.predicate)
	if err != nil {
		return fmt.Errorf("predicate %q: %w", w.predicate, err)
	}
	obj, err := literal(lexical, datatype)
	if err != nil {
		return err
	}

	enc := krdf.NewTripleEncoder(&w.buf, krdf.NTriples)
	if err := enc.Encode(krdf.Triple{Subj: subj, Pred: pred, Obj: obj}); err != nil {
		return err
	}
	return enc.Close()
}

func (w *NTriplesWriter) Drain() string {
	out := w.buf.String()
	w.buf.Reset()
	return out
}

func (w *NTriplesWriter) subjectTerm() (krdf.Subject, error) {
	if w.subject == "" {
		return krdf.NewBlank(blankSubject)
	}
	iri, err := krdf.NewIRI(w.subject)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", w.subject, err)
	}
	return iri, nil
}

func literal(lexical, datatype string) (krdf.Literal, error) {
	if datatype == "" {
		return krdf.NewLiteral(lexical)
	}
	dt, err := krdf.NewIRI(datatype)
	if err != nil {
		return krdf.Literal{}, fmt.Errorf("datatype %q: %w", datatype, err)
	}
	return krdf.NewTypedLiteral(lexical, dt), nil
}

// expand resolves prefix:local. An undeclared prefix leaves local as is,
// which lets callers pass full IRIs with an empty prefix.
func (w *NTriplesWriter) expand(prefix, local string) string {
	return w.prefixes[prefix] + local
}

var _ Writer = (*NTriplesWriter)(nil)
