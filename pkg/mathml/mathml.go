// Package mathml provides small MathML tree operations used when shaping
// rendered output: locating the math element in a larger document, making sure
// the TeX source travels along as an annotation, and building error documents
// that are still valid math elements.
package mathml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"

	"github.com/beevik/etree"
)

const (
	// Namespace is the MathML namespace URI. It doubles as the RDF datatype
	// of MathML literals.
	Namespace = "http://www.w3.org/1998/Math/MathML"

	// TeXEncoding is the annotation encoding used for TeX source.
	TeXEncoding = "application/x-tex"

	// ErrorClass is the class attribute set on error documents.
	ErrorClass = "error texerror"
)

// ErrNoMath is returned when a document does not contain a math element.
var ErrNoMath = errors.New("no math element found")

// IsMathML reports whether s looks like a complete math element, i.e. it is
// non-empty and ends with a closing math tag (optionally namespace-prefixed).
func IsMathML(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "math>") {
		return false
	}
	i := strings.LastIndex(s, "</")
	if i < 0 {
		return false
	}
	name := strings.TrimSuffix(s[i+2:], ">")
	return name == "math" || strings.HasSuffix(name, ":math")
}

// Extract finds the first math element in markup, which may be an HTML
// fragment, and returns its outer XML.
func Extract(markup string) (string, error) {
	doc := newDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString("<root>" + markup + "</root>"); err != nil {
		return "", err
	}
	math := findMath(&doc.Element)
	if math == nil {
		return "", ErrNoMath
	}
	return outerXML(math), nil
}

// EnsureAnnotation returns mml with the TeX source embedded as a
// <annotation encoding="application/x-tex"> element. Markup that already
// carries a TeX annotation is returned unchanged.
func EnsureAnnotation(mml, tex string) (string, error) {
	doc := newDocument()
	if err := doc.ReadFromString(mml); err != nil {
		return "", err
	}
	math := findMath(&doc.Element)
	if math == nil {
		return "", ErrNoMath
	}
	if hasTeXAnnotation(math) {
		return mml, nil
	}

	sem := childByTag(math, "semantics")
	if sem == nil {
		sem = wrapChildren(math)
	}
	ann := sem.CreateElement(qualify(math.Space, "annotation"))
	ann.CreateAttr("encoding", TeXEncoding)
	ann.SetText(tex)

	return outerXML(math), nil
}

// Error builds a math element describing a failed rendering. The result
// always carries the error text in an <merror> and the original TeX in an
// annotation, so consumers expecting a math element never see broken markup.
func Error(class, message, tex string) string {
	doc := etree.NewDocument()
	math := doc.CreateElement("math")
	math.CreateAttr("xmlns", Namespace)
	math.CreateAttr("class", ErrorClass)

	sem := math.CreateElement("semantics")
	merr := sem.CreateElement("merror")
	merr.CreateElement("mtext").SetText(describe(class, message))

	ann := sem.CreateElement("annotation")
	ann.CreateAttr("encoding", TeXEncoding)
	ann.SetText(tex)

	return outerXML(math)
}

func describe(class, message string) string {
	switch {
	case class == "" && message == "":
		return "Failed to parse"
	case message == "":
		return "Failed to parse (" + class + ")"
	case class == "" || strings.Contains(message, class):
		return "Failed to parse: " + message
	default:
		return "Failed to parse (" + class + "): " + message
	}
}

// wrapChildren moves the children of math into a new <semantics> element.
// Several presentation children are grouped in an <mrow> first, since
// semantics expects a single presentation child.
func wrapChildren(math *etree.Element) *etree.Element {
	sem := etree.NewElement(qualify(math.Space, "semantics"))
	target := sem
	if len(math.ChildElements()) > 1 {
		target = sem.CreateElement(qualify(math.Space, "mrow"))
	}

	for _, c := range math.Child {
		switch t := c.(type) {
		case *etree.Element:
			target.AddChild(t.Copy())
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				target.CreateText(t.Data)
			}
		}
	}
	for len(math.Child) > 0 {
		math.RemoveChildAt(0)
	}
	math.AddChild(sem)
	return sem
}

// newDocument returns a document that resolves named HTML entities such as
// &nbsp;, which rendering services emit inside otherwise well-formed MathML.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.Entity = xml.HTMLEntity
	return doc
}

// findMath recursively finds the first "math" element inside root.
func findMath(element *etree.Element) *etree.Element {
	if element.Tag == "math" {
		return element
	}
	for _, c := range element.ChildElements() {
		if m := findMath(c); m != nil {
			return m
		}
	}
	return nil
}

func hasTeXAnnotation(element *etree.Element) bool {
	if element.Tag == "annotation" && element.SelectAttrValue("encoding", "") == TeXEncoding {
		return true
	}
	for _, c := range element.ChildElements() {
		if hasTeXAnnotation(c) {
			return true
		}
	}
	return false
}

func childByTag(element *etree.Element, tag string) *etree.Element {
	for _, c := range element.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func qualify(space, tag string) string {
	if space == "" {
		return tag
	}
	return space + ":" + tag
}

func outerXML(element *etree.Element) string {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.AddChild(element.Copy())

	var buffer bytes.Buffer
	doc.WriteTo(&buffer)
	return buffer.String()
}

// ErrorText returns the text of the first <merror> element in mml.
// The boolean is false when mml contains no error element.
func ErrorText(mml string) (string, bool) {
	doc := newDocument()
	if err := doc.ReadFromString(mml); err != nil {
		return "", false
	}
	merr := doc.FindElement("//merror")
	if merr == nil {
		return "", false
	}
	var sb strings.Builder
	collectText(merr, &sb)
	return strings.TrimSpace(sb.String()), true
}

func collectText(element *etree.Element, sb *strings.Builder) {
	for _, c := range element.Child {
		switch t := c.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			collectText(t, sb)
		}
	}
}
