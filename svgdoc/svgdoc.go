// Provides a mutable representation of SVG documents.
// Unlike a drawing model, the tree keeps every element, attribute,
// comment and text node, so that a document can be edited
// (subtrees moved, attributes rewritten) and written back
// without losing content.
package svgdoc

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// SVGNamespace is the default namespace of SVG documents.
const SVGNamespace = "http://www.w3.org/2000/svg"

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// ErrParse is returned (wrapped) when the input is not well-formed markup.
var ErrParse = errors.New("svgdoc: malformed document")

// Node is one of *Element, CharData, Comment, ProcInst or Directive.
type Node interface {
	isNode()
}

// CharData is the text content found between elements.
type CharData string

// Comment is an XML comment, without the <!-- --> delimiters.
type Comment string

// Directive is an XML directive such as <!DOCTYPE ...>, without the <! > delimiters.
type Directive string

// ProcInst is a processing instruction other than the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

func (CharData) isNode()  {}
func (Comment) isNode()   {}
func (Directive) isNode() {}
func (ProcInst) isNode()  {}

// Document is a parsed SVG file.
type Document struct {
	Prolog []Node // comments, directives and instructions before the root
	Root   *Element
	Epilog []Node // comments and instructions after the root

	prefixes map[string]string // namespace URL -> declared prefix
}

// NewDocument returns a document with the given root element.
// The xmlns:* declarations already present on root are registered.
func NewDocument(root *Element) *Document {
	doc := &Document{Root: root, prefixes: make(map[string]string)}
	doc.register(root.Attr)
	return doc
}

// Parse reads a whole document from the given stream.
func Parse(stream io.Reader) (*Document, error) {
	doc := &Document{prefixes: make(map[string]string)}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel

	var stack []*Element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		switch tok := t.(type) {
		case xml.StartElement:
			el := &Element{Name: tok.Name, Attr: append([]xml.Attr(nil), tok.Attr...)}
			doc.register(tok.Attr)
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("%w: more than one root element", ErrParse)
				}
				doc.Root = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			// whitespace around the root is not kept
			if len(stack) > 0 {
				stack[len(stack)-1].appendNode(CharData(tok))
			}
		case xml.Comment:
			doc.place(stack, Comment(tok))
		case xml.ProcInst:
			if tok.Target == "xml" {
				continue // the declaration is always rewritten
			}
			doc.place(stack, ProcInst{Target: tok.Target, Inst: string(tok.Inst)})
		case xml.Directive:
			doc.place(stack, Directive(tok))
		}
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	return doc, nil
}

// ReadFile parses the named file. A missing file is reported with
// the *fs.PathError returned by os.Open, so that callers may use
// errors.Is(err, fs.ErrNotExist).
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (doc *Document) place(stack []*Element, n Node) {
	switch {
	case len(stack) > 0:
		stack[len(stack)-1].appendNode(n)
	case doc.Root == nil:
		doc.Prolog = append(doc.Prolog, n)
	default:
		doc.Epilog = append(doc.Epilog, n)
	}
}

// register records the xmlns:prefix declarations found in attrs.
// The first prefix seen for a namespace wins.
func (doc *Document) register(attrs []xml.Attr) {
	for _, attr := range attrs {
		if attr.Name.Space != "xmlns" {
			continue
		}
		if _, ok := doc.prefixes[attr.Value]; !ok {
			doc.prefixes[attr.Value] = attr.Name.Local
		}
	}
}

// Prefix returns the prefix declared for the namespace URL, if any.
func (doc *Document) Prefix(space string) (string, bool) {
	p, ok := doc.prefixes[space]
	return p, ok
}

// Declare adds a xmlns:prefix declaration on the root element,
// unless the namespace is already declared.
func (doc *Document) Declare(prefix, space string) {
	if _, ok := doc.prefixes[space]; ok {
		return
	}
	doc.prefixes[space] = prefix
	doc.Root.Attr = append(doc.Root.Attr, xml.Attr{Name: xml.Name{Space: "xmlns", Local: prefix}, Value: space})
}

// Namespace returns the namespace of the root element,
// defaulting to SVGNamespace.
func (doc *Document) Namespace() string {
	if doc.Root != nil && doc.Root.Name.Space != "" {
		return doc.Root.Name.Space
	}
	return SVGNamespace
}
