package svgdoc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Header is the declaration written at the top of every document.
const Header = "<?xml version='1.0' encoding='utf-8'?>\n"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// encoder writes the tree back as markup. encoding/xml's Encoder
// would invent prefixes for namespaced names, so names are
// qualified here from the prefixes declared in the source.
type encoder struct {
	*bufio.Writer
	prefixes     map[string]string
	defaultSpace string
}

// Encode writes the document, starting with Header. Elements of
// the root namespace are written without prefix.
func (doc *Document) Encode(w io.Writer) error {
	enc := encoder{Writer: bufio.NewWriter(w), prefixes: doc.prefixes, defaultSpace: doc.Namespace()}
	enc.WriteString(Header)
	for _, n := range doc.Prolog {
		enc.node(n)
		enc.WriteByte('\n')
	}
	enc.element(doc.Root)
	enc.WriteByte('\n')
	for _, n := range doc.Epilog {
		enc.node(n)
		enc.WriteByte('\n')
	}
	return enc.Flush()
}

// Bytes returns the encoded document.
func (doc *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = doc.Encode(&buf) // a bytes.Buffer never fails
	return buf.Bytes()
}

// WriteFile encodes the document into path, creating
// the parent directories if needed.
func (doc *Document) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, doc.Bytes(), 0o644)
}

func (enc encoder) qualify(name xml.Name, isElement bool) string {
	switch {
	case name.Space == "":
		return name.Local
	case name.Space == "xmlns":
		return "xmlns:" + name.Local
	case name.Space == xmlNamespace:
		return "xml:" + name.Local
	case isElement && name.Space == enc.defaultSpace:
		return name.Local
	}
	if p, ok := enc.prefixes[name.Space]; ok {
		return p + ":" + name.Local
	}
	// an undeclared prefix is left untranslated by the decoder
	if !strings.ContainsAny(name.Space, "/:") {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

func (enc encoder) element(el *Element) {
	name := enc.qualify(el.Name, true)
	enc.WriteByte('<')
	enc.WriteString(name)
	for _, attr := range el.Attr {
		enc.WriteByte(' ')
		enc.WriteString(enc.qualify(attr.Name, false))
		enc.WriteString(`="`)
		attrEscaper.WriteString(enc, attr.Value)
		enc.WriteByte('"')
	}
	if len(el.Children) == 0 {
		enc.WriteString("/>")
		return
	}
	enc.WriteByte('>')
	for _, n := range el.Children {
		enc.node(n)
	}
	enc.WriteString("</")
	enc.WriteString(name)
	enc.WriteByte('>')
}

func (enc encoder) node(n Node) {
	switch n := n.(type) {
	case *Element:
		enc.element(n)
	case CharData:
		textEscaper.WriteString(enc, string(n))
	case Comment:
		enc.WriteString("<!--")
		enc.WriteString(string(n))
		enc.WriteString("-->")
	case ProcInst:
		enc.WriteString("<?")
		enc.WriteString(n.Target)
		// the decoder keeps the blank separating target and content
		if n.Inst != "" && !strings.ContainsAny(n.Inst[:1], " \t\r\n") {
			enc.WriteByte(' ')
		}
		enc.WriteString(n.Inst)
		enc.WriteString("?>")
	case Directive:
		enc.WriteString("<!")
		enc.WriteString(string(n))
		enc.WriteByte('>')
	}
}
