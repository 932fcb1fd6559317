package svgdoc

import "encoding/xml"

// Element is a node of the document tree. An element belongs
// to at most one parent: attaching it somewhere else moves it.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []Node

	parent *Element
}

func (*Element) isNode() {}

// NewElement returns a detached element.
func NewElement(space, local string) *Element {
	return &Element{Name: xml.Name{Space: space, Local: local}}
}

// Parent returns the element owning el, or nil for a root
// or detached element.
func (el *Element) Parent() *Element { return el.parent }

// Get returns the value of the unqualified attribute `name`.
func (el *Element) Get(name string) (string, bool) {
	for _, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether the unqualified attribute `name` is present.
func (el *Element) Has(name string) bool {
	_, ok := el.Get(name)
	return ok
}

// Set updates the attribute in place, or appends it.
func (el *Element) Set(name, value string) {
	for i, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == name {
			el.Attr[i].Value = value
			return
		}
	}
	el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Prepend updates the attribute in place, or inserts it
// before every other attribute.
func (el *Element) Prepend(name, value string) {
	for i, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == name {
			el.Attr[i].Value = value
			return
		}
	}
	el.Attr = append([]xml.Attr{{Name: xml.Name{Local: name}, Value: value}}, el.Attr...)
}

// Remove deletes every occurrence of the unqualified attribute
// and reports whether one was found.
func (el *Element) Remove(name string) bool {
	kept := el.Attr[:0]
	found := false
	for _, attr := range el.Attr {
		if attr.Name.Space == "" && attr.Name.Local == name {
			found = true
			continue
		}
		kept = append(kept, attr)
	}
	el.Attr = kept
	return found
}

// Elements returns the child elements, skipping text and comments.
func (el *Element) Elements() []*Element {
	var out []*Element
	for _, n := range el.Children {
		if child, ok := n.(*Element); ok {
			out = append(out, child)
		}
	}
	return out
}

// AppendChild moves child to the end of el's children.
// If child was attached elsewhere, it is detached first:
// the subtree is never duplicated.
func (el *Element) AppendChild(child *Element) {
	child.Detach()
	child.parent = el
	el.Children = append(el.Children, child)
}

func (el *Element) appendNode(n Node) {
	if child, ok := n.(*Element); ok {
		el.AppendChild(child)
		return
	}
	el.Children = append(el.Children, n)
}

// Detach removes el from its parent. The former parent
// no longer references el afterwards.
func (el *Element) Detach() {
	p := el.parent
	if p == nil {
		return
	}
	for i, n := range p.Children {
		if n == Node(el) {
			p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
			break
		}
	}
	el.parent = nil
}

// Walk visits el and its descendants in document order.
// Returning false from fn skips the children of the visited element.
func (el *Element) Walk(fn func(*Element) bool) {
	if !fn(el) {
		return
	}
	for _, n := range el.Children {
		if child, ok := n.(*Element); ok {
			child.Walk(fn)
		}
	}
}

// FindAll returns the elements of the subtree (el included)
// matching pred, in document order.
func (el *Element) FindAll(pred func(*Element) bool) []*Element {
	var out []*Element
	el.Walk(func(e *Element) bool {
		if pred(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Namespaces returns the namespace URLs used by element and
// attribute names in the subtree, in order of first use.
// Namespace declarations themselves are not reported.
func (el *Element) Namespaces() []string {
	seen := map[string]bool{}
	var out []string
	add := func(space string) {
		if space == "" || space == "xmlns" || seen[space] {
			return
		}
		seen[space] = true
		out = append(out, space)
	}
	el.Walk(func(e *Element) bool {
		add(e.Name.Space)
		for _, attr := range e.Attr {
			add(attr.Name.Space)
		}
		return true
	})
	return out
}
