package message

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// document is the intermediate form of an inbound payload: the parsed
// element tree plus a flag recording whether the payload declared its
// default namespace. Element lookups match local names only, so documents
// with and without the declaration (and documents using an explicit
// prefix) navigate identically.
type document struct {
	root      *etree.Element
	defaultNS bool
}

func parseDocument(payload []byte) (*document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return &document{
		root:      root,
		defaultNS: root.SelectAttr("xmlns") != nil,
	}, nil
}

// child returns the first child element with the given local name.
func child(e *etree.Element, name string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == name {
			return c
		}
	}
	return nil
}

// children returns all child elements with the given local name.
func children(e *etree.Element, name string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == name {
			out = append(out, c)
		}
	}
	return out
}

// descend walks the named path from e, returning nil when any step is
// missing.
func descend(e *etree.Element, names ...string) *etree.Element {
	for _, name := range names {
		e = child(e, name)
		if e == nil {
			return nil
		}
	}
	return e
}

// textAt returns the trimmed text at the named path, or "".
func textAt(e *etree.Element, names ...string) string {
	if found := descend(e, names...); found != nil {
		return trimmed(found)
	}
	return ""
}

func trimmed(e *etree.Element) string {
	if e == nil {
		return ""
	}
	// etree keeps surrounding whitespace of indented documents.
	return strings.TrimSpace(e.Text())
}
