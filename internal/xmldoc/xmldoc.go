// Package xmldoc parses XML into a small element tree with the handful of
// structural queries the interchange importers need.
//
// Parse returns a document node (empty Name) whose only child is the root
// element, so every query searches descendants and never the node itself.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrMalformed is matched by every *ParseError.
var ErrMalformed = errors.New("malformed XML")

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed XML at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed XML: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

type Node struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Node

	// content keeps character data and child elements in document order.
	content []item
}

type item struct {
	text  string
	child *Node
}

// Parse reads a complete XML document. Input without exactly one root
// element is malformed.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader
	doc := &Node{}
	stack := []*Node{doc}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newParseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := stack[len(stack)-1]
			if parent == doc && len(doc.Children) > 0 {
				return nil, newParseError(errors.New("more than one root element"))
			}
			node := &Node{Name: t.Name.Local, Attrs: copyAttrs(t.Attr)}
			parent.Children = append(parent.Children, node)
			parent.content = append(parent.content, item{child: node})
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			current := stack[len(stack)-1]
			if current == doc {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, newParseError(errors.New("character data outside the root element"))
				}
				continue
			}
			current.content = append(current.content, item{text: string(t)})
		}
	}

	if len(doc.Children) == 0 {
		return nil, newParseError(errors.New("no root element"))
	}
	return doc, nil
}

// charsetReader transcodes documents that declare a non-UTF-8 encoding,
// such as ISO-8859-1 or windows-1252, by their IANA name.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func newParseError(err error) *ParseError {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Line: syntaxErr.Line, Err: errors.New(syntaxErr.Msg)}
	}
	return &ParseError{Err: err}
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}

// Root returns the document element.
func (n *Node) Root() *Node {
	if n.Name == "" && len(n.Children) == 1 {
		return n.Children[0]
	}
	return n
}

// Text returns all character data under n, concatenated in document order.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, it := range n.content {
		if it.child != nil {
			it.child.writeText(b)
			continue
		}
		b.WriteString(it.text)
	}
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
