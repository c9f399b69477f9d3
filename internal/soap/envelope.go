package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

const (
	NamespaceSOAP11 = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceSOAP12 = "http://www.w3.org/2003/05/soap-envelope"
	NamespaceXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceXSD    = "http://www.w3.org/2001/XMLSchema"
)

var (
	// ErrMalformedXML marks a request body that is not well-formed XML.
	ErrMalformedXML = errors.New("soap: malformed xml")
	// ErrMalformedEnvelope marks well-formed XML without an Envelope > Body > method path.
	ErrMalformedEnvelope = errors.New("soap: malformed envelope")
)

// Call is a decoded method invocation.
type Call struct {
	Method string
	Args   Args
}

// node is the parse tree. text holds the element's leading character data, and
// stays nil when the first content of the element is another element or when the
// element has no content at all.
type node struct {
	name     xml.Name
	text     *string
	children []*node
}

func (n *node) appendText(data []byte) {
	if len(n.children) > 0 || len(bytes.TrimSpace(data)) == 0 {
		return
	}
	s := string(data)
	if n.text != nil {
		s = *n.text + s
	}
	n.text = &s
}

// ParseEnvelope decodes a request envelope. Errors wrap ErrMalformedXML or
// ErrMalformedEnvelope.
func ParseEnvelope(r io.Reader) (*Call, error) {
	root, err := parseTree(r)
	if err != nil {
		return nil, err
	}
	return callFromTree(root)
}

func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	// Declared encodings such as ISO-8859-1 are transcoded to UTF-8.
	dec.CharsetReader = charset.NewReaderLabel
	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedXML)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: text outside root element", ErrMalformedXML)
				}
				continue
			}
			stack[len(stack)-1].appendText(t)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedXML)
	}
	return root, nil
}

func callFromTree(root *node) (*Call, error) {
	if !isSOAP(root.name, "Envelope") {
		return nil, fmt.Errorf("%w: root element is %q", ErrMalformedEnvelope, root.name.Local)
	}
	var body *node
	for _, c := range root.children {
		if isSOAP(c.name, "Body") {
			body = c
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: no Body element", ErrMalformedEnvelope)
	}
	if len(body.children) == 0 {
		return nil, fmt.Errorf("%w: no method element", ErrMalformedEnvelope)
	}

	method := body.children[0]
	args := make(Args, len(method.children)+1)
	for _, arg := range method.children {
		args[arg.name.Local] = arg.text
	}
	return &Call{Method: method.name.Local, Args: args}, nil
}

func isSOAP(name xml.Name, local string) bool {
	if name.Local != local {
		return false
	}
	return name.Space == NamespaceSOAP11 || name.Space == NamespaceSOAP12
}
