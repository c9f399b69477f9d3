package soap

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>`

type attr struct {
	name  string
	value string
}

// element is the output tree. Names are written verbatim, prefix included.
type element struct {
	name     string
	attrs    []attr
	text     string
	children []*element
}

func newElement(name string) *element {
	return &element{name: name}
}

func textElement(name, text string) *element {
	return &element{name: name, text: text}
}

func (e *element) add(children ...*element) *element {
	e.children = append(e.children, children...)
	return e
}

// appendValue attaches v to parent under name.
func appendValue(parent *element, name string, v Value) {
	switch val := v.(type) {
	case Text:
		parent.add(textElement(name, string(val)))
	case Map:
		child := newElement(name)
		for _, f := range val {
			appendValue(child, f.Name, f.Value)
		}
		parent.add(child)
	case List:
		if len(val) == 0 {
			parent.add(newElement(name))
			return
		}
		for _, item := range val {
			appendValue(parent, name, item)
		}
	default:
		parent.add(newElement(name))
	}
}

// encodeDocument serializes root behind the XML declaration. It rejects names
// that are not XML names and text holding characters XML cannot carry.
func encodeDocument(root *element, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	if pretty {
		buf.WriteByte('\n')
	}
	if err := writeElement(&buf, root, pretty, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, e *element, pretty bool, depth int) error {
	if !validName(e.name) {
		return fmt.Errorf("invalid element name %q", e.name)
	}
	if pretty {
		buf.WriteString(strings.Repeat("  ", depth))
	}
	buf.WriteByte('<')
	buf.WriteString(e.name)
	for _, a := range e.attrs {
		if !validName(a.name) {
			return fmt.Errorf("invalid attribute name %q", a.name)
		}
		if !validText(a.value) {
			return fmt.Errorf("invalid character in attribute %q", a.name)
		}
		buf.WriteByte(' ')
		buf.WriteString(a.name)
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.value))
		buf.WriteByte('"')
	}

	switch {
	case len(e.children) == 0 && e.text == "":
		buf.WriteString("/>")
	case len(e.children) == 0:
		if !validText(e.text) {
			return fmt.Errorf("invalid character in element %q", e.name)
		}
		buf.WriteByte('>')
		buf.WriteString(textEscaper.Replace(e.text))
		writeEnd(buf, e.name)
	default:
		buf.WriteByte('>')
		if pretty {
			buf.WriteByte('\n')
		}
		for _, c := range e.children {
			if err := writeElement(buf, c, pretty, depth+1); err != nil {
				return err
			}
		}
		if pretty {
			buf.WriteString(strings.Repeat("  ", depth))
		}
		writeEnd(buf, e.name)
	}
	if pretty {
		buf.WriteByte('\n')
	}
	return nil
}

func writeEnd(buf *bytes.Buffer, name string) {
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
			continue
		}
		if !isNameStart(r) && !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStart(r rune) bool {
	return r == ':' || r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '-' || r == '.' || r == 0xB7 || unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// validText checks the XML 1.0 Char production.
func validText(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return false
		}
		switch {
		case r == 0x9 || r == 0xA || r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
		i += size
	}
	return true
}
