// Package xmlpart implements the streaming XML partitioner (spec.md §4.5):
// a SAX-style walk over an XML document that emits (bucket, bytes)
// fragments in document order, one per state transition of the element
// stack, coalescing adjacent fragments that share a bucket.
package xmlpart

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cryguy/secompress/principal"
)

// Element is a lightweight snapshot of an xml.StartElement: a tag name
// plus its ordered attribute list.
type Element struct {
	Name  xml.Name
	Attrs []xml.Attr
}

// DataUnit is the smallest classifiable unit of an XML document: an
// element together with the ordered stack of open elements from the root,
// the element itself being the top of that stack. Nested elements sharing
// a tag name need this context to be told apart.
type DataUnit struct {
	Stack []Element
}

// Element returns the element being classified (the top of the stack).
func (d DataUnit) Element() Element { return d.Stack[len(d.Stack)-1] }

// Fragment is one (bucket, bytes) pair in document order.
type Fragment struct {
	Bucket string
	Data   []byte
}

// Partition walks r as an XML document and emits fragments in document
// order per spec.md §4.5: each element contributes a start-tag fragment
// (tag plus any immediately following text) and an end-tag fragment (tag
// plus its tail text), both classified against the element stack at the
// moment of the event. Fragments sharing a bucket with the previously
// emitted fragment are coalesced into one.
func Partition(r io.Reader, access principal.AccessControl[DataUnit], partition principal.PartitionPolicy) ([]Fragment, error) {
	dec := xml.NewDecoder(r)

	var elemStack []Element
	var bucketStack []string
	var frags []Fragment
	// textBucket is the bucket of the most recent start or end tag: text
	// after a start tag belongs to that element, tail text after an end tag
	// belongs to the element just closed.
	var textBucket string

	emit := func(bucket string, data []byte) {
		if n := len(frags); n > 0 && frags[n-1].Bucket == bucket {
			frags[n-1].Data = append(frags[n-1].Data, data...)
			return
		}
		frags = append(frags, Fragment{Bucket: bucket, Data: data})
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elemStack = append(elemStack, Element{Name: t.Name, Attrs: append([]xml.Attr{}, t.Attr...)})
			bucket := partition(access(DataUnit{Stack: append([]Element{}, elemStack...)}))
			bucketStack = append(bucketStack, bucket)
			textBucket = bucket
			emit(bucket, generateStartTag(elemStack[len(elemStack)-1]))

		case xml.EndElement:
			n := len(elemStack)
			if n == 0 {
				continue
			}
			e := elemStack[n-1]
			bucket := partition(access(DataUnit{Stack: append([]Element{}, elemStack...)}))
			textBucket = bucket
			emit(bucket, generateEndTag(e))
			elemStack = elemStack[:n-1]
			bucketStack = bucketStack[:len(bucketStack)-1]

		case xml.CharData:
			if len(bucketStack) == 0 {
				// Text outside the root element (prolog/epilogue whitespace)
				// has no enclosing data unit to classify against.
				continue
			}
			emit(textBucket, escapeText([]byte(t)))
		}
	}
	return frags, nil
}

// generateStartTag renders an element's opening tag, e.g. `<book id="1">`.
func generateStartTag(e Element) []byte {
	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(e.Name.Local)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.Bytes()
}

// generateEndTag renders an element's closing tag, e.g. `</book>`.
func generateEndTag(e Element) []byte {
	return []byte("</" + e.Name.Local + ">")
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeText(b []byte) []byte {
	return []byte(textEscaper.Replace(string(b)))
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
