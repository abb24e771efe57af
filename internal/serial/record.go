// Package serial converts content subtrees to and from the XML import and
// export format.
//
// A document is a <site> element holding one <content> record per node.
// Records carry their standard fields in <fields>, type specific blocks
// such as <items>, and nested nodes in <children>:
//
//	<site version="1" base="/sub1">
//	  <content slug="news" type="category">
//	    <fields>
//	      <field name="title">News</field>
//	    </fields>
//	    <items>
//	      <item>/t1</item>
//	    </items>
//	    <children>...</children>
//	  </content>
//	</site>
//
// References inside blocks are paths relative to the export base; "/"
// denotes the base itself.
package serial

import (
	"encoding/xml"
	"errors"
)

// FormatVersion is written to the version attribute of exported documents.
const FormatVersion = "1"

// ErrMalformedRecord is returned for records the importer cannot place.
var ErrMalformedRecord = errors.New("malformed record")

// Document is the root element of an export.
type Document struct {
	XMLName  xml.Name  `xml:"site"`
	Version  string    `xml:"version,attr"`
	Base     string    `xml:"base,attr"`
	Contents []*Record `xml:"content"`
}

// Record is one exported node with its content.
type Record struct {
	XMLName  xml.Name  `xml:"content"`
	Slug     string    `xml:"slug,attr"`
	Type     string    `xml:"type,attr,omitempty"`
	Fields   []Field   `xml:"fields>field"`
	Extra    []Block   `xml:",any"`
	Children []*Record `xml:"children>content"`
}

// Field is a named scalar value of a record.
type Field struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Block is a type specific list of values, such as <items>.
type Block struct {
	XMLName xml.Name
	Entries []Entry `xml:",any"`
}

// Entry is one value of a block.
type Entry struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// NewBlock returns a block called name holding one entry element per value.
func NewBlock(name, entry string, values []string) Block {
	b := Block{XMLName: xml.Name{Local: name}}
	for _, v := range values {
		b.Entries = append(b.Entries, Entry{XMLName: xml.Name{Local: entry}, Value: v})
	}
	return b
}

// Values returns the entry values of b.
func (b Block) Values() []string {
	values := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		values = append(values, e.Value)
	}
	return values
}

// Field returns the value of the named field and whether it is present.
func (r *Record) Field(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// SetField sets the named field, replacing an existing value.
func (r *Record) SetField(name, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Block returns the block called name and whether it is present.
func (r *Record) Block(name string) (Block, bool) {
	for _, b := range r.Extra {
		if b.XMLName.Local == name {
			return b, true
		}
	}
	return Block{}, false
}

// AddBlock appends b to the record's extra blocks.
func (r *Record) AddBlock(b Block) {
	r.Extra = append(r.Extra, b)
}
