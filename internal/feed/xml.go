package feed

import (
	"encoding/xml"
	"strings"
)

// xmlNode is a generic element tree used to walk arbitrary feed XML.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// textContent returns the concatenated character data of the node and all
// of its descendants, mirroring DOM textContent.
func (n xmlNode) textContent() string {
	if len(n.Children) == 0 {
		return n.Text
	}
	var b strings.Builder
	b.WriteString(n.Text)
	for _, child := range n.Children {
		b.WriteString(child.textContent())
	}
	return b.String()
}

// ParseXML parses XML content into the uniform table model.
//
// The document root's direct children are treated as row elements.
// Headers are the first-seen union of attribute names and direct child
// tag names across all row elements. Each row starts with every header
// set to "" and is then overwritten by attribute values and child text
// content. Namespace handling is out of scope: local tag names are used.
// Malformed XML degrades to an empty table.
func ParseXML(content string) Table {
	var root xmlNode
	if err := xml.Unmarshal([]byte(content), &root); err != nil {
		return emptyTable()
	}

	if len(root.Children) == 0 {
		return emptyTable()
	}

	var headers []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		headers = append(headers, name)
	}

	for _, element := range root.Children {
		for _, attr := range element.Attrs {
			add(attr.Name.Local)
		}
		for _, child := range element.Children {
			add(child.XMLName.Local)
		}
	}

	rows := make([]Record, len(root.Children))
	for i, element := range root.Children {
		row := make(Record, len(headers))
		for _, h := range headers {
			row[h] = ""
		}
		for _, attr := range element.Attrs {
			row[attr.Name.Local] = attr.Value
		}
		for _, child := range element.Children {
			row[child.XMLName.Local] = child.textContent()
		}
		rows[i] = row
	}

	if len(headers) == 0 {
		headers = []string{}
	}
	return Table{Headers: headers, Rows: rows}
}
