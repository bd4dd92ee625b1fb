// Package rbxmx writes Roblox XML models directly, without the build tool.
package rbxmx

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

// Document is the <roblox> root of a model file.
type Document struct {
	XMLName xml.Name `xml:"roblox"`
	Version string   `xml:"version,attr"`
	Items   []*Item  `xml:"Item"`
}

// Item is an instance. Its name lives in Properties like any other property.
type Item struct {
	Class      string     `xml:"class,attr"`
	Properties []Property `xml:"Properties>Property"`
	Items      []*Item    `xml:"Item"`
}

// NewItem returns an instance of class named name.
func NewItem(class, name string, props ...Property) *Item {
	return &Item{
		Class:      class,
		Properties: append([]Property{String("Name", name)}, props...),
	}
}

// Add appends children and returns it.
func (it *Item) Add(children ...*Item) *Item {
	it.Items = append(it.Items, children...)
	return it
}

type field struct {
	name  string
	value string
}

// Property is one typed <Properties> entry, e.g. <string name="Name">.
type Property struct {
	typ    string
	name   string
	text   string
	fields []field
}

func String(name, value string) Property {
	return Property{typ: "string", name: name, text: value}
}

func ProtectedString(name, value string) Property {
	return Property{typ: "ProtectedString", name: name, text: value}
}

func Bool(name string, value bool) Property {
	return Property{typ: "bool", name: name, text: strconv.FormatBool(value)}
}

func Token(name, value string) Property {
	return Property{typ: "token", name: name, text: value}
}

func Float(name string, value float64) Property {
	return Property{typ: "float", name: name, text: formatFloat(value)}
}

func Vector3(name string, x, y, z float64) Property {
	return Property{typ: "Vector3", name: name, fields: []field{
		{"X", formatFloat(x)}, {"Y", formatFloat(y)}, {"Z", formatFloat(z)},
	}}
}

func Vector2(name string, x, y float64) Property {
	return Property{typ: "Vector2", name: name, fields: []field{
		{"X", formatFloat(x)}, {"Y", formatFloat(y)},
	}}
}

func UDim2(name string, xScale, xOffset, yScale, yOffset float64) Property {
	return Property{typ: "UDim2", name: name, fields: []field{
		{"XS", formatFloat(xScale)}, {"XO", formatFloat(xOffset)},
		{"YS", formatFloat(yScale)}, {"YO", formatFloat(yOffset)},
	}}
}

// MarshalXML implements xml.Marshaler.
func (p Property) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{
		Name: xml.Name{Local: p.typ},
		Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: p.name}},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if len(p.fields) > 0 {
		for _, f := range p.fields {
			if err := e.EncodeElement(f.value, xml.StartElement{Name: xml.Name{Local: f.name}}); err != nil {
				return err
			}
		}
	} else if p.text != "" {
		if err := e.EncodeToken(xml.CharData(p.text)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Encode returns the document as an indented XML file.
func Encode(items ...*Item) ([]byte, error) {
	doc := Document{Version: "4", Items: items}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
