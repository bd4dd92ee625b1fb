package workspace

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ManifestFile is the project file the build tool reads from its working directory.
const ManifestFile = "default.project.json"

var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest is a Rojo project: a tree of instances mapped onto source files.
type Manifest struct {
	Name string
	Tree *Node
}

// Node is an instance in the project tree. Path, ClassName and Properties
// are optional. Property values use Rojo's implicit JSON forms, e.g.
// [x, y, z] for a Vector3.
type Node struct {
	Name       string
	ClassName  string
	Path       string
	Properties map[string]any
	Children   []*Node
}

// NewManifest returns the package layout: a root folder holding a
// ReplicatedStorage folder with modules and a ServerScriptService folder
// with scripts.
func NewManifest(name string, modules, scripts []string) *Manifest {
	replicated := &Node{Name: "ReplicatedStorage", ClassName: "Folder"}
	for _, file := range modules {
		replicated.Children = append(replicated.Children, &Node{Name: nodeName(file), Path: file})
	}

	server := &Node{Name: "ServerScriptService", ClassName: "Folder"}
	for _, file := range scripts {
		server.Children = append(server.Children, &Node{Name: nodeName(file), Path: file})
	}

	return &Manifest{
		Name: name,
		Tree: &Node{ClassName: "Folder", Children: []*Node{replicated, server}},
	}
}

// nodeName strips the script suffixes Rojo uses to pick the instance class.
func nodeName(file string) string {
	for _, suffix := range []string{".server.lua", ".client.lua", ".lua", ".luau"} {
		if s, ok := strings.CutSuffix(file, suffix); ok {
			return s
		}
	}
	return file
}

// Encode returns the project file content indented with two spaces.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	if err := writeJSON(&buf, m.Name); err != nil {
		return nil, err
	}
	buf.WriteString(`,"tree":`)
	if m.Tree == nil {
		buf.WriteString("{}")
	} else if err := m.Tree.encode(&buf); err != nil {
		return nil, err
	}
	buf.WriteString("}")

	var indented bytes.Buffer
	if err := json.Indent(&indented, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

// encode writes the node keeping child order, which encoding/json maps don't.
func (n *Node) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	field := func(key string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeJSON(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return nil
	}

	if n.ClassName != "" {
		if err := field("$className"); err != nil {
			return err
		}
		if err := writeJSON(buf, n.ClassName); err != nil {
			return err
		}
	}
	if n.Path != "" {
		if err := field("$path"); err != nil {
			return err
		}
		if err := writeJSON(buf, n.Path); err != nil {
			return err
		}
	}
	if len(n.Properties) > 0 {
		if err := field("$properties"); err != nil {
			return err
		}
		// Map keys are sorted, so the output stays deterministic.
		if err := writeJSON(buf, n.Properties); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := field(child.Name); err != nil {
			return err
		}
		if err := child.encode(buf); err != nil {
			return err
		}
	}

	buf.WriteByte('}')
	return nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

//go:embed manifest.schema.json
var manifestSchema []byte

var manifestSchemaLoader = gojsonschema.NewBytesLoader(manifestSchema)

// Validate checks a project file against the manifest schema.
func Validate(doc []byte) error {
	res, err := gojsonschema.Validate(manifestSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(msgs, "; "))
	}
	return nil
}
