// Package kvtext is the concrete text codec for internal/kvtree: it
// persists an ordered key/value mapping to and from YAML, walking
// yaml.Node directly rather than a plain map so that key order
// survives the round trip.
package kvtext

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/darthryking/projectvis/internal/kvtree"
)

// Save writes m to path as YAML, creating parent directories as
// needed.
func Save(path string, m *kvtree.Map) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("kvtext: creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kvtext: creating %s: %w", path, err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	encoder.SetIndent(4)

	if err := encoder.Encode(mapToNode(m)); err != nil {
		return fmt.Errorf("kvtext: encoding %s: %w", path, err)
	}
	return nil
}

// Load reads a Map previously written by Save.
func Load(path string) (*kvtree.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kvtext: opening %s: %w", path, err)
	}
	defer f.Close()

	var doc yaml.Node
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("kvtext: decoding %s: %w", path, err)
	}
	return nodeToMap(&doc)
}

// Marshal encodes m as a YAML byte slice, for in-memory round trips.
func Marshal(m *kvtree.Map) ([]byte, error) {
	data, err := yaml.Marshal(mapToNode(m))
	if err != nil {
		return nil, fmt.Errorf("kvtext: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a YAML byte slice previously produced by Marshal.
func Unmarshal(data []byte) (*kvtree.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kvtext: unmarshal: %w", err)
	}
	return nodeToMap(&doc)
}

func mapToNode(m *kvtree.Map) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range m.Keys() {
		v, _ := m.Get(key)

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}

		var valNode *yaml.Node
		if child, ok := v.AsMap(); ok {
			valNode = mapToNode(child)
		} else {
			s, _ := v.AsString()
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
		}

		node.Content = append(node.Content, keyNode, valNode)
	}
	return node
}

func nodeToMap(node *yaml.Node) (*kvtree.Map, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) != 1 {
			return nil, fmt.Errorf("kvtext: expected exactly one top-level document node, got %d", len(node.Content))
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("kvtext: expected a mapping node at %d:%d", node.Line, node.Column)
	}

	m := kvtree.NewMap()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("kvtext: mapping key at %d:%d is not a scalar", keyNode.Line, keyNode.Column)
		}

		switch valNode.Kind {
		case yaml.MappingNode:
			child, err := nodeToMap(valNode)
			if err != nil {
				return nil, err
			}
			m.SetMap(keyNode.Value, child)
		case yaml.ScalarNode:
			m.SetString(keyNode.Value, valNode.Value)
		default:
			return nil, fmt.Errorf("kvtext: unsupported value for key %q at %d:%d", keyNode.Value, valNode.Line, valNode.Column)
		}
	}
	return m, nil
}
