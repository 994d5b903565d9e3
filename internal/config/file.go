package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/options"
)

// LoadFile reads a YAML mapping of option names to scalar values. Unknown
// names and values of the wrong kind are configuration errors.
func LoadFile(path string) (options.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("reading config file: %v", err)
	}
	return parseYAML(path, data)
}

func parseYAML(path string, data []byte) (options.Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, apperrors.NewConfigError("%s: %v", path, err)
	}
	out := options.Config{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return out, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, apperrors.NewConfigError("%s:%d: expected a mapping of option names", path, doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		k, v := doc.Content[i], doc.Content[i+1]
		spec, ok := options.Lookup(options.Key(k.Value))
		if !ok {
			return nil, apperrors.NewConfigError("%s:%d: unknown option %q", path, k.Line, k.Value)
		}
		if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
			return nil, apperrors.NewConfigError("%s:%d: %s must be a %s", path, v.Line, k.Value, spec.Kind)
		}
		val, err := options.ParseValue(spec.Kind, v.Value)
		if err != nil {
			return nil, apperrors.NewConfigError("%s:%d: %s: %v", path, v.Line, k.Value, err)
		}
		out[spec.Key] = val
	}
	return out, nil
}

// WriteYAML encodes c as a YAML mapping in option order.
func WriteYAML(w io.Writer, c options.Config) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range c.Keys() {
		v := c[k]
		val := &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
		switch v.Kind() {
		case options.KindBool:
			val.Tag = "!!bool"
		case options.KindInt:
			val.Tag = "!!int"
		default:
			val.Tag = "!!str"
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(k)},
			val,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
