package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PrintJSON writes data as indented JSON.
func PrintJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintYAML writes data with its yaml tags, for types such as the server
// configuration that define their own YAML form.
func PrintYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// PrintJSONAsYAML writes data as YAML using its JSON field names and order.
// API responses only carry json tags, so this keeps "shard_key" from
// becoming "shardkey".
func PrintJSONAsYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	clearStyle(&doc)
	return PrintYAML(w, &doc)
}

// clearStyle drops the flow style and quoting the JSON source left on the
// nodes so the result reads as block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
