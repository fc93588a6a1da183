package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// writeResult renders v as indented GeoJSON, or as the same document in
// YAML when format is "yaml".
func writeResult(w io.Writer, v any, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: encode json")
	}

	switch format {
	case "", "json":
		if _, err := w.Write(append(data, '\n')); err != nil {
			return eris.Wrap(err, "output: write")
		}
		return nil
	case "yaml":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return eris.Wrap(err, "output: decode json")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "output: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "output: close yaml encoder")
		}
		return nil
	default:
		return eris.Errorf("output: unknown format %q", format)
	}
}
