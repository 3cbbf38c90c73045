package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/storygoal/internal/config"
)

// render writes v to w in the configured output format.
func (a *app) render(w io.Writer, v any) error {
	switch a.cfg.Output {
	case config.OutputYAML:
		return writeYAML(w, v)
	case config.OutputText:
		_, err := fmt.Fprintln(w, renderText(v))
		return err
	default:
		return writeJSON(w, v)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
