package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thevectorguy/conversa-ai/config"
)

// resolveFormat picks the output format from the command flag, then the
// configuration, defaulting to text.
func resolveFormat(flagValue string, cfg *config.Config) config.OutputFormat {
	if flagValue != "" {
		return config.OutputFormat(flagValue)
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return config.OutputFormatText
}

// outputJSONIndent writes v to stdout as indented JSON.
func outputJSONIndent(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAMLDoc writes v to stdout as a YAML document.
func outputYAMLDoc(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling yaml: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
