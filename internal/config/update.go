package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout. Durations are written as strings ("2s")
// so the file stays readable; viper parses them back on load.
type fileConfig struct {
	Version         int        `yaml:"version"`
	APIURL          string     `yaml:"api_url"`
	MetricsInterval string     `yaml:"metrics_interval"`
	ProcessInterval string     `yaml:"process_interval"`
	RequestTimeout  string     `yaml:"request_timeout,omitempty"`
	HistorySize     int        `yaml:"history_size"`
	Thresholds      Thresholds `yaml:"thresholds"`
}

// Marshal renders cfg as YAML in the on-disk layout.
func Marshal(cfg *Config) ([]byte, error) {
	fc := fileConfig{
		Version:         cfg.Version,
		APIURL:          cfg.APIURL,
		MetricsInterval: cfg.MetricsInterval.String(),
		ProcessInterval: cfg.ProcessInterval.String(),
		HistorySize:     cfg.HistorySize,
		Thresholds:      cfg.Thresholds,
	}
	if cfg.RequestTimeout > 0 {
		fc.RequestTimeout = cfg.RequestTimeout.String()
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fc); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()
	return []byte(buf.String()), nil
}

// Save writes cfg to path, replacing any existing file.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetAPIURL rewrites only the api_url key of an existing config file.
// It preserves the existing YAML structure and comments.
func SetAPIURL(configPath, apiURL string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	if valueNode := findMapValue(docNode, "api_url"); valueNode != nil {
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = apiURL
	} else {
		docNode.Content = append(docNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "api_url"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: apiURL},
		)
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
