package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rileyhilliard/obddash/internal/errors"
	"gopkg.in/yaml.v3"
)

// sectionComments are attached as head comments to the top-level keys of a
// freshly written config.
var sectionComments = map[string]string{
	"device":    "Serial device carrying speed,rpm,load,temp lines. Leave port empty to pick one at startup.",
	"render":    "Redraw cadence of the cluster and of --plain output.",
	"animation": "Boot fade-in and needle wobble.",
	"gauges":    "Analog gauges. color is one of blue, red, yellow, green.",
	"digital":   "Digital speed readout turns warning/danger above these speeds (km/h).",
	"metrics":   "Serve Prometheus metrics at http://<listen>/metrics. Empty disables it.",
	"log":       "The dashboard owns the terminal, so logs go to this file.",
}

// Marshal renders cfg as commented YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i]
			if comment, ok := sectionComments[key.Value]; ok {
				key.HeadComment = comment
			}
		}
	}
	humanizeDurations(&root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	return buf.Bytes(), nil
}

// durationKeys are the config keys holding a time.Duration.
var durationKeys = map[string]bool{
	"read_timeout":     true,
	"interval":         true,
	"plain_interval":   true,
	"startup_interval": true,
}

// humanizeDurations rewrites nanosecond integers under durationKeys as
// duration strings ("16ms"), which viper decodes back into time.Duration.
func humanizeDurations(node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind == yaml.MappingNode {
			humanizeDurations(value)
			continue
		}
		if !durationKeys[key.Value] || value.Tag != "!!int" {
			continue
		}
		n, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			continue
		}
		value.Tag = "!!str"
		value.Value = time.Duration(n).String()
	}
}

// WriteDefault writes DefaultConfig to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite it")
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render the default config", "")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create config directory "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check file permissions")
	}
	return nil
}

// SetDevice records port and baud in the device section of an existing
// config file. It edits the YAML tree in place so comments and unrelated
// keys survive.
func SetDevice(configPath, port string, baud int) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	var docNode *yaml.Node
	switch {
	case root.Kind == yaml.DocumentNode && len(root.Content) > 0:
		docNode = root.Content[0]
	case root.Kind == 0:
		// Empty file.
		docNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{docNode}}
	default:
		return fmt.Errorf("invalid YAML document structure")
	}
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	deviceNode := findMapValue(docNode, "device")
	if deviceNode == nil {
		deviceNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		docNode.Content = append(docNode.Content, scalar("!!str", "device"), deviceNode)
	}
	if deviceNode.Kind != yaml.MappingNode {
		return fmt.Errorf("'device' must be a mapping")
	}

	setMapScalar(deviceNode, "port", scalar("!!str", port))
	setMapScalar(deviceNode, "baud", scalar("!!int", strconv.Itoa(baud)))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// findMapValue finds the value node for a key in a mapping node.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	// Mapping nodes have alternating key-value pairs in Content
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// setMapScalar replaces the value for key, keeping any comments on the old value.
func setMapScalar(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			old := node.Content[i+1]
			value.LineComment = old.LineComment
			value.HeadComment = old.HeadComment
			value.FootComment = old.FootComment
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content, scalar("!!str", key), value)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
