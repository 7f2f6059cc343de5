package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/signup/internal/log"
)

// Encode renders cfg as a commented YAML document.
func Encode(cfg Config) ([]byte, error) {
	root := mapping(
		entry("tenant", str(cfg.Tenant), "Tenant identifier selecting the remote registration collection."),
		entry("base_url", str(cfg.BaseURL), "Base URL of the registration resource. {tenant} is replaced by the tenant."),
		entry("devtools", boolean(cfg.Devtools), "Mount the cache inspector overlay (ctrl+x)."),
		entry("ui", mapping(
			entry("create_notice", str(cfg.UI.CreateNotice.String()), ""),
			entry("delete_notice", str(cfg.UI.DeleteNotice.String()), ""),
		), "Notification timings."),
		entry("tracing", mapping(
			entry("enabled", boolean(cfg.Tracing.Enabled), ""),
			entry("exporter", str(cfg.Tracing.Exporter), "none, file, stdout or otlp"),
			entry("file_path", str(cfg.Tracing.FilePath), ""),
			entry("otlp_endpoint", str(cfg.Tracing.OTLPEndpoint), ""),
			entry("sample_rate", float(cfg.Tracing.SampleRate), ""),
			entry("service_name", str(cfg.Tracing.ServiceName), ""),
		), "Request tracing."),
		entry("mock", mapping(
			entry("addr", str(cfg.Mock.Addr), ""),
			entry("fail_deletes", boolean(cfg.Mock.FailDeletes), "Answer every delete with 500."),
		), "Settings for `signup mock-server`."),
	)

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "signup configuration",
		Content:     []*yaml.Node{root},
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()
	return buf.Bytes(), nil
}

// WriteDefaultConfig writes the default configuration to configPath,
// creating parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	data, err := Encode(Defaults())
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

type kv struct {
	key     *yaml.Node
	value   *yaml.Node
	comment string
}

func entry(key string, value *yaml.Node, comment string) kv {
	return kv{key: str(key), value: value, comment: comment}
}

func mapping(entries ...kv) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		e.key.HeadComment = e.comment
		n.Content = append(n.Content, e.key, e.value)
	}
	return n
}

func str(v string) *yaml.Node {
	return scalar("!!str", v)
}

func boolean(v bool) *yaml.Node {
	return scalar("!!bool", strconv.FormatBool(v))
}

func float(v float64) *yaml.Node {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return scalar("!!float", s)
}

func scalar(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}
