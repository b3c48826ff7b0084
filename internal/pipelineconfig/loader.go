package pipelineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a pipeline YAML and returns the validated Config plus the
// raw bytes for audit. KnownFields(true) makes a typo or unknown key an
// immediate load failure instead of a silently defaulted value.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode pipeline config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// Hash generates the canonical SHA-256 of a Config. Structs (not maps)
// keep the JSON field order stable, so the hash is reproducible and can
// namespace artifacts. The one map field (feature kinds) is marshaled
// with sorted keys by encoding/json, so it is stable too.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
