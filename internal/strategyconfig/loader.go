package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/indicators"
)

// Load reads a YAML strategy file on top of Default()
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes; omitted sections keep their defaults and
// omitted indicator windows keep the preset of the chosen mode
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var head struct {
		Mode contracts.Mode `yaml:"mode"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode strategy yaml: %w", err)
	}
	if head.Mode != "" {
		cfg.Mode = head.Mode
	}
	preset := indicators.ConfigForMode(cfg.Mode)
	cfg.Indicators = &preset

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode strategy yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns Default() when path is empty
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: json.Marshal은 map 키를 정렬하므로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
