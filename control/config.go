// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Pipeline configuration loaded from YAML for tools and example binaries.
// Library components take explicit parameters; this is the convenience
// layer on top.

package control

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-enc/api"
)

// PipelineConfig holds the run parameters of an encode pipeline.
type PipelineConfig struct {
	RingCapacity  int    `yaml:"ring_capacity"`
	Width         uint32 `yaml:"width"`
	Height        uint32 `yaml:"height"`
	Codec         string `yaml:"codec"`
	Preset        string `yaml:"preset"`
	WaitTimeoutMs int    `yaml:"wait_timeout_ms"`
}

// DefaultPipelineConfig returns sane defaults for typical use.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		RingCapacity: 8,
		Width:        1920,
		Height:       1080,
		Codec:        "h264",
		Preset:       "p4",
	}
}

// LoadPipelineConfig reads a YAML pipeline config. Missing keys keep their
// defaults.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParsePipelineConfig(data)
}

// ParsePipelineConfig parses YAML bytes into a config with defaults.
func ParsePipelineConfig(data []byte) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.RingCapacity <= 0 {
		return nil, fmt.Errorf("ring_capacity must be positive, got %d", cfg.RingCapacity)
	}
	return cfg, nil
}

// WaitTimeout converts the configured timeout; zero means wait forever.
func (c *PipelineConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutMs) * time.Millisecond
}

// CodecValue maps the codec name onto the api enumeration.
func (c *PipelineConfig) CodecValue() (api.Codec, error) {
	switch c.Codec {
	case "h264":
		return api.CodecH264, nil
	case "hevc":
		return api.CodecHevc, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", c.Codec)
	}
}

// PresetValue maps the preset name onto the api enumeration.
func (c *PipelineConfig) PresetValue() (api.EncodePreset, error) {
	presets := map[string]api.EncodePreset{
		"p1": api.PresetP1, "p2": api.PresetP2, "p3": api.PresetP3,
		"p4": api.PresetP4, "p5": api.PresetP5, "p6": api.PresetP6,
		"p7": api.PresetP7,
	}
	p, ok := presets[c.Preset]
	if !ok {
		return 0, fmt.Errorf("unknown preset %q", c.Preset)
	}
	return p, nil
}
