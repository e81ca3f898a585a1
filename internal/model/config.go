package model

import (
	"encoding/json"
	"fmt"

	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/tensor"
)

// Config is the serializable architecture description of a model. It carries
// no weights: FromConfig always yields a freshly initialized model.
type Config struct {
	Name   string           `json:"name"`
	Layers []nn.LayerConfig `json:"layers"`
}

// Config returns the model's architecture description.
func (m *Model[B]) Config() Config {
	cfg := Config{Name: m.name}
	for i := 0; i < m.stack.Len(); i++ {
		cfg.Layers = append(cfg.Layers, m.stack.Layer(i).Config())
	}
	return cfg
}

// ToJSON serializes the config.
func (c Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ConfigFromJSON parses a config.
func ConfigFromJSON(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse model config: %w", err)
	}
	return cfg, nil
}

// FromConfig rebuilds an untrained model from an architecture description,
// dispatching each layer through the registry.
func FromConfig[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	m := New(cfg.Name, backend)
	for i, layerCfg := range cfg.Layers {
		layer, err := nn.BuildLayer(layerCfg, backend)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		m.Add(layer)
	}
	return m, nil
}
