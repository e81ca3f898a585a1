package nn_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/strata-ml/strata/internal/backend/cpu"
	"github.com/strata-ml/strata/internal/nn"
)

func TestBuildLayerBuiltins(t *testing.T) {
	backend := cpu.New()
	bias := false

	tests := []struct {
		name string
		cfg  nn.LayerConfig
	}{
		{"dense", nn.LayerConfig{Type: nn.LayerDense, InFeatures: 2, OutFeatures: 3}},
		{"dense no bias", nn.LayerConfig{Type: nn.LayerDense, InFeatures: 2, OutFeatures: 3, Bias: &bias, Activation: "relu"}},
		{"relu", nn.LayerConfig{Type: nn.LayerReLU}},
		{"sigmoid", nn.LayerConfig{Type: nn.LayerSigmoid}},
		{"tanh", nn.LayerConfig{Type: nn.LayerTanh}},
		{"softmax", nn.LayerConfig{Type: nn.LayerSoftmax}},
		{"dropout", nn.LayerConfig{Type: nn.LayerDropout, Rate: 0.3}},
		{"layernorm", nn.LayerConfig{Type: nn.LayerLayerNorm, NormSize: 8}},
		{"flatten", nn.LayerConfig{Type: nn.LayerFlatten}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, err := nn.BuildLayer(tt.cfg, backend)
			if err != nil {
				t.Fatal(err)
			}
			if layer.Config().Type != tt.cfg.Type {
				t.Errorf("rebuilt type = %q, want %q", layer.Config().Type, tt.cfg.Type)
			}
		})
	}
}

func TestBuildLayerValidatesConfig(t *testing.T) {
	backend := cpu.New()

	if _, err := nn.BuildLayer(nn.LayerConfig{Type: nn.LayerDense}, backend); err == nil {
		t.Error("Dense without dimensions accepted")
	}
	if _, err := nn.BuildLayer(nn.LayerConfig{Type: nn.LayerLayerNorm}, backend); err == nil {
		t.Error("LayerNorm without norm_size accepted")
	}
}

func TestBuildLayerUnknownType(t *testing.T) {
	_, err := nn.BuildLayer(nn.LayerConfig{Type: "GRU"}, cpu.New())
	if err == nil {
		t.Fatal("unknown type accepted")
	}
	if !strings.Contains(err.Error(), "GRU") || !strings.Contains(err.Error(), nn.LayerDense) {
		t.Errorf("error should name the type and list known types: %v", err)
	}
}

func TestBuildLayerNestedSequential(t *testing.T) {
	backend := cpu.New()
	cfg := nn.LayerConfig{
		Type: nn.LayerSequential,
		Sublayers: []nn.LayerConfig{
			{Type: nn.LayerDense, InFeatures: 2, OutFeatures: 4},
			{Type: nn.LayerReLU},
			{Type: nn.LayerDense, InFeatures: 4, OutFeatures: 1},
		},
	}

	layer, err := nn.BuildLayer(cfg, backend)
	if err != nil {
		t.Fatal(err)
	}
	seq, ok := layer.(*nn.Sequential[*cpu.Backend])
	if !ok {
		t.Fatalf("expected *Sequential, got %T", layer)
	}
	if seq.Len() != 3 {
		t.Errorf("Len = %d, want 3", seq.Len())
	}
}

func TestRegisterLayer(t *testing.T) {
	err := nn.RegisterLayer("TestScale", func(cfg nn.LayerConfig, backend *cpu.Backend) (nn.Layer[*cpu.Backend], error) {
		return nn.NewDropout[*cpu.Backend](0), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	layer, err := nn.BuildLayer(nn.LayerConfig{Type: "TestScale"}, cpu.New())
	if err != nil {
		t.Fatal(err)
	}
	if layer == nil {
		t.Fatal("builder returned nil layer")
	}

	// Duplicate registration is rejected.
	err = nn.RegisterLayer("TestScale", func(cfg nn.LayerConfig, backend *cpu.Backend) (nn.Layer[*cpu.Backend], error) {
		return nil, nil
	})
	if err == nil {
		t.Error("duplicate registration accepted")
	}
}

func TestRegisterLayerRejectsBuiltins(t *testing.T) {
	err := nn.RegisterLayer(nn.LayerDense, func(cfg nn.LayerConfig, backend *cpu.Backend) (nn.Layer[*cpu.Backend], error) {
		return nil, nil
	})
	if err == nil {
		t.Error("builtin override accepted")
	}
}

func TestLayerConfigJSON(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewDenseWith(4, 8, false, "relu", backend)

	data, err := json.Marshal(layer.Config())
	if err != nil {
		t.Fatal(err)
	}

	var cfg nn.LayerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Type != nn.LayerDense || cfg.InFeatures != 4 || cfg.OutFeatures != 8 {
		t.Errorf("round trip lost fields: %+v", cfg)
	}
	if cfg.UseBias() {
		t.Error("bias=false lost in round trip")
	}
	if cfg.Activation != "relu" {
		t.Errorf("activation = %q", cfg.Activation)
	}

	// A stateless layer's config stays minimal.
	data, err = json.Marshal(nn.NewReLU[*cpu.Backend]().Config())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"ReLU"}` {
		t.Errorf("ReLU config JSON = %s", data)
	}
}

func TestConfigCarriesNoWeights(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewDense(2, 2, backend)

	// Mark the weights, rebuild from config, and confirm the rebuilt layer
	// got fresh initialization instead of the marked values.
	for i := range layer.Weight().Tensor().Data() {
		layer.Weight().Tensor().Data()[i] = 123
	}

	rebuilt, err := nn.BuildLayer(layer.Config(), backend)
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := rebuilt.StateDict()["weight"]
	if !ok {
		t.Fatal("rebuilt layer has no weight")
	}
	for _, v := range raw.AsFloat32() {
		if v == 123 {
			t.Fatal("config leaked weight values into the rebuilt layer")
		}
	}
}
