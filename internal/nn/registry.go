package nn

import (
	"fmt"
	"sort"
	"sync"

	"github.com/strata-ml/strata/internal/tensor"
)

// BuilderFunc constructs an untrained layer from its config.
type BuilderFunc[B tensor.Backend] func(cfg LayerConfig, backend B) (Layer[B], error)

// customBuilders maps a layer type name to a BuilderFunc[B]. Values are
// stored as any because Go has no generic package-level maps; BuildLayer
// re-asserts the concrete function type for its backend.
var (
	customMu       sync.RWMutex
	customBuilders = make(map[string]any)
)

// RegisterLayer registers a builder for a custom layer type so that models
// containing it can be rebuilt from config. Built-in type names cannot be
// overridden.
func RegisterLayer[B tensor.Backend](name string, builder BuilderFunc[B]) error {
	if isBuiltinLayerType(name) {
		return fmt.Errorf("layer type %q is built in and cannot be overridden", name)
	}
	customMu.Lock()
	defer customMu.Unlock()
	if _, exists := customBuilders[name]; exists {
		return fmt.Errorf("layer type %q is already registered", name)
	}
	customBuilders[name] = builder
	return nil
}

// BuildLayer constructs an untrained layer from its config, dispatching on
// the config's type name.
func BuildLayer[B tensor.Backend](cfg LayerConfig, backend B) (Layer[B], error) {
	switch cfg.Type {
	case LayerDense:
		if cfg.InFeatures <= 0 || cfg.OutFeatures <= 0 {
			return nil, fmt.Errorf("Dense config requires positive in_features and out_features, got %d and %d",
				cfg.InFeatures, cfg.OutFeatures)
		}
		return NewDenseWith(cfg.InFeatures, cfg.OutFeatures, cfg.UseBias(), cfg.Activation, backend), nil
	case LayerReLU:
		return NewReLU[B](), nil
	case LayerSigmoid:
		return NewSigmoid[B](), nil
	case LayerTanh:
		return NewTanh[B](), nil
	case LayerSoftmax:
		return NewSoftmax[B](), nil
	case LayerDropout:
		return NewDropout[B](cfg.Rate), nil
	case LayerLayerNorm:
		if cfg.NormSize <= 0 {
			return nil, fmt.Errorf("LayerNorm config requires positive norm_size, got %d", cfg.NormSize)
		}
		return NewLayerNorm(cfg.NormSize, cfg.Epsilon, backend), nil
	case LayerFlatten:
		return NewFlatten[B](), nil
	case LayerSequential:
		seq := NewSequential[B]()
		for i, sub := range cfg.Sublayers {
			layer, err := BuildLayer(sub, backend)
			if err != nil {
				return nil, fmt.Errorf("sublayer %d: %w", i, err)
			}
			seq.Add(layer)
		}
		return seq, nil
	}

	customMu.RLock()
	v, ok := customBuilders[cfg.Type]
	customMu.RUnlock()
	if ok {
		builder, castOK := v.(BuilderFunc[B])
		if !castOK {
			return nil, fmt.Errorf("layer type %q is registered for a different backend", cfg.Type)
		}
		return builder(cfg, backend)
	}

	return nil, fmt.Errorf("unknown layer type %q (known: %v)", cfg.Type, KnownLayerTypes())
}

// KnownLayerTypes lists built-in and registered layer type names, sorted.
func KnownLayerTypes() []string {
	types := []string{
		LayerDense, LayerReLU, LayerSigmoid, LayerTanh, LayerSoftmax,
		LayerDropout, LayerLayerNorm, LayerFlatten, LayerSequential,
	}
	customMu.RLock()
	for name := range customBuilders {
		types = append(types, name)
	}
	customMu.RUnlock()
	sort.Strings(types)
	return types
}

func isBuiltinLayerType(name string) bool {
	switch name {
	case LayerDense, LayerReLU, LayerSigmoid, LayerTanh, LayerSoftmax,
		LayerDropout, LayerLayerNorm, LayerFlatten, LayerSequential:
		return true
	}
	return false
}
