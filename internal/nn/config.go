package nn

// Layer type names used in configs and by the registry.
const (
	LayerDense      = "Dense"
	LayerReLU       = "ReLU"
	LayerSigmoid    = "Sigmoid"
	LayerTanh       = "Tanh"
	LayerSoftmax    = "Softmax"
	LayerDropout    = "Dropout"
	LayerLayerNorm  = "LayerNorm"
	LayerFlatten    = "Flatten"
	LayerSequential = "Sequential"
)

// LayerConfig is the serializable description of a layer's constructor
// arguments. It is a flat union over all built-in layer types; each type
// reads only its own fields and ignores the rest, so the JSON stays small
// through omitempty.
//
// A config describes architecture only. It never carries weights: rebuilding
// a layer from its config yields a freshly initialized instance.
type LayerConfig struct {
	Type string `json:"type"`

	// Dense
	InFeatures  int    `json:"in_features,omitempty"`
	OutFeatures int    `json:"out_features,omitempty"`
	Bias        *bool  `json:"bias,omitempty"` // nil means true
	Activation  string `json:"activation,omitempty"`

	// Dropout
	Rate float32 `json:"rate,omitempty"`

	// LayerNorm
	NormSize int     `json:"norm_size,omitempty"`
	Epsilon  float32 `json:"epsilon,omitempty"`

	// Sequential
	Sublayers []LayerConfig `json:"layers,omitempty"`

	// Extra carries constructor arguments of custom registered layers.
	Extra map[string]any `json:"extra,omitempty"`
}

// UseBias resolves the Bias field with its default of true.
func (c LayerConfig) UseBias() bool {
	return c.Bias == nil || *c.Bias
}
