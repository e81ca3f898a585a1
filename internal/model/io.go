package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/strata-ml/strata/internal/serialization"
	"github.com/strata-ml/strata/internal/tensor"
)

// optimizerPrefix namespaces optimizer state inside checkpoint files so it
// cannot collide with layer weights.
const optimizerPrefix = "optimizer."

// Save writes the full model to path: architecture config embedded in the
// container header plus all weights. Load rebuilds it without any prior
// knowledge of the architecture.
func (m *Model[B]) Save(path string) error {
	cfgJSON, err := json.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("failed to serialize architecture: %w", err)
	}

	w, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	header := serialization.Header{
		ModelType:    "sequential",
		Architecture: cfgJSON,
	}
	if err := w.WriteStateDictWithHeader(m.StateDict(), header); err != nil {
		return fmt.Errorf("failed to save model %q: %w", m.name, err)
	}
	return nil
}

// Load reads a full model saved with Save: the architecture is rebuilt from
// the embedded config, then the weights are loaded into it.
func Load[B tensor.Backend](path string, backend B) (*Model[B], error) {
	r, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	header := r.Header()
	if len(header.Architecture) == 0 {
		return nil, fmt.Errorf("file %q has no architecture config: use LoadWeights on a built model", path)
	}
	cfg, err := ConfigFromJSON(header.Architecture)
	if err != nil {
		return nil, err
	}

	m, err := FromConfig(cfg, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild model from config: %w", err)
	}

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return nil, err
	}
	if err := m.LoadStateDict(stateDict); err != nil {
		return nil, fmt.Errorf("failed to load weights into rebuilt model: %w", err)
	}
	return m, nil
}

// SaveWeights writes only the state dict, without architecture. The file
// loads back into any model with matching parameter names and shapes.
func (m *Model[B]) SaveWeights(path string) error {
	w, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	metadata := map[string]string{"model_name": m.name}
	if err := w.WriteStateDict(m.StateDict(), "weights", metadata); err != nil {
		return fmt.Errorf("failed to save weights of %q: %w", m.name, err)
	}
	return nil
}

// LoadWeights loads a weights-only file into this model. Every tensor must
// match an existing parameter by name and shape.
func (m *Model[B]) LoadWeights(path string) error {
	r, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return err
	}
	return m.LoadStateDict(stateDict)
}

// SaveCheckpoint writes model weights, optimizer state and training metadata
// so that training resumes exactly where it stopped. The model must be
// compiled.
func (m *Model[B]) SaveCheckpoint(path string, epoch int, lossValue float64) error {
	if m.optimizer == nil {
		return fmt.Errorf("model %q is not compiled: checkpoints include optimizer state", m.name)
	}

	stateDict := m.StateDict()
	for key, raw := range m.optimizer.StateDict() {
		stateDict[optimizerPrefix+key] = raw
	}

	cfgJSON, err := json.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("failed to serialize architecture: %w", err)
	}

	w, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	header := serialization.Header{
		ModelType:    "sequential",
		Architecture: cfgJSON,
		CheckpointMeta: &serialization.CheckpointMeta{
			IsCheckpoint:    true,
			Epoch:           epoch,
			Step:            m.step,
			Loss:            lossValue,
			OptimizerType:   m.optimizer.Name(),
			OptimizerConfig: m.optimizer.Config(),
		},
	}
	if err := w.WriteStateDictWithHeader(stateDict, header); err != nil {
		return fmt.Errorf("failed to save checkpoint of %q: %w", m.name, err)
	}
	return nil
}

// LoadCheckpoint restores model weights and optimizer state from a
// checkpoint file and returns its training metadata. The model must already
// be built with the matching architecture and compiled with an optimizer of
// the checkpointed type.
func (m *Model[B]) LoadCheckpoint(path string) (*serialization.CheckpointMeta, error) {
	if m.optimizer == nil {
		return nil, fmt.Errorf("model %q is not compiled: checkpoints include optimizer state", m.name)
	}

	r, err := serialization.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	meta := r.Header().CheckpointMeta
	if meta == nil || !meta.IsCheckpoint {
		return nil, fmt.Errorf("file %q is not a checkpoint", path)
	}
	if meta.OptimizerType != m.optimizer.Name() {
		return nil, fmt.Errorf("checkpoint was taken with optimizer %q, model is compiled with %q",
			meta.OptimizerType, m.optimizer.Name())
	}

	full, err := r.ReadStateDict()
	if err != nil {
		return nil, err
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimizerState := make(map[string]*tensor.RawTensor)
	for key, raw := range full {
		if rest, found := strings.CutPrefix(key, optimizerPrefix); found {
			optimizerState[rest] = raw
		} else {
			modelState[key] = raw
		}
	}

	if err := m.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("failed to restore model weights: %w", err)
	}
	if err := m.optimizer.LoadStateDict(optimizerState); err != nil {
		return nil, fmt.Errorf("failed to restore optimizer state: %w", err)
	}
	m.step = meta.Step
	return meta, nil
}

// ExportSafetensors writes the state dict in the safetensors interchange
// format. Architecture and training state are not included.
func (m *Model[B]) ExportSafetensors(path string) error {
	metadata := map[string]string{"format": "strata", "model_name": m.name}
	if err := serialization.WriteSafetensors(path, m.StateDict(), metadata); err != nil {
		return fmt.Errorf("failed to export %q: %w", m.name, err)
	}
	return nil
}

// ImportSafetensors loads weights from a safetensors file into this model.
// Tensor names must follow the model's "layerIndex.paramName" convention.
func (m *Model[B]) ImportSafetensors(path string) error {
	stateDict, _, err := serialization.ReadSafetensors(path)
	if err != nil {
		return fmt.Errorf("failed to import into %q: %w", m.name, err)
	}
	return m.LoadStateDict(stateDict)
}
