package model

import (
	"sync"
)

// StateManager tracks the training state of a model in a thread-safe manner.
// Models embed it by composition.
type StateManager struct {
	mu sync.RWMutex

	fitted      bool
	nFeatures   int
	nSamples    int
	nIterations int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether at least one training run has completed.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// SetDimensions records the number of features and samples the model trains on.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// GetDimensions returns the number of features and samples.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// AddIterations adds n accepted optimizer steps to the running total.
func (s *StateManager) AddIterations(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nIterations += n
}

// NIterations returns the accepted optimizer steps across all training runs.
func (s *StateManager) NIterations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nIterations
}

// ModelState is a snapshot of the training state, used for logging and debugging.
type ModelState struct {
	Fitted      bool `json:"fitted"`
	NFeatures   int  `json:"n_features,omitempty"`
	NSamples    int  `json:"n_samples,omitempty"`
	NIterations int  `json:"n_iterations,omitempty"`
}

// GetState returns the current state.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelState{
		Fitted:      s.fitted,
		NFeatures:   s.nFeatures,
		NSamples:    s.nSamples,
		NIterations: s.nIterations,
	}
}
