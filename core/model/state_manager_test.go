package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	s.SetDimensions(3, 10)
	s.AddIterations(5)
	s.AddIterations(7)
	s.SetFitted()

	nFeatures, nSamples := s.GetDimensions()
	assert.Equal(t, 3, nFeatures)
	assert.Equal(t, 10, nSamples)
	assert.Equal(t, 12, s.NIterations())
	assert.Equal(t, ModelState{Fitted: true, NFeatures: 3, NSamples: 10, NIterations: 12}, s.GetState())
}

func TestStateManagerConcurrentIterations(t *testing.T) {
	s := NewStateManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.AddIterations(1)
				_ = s.IsFitted()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, s.NIterations())
}
