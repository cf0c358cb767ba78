package genmedia

import (
	"context"
	"sync"
)

// MockImageService is a mock implementation of ImageService.
type MockImageService struct {
	GenerateImagesFunc func(ctx context.Context, model Model, prompt string, config *GenerationConfig) (*ServiceResponse, error)
	ModelsFunc         func() []ModelInfo
	CloseFunc          func() error

	mu          sync.Mutex
	calls       int
	lastConfig  *GenerationConfig
	closeCalled bool
}

func (m *MockImageService) GenerateImages(ctx context.Context, model Model, prompt string, config *GenerationConfig) (*ServiceResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastConfig = config
	m.mu.Unlock()

	if m.GenerateImagesFunc != nil {
		return m.GenerateImagesFunc(ctx, model, prompt, config)
	}
	return &ServiceResponse{}, nil
}

func (m *MockImageService) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{}
}

func (m *MockImageService) Close() error {
	m.mu.Lock()
	m.closeCalled = true
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// countingFactory returns a capability backed by svc and a pointer to the
// number of clients it has built.
func countingFactory(svc ImageService, err error) (Capability, *int) {
	built := 0
	return Available(func(ctx context.Context, project, location string) (ImageService, error) {
		built++
		if err != nil {
			return nil, err
		}
		return svc, nil
	}), &built
}
