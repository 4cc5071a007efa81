package lambda

import (
	"context"
	"sync"
	"time"

	"invoice-api/internal/config"
	"invoice-api/pkg/server"
)

// ContainerManager holds the application container across Lambda
// invocations. The runtime freezes the process between invocations,
// so AWS clients and the route table built during the cold start are
// reused until the sandbox is recycled.
type ContainerManager struct {
	mu        sync.Mutex
	container *server.Container
	lastUsed  time.Time
}

var globalManager = &ContainerManager{}

// GetContainerManager returns the process-wide container manager
func GetContainerManager() *ContainerManager {
	return globalManager
}

// Initialize builds the container from the given configuration. Calling
// it again after a successful build is a no-op.
func (m *ContainerManager) Initialize(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container != nil {
		return nil
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		return err
	}

	m.container = container
	m.lastUsed = time.Now()
	return nil
}

// GetContainer returns the shared container, building it from the
// environment on first use
func (m *ContainerManager) GetContainer(ctx context.Context) (*server.Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, err
		}

		container, err := server.NewContainer(cfg)
		if err != nil {
			return nil, err
		}
		m.container = container
	}

	m.lastUsed = time.Now()
	return m.container, nil
}

// IsWarm reports whether a recently used container is already in place
func (m *ContainerManager) IsWarm() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.container != nil && time.Since(m.lastUsed) < 5*time.Minute
}

// HealthCheck verifies the held container's backing services
func (m *ContainerManager) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	container := m.container
	m.mu.Unlock()

	if container == nil {
		return nil
	}
	return container.HealthCheck(ctx)
}

// Cleanup releases the held container and its resources
func (m *ContainerManager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container == nil {
		return nil
	}

	err := m.container.Close()
	m.container = nil
	return err
}
