package digitalocean

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of InfrastructureManager.
// Unset funcs return canned catalogs and successful results.
type MockClient struct {
	ListImagesFunc  func(ctx context.Context) ([]Image, error)
	ListFlavorsFunc func(ctx context.Context) ([]Flavor, error)
	ListRegionsFunc func(ctx context.Context) ([]Region, error)
	ListKeysFunc    func(ctx context.Context) ([]Key, error)

	GetServerFunc     func(ctx context.Context, id string) (*Server, error)
	CreateServerFunc  func(ctx context.Context, opts ServerCreateOpts) (*Server, error)
	DestroyServerFunc func(ctx context.Context, id string) error

	CreateKeyFunc func(ctx context.Context, name, publicKey string) (*Key, error)
	DeleteKeyFunc func(ctx context.Context, id string) error

	mu    sync.Mutex
	calls map[string]int
}

// Ensure interface compliance
var _ InfrastructureManager = (*MockClient)(nil)

// Calls returns how often method was invoked.
func (m *MockClient) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockClient) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// ListImages mocks the image catalog.
func (m *MockClient) ListImages(ctx context.Context) ([]Image, error) {
	m.record("ListImages")
	if m.ListImagesFunc != nil {
		return m.ListImagesFunc(ctx)
	}
	return []Image{
		{ID: "3240036", Name: "6.5 x64", Distribution: "CentOS", Slug: "centos-6-5-x64"},
		{ID: "3240850", Name: "14.04 x64", Distribution: "Ubuntu", Slug: "ubuntu-14-04-x64"},
	}, nil
}

// ListFlavors mocks the size catalog.
func (m *MockClient) ListFlavors(ctx context.Context) ([]Flavor, error) {
	m.record("ListFlavors")
	if m.ListFlavorsFunc != nil {
		return m.ListFlavorsFunc(ctx)
	}
	return []Flavor{
		{ID: "512mb", Name: "512MB", Memory: 512, VCPUs: 1},
		{ID: "1gb", Name: "1GB", Memory: 1024, VCPUs: 1},
	}, nil
}

// ListRegions mocks the region catalog.
func (m *MockClient) ListRegions(ctx context.Context) ([]Region, error) {
	m.record("ListRegions")
	if m.ListRegionsFunc != nil {
		return m.ListRegionsFunc(ctx)
	}
	return []Region{
		{ID: "sfo1", Name: "San Francisco 1", Available: true},
		{ID: "nyc1", Name: "New York 1", Available: true},
	}, nil
}

// ListKeys mocks the SSH key listing. The default account has no keys.
func (m *MockClient) ListKeys(ctx context.Context) ([]Key, error) {
	m.record("ListKeys")
	if m.ListKeysFunc != nil {
		return m.ListKeysFunc(ctx)
	}
	return nil, nil
}

// GetServer mocks droplet lookup.
func (m *MockClient) GetServer(ctx context.Context, id string) (*Server, error) {
	m.record("GetServer")
	if m.GetServerFunc != nil {
		return m.GetServerFunc(ctx, id)
	}
	return &Server{ID: id, Name: "mock", State: "active", Region: "sfo1"}, nil
}

// CreateServer mocks droplet creation.
func (m *MockClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (*Server, error) {
	m.record("CreateServer")
	if m.CreateServerFunc != nil {
		return m.CreateServerFunc(ctx, opts)
	}
	return &Server{ID: "1001", Name: opts.Name, State: "new", Region: opts.Region}, nil
}

// DestroyServer mocks droplet deletion.
func (m *MockClient) DestroyServer(ctx context.Context, id string) error {
	m.record("DestroyServer")
	if m.DestroyServerFunc != nil {
		return m.DestroyServerFunc(ctx, id)
	}
	return nil
}

// CreateKey mocks SSH key registration.
func (m *MockClient) CreateKey(ctx context.Context, name, publicKey string) (*Key, error) {
	m.record("CreateKey")
	if m.CreateKeyFunc != nil {
		return m.CreateKeyFunc(ctx, name, publicKey)
	}
	return &Key{ID: "2001", Name: name, PublicKey: publicKey}, nil
}

// DeleteKey mocks SSH key deletion.
func (m *MockClient) DeleteKey(ctx context.Context, id string) error {
	m.record("DeleteKey")
	if m.DeleteKeyFunc != nil {
		return m.DeleteKeyFunc(ctx, id)
	}
	return nil
}
