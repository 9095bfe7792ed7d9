package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jinford/repo-grader/internal/core/fetch"
	"github.com/jinford/repo-grader/internal/core/metrics"
)

// mockFetcher は識別子ごとにスクリプト化された Outcome を返す
type mockFetcher struct {
	mu           sync.Mutex
	outcomes     map[string]fetch.Outcome
	panicOn      map[string]bool
	acquired     []string
	cleanupCalls int
	onAcquire    func(identifier string)
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		outcomes: make(map[string]fetch.Outcome),
		panicOn:  make(map[string]bool),
	}
}

func (m *mockFetcher) Acquire(ctx context.Context, identifier string) fetch.Outcome {
	m.mu.Lock()
	m.acquired = append(m.acquired, identifier)
	onAcquire := m.onAcquire
	m.mu.Unlock()

	if onAcquire != nil {
		onAcquire(identifier)
	}
	if m.panicOn[identifier] {
		panic("fetcher exploded")
	}
	if o, ok := m.outcomes[identifier]; ok {
		return o
	}
	if !fetch.ValidIdentifier(identifier, fetch.DefaultHost) {
		return fetch.Failed(fetch.KindInvalidIdentifier, "Invalid repository URL format", 0)
	}
	return fetch.Acquired("/work/"+identifier, 1)
}

func (m *mockFetcher) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCalls++
}

// mockComputer はパスごとにスクリプト化されたメトリクスを返す
type mockComputer struct {
	metrics map[string]metrics.Metrics
	errs    map[string]error
	calls   []string
}

func newMockComputer() *mockComputer {
	return &mockComputer{
		metrics: make(map[string]metrics.Metrics),
		errs:    make(map[string]error),
	}
}

func (m *mockComputer) Compute(ctx context.Context, path string) (metrics.Metrics, error) {
	m.calls = append(m.calls, path)
	if err, ok := m.errs[path]; ok {
		return metrics.Metrics{}, err
	}
	if mm, ok := m.metrics[path]; ok {
		return mm, nil
	}
	return metrics.Metrics{TotalFiles: 4, FilesUnderThreshold: 3, TotalLines: 100}, nil
}

func factoryFor(f Fetcher) FetcherFactory {
	return func() (Fetcher, error) {
		return f, nil
	}
}

func failingFactory() (Fetcher, error) {
	return nil, errors.New("mkdir /nope: permission denied")
}

func pathNotFound(path string) error {
	return fmt.Errorf("%w: %s", metrics.ErrPathNotFound, path)
}
