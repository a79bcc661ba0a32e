package kontra

import (
	"context"
	"sort"
	"sync"
)

// StateStore is a boundary interface for persisting ValidationResults across
// runs (§6). Kontra defines the contract only; embedders wire in their own
// backing store (a database table, an object-store prefix, a time-series
// system). No default non-trivial implementation ships - history persistence
// is a Non-goal beyond this interface (§1).
type StateStore interface {
	Save(ctx context.Context, result *ValidationResult) error
	List(ctx context.Context, contractName string, limit int) ([]*ValidationResult, error)
	Get(ctx context.Context, runID string) (*ValidationResult, error)
}

// DatasetResolver is a boundary interface letting a contract reference a
// dataset by name instead of requiring the caller to construct a
// DatasetHandle directly at the call site (§6). Kontra ships no concrete
// resolver beyond the in-memory one below; production resolvers typically
// wrap a catalog or config file, which is out of scope here (Non-goal, §1).
type DatasetResolver interface {
	Resolve(ctx context.Context, name string) (DatasetHandle, error)
}

// InMemoryStateStore is a reference StateStore used by tests and examples. It
// is not intended for production use: no eviction, no persistence across
// process restarts.
type InMemoryStateStore struct {
	mu      sync.RWMutex
	results map[string]*ValidationResult // keyed by run_id
	byName  map[string][]string          // contract name -> run_ids, in insertion order
}

// NewInMemoryStateStore constructs an empty store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		results: make(map[string]*ValidationResult),
		byName:  make(map[string][]string),
	}
}

func (s *InMemoryStateStore) Save(_ context.Context, result *ValidationResult) error {
	if result.Stats.RunID == "" {
		return NewConfigError(ErrCodeInvalidParam, "state store: result has no run_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Stats.RunID] = result
	s.byName[result.ContractName] = append(s.byName[result.ContractName], result.Stats.RunID)
	return nil
}

func (s *InMemoryStateStore) List(_ context.Context, contractName string, limit int) ([]*ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byName[contractName]
	out := make([]*ValidationResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.results[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stats.TotalDuration < out[j].Stats.TotalDuration
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *InMemoryStateStore) Get(_ context.Context, runID string) (*ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[runID]
	if !ok {
		return nil, NewDataError(ErrCodeNotFound, "state store: no result for run_id "+runID)
	}
	return r, nil
}

// InMemoryDatasetResolver is a reference DatasetResolver backed by a simple
// name-to-handle map, used by tests.
type InMemoryDatasetResolver struct {
	mu       sync.RWMutex
	handles  map[string]DatasetHandle
}

// NewInMemoryDatasetResolver constructs an empty resolver.
func NewInMemoryDatasetResolver() *InMemoryDatasetResolver {
	return &InMemoryDatasetResolver{handles: make(map[string]DatasetHandle)}
}

// Register binds a name to a handle.
func (r *InMemoryDatasetResolver) Register(name string, handle DatasetHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[name] = handle
}

func (r *InMemoryDatasetResolver) Resolve(_ context.Context, name string) (DatasetHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	if !ok {
		return nil, NewDataError(ErrCodeNotFound, "dataset resolver: no dataset named "+name)
	}
	return h, nil
}
