package usecase

import (
	"log/slog"
	"sort"
	"sync"

	"oura-ai/internal/domain"
)

// SpecialistRegistry holds the routable specialists and provides lookup. The
// set is fixed at startup; routing never invents agents, so an unknown name
// is a lookup error rather than a dynamic registration trigger.
type SpecialistRegistry struct {
	mu          sync.RWMutex
	specialists map[domain.AgentName]domain.Specialist
	logger      *slog.Logger
}

// NewSpecialistRegistry creates an empty registry.
func NewSpecialistRegistry(logger *slog.Logger) *SpecialistRegistry {
	return &SpecialistRegistry{
		specialists: make(map[domain.AgentName]domain.Specialist),
		logger:      logger,
	}
}

// Register adds a specialist. Registering the same name twice replaces the
// earlier instance.
func (r *SpecialistRegistry) Register(s domain.Specialist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specialists[s.Name()] = s
	r.logger.Info("specialist registered", "agent", s.Name(), "tools", len(s.Tools()))
}

// Get returns the specialist for the given name.
func (r *SpecialistRegistry) Get(name domain.AgentName) (domain.Specialist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specialists[name]
	if !ok {
		return nil, domain.NewDomainError("SpecialistRegistry.Get", domain.ErrUnknownAgent, string(name))
	}
	return s, nil
}

// Has reports whether a specialist is registered under the given name.
func (r *SpecialistRegistry) Has(name domain.AgentName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specialists[name]
	return ok
}

// Names returns the registered specialist names, sorted.
func (r *SpecialistRegistry) Names() []domain.AgentName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]domain.AgentName, 0, len(r.specialists))
	for name := range r.specialists {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
