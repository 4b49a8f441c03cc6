package detection

import (
	"fmt"
	"sync"
)

// Registry holds rule descriptors in registration order. Registration order
// is also evaluation order, which fixes the final alert ordering.
type Registry struct {
	mu      sync.RWMutex
	ordered []*Rule
	byID    map[string]*Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Rule)}
}

// Register adds a rule. Duplicate ids and invalid descriptors are rejected.
func (r *Registry) Register(rule *Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[rule.ID]; exists {
		return fmt.Errorf("rule %s already registered", rule.ID)
	}
	r.byID[rule.ID] = rule
	r.ordered = append(r.ordered, rule)
	return nil
}

// MustRegister registers a rule and panics on error; used at startup where a
// bad descriptor is a programming mistake.
func (r *Registry) MustRegister(rule *Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Rule, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get looks up a rule by id.
func (r *Registry) Get(id string) (*Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byID[id]
	return rule, ok
}
