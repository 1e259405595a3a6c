package locator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// LocatorPackage prefixes the class names of built-in strategies.
const LocatorPackage = "org.apache.cassandra.locator."

// Registry maps strategy class names to factories. Entries are only ever
// added; it is filled at startup and then shared by whatever builds strategies
// by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StrategyFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]StrategyFactory)}
}

// NewDefaultRegistry returns a registry holding the built-in strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		// Only fails on duplicate names, which an empty registry cannot have.
		panic(err)
	}
	return r
}

// RegisterBuiltins adds every strategy implemented in this package.
func RegisterBuiltins(r *Registry) error {
	return r.Register(SimpleStrategyClass, NewSimpleStrategy)
}

// Register adds factory under class. A class can be registered once.
func (r *Registry) Register(class string, factory StrategyFactory) error {
	if class == "" || factory == nil {
		return fmt.Errorf("register strategy: empty class or nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[class]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyRegistered, class)
	}
	r.factories[class] = factory
	return nil
}

// Create builds the strategy registered under class. A short name such as
// "SimpleStrategy" resolves against LocatorPackage.
func (r *Registry) Create(class, keyspace string, tm *TokenMetadata, options map[string]string) (ReplicationStrategy, error) {
	factory, err := r.lookup(class)
	if err != nil {
		return nil, err
	}
	return factory(keyspace, tm, options)
}

// Resolve returns the registered class name matching class.
func (r *Registry) Resolve(class string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.factories[class]; ok {
		return class, nil
	}
	if !strings.Contains(class, ".") {
		qualified := LocatorPackage + class
		if _, ok := r.factories[qualified]; ok {
			return qualified, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, class)
}

// Classes returns the registered class names in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	classes := make([]string, 0, len(r.factories))
	for c := range r.factories {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

func (r *Registry) lookup(class string) (StrategyFactory, error) {
	name, err := r.Resolve(class)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[name], nil
}
