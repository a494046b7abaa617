// Package contract provides named interface specifications enforced against
// facets at build time. A contract lists required methods and properties and
// may carry a custom validator; enforcement is a runtime shape check, run
// during the pure verify phase so violations never leave side effects.
package contract

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/faceterr"
)

// ValidateFn is a contract's custom check, invoked after the method and
// property checks pass. Errors are wrapped with contract-name context.
type ValidateFn func(ctx context.Context, env *facet.Env, f facet.Facet) error

// Contract is a named interface specification.
type Contract struct {
	Name       string
	Methods    []string
	Properties []string
	Validate   ValidateFn
}

// Registry stores contracts by name. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Contract
	names  []string
}

// NewRegistry returns an empty contract registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Contract)}
}

// Register adds a contract. Registering an unnamed contract or reusing a
// name is an error; replace a contract with Remove followed by Register.
func (r *Registry) Register(c *Contract) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("contract must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[c.Name]; exists {
		return fmt.Errorf("contract %q already registered", c.Name)
	}
	r.byName[c.Name] = c
	r.names = append(r.names, c.Name)
	return nil
}

// Has reports whether a contract with the name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Get returns the contract with the name, or nil.
func (r *Registry) Get(name string) *Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// List returns all registered contract names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Remove deletes a contract by name, reporting whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return true
}

// Enforce validates a facet against the named contract: every required
// method must exist and be callable, every required property must exist and
// be non-nil, and the custom validator (if any) must pass. The source string
// identifies the facet's producer in error messages.
func (r *Registry) Enforce(ctx context.Context, name string, env *facet.Env, f facet.Facet, source string) error {
	c := r.Get(name)
	if c == nil {
		return &faceterr.ContractError{
			Contract: name,
			Kind:     f.Kind(),
			Source:   source,
			Reason:   "contract is not registered",
		}
	}

	for _, m := range c.Methods {
		fn, ok := methodOf(f, m)
		if !ok {
			return &faceterr.ContractError{
				Contract: name, Kind: f.Kind(), Source: source,
				Reason: fmt.Sprintf("required method %q is missing", m),
			}
		}
		if !callable(fn) {
			return &faceterr.ContractError{
				Contract: name, Kind: f.Kind(), Source: source,
				Reason: fmt.Sprintf("required method %q is not callable", m),
			}
		}
	}

	for _, p := range c.Properties {
		v, ok := propertyOf(f, p)
		if !ok || v == nil {
			return &faceterr.ContractError{
				Contract: name, Kind: f.Kind(), Source: source,
				Reason: fmt.Sprintf("required property %q is missing", p),
			}
		}
	}

	if c.Validate != nil {
		if err := c.Validate(ctx, env, f); err != nil {
			return &faceterr.ContractError{
				Contract: name, Kind: f.Kind(), Source: source,
				Reason: "custom validator failed",
				Err:    err,
			}
		}
	}
	return nil
}

// methodOf resolves a named method from the facet's method bag, falling back
// to a reflected method on the facet value itself.
func methodOf(f facet.Facet, name string) (any, bool) {
	if mp, ok := f.(facet.MethodProvider); ok {
		if v, found := mp.Methods()[name]; found {
			return v, true
		}
	}
	m := reflect.ValueOf(f).MethodByName(name)
	if m.IsValid() {
		return m.Interface(), true
	}
	return nil, false
}

// propertyOf resolves a named property from the facet's property bag,
// falling back to a reflected exported field.
func propertyOf(f facet.Facet, name string) (any, bool) {
	if pp, ok := f.(facet.PropertyProvider); ok {
		if v, found := pp.Properties()[name]; found {
			return v, true
		}
	}
	v := reflect.ValueOf(f)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	field := v.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}
	return field.Interface(), true
}

func callable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}
