package registry

import (
	goerrors "errors"
	"sort"
	"sync"

	"github.com/goliatone/go-decorator/decorator"
	"github.com/goliatone/go-decorator/logger"
	"github.com/goliatone/go-errors"
)

var (
	// ErrNotFound reports a lookup or removal of a decorator that is not registered.
	ErrNotFound = goerrors.New("registry: decorator not found")
	// ErrNilDecorator reports an attempt to register nothing.
	ErrNilDecorator = goerrors.New("registry: nil decorator")
)

// Registry groups decorators under their names.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*decorator.Decorator
	logger  logger.Logger
}

type Option func(*Registry)

func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*decorator.Decorator),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logger.Or(r.logger, "registry")
	return r
}

// Add registers d under its own name.
func (r *Registry) Add(d *decorator.Decorator) error {
	if d == nil {
		return errors.Wrap(ErrNilDecorator, errors.CategoryBadInput, "cannot register decorator").
			WithTextCode("REGISTRY_NIL_DECORATOR")
	}
	return r.AddAs(d.Name(), d)
}

// AddAs registers d under name. A name is held by one decorator at a time.
func (r *Registry) AddAs(name string, d *decorator.Decorator) error {
	if d == nil {
		return errors.Wrap(ErrNilDecorator, errors.CategoryBadInput, "cannot register decorator").
			WithTextCode("REGISTRY_NIL_DECORATOR").
			WithMetadata(map[string]any{"name": name})
	}
	if name == "" {
		return errors.New("decorator name cannot be empty", errors.CategoryBadInput).
			WithTextCode("REGISTRY_EMPTY_NAME")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		if existing == d {
			return nil
		}
		return errors.Wrap(decorator.ErrNameConflict, errors.CategoryValidation, "decorator name already registered").
			WithTextCode("REGISTRY_NAME_CONFLICT").
			WithMetadata(map[string]any{
				"name":     name,
				"existing": existing.String(),
			})
	}

	r.entries[name] = d
	r.logger.Debug("registered %s", name)
	return nil
}

// Remove deregisters every name d is registered under. d is matched by
// identity, not by name.
func (r *Registry) Remove(d *decorator.Decorator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, entry := range r.entries {
		if entry == d {
			delete(r.entries, name)
			removed++
			r.logger.Debug("removed %s", name)
		}
	}
	if removed == 0 {
		meta := map[string]any{}
		if d != nil {
			meta["name"] = d.Name()
		}
		return errors.Wrap(ErrNotFound, errors.CategoryBadInput, "decorator is not registered").
			WithTextCode("REGISTRY_NOT_FOUND").
			WithMetadata(meta)
	}
	return nil
}

// Lookup returns the decorator registered under name.
func (r *Registry) Lookup(name string) (*decorator.Decorator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entries[name]
	return d, ok
}

// Get is Lookup returning ErrNotFound for unknown names.
func (r *Registry) Get(name string) (*decorator.Decorator, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, errors.CategoryBadInput, "unknown decorator").
			WithTextCode("REGISTRY_NOT_FOUND").
			WithMetadata(map[string]any{
				"name":      name,
				"available": r.Names(),
			})
	}
	return d, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Each visits the decorators in name order.
func (r *Registry) Each(fn func(name string, d *decorator.Decorator)) {
	for _, name := range r.Names() {
		if d, ok := r.Lookup(name); ok {
			fn(name, d)
		}
	}
}

// With starts a curried application of the named decorator.
func (r *Registry) With(name string, overrides map[string]any) (*decorator.Applier, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return d.With(overrides), nil
}

// Apply decorates target with the named decorator.
func (r *Registry) Apply(name string, target decorator.Target) (*decorator.Wrapper, error) {
	a, err := r.With(name, nil)
	if err != nil {
		return nil, err
	}
	return a.Apply(target)
}
