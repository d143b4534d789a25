package simcfg

import "fmt"

// Factory builds a T from its configuration node.
type Factory[T any] func(cfg Node) (T, error)

// Registry is a compile-time plug-in registry mapping a key string to a
// Factory for one base-type T (spec §6: "a compile-time registry mapping
// (base-type, key-string) -> factory(args...)"). Each plug-in package
// populates a package-level Registry instance from its own init(),
// mirroring sim/kv/register.go and sim/latency/register.go's
// import-cycle-breaking pattern: the plug-in package imports simcfg (to
// get the Registry type), never the reverse.
type Registry[T any] struct {
	factories map[string]Factory[T]
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register binds key to factory. Re-registering an existing key is a
// programming error (two plug-ins claiming the same name), not a
// configuration error, so it panics rather than returning an error.
func (r *Registry[T]) Register(key string, factory Factory[T]) {
	if _, exists := r.factories[key]; exists {
		panic(fmt.Sprintf("simcfg: duplicate registration for key %q", key))
	}
	r.factories[key] = factory
}

// Build looks up key and invokes its factory with cfg. An unknown key is a
// fatal configuration error (spec §6: "lookup by unknown key is a fatal
// configuration error").
func (r *Registry[T]) Build(key string, cfg Node) (T, error) {
	var zero T
	factory, ok := r.factories[key]
	if !ok {
		return zero, fmt.Errorf("simcfg: %s: unknown plug-in key %q (valid: %s)", cfg.path, key, r.keys())
	}
	return factory(cfg)
}

// keys returns the registered key set for error messages, in no
// particular order (callers log it, they do not parse it).
func (r *Registry[T]) keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether key is registered, for callers (e.g. the CLI's
// policy-overlay check) that need a membership test rather than a
// Build.
func (r *Registry[T]) Has(key string) bool {
	_, ok := r.factories[key]
	return ok
}
