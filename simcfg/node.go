// Package simcfg implements the configuration tree (spec §6) the core
// consumes: a tree of typed nodes (strings, ints, floats, bools, arrays,
// objects) decoded from JSON, path-qualified accessors that produce the
// fatal configuration errors spec §7 requires, and a compile-time plug-in
// registry keyed by (base-type, key-string).
//
// Grounded on sim/bundle.go's strict-decode philosophy
// (decoder.KnownFields(true) there rejects unrecognized keys at parse
// time); simcfg's equivalent strictness instead happens at lookup time via
// Registry, since a free-form config tree has no fixed Go struct to decode
// strictly into. stdlib encoding/json is used for the primary tree — no
// third-party JSON library appears anywhere in the retrieved pack.
package simcfg

import (
	"encoding/json"
	"fmt"
)

// Node is one position in a decoded configuration tree, remembering the
// dot-qualified path that reached it so error messages name the offending
// key (spec §7: "emitted to standard error with the offending key").
type Node struct {
	path  string
	value any
}

// Parse decodes data as a JSON configuration tree and returns its root
// node.
func Parse(data []byte) (Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Node{}, fmt.Errorf("simcfg: parse config: %w", err)
	}
	return Node{path: "$", value: v}, nil
}

// Path returns the node's dot-qualified location, for error messages and
// logging.
func (n Node) Path() string { return n.path }

// Field looks up an object field by name. Returns a configuration error
// naming the full path if n is not an object or name is absent.
func (n Node) Field(name string) (Node, error) {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}, fmt.Errorf("simcfg: %s: expected object, got %T", n.path, n.value)
	}
	v, ok := obj[name]
	if !ok {
		return Node{}, fmt.Errorf("simcfg: %s: missing required field %q", n.path, name)
	}
	return Node{path: n.path + "." + name, value: v}, nil
}

// OptionalField is Field but returns ok=false instead of an error when name
// is absent (missing optional keys are not configuration errors).
func (n Node) OptionalField(name string) (Node, bool) {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}, false
	}
	v, ok := obj[name]
	if !ok {
		return Node{}, false
	}
	return Node{path: n.path + "." + name, value: v}, true
}

// Array returns n's elements as a slice of child nodes, each path-qualified
// by its index.
func (n Node) Array() ([]Node, error) {
	arr, ok := n.value.([]any)
	if !ok {
		return nil, fmt.Errorf("simcfg: %s: expected array, got %T", n.path, n.value)
	}
	nodes := make([]Node, len(arr))
	for i, v := range arr {
		nodes[i] = Node{path: fmt.Sprintf("%s[%d]", n.path, i), value: v}
	}
	return nodes, nil
}

// String returns n's value as a string.
func (n Node) String() (string, error) {
	s, ok := n.value.(string)
	if !ok {
		return "", fmt.Errorf("simcfg: %s: expected string, got %T", n.path, n.value)
	}
	return s, nil
}

// Int returns n's value as an int. JSON numbers decode as float64;
// non-integral values are a configuration error rather than a silent
// truncation.
func (n Node) Int() (int, error) {
	f, ok := n.value.(float64)
	if !ok {
		return 0, fmt.Errorf("simcfg: %s: expected number, got %T", n.path, n.value)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("simcfg: %s: expected integer, got %v", n.path, f)
	}
	return int(f), nil
}

// Float64 returns n's value as a float64.
func (n Node) Float64() (float64, error) {
	f, ok := n.value.(float64)
	if !ok {
		return 0, fmt.Errorf("simcfg: %s: expected number, got %T", n.path, n.value)
	}
	return f, nil
}

// Bool returns n's value as a bool.
func (n Node) Bool() (bool, error) {
	b, ok := n.value.(bool)
	if !ok {
		return false, fmt.Errorf("simcfg: %s: expected bool, got %T", n.path, n.value)
	}
	return b, nil
}

// PositiveInt is Int with the additional spec §6 constraint that the
// value must be > 0 (e.g. channel_cycle_time, core_cycle_time, num_vcs).
func (n Node) PositiveInt() (int, error) {
	i, err := n.Int()
	if err != nil {
		return 0, err
	}
	if i <= 0 {
		return 0, fmt.Errorf("simcfg: %s: must be > 0, got %d", n.path, i)
	}
	return i, nil
}
