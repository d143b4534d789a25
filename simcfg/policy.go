package simcfg

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyBundle is an optional overlay selecting arbiter, reduction, and
// injection-algorithm keys by name, loadable from a `--policy-overlay` YAML
// file. It exists alongside the primary JSON configuration tree (spec §6
// requires JSON for the core config) purely as an operator convenience for
// swapping plug-in choices without editing the full tree.
//
// Grounded directly on sim/bundle.go's PolicyBundle / LoadPolicyBundle:
// same strict-decode-then-validate shape, translated from the teacher's
// admission/routing/priority domain to this core's arbiter/reduction/
// injection domain.
type PolicyBundle struct {
	Arbiter   string `yaml:"arbiter"`
	Reduction string `yaml:"reduction"`
	Injection string `yaml:"injection"`
}

// LoadPolicyBundle reads and strictly parses a YAML policy overlay file.
// Unrecognized keys (typos) are rejected, matching sim/bundle.go's
// decoder.KnownFields(true) behavior.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simcfg: reading policy overlay: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("simcfg: parsing policy overlay: %w", err)
	}
	return &bundle, nil
}

// Validate checks that every set field names a key registered in the
// corresponding registry, per spec §6's "lookup by unknown key is a fatal
// configuration error".
func (b *PolicyBundle) Validate(arbiterKeys, reductionKeys, injectionKeys map[string]bool) error {
	if b.Arbiter != "" && !arbiterKeys[b.Arbiter] {
		return fmt.Errorf("simcfg: unknown arbiter policy %q", b.Arbiter)
	}
	if b.Reduction != "" && !reductionKeys[b.Reduction] {
		return fmt.Errorf("simcfg: unknown reduction policy %q", b.Reduction)
	}
	if b.Injection != "" && !injectionKeys[b.Injection] {
		return fmt.Errorf("simcfg: unknown injection policy %q", b.Injection)
	}
	return nil
}
