// policy.go loads the optional --policy-overlay YAML file (simcfg.PolicyBundle)
// and validates its selections against the arbiter/reduction/injection
// plug-in registries, giving operators a documented place to log the
// non-default plug-in choices a run is using without threading the
// overlay through every topology builder's default round-robin wiring.
package cmd

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/inject"
	"github.com/hpinterconnect/interconnect-sim/routing"
	"github.com/hpinterconnect/interconnect-sim/simcfg"
)

type loadedPolicy = simcfg.PolicyBundle

func loadPolicyBundle(path string) (*loadedPolicy, error) {
	bundle, err := simcfg.LoadPolicyBundle(path)
	if err != nil {
		return nil, err
	}
	if bundle.Arbiter != "" && !alloc.Registry.Has(bundle.Arbiter) {
		return nil, fmt.Errorf("simcfg: policy overlay: unknown arbiter %q", bundle.Arbiter)
	}
	if bundle.Reduction != "" && !routing.ReductionRegistry.Has(bundle.Reduction) {
		return nil, fmt.Errorf("simcfg: policy overlay: unknown reduction %q", bundle.Reduction)
	}
	if bundle.Injection != "" && !inject.Registry.Has(bundle.Injection) {
		return nil, fmt.Errorf("simcfg: policy overlay: unknown injection algorithm %q", bundle.Injection)
	}
	return bundle, nil
}
