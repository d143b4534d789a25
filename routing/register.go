package routing

import "github.com/hpinterconnect/interconnect-sim/simcfg"

// ReductionRegistry is the simcfg plug-in registry for Reduction policies
// (spec §6, base-type "reduction"). Both built-ins take no construction
// parameters, so their factories ignore cfg.
//
// DimensionOrder and Valiant (the Algorithm implementations in this
// package) are deliberately NOT registered here: both require
// topology-bound closures (AddressOf, portForDim, destAddress) that a
// config-keyed factory of shape func(Node) (Algorithm, error) cannot
// carry. Network builders in package topo construct them directly once the
// topology's address translation is available, per DESIGN.md.
var ReductionRegistry = simcfg.NewRegistry[Reduction]()

func init() {
	ReductionRegistry.Register("all_minimal", func(cfg simcfg.Node) (Reduction, error) {
		return AllMinimalReduction, nil
	})
	ReductionRegistry.Register("least_congested_minimal", func(cfg simcfg.Node) (Reduction, error) {
		return LeastCongestedMinimalReduction, nil
	})
}
