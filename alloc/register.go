package alloc

import "github.com/hpinterconnect/interconnect-sim/simcfg"

// Registry is the simcfg plug-in registry for Arbiter implementations,
// populated below. Network builders look up an arbiter by its configured
// key (spec §6, base-type "arbiter").
var Registry = simcfg.NewRegistry[Arbiter]()

func init() {
	Registry.Register("round_robin", func(cfg simcfg.Node) (Arbiter, error) {
		n, err := cfg.Field("num_inputs")
		if err != nil {
			return nil, err
		}
		numInputs, err := n.PositiveInt()
		if err != nil {
			return nil, err
		}
		return NewRoundRobinArbiter(numInputs), nil
	})
}
