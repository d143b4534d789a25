package inject

import "github.com/hpinterconnect/interconnect-sim/simcfg"

// Registry is the simcfg plug-in registry for injection Algorithm
// implementations (spec §6, base-type "injection").
var Registry = simcfg.NewRegistry[Algorithm]()

func init() {
	Registry.Register("any_vc", func(cfg simcfg.Node) (Algorithm, error) {
		latencyNode, err := cfg.Field("latency")
		if err != nil {
			return nil, err
		}
		latency, err := latencyNode.PositiveInt()
		if err != nil {
			return nil, err
		}
		vcNode, err := cfg.Field("num_vcs")
		if err != nil {
			return nil, err
		}
		numVCs, err := vcNode.PositiveInt()
		if err != nil {
			return nil, err
		}
		return NewAnyVC(int64(latency), numVCs), nil
	})

	Registry.Register("protocol_class", func(cfg simcfg.Node) (Algorithm, error) {
		latencyNode, err := cfg.Field("latency")
		if err != nil {
			return nil, err
		}
		latency, err := latencyNode.PositiveInt()
		if err != nil {
			return nil, err
		}
		rangesNode, err := cfg.Field("ranges")
		if err != nil {
			return nil, err
		}
		rangeNodes, err := rangesNode.Array()
		if err != nil {
			return nil, err
		}
		ranges := make([]ProtocolClassRange, len(rangeNodes))
		for i, rn := range rangeNodes {
			baseNode, err := rn.Field("base_vc")
			if err != nil {
				return nil, err
			}
			base, err := baseNode.Int()
			if err != nil {
				return nil, err
			}
			countNode, err := rn.Field("num_vcs")
			if err != nil {
				return nil, err
			}
			count, err := countNode.PositiveInt()
			if err != nil {
				return nil, err
			}
			ranges[i] = ProtocolClassRange{BaseVC: base, NumVCs: count}
		}
		return NewProtocolClass(int64(latency), ranges), nil
	})
}
