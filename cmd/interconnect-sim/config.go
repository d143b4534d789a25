// config.go translates the simcfg JSON configuration tree (spec §6) plus
// an optional YAML policy overlay into the concrete parameters run.go and
// validate.go need, failing with a path-qualified error for any missing or
// malformed field per spec §7.
//
// Grounded on sim/bundle.go's decode-then-validate shape, adapted from a
// fixed Go struct decoded by encoding/json to simcfg.Node's typed,
// path-qualified accessors (the core's config tree has no fixed schema a
// struct tag could describe, since topology/workload selection is itself
// data).
package cmd

import (
	"fmt"
	"os"

	"github.com/hpinterconnect/interconnect-sim/simcfg"
)

// topologyParams bundles the fields needed to build any one of the three
// supported topologies. Only the fields relevant to Kind are populated.
type topologyParams struct {
	Kind string // "butterfly", "foldedclos", or "hyperx"

	Radix  int // butterfly, foldedclos
	Stages int // butterfly
	Levels int // foldedclos

	Concentration    int   // hyperx
	DimensionWidths  []int // hyperx
	DimensionWeights []int // hyperx; optional, nil means all-1
}

// workloadParams bundles the fields needed to build the configured
// workload application.
type workloadParams struct {
	Kind                string // only "blast" is implemented
	MessagesPerTerminal int
	MaxOutstanding      int
	MessageBytes        int
}

// simParams is the fully parsed, validated configuration for one
// simulation run.
type simParams struct {
	ChannelCycleTime int
	CoreCycleTime    int
	RandomSeed       int64

	NumVCs           int
	CreditsPerVC     int
	ChannelLatency   int64
	RoutingLatency   int64
	InjectionLatency int64
	MaxPacketSize    int
	BytesPerFlit     int
	VCIterations     int
	SwitchIterations int

	Topology topologyParams
	Workload workloadParams

	ChannelLogPath string // optional
	MessageLogPath string // optional
}

// loadConfig reads and parses the JSON configuration file at path into a
// simParams, applying every spec §6 field constraint (positive cycle
// times, VC counts, etc).
func loadConfig(path string) (*simParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	root, err := simcfg.Parse(data)
	if err != nil {
		return nil, err
	}
	return parseConfig(root)
}

func parseConfig(root simcfg.Node) (*simParams, error) {
	p := &simParams{}

	if err := bindPositiveInt(root, "channel_cycle_time", &p.ChannelCycleTime); err != nil {
		return nil, err
	}
	if err := bindPositiveInt(root, "core_cycle_time", &p.CoreCycleTime); err != nil {
		return nil, err
	}
	seedNode, err := root.Field("random_seed")
	if err != nil {
		return nil, err
	}
	seed, err := seedNode.Int()
	if err != nil {
		return nil, err
	}
	p.RandomSeed = int64(seed)

	if err := bindPositiveInt(root, "num_vcs", &p.NumVCs); err != nil {
		return nil, err
	}
	if err := bindPositiveInt(root, "credits_per_vc", &p.CreditsPerVC); err != nil {
		return nil, err
	}

	var i int
	if err := bindPositiveInt(root, "channel_latency", &i); err != nil {
		return nil, err
	}
	p.ChannelLatency = int64(i)
	if err := bindPositiveInt(root, "routing_latency", &i); err != nil {
		return nil, err
	}
	p.RoutingLatency = int64(i)
	if err := bindPositiveInt(root, "injection_latency", &i); err != nil {
		return nil, err
	}
	p.InjectionLatency = int64(i)

	if err := bindPositiveInt(root, "max_packet_size", &p.MaxPacketSize); err != nil {
		return nil, err
	}
	if err := bindPositiveInt(root, "bytes_per_flit", &p.BytesPerFlit); err != nil {
		return nil, err
	}
	if err := bindPositiveInt(root, "vc_iterations", &p.VCIterations); err != nil {
		return nil, err
	}
	if err := bindPositiveInt(root, "switch_iterations", &p.SwitchIterations); err != nil {
		return nil, err
	}

	topoNode, err := root.Field("topology")
	if err != nil {
		return nil, err
	}
	if p.Topology, err = parseTopology(topoNode); err != nil {
		return nil, err
	}

	workloadNode, err := root.Field("workload")
	if err != nil {
		return nil, err
	}
	if p.Workload, err = parseWorkload(workloadNode); err != nil {
		return nil, err
	}

	if n, ok := root.OptionalField("channel_log"); ok {
		if p.ChannelLogPath, err = n.String(); err != nil {
			return nil, err
		}
	}
	if n, ok := root.OptionalField("message_log"); ok {
		if p.MessageLogPath, err = n.String(); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func parseTopology(n simcfg.Node) (topologyParams, error) {
	var t topologyParams
	kindNode, err := n.Field("type")
	if err != nil {
		return t, err
	}
	t.Kind, err = kindNode.String()
	if err != nil {
		return t, err
	}

	switch t.Kind {
	case "butterfly":
		if err := bindPositiveInt(n, "radix", &t.Radix); err != nil {
			return t, err
		}
		if err := bindPositiveInt(n, "stages", &t.Stages); err != nil {
			return t, err
		}
	case "foldedclos":
		if err := bindPositiveInt(n, "radix", &t.Radix); err != nil {
			return t, err
		}
		if t.Radix%2 != 0 {
			return t, fmt.Errorf("simcfg: %s.radix: folded-Clos radix must be even, got %d", n.Path(), t.Radix)
		}
		if err := bindPositiveInt(n, "levels", &t.Levels); err != nil {
			return t, err
		}
	case "hyperx":
		if err := bindPositiveInt(n, "concentration", &t.Concentration); err != nil {
			return t, err
		}
		widthsNode, err := n.Field("dimension_widths")
		if err != nil {
			return t, err
		}
		widthNodes, err := widthsNode.Array()
		if err != nil {
			return t, err
		}
		if len(widthNodes) == 0 {
			return t, fmt.Errorf("simcfg: %s: dimension_widths must be non-empty", widthsNode.Path())
		}
		t.DimensionWidths = make([]int, len(widthNodes))
		for i, wn := range widthNodes {
			if t.DimensionWidths[i], err = wn.PositiveInt(); err != nil {
				return t, err
			}
		}
		if weightsNode, ok := n.OptionalField("dimension_weights"); ok {
			weightNodes, err := weightsNode.Array()
			if err != nil {
				return t, err
			}
			if len(weightNodes) != len(t.DimensionWidths) {
				return t, fmt.Errorf("simcfg: %s: dimension_weights must match dimension_widths length", weightsNode.Path())
			}
			t.DimensionWeights = make([]int, len(weightNodes))
			for i, wn := range weightNodes {
				if t.DimensionWeights[i], err = wn.PositiveInt(); err != nil {
					return t, err
				}
			}
		}
	default:
		return t, fmt.Errorf("simcfg: %s.type: unknown topology %q (valid: butterfly, foldedclos, hyperx)", n.Path(), t.Kind)
	}
	return t, nil
}

func parseWorkload(n simcfg.Node) (workloadParams, error) {
	var w workloadParams
	kindNode, err := n.Field("type")
	if err != nil {
		return w, err
	}
	w.Kind, err = kindNode.String()
	if err != nil {
		return w, err
	}
	switch w.Kind {
	case "blast":
		if err := bindPositiveInt(n, "messages_per_terminal", &w.MessagesPerTerminal); err != nil {
			return w, err
		}
		if err := bindPositiveInt(n, "max_outstanding", &w.MaxOutstanding); err != nil {
			return w, err
		}
		if err := bindPositiveInt(n, "message_bytes", &w.MessageBytes); err != nil {
			return w, err
		}
	default:
		return w, fmt.Errorf("simcfg: %s.type: unknown workload %q (valid: blast)", n.Path(), w.Kind)
	}
	return w, nil
}

func bindPositiveInt(n simcfg.Node, field string, out *int) error {
	fieldNode, err := n.Field(field)
	if err != nil {
		return err
	}
	v, err := fieldNode.PositiveInt()
	if err != nil {
		return err
	}
	*out = v
	return nil
}
