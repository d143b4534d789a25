package cmd

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/runtime"
	"github.com/hpinterconnect/interconnect-sim/statlog"
	"github.com/hpinterconnect/interconnect-sim/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation to completion",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		requireConfigPath()
		policy := loadPolicy()
		if policy != nil {
			logrus.Infof("policy overlay: arbiter=%q reduction=%q injection=%q", policy.Arbiter, policy.Reduction, policy.Injection)
		}

		p, err := loadConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if channelLogPath != "" {
			p.ChannelLogPath = channelLogPath
		}
		if messageLogPath != "" {
			p.MessageLogPath = messageLogPath
		}

		logrus.Infof("starting simulation: topology=%s channel_cycle=%d core_cycle=%d seed=%d",
			p.Topology.Kind, p.ChannelCycleTime, p.CoreCycleTime, p.RandomSeed)

		runSimulation(p)

		logrus.Info("simulation complete")
	},
}

// runSimulation wires the scheduler, runtime context, topology, logging
// sinks, and workload coordinator together and drains the event loop
// (spec §2's data-flow diagram end to end).
func runSimulation(p *simParams) {
	sched := engine.NewScheduler()
	coreClock := engine.NewClockDomain(uint64(p.CoreCycleTime))
	chanClock := engine.NewClockDomain(uint64(p.ChannelCycleTime))

	runtime.Init(&runtime.Context{
		Scheduler: sched,
		RNG:       runtime.NewPartitionedRNG(p.RandomSeed),
	})
	defer runtime.Teardown()
	rng := runtime.Current().RNG

	var channelLog *statlog.ChannelLog
	var messageLog *statlog.MessageLog
	var rateLog *statlog.RateLog
	if p.ChannelLogPath != "" {
		var err error
		channelLog, err = statlog.NewChannelLog(p.ChannelLogPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer channelLog.Close()
	}
	if p.MessageLogPath != "" {
		var err error
		messageLog, err = statlog.NewMessageLog(p.MessageLogPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer messageLog.Close()
	}
	if rateLogPath != "" {
		var err error
		rateLog, err = statlog.NewRateLog(rateLogPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer rateLog.Close()
	}

	distributor := workload.NewMessageDistributor(1)
	receiverFor := func(interfaceID int) netif.MessageReceiver {
		return &loggingReceiver{next: distributor, messageLog: messageLog, scheduler: sched}
	}

	net, err := buildTopology(p, sched, coreClock, chanClock, rng.ForComponent(runtime.SubsystemRouting, "topology"), receiverFor)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	net.Start()

	terminals := make([]*workload.Terminal, len(net.Interfaces))
	for id, iface := range net.Interfaces {
		terminals[id] = workload.NewTerminal(0, id, iface)
	}

	blastRNG := rng.ForComponent(runtime.SubsystemWorkload, "blast")
	monitor := &networkMonitor{
		channels:   net.Channels,
		clock:      chanClock,
		scheduler:  sched,
		channelLog: channelLog,
		rateLog:    rateLog,
	}
	coordinator := workload.NewCoordinator(nil, monitor)

	app := workload.NewBlastApplication(workload.BlastConfig{
		ID:                  0,
		Terminals:           terminals,
		Notifier:            coordinator,
		Scheduler:           sched,
		RNG:                 blastRNG,
		Destination:         net.Destination,
		MessagesPerTerminal: p.Workload.MessagesPerTerminal,
		MaxOutstanding:      p.Workload.MaxOutstanding,
		MessageBytes:        p.Workload.MessageBytes,
		ProtocolClass:       0,
	})
	coordinator.SetApplications([]workload.Application{app})
	distributor.SetReceiver(0, app)

	app.ReportReady()
	sched.Run()

	if sched.Len() != 0 {
		logrus.Warnf("event loop stopped with %d events still queued", sched.Len())
	}
	if coordinator.Fsm() != workload.FsmKilled {
		logrus.Warnf("workload coordinator ended in state %s, expected KILLED", coordinator.Fsm())
	}
	logrus.Infof("final time=%d, application completion=%.1f%%", sched.Now(), app.PercentComplete()*100)
}

// loggingReceiver closes out the terminal's transaction bookkeeping and
// appends a completion row to the message log before handing the message
// to the workload distributor (spec §4.9's MessageDistributor demux).
type loggingReceiver struct {
	next       netif.MessageReceiver
	messageLog *statlog.MessageLog
	scheduler  *engine.Scheduler
}

func (r *loggingReceiver) ReceiveMessage(msg *flow.Message) {
	if owner, ok := msg.Owner.(*workload.Terminal); ok {
		owner.EndTransaction(msg.Transaction)
	}
	if r.messageLog != nil {
		if err := r.messageLog.Record(msg, r.scheduler.Now()); err != nil {
			logrus.Errorf("%v", err)
		}
	}
	r.next.ReceiveMessage(msg)
}

// networkMonitor implements workload.NetworkMonitor over every channel in
// the built network, flushing per-VC flit counts to the channel log and
// per-VC utilization samples to the rate log on each monitoring window
// (spec §4.2/§4.9).
type networkMonitor struct {
	channels   map[string]*flow.Channel
	clock      engine.ClockDomain
	scheduler  *engine.Scheduler
	channelLog *statlog.ChannelLog
	rateLog    *statlog.RateLog

	startTime int64
}

func (m *networkMonitor) StartMonitoring() {
	m.startTime = m.scheduler.Now()
	for _, ch := range m.channels {
		ch.StartMonitoring()
	}
}

func (m *networkMonitor) EndMonitoring() {
	now := m.scheduler.Now()
	windowCycles := m.clock.Cycle(now) - m.clock.Cycle(m.startTime)
	if windowCycles <= 0 {
		windowCycles = 1
	}

	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		counts := m.channels[name].EndMonitoring()
		if m.channelLog != nil {
			if err := m.channelLog.Record(now, name, counts); err != nil {
				logrus.Errorf("%v", err)
			}
		}
		if m.rateLog != nil {
			for vc, n := range counts {
				m.rateLog.AddSample(vc, float64(n)/float64(windowCycles))
			}
		}
	}
}
