// Package cmd implements the interconnect-sim CLI: a cobra command tree
// over simcfg configuration parsing, topology construction, and the
// workload-driven event loop (spec §6 treats the CLI as out-of-core; this
// package is the thin shell that wires it together).
//
// Grounded almost line for line on cmd/root.go's flags -> logrus ->
// construct -> Run -> print-metrics shape, generalized from the teacher's
// single `run` command into `run`/`validate` (spec §6's "exit code 0 on
// clean simulation end; nonzero on configuration or invariant-assertion
// failure" applies to both).
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	policyPath string
	logLevel   string

	channelLogPath string
	messageLogPath string
	rateLogPath    string
)

var rootCmd = &cobra.Command{
	Use:   "interconnect-sim",
	Short: "Cycle-accurate discrete-event simulator for interconnection networks",
}

// Execute runs the command tree, exiting nonzero on any configuration or
// invariant-assertion failure (spec §6).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the JSON simulation configuration (required)")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy-overlay", "", "optional YAML overlay selecting arbiter/reduction/injection plug-in keys")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")

	runCmd.Flags().StringVar(&channelLogPath, "channel-log", "", "optional channel log CSV output path (overrides config's channel_log)")
	runCmd.Flags().StringVar(&messageLogPath, "message-log", "", "optional message log CSV output path (overrides config's message_log)")
	runCmd.Flags().StringVar(&rateLogPath, "rate-log", "", "optional per-VC rate log CSV output path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func requireConfigPath() {
	if configPath == "" {
		logrus.Fatalf("--config is required")
	}
}

// loadPolicy loads and validates the optional policy overlay against the
// arbiter/reduction/injection registries (spec §6: "lookup by unknown key
// is a fatal configuration error"). Returns nil if no overlay was given.
func loadPolicy() *loadedPolicy {
	if policyPath == "" {
		return nil
	}
	bundle, err := loadPolicyBundle(policyPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return bundle
}
