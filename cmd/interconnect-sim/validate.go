package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate a configuration without running the event loop",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		requireConfigPath()
		loadPolicy()

		if _, err := loadConfig(configPath); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("configuration %s is valid", configPath)
	},
}
