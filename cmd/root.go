package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "careteam",
	Short: "Multi-agent health care-team simulation and routing",
	Long: `Careteam routes member messages to a fixed team of health specialists
(concierge, medical, performance, nutrition, physio, strategic lead),
tracks detected health issues, and simulates a multi-week member
journey with diagnostics, adherence, and plan adjustments.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".careteam.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
