package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxhealth/careteam/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a .careteam.yml configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard()
		if err != nil {
			return err
		}
		if cfg.LLM.Mock {
			fmt.Println("Mock mode selected; no credentials required.")
		} else {
			fmt.Printf("Live mode selected; set %s before running.\n", config.APIKeyEnvVar)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
