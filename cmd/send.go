package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sendSender string

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a member message through the care team",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		sender := sendSender
		if sender == "" {
			sender = app.cfg.MemberName
		}

		res, err := app.pipeline.Process(cmd.Context(), sender, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}

		fmt.Printf("Routed to: %s", res.Decision.Primary)
		if len(res.Decision.Plans) > 1 {
			others := make([]string, 0, len(res.Decision.Plans)-1)
			for _, p := range res.Decision.Plans[1:] {
				others = append(others, string(p.Specialist))
			}
			fmt.Printf(" (with %s)", strings.Join(others, ", "))
		}
		fmt.Println()

		for _, msg := range res.Responses {
			fmt.Printf("\n%s:\n%s\n", msg.Sender, msg.Text)
		}
		if res.NewIssues > 0 {
			fmt.Printf("\nTracked %d new health issue(s).\n", res.NewIssues)
		}
		for _, it := range res.Resolved {
			fmt.Printf("\nResolved issue: %s\n", it.Title)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendSender, "sender", "", "sender name (defaults to the configured member)")
	rootCmd.AddCommand(sendCmd)
}
