package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elyxhealth/careteam/internal/journey"
	"github.com/elyxhealth/careteam/internal/progress"
)

var simulateWeek int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the member journey simulation",
	Long: `Simulates the member journey week by week: synthetic events, member
messages routed through the care team, quarterly diagnostics, adherence
tracking, and micro-replans. State is persisted after every week, so an
interrupted run resumes where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if simulateWeek > 0 {
			report, err := app.machine.SimulateWeek(cmd.Context(), simulateWeek)
			if err != nil {
				return err
			}
			fmt.Printf("Week %d completed - Adherence: %.1f%%\n", report.Week, report.AdherenceRate*100)
			return nil
		}

		state := app.machine.State()
		if state.CurrentWeek > state.TotalWeeks {
			fmt.Println("Journey already completed.")
			return nil
		}

		reporter := progress.NewReporter()
		reporter.Start(state.TotalWeeks)
		err = app.machine.RunJourney(cmd.Context(), func(week int, r *journey.Report) {
			reporter.Update(week, fmt.Sprintf("Week %d - adherence %.1f%%", week, r.AdherenceRate*100))
		})
		reporter.Finish()
		if err != nil {
			return err
		}

		final := app.machine.State()
		fmt.Printf("Journey complete: %d weeks, %d diagnostic panels, %d micro-replans.\n",
			final.TotalWeeks, len(final.DiagnosticPanels), len(final.MicroReplans))
		return nil
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateWeek, "week", 0, "simulate a single week instead of the full journey")
	rootCmd.AddCommand(simulateCmd)
}
