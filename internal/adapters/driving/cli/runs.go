package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

var runsJSON bool

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved match runs",
	Long:  `List, show and delete match runs saved with "scribe match --save".`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the segments of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsListCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")
	runsShowCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errRunsNotConfigured
	}

	runs, err := runService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		return outputJSON(cmd, runs)
	}
	if len(runs) == 0 {
		cmd.Println("No saved runs.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for i := range runs {
		rows = append(rows, []string{
			runs[i].ID,
			runs[i].Lecture,
			runs[i].Corpus,
			strconv.Itoa(runs[i].NumSegments),
			runs[i].CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	cmd.Println(renderTable(
		[]string{"ID", "Lecture", "Corpus", "Segments", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errRunsNotConfigured
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if runsJSON {
		return outputJSON(cmd, run)
	}
	cmd.Printf("Created: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("Settings: threshold %.2f, top-k %d, %ds intervals, %d min segments\n",
		run.Settings.SimilarityThreshold, run.Settings.TopK,
		run.Settings.IntervalSeconds, run.Settings.SegmentMinutes)
	outputRunSummary(cmd, run, true)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errRunsNotConfigured
	}

	err := runService.Delete(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}
