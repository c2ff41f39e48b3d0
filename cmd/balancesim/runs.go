package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/11vate/balance-sim-go/internal/store"
)

var (
	runsType    string
	runsPage    int
	runsPerPage int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("runs requires --db")
		}
		db, err := store.NewSQLiteDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}

		list, err := db.ListRuns(store.RunsQuery{
			Type:    runsType,
			Page:    runsPage,
			PerPage: runsPerPage,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tSCENARIO\tITERATIONS\tINSIGHTS\tCREATED")
		for _, run := range list.Runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				run.ID, run.Type, run.Scenario, run.Iterations,
				run.InsightCount, run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("page %d/%d, %d total\n", list.Page, list.TotalPages, list.TotalCount)
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsType, "type", "", "Filter by run type (combat, economy, sweep)")
	runsCmd.Flags().IntVar(&runsPage, "page", 1, "Page number")
	runsCmd.Flags().IntVar(&runsPerPage, "per-page", 20, "Runs per page")
	rootCmd.AddCommand(runsCmd)
}
