package commands

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"hwboard-backend/lib/runstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int64

func init() {
	historyCmd.Flags().Int64VarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the most recent extraction runs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := readConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if config.HistoryDb == "" {
			fmt.Fprintln(os.Stderr, "no history_db configured in "+configName)
			os.Exit(1)
		}

		database, err := sql.Open("sqlite", config.HistoryDb)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer database.Close()

		runs, err := runstore.NewStore(database).Pull(cmd.Context(), historyLimit)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Sources", "Assigned", "Missing", "Errors"})
		for _, run := range runs {
			var names []string
			var assigned, missing int64
			for _, src := range run.Sources {
				names = append(names, src.Source)
				assigned += src.Assigned
				missing += src.Missing
			}
			t.AppendRow(table.Row{
				run.Time.Format("2006-01-02 15:04:05"),
				strings.Join(names, ", "),
				assigned,
				missing,
				run.ErrorCount,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
