package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"hwboard-backend/lib/jsonstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(colorsCmd)
}

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Prints the persisted course color assignments.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := readConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		colors, ok := jsonstore.Load[map[string]string](config.ColorsFile)
		if !ok || len(colors) == 0 {
			fmt.Println("no course colors assigned yet")
			return
		}

		courses := make([]string, 0, len(colors))
		for course := range colors {
			courses = append(courses, course)
		}
		sort.Slice(courses, func(i, j int) bool {
			return strings.ToLower(courses[i]) < strings.ToLower(courses[j])
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Course", "Color"})
		for _, course := range courses {
			t.AppendRow(table.Row{course, colors[course]})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
