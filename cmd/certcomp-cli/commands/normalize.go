package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tayganr/certcomp/internal/normalize"
)

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <text>...",
	Short: "Prints the canonical exam ids the jobs would derive from each argument.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable()
		t.AppendHeader(table.Row{"Input", "Exam ID", "Link Exam ID", "Cert ID"})
		for _, text := range args {
			examID, ok := normalize.ExamID(text)
			if !ok {
				examID = "(none)"
			}
			t.AppendRow(table.Row{
				text,
				examID,
				normalize.LinkExamID(text),
				normalize.CertID(text),
			})
		}
		t.Render()
	},
}
