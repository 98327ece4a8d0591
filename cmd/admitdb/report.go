package main

import (
	"github.com/darianmavgo/admitdb/report"
	"github.com/spf13/cobra"
)

func newReportCommand(g *globalOptions) *cobra.Command {
	var bins, top int
	rc := &cobra.Command{
		Use:   "report",
		Short: "Print the admissions dashboard reports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, dialect, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if !cmd.Flags().Changed("bins") {
				bins = cfg.HistogramBins
			}
			if !cmd.Flags().Changed("top") {
				top = cfg.TopApplicants
			}
			d, err := report.New(db, dialect).Build(commandContext(cmd), bins, top)
			if err != nil {
				return err
			}
			return report.Render(g.stdout, d)
		},
	}
	rc.Flags().IntVar(&bins, "bins", 10, "Exam score histogram bins.")
	rc.Flags().IntVar(&top, "top", 10, "Number of top applicants to list.")
	return rc
}
