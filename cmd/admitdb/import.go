package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/darianmavgo/admitdb/config"
	"github.com/darianmavgo/admitdb/converters"
	"github.com/darianmavgo/admitdb/database"
	"github.com/spf13/cobra"
)

func newImportCommand(g *globalOptions) *cobra.Command {
	var table string
	ic := &cobra.Command{
		Use:   "import <file>",
		Short: "Import one CSV or XLSX file into an existing table.",
		Long: `Import one file into an existing table in a single transaction.

The first line names the destination columns. Fields equal to NULL
(any case) and missing trailing fields are stored as NULL. If any row
fails, nothing from the file is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, dialect, err := g.connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			path := args[0]
			if table == "" {
				table = tableFromPath(path)
			}
			res := converters.ImportFile(commandContext(cmd), db, path, table, g.importOptions(cfg, dialect))
			if !res.OK {
				return res.Err
			}
			fmt.Fprintln(g.stdout, res.Summary())
			return nil
		},
	}
	ic.Flags().StringVarP(&table, "table", "t", "", "Destination table. Defaults to the file name without its extension.")
	return ic
}

func newLoadCommand(g *globalOptions) *cobra.Command {
	var applicants, applications, examScores string
	lc := &cobra.Command{
		Use:   "load",
		Short: "Import the applicants, applications and exam_scores files.",
		Long: `Import the three admissions files, each into its own table and its own
transaction. Files not given as flags are taken from the import blocks of
the configuration file. A failed file does not stop the others, but the
command exits with an error if any file failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			jobs := loadJobs(cfg, map[string]string{
				"applicants":   applicants,
				"applications": applications,
				"exam_scores":  examScores,
			})
			if len(jobs) == 0 {
				return fmt.Errorf("nothing to load: pass --applicants, --applications or --exam-scores, or add import blocks to the config")
			}

			db, dialect, err := database.Open(commandContext(cmd), cfg.Connection())
			if err != nil {
				return err
			}
			defer db.Close()

			results := converters.ImportAll(commandContext(cmd), db, jobs, g.importOptions(cfg, dialect))
			failed := 0
			for _, res := range results {
				fmt.Fprintln(g.stdout, res.Summary())
				if !res.OK {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d imports failed", failed, len(results))
			}
			return nil
		},
	}
	lc.Flags().StringVar(&applicants, "applicants", "", "CSV file for the applicants table.")
	lc.Flags().StringVar(&applications, "applications", "", "CSV file for the applications table.")
	lc.Flags().StringVar(&examScores, "exam-scores", "", "CSV file for the exam_scores table.")
	return lc
}

// loadJobs orders the flag files first, in the order applicants, applications,
// exam_scores, followed by config imports for tables not named by a flag.
func loadJobs(cfg *config.Config, flagged map[string]string) []converters.Job {
	var jobs []converters.Job
	seen := make(map[string]bool)
	for _, table := range []string{"applicants", "applications", "exam_scores"} {
		if file := flagged[table]; file != "" {
			jobs = append(jobs, converters.Job{File: file, Table: table})
			seen[table] = true
		}
	}
	for _, imp := range cfg.Imports {
		if seen[imp.Table] {
			continue
		}
		jobs = append(jobs, converters.Job{File: imp.File, Table: imp.Table})
	}
	return jobs
}

func tableFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
