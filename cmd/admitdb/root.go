package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/darianmavgo/admitdb/config"
	"github.com/darianmavgo/admitdb/converters"
	_ "github.com/darianmavgo/admitdb/converters/all"
	"github.com/darianmavgo/admitdb/database"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	driver     string
	host       string
	port       int
	db         string
	user       string
	password   string
	batchSize  int
	verbose    bool
	strict     bool
	quote      bool

	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the admitdb command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stdout: stdout, stderr: stderr}
	rc := &cobra.Command{
		Use:   "admitdb",
		Short: "Load admissions CSV files into a database and report on them.",
		Long: `admitdb imports the applicants, applications and exam_scores CSV
exports into an existing database, one transaction per file, and prints
the admissions dashboard reports from the loaded tables.

Connection settings come from an HCL config file (--config), overridden
by flags. The password may also be supplied through ADMITDB_PASSWORD.`,
		SilenceUsage: true,
	}

	flags := rc.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Configuration file to read from.")
	flags.StringVar(&g.driver, "driver", "", "Database type: mysql, mariadb, postgres, sqlserver or sqlite.")
	flags.StringVar(&g.host, "host", "", "Database host.")
	flags.IntVar(&g.port, "port", 0, "Database port. Defaults to the driver's standard port.")
	flags.StringVar(&g.db, "db", "", "Database name, or the file path for sqlite.")
	flags.StringVar(&g.user, "user", "", "Database user.")
	flags.StringVar(&g.password, "password", "", "Database password.")
	flags.IntVar(&g.batchSize, "batch-size", 0, "Rows per batched insert.")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Log import progress to stderr.")
	flags.BoolVar(&g.strict, "strict", false, "Reject CSV headers that are not plain identifiers.")
	flags.BoolVar(&g.quote, "quote", false, "Quote table and column names in generated inserts.")

	rc.AddCommand(newImportCommand(g))
	rc.AddCommand(newLoadCommand(g))
	rc.AddCommand(newReportCommand(g))
	rc.AddCommand(newDriversCommand(g))
	rc.AddCommand(newConfigCommand(g))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// resolve loads the config file, if any, and layers the flags set on cmd over it.
func (g *globalOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return nil, err
		}
	} else {
		cfg.ApplyDefaults()
		cfg.ApplyEnv()
	}

	flags := cmd.Flags()
	db := cfg.Database
	if flags.Changed("driver") {
		db.Driver = g.driver
		if !flags.Changed("port") {
			db.Port = 0
		}
	}
	if flags.Changed("host") {
		db.Host = g.host
	}
	if flags.Changed("port") {
		db.Port = g.port
	}
	if flags.Changed("db") {
		db.Name = g.db
	}
	if flags.Changed("user") {
		db.User = g.user
	}
	if flags.Changed("password") {
		db.Password = g.password
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = g.batchSize
	}
	if flags.Changed("verbose") {
		cfg.Verbose = g.verbose
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// connect resolves the configuration and opens the database it names.
func (g *globalOptions) connect(cmd *cobra.Command) (*config.Config, *sql.DB, *database.Dialect, error) {
	cfg, err := g.resolve(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	db, dialect, err := database.Open(commandContext(cmd), cfg.Connection())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, dialect, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// importOptions adapts the importer to the connected dialect.
func (g *globalOptions) importOptions(cfg *config.Config, dialect *database.Dialect) *converters.ImportOptions {
	opts := &converters.ImportOptions{
		BatchSize:         cfg.BatchSize,
		Placeholder:       dialect.Placeholder,
		MaxParams:         dialect.MaxParams,
		MaxRows:           dialect.MaxRows,
		StrictIdentifiers: g.strict,
		Verbose:           cfg.Verbose,
		Logger:            log.New(g.stderr, "", log.LstdFlags),
	}
	if g.quote {
		opts.Quote = dialect.Quote
	}
	return opts
}

func newDriversCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the supported input formats and databases.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(g.stdout, "Input formats:")
			for _, name := range converters.Drivers() {
				fmt.Fprintf(g.stdout, "  %s\n", name)
			}
			fmt.Fprintln(g.stdout, "Databases:")
			for _, name := range database.Dialects() {
				fmt.Fprintf(g.stdout, "  %s\n", name)
			}
			return nil
		},
	}
}

func newConfigCommand(g *globalOptions) *cobra.Command {
	cc := &cobra.Command{
		Use:   "config",
		Short: "Work with the configuration file.",
	}
	cc.AddCommand(&cobra.Command{
		Use:   "export <path>",
		Short: "Write the effective configuration as HCL. The password is omitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			if err := config.Export(args[0], cfg); err != nil {
				return err
			}
			fmt.Fprintf(g.stdout, "Wrote configuration to %s\n", args[0])
			return nil
		},
	})
	return cc
}
