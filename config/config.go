package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/darianmavgo/admitdb/database"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// PasswordEnv overrides the database password from the config file when set.
const PasswordEnv = "ADMITDB_PASSWORD"

// Config represents the application configuration.
type Config struct {
	BatchSize     int             `hcl:"batch_size,optional"`
	Verbose       bool            `hcl:"verbose,optional"`
	HistogramBins int             `hcl:"histogram_bins,optional"`
	TopApplicants int             `hcl:"top_applicants,optional"`
	Database      *DatabaseConfig `hcl:"database,block"`
	Imports       []ImportConfig  `hcl:"import,block"`
}

// DatabaseConfig is the connection block.
type DatabaseConfig struct {
	Driver   string `hcl:"driver,optional"`
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	Name     string `hcl:"name,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// ImportConfig names a file to load into a table, e.g.
//
//	import "applicants" { file = "applicants.csv" }
type ImportConfig struct {
	Table string `hcl:"table,label"`
	File  string `hcl:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:     500,
		HistogramBins: 10,
		TopApplicants: 10,
		Database:      defaultDatabase(),
	}
}

func defaultDatabase() *DatabaseConfig {
	return &DatabaseConfig{
		Driver: "mysql",
		Host:   "localhost",
		Name:   "University_admissions",
		User:   "root",
	}
}

// Load reads the configuration from the given HCL file. Relative import
// paths are resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	dir := filepath.Dir(path)
	for i, imp := range cfg.Imports {
		if imp.File != "" && !filepath.IsAbs(imp.File) {
			cfg.Imports[i].File = filepath.Join(dir, imp.File)
		}
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyDefaults fills fields left empty by a partial database block. The
// port follows the driver.
func (c *Config) ApplyDefaults() {
	if c.Database == nil {
		c.Database = defaultDatabase()
	}
	db := c.Database
	if db.Driver == "" {
		db.Driver = "mysql"
	}
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == 0 {
		if d, err := database.Lookup(db.Driver); err == nil {
			db.Port = d.DefaultPort
		}
	}
}

// ApplyEnv applies the ADMITDB_PASSWORD override.
func (c *Config) ApplyEnv() {
	if c.Database == nil {
		c.Database = defaultDatabase()
	}
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		c.Database.Password = pw
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if c.TopApplicants <= 0 {
		return fmt.Errorf("top_applicants must be positive, got %d", c.TopApplicants)
	}
	if c.Database == nil {
		return fmt.Errorf("missing database block")
	}
	if _, err := database.Lookup(c.Database.Driver); err != nil {
		return err
	}
	for _, imp := range c.Imports {
		if imp.Table == "" {
			return fmt.Errorf("import block without a table name")
		}
		if imp.File == "" {
			return fmt.Errorf("import %q has no file", imp.Table)
		}
	}
	return nil
}

// Connection converts the database block to connection parameters.
func (c *Config) Connection() database.Config {
	db := c.Database
	if db == nil {
		db = defaultDatabase()
	}
	return database.Config{
		Driver:   db.Driver,
		Host:     db.Host,
		Port:     db.Port,
		Name:     db.Name,
		User:     db.User,
		Password: db.Password,
		SSLMode:  db.SSLMode,
	}
}

// Export writes the configuration to the specified file in HCL format.
// The password is never written; supply it through ADMITDB_PASSWORD.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.SetAttributeValue("verbose", cty.BoolVal(cfg.Verbose))
	root.SetAttributeValue("histogram_bins", cty.NumberIntVal(int64(cfg.HistogramBins)))
	root.SetAttributeValue("top_applicants", cty.NumberIntVal(int64(cfg.TopApplicants)))

	if db := cfg.Database; db != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("database", nil).Body()
		body.SetAttributeValue("driver", cty.StringVal(db.Driver))
		body.SetAttributeValue("host", cty.StringVal(db.Host))
		body.SetAttributeValue("port", cty.NumberIntVal(int64(db.Port)))
		body.SetAttributeValue("name", cty.StringVal(db.Name))
		body.SetAttributeValue("user", cty.StringVal(db.User))
		if db.SSLMode != "" {
			body.SetAttributeValue("sslmode", cty.StringVal(db.SSLMode))
		}
	}

	for _, imp := range cfg.Imports {
		root.AppendNewline()
		body := root.AppendNewBlock("import", []string{imp.Table}).Body()
		body.SetAttributeValue("file", cty.StringVal(imp.File))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
