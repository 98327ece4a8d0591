package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExportAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.hcl")

	cfg := DefaultConfig()
	cfg.BatchSize = 250
	cfg.Verbose = true
	cfg.Database = &DatabaseConfig{Driver: "postgres", Host: "db", Port: 5433, Name: "admissions", User: "admit", Password: "hidden", SSLMode: "require"}
	cfg.Imports = []ImportConfig{
		{Table: "applicants", File: filepath.Join(tempDir, "applicants.csv")},
		{Table: "exam_scores", File: filepath.Join(tempDir, "scores.xlsx")},
	}
	if err := Export(configPath, cfg); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := *cfg
	want.Database = &DatabaseConfig{Driver: "postgres", Host: "db", Port: 5433, Name: "admissions", User: "admit", SSLMode: "require"}
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		want.Database.Password = pw
	}
	if diff := cmp.Diff(&want, loaded); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	configPath := filepath.Join(t.TempDir(), "empty.hcl")
	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write empty config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.BatchSize != 500 {
		t.Errorf("expected default BatchSize 500, got %d", loaded.BatchSize)
	}
	want := &DatabaseConfig{Driver: "mysql", Host: "localhost", Port: 3306, Name: "University_admissions", User: "root"}
	if diff := cmp.Diff(want, loaded.Database); diff != "" {
		t.Errorf("database mismatch (-want +got):\n%s", diff)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadPartialDatabase(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "admitdb.hcl")
	src := `
database {
  driver = "sqlserver"
  password = "from-file"
}

import "applications" {
  file = "data/applications.csv"
}
`
	if err := os.WriteFile(configPath, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	db := loaded.Database
	if db.Port != 1433 || db.Host != "localhost" {
		t.Errorf("expected sqlserver defaults, got %s:%d", db.Host, db.Port)
	}
	if db.Password != "from-env" {
		t.Errorf("expected env password override, got %q", db.Password)
	}
	wantFile := filepath.Join(dir, "data", "applications.csv")
	if len(loaded.Imports) != 1 || loaded.Imports[0].File != wantFile {
		t.Errorf("imports = %+v, want file %s", loaded.Imports, wantFile)
	}

	conn := loaded.Connection()
	if conn.Driver != "sqlserver" || conn.Password != "from-env" {
		t.Errorf("Connection() = %+v", conn)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.hcl")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.hcl")
	if err := os.WriteFile(bad, []byte("batch_size = \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero bins", func(c *Config) { c.HistogramBins = 0 }},
		{"zero top", func(c *Config) { c.TopApplicants = -1 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"import without file", func(c *Config) { c.Imports = []ImportConfig{{Table: "applicants"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
