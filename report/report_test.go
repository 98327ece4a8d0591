package report_test

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darianmavgo/admitdb/converters"
	_ "github.com/darianmavgo/admitdb/converters/all"
	"github.com/darianmavgo/admitdb/database"
	"github.com/darianmavgo/admitdb/report"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var schema = []string{
	"CREATE TABLE applicants (applicant_id INTEGER PRIMARY KEY, first_name TEXT, last_name TEXT, gender TEXT, city TEXT)",
	"CREATE TABLE applications (application_id INTEGER PRIMARY KEY, applicant_id INTEGER, program TEXT, status TEXT)",
	"CREATE TABLE exam_scores (score_id INTEGER PRIMARY KEY, applicant_id INTEGER, score INTEGER)",
}

var fixtures = map[string]string{
	"applicants": `applicant_id,first_name,last_name,gender,city
1,Ann,Lee,F,Toronto
2,Ben,Kim,M,Ottawa
3,Cara,Diaz,F,Toronto
4,Dan,Fox,M,Toronto
5,Eve,Ng,NULL,Ottawa
`,
	"applications": `application_id,applicant_id,program,status
10,1,CS,Accepted
11,2,CS,Rejected
12,3,Math,Accepted
13,4,CS,Accepted
`,
	"exam_scores": `score_id,applicant_id,score
100,1,90
101,1,80
102,2,70
103,3,95
104,4,60
105,5,50
`,
}

// setup loads the fixtures through the importer, the same path the CLI takes.
func setup(t *testing.T) *report.Reporter {
	t.Helper()
	dir := t.TempDir()
	db, dialect, err := database.Open(context.Background(), database.Config{Driver: "sqlite", Name: filepath.Join(dir, "admissions.db")})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to apply schema %q: %v", stmt, err)
		}
	}
	opts := &converters.ImportOptions{Placeholder: dialect.Placeholder, MaxParams: dialect.MaxParams, MaxRows: dialect.MaxRows}
	for table, content := range fixtures {
		path := filepath.Join(dir, table+".csv")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if res := converters.ImportFile(context.Background(), db, path, table, opts); !res.OK {
			t.Fatalf("import of %s failed: %v", table, res.Err)
		}
	}
	return report.New(db, dialect)
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestAcceptanceRates(t *testing.T) {
	r := setup(t)
	got, err := r.AcceptanceRates(context.Background())
	if err != nil {
		t.Fatalf("AcceptanceRates failed: %v", err)
	}
	want := []report.AcceptanceRate{
		{Program: "", Accepted: 0, Total: 0, Rate: 0},
		{Program: "CS", Accepted: 2, Total: 3, Rate: 200.0 / 3},
		{Program: "Math", Accepted: 1, Total: 1, Rate: 100},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("acceptance rates mismatch (-want +got):\n%s", diff)
	}
}

func TestGenderDistribution(t *testing.T) {
	r := setup(t)
	got, err := r.GenderDistribution(context.Background())
	if err != nil {
		t.Fatalf("GenderDistribution failed: %v", err)
	}
	want := []report.GenderShare{
		{Gender: "", Count: 0, Percent: 0},
		{Gender: "F", Count: 2, Percent: 50},
		{Gender: "M", Count: 2, Percent: 50},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("gender distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAverageScores(t *testing.T) {
	r := setup(t)
	got, err := r.AverageScores(context.Background())
	if err != nil {
		t.Fatalf("AverageScores failed: %v", err)
	}
	want := []report.ProgramAverage{
		{Program: "", Average: 50},
		{Program: "CS", Average: 75},
		{Program: "Math", Average: 95},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("average scores mismatch (-want +got):\n%s", diff)
	}
}

func TestCityGender(t *testing.T) {
	r := setup(t)
	got, err := r.CityGender(context.Background())
	if err != nil {
		t.Fatalf("CityGender failed: %v", err)
	}
	want := []report.CityGenderCount{
		{City: "Ottawa", Gender: "", Count: 1},
		{City: "Ottawa", Gender: "M", Count: 1},
		{City: "Toronto", Gender: "F", Count: 2},
		{City: "Toronto", Gender: "M", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("city and gender mismatch (-want +got):\n%s", diff)
	}
}

func TestTopApplicants(t *testing.T) {
	r := setup(t)
	got, err := r.TopApplicants(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopApplicants failed: %v", err)
	}
	want := []report.Applicant{
		{ID: "3", FirstName: "Cara", LastName: "Diaz", Average: 95},
		{ID: "1", FirstName: "Ann", LastName: "Lee", Average: 85},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("top applicants mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.TopApplicants(context.Background(), 0); err == nil {
		t.Error("expected an error for a zero count")
	}
}

func TestScoreHistogram(t *testing.T) {
	r := setup(t)
	got, err := r.ScoreHistogram(context.Background(), 4)
	if err != nil {
		t.Fatalf("ScoreHistogram failed: %v", err)
	}
	want := []report.Bin{
		{Low: 50, High: 61.25, Count: 2},
		{Low: 61.25, High: 72.5, Count: 1},
		{Low: 72.5, High: 83.75, Count: 1},
		{Low: 83.75, High: 95, Count: 2},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("histogram mismatch (-want +got):\n%s", diff)
	}
}

func TestReportsOnEmptyTables(t *testing.T) {
	db, dialect, err := database.Open(context.Background(), database.Config{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "empty.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	d, err := report.New(db, dialect).Build(context.Background(), 10, 10)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(d.Histogram) != 0 || len(d.TopApplicants) != 0 || len(d.Genders) != 0 {
		t.Errorf("expected empty reports, got %+v", d)
	}
}

func TestMissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "bare.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	dialect, _ := database.Lookup("sqlite")
	if _, err := report.New(db, dialect).AcceptanceRates(context.Background()); err == nil {
		t.Error("expected an error without the applicants table")
	}
}

func TestBuildAndRender(t *testing.T) {
	r := setup(t)
	d, err := r.Build(context.Background(), 5, 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(d.TopApplicants) != 3 {
		t.Errorf("expected 3 top applicants, got %d", len(d.TopApplicants))
	}
	if len(d.Histogram) != 5 {
		t.Errorf("expected 5 bins, got %d", len(d.Histogram))
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, d); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Acceptance Rates", "Top Applicants", "City & Gender", "Cara", "Toronto", "66.67", "(none)"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered dashboard is missing %q:\n%s", want, out)
		}
	}

	if err := report.Render(&buf, nil); err == nil {
		t.Error("expected an error for a nil dashboard")
	}
}
