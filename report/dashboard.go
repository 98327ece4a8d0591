package report

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pkg/errors"
)

// Dashboard holds every report shown to the admissions office.
type Dashboard struct {
	AcceptanceRates []AcceptanceRate
	Genders         []GenderShare
	AverageScores   []ProgramAverage
	CityGender      []CityGenderCount
	TopApplicants   []Applicant
	Histogram       []Bin
}

// Build runs all reports. The first failing query aborts the build.
func (r *Reporter) Build(ctx context.Context, bins, top int) (*Dashboard, error) {
	var d Dashboard
	var err error
	if d.AcceptanceRates, err = r.AcceptanceRates(ctx); err != nil {
		return nil, err
	}
	if d.Genders, err = r.GenderDistribution(ctx); err != nil {
		return nil, err
	}
	if d.AverageScores, err = r.AverageScores(ctx); err != nil {
		return nil, err
	}
	if d.CityGender, err = r.CityGender(ctx); err != nil {
		return nil, err
	}
	if d.TopApplicants, err = r.TopApplicants(ctx, top); err != nil {
		return nil, err
	}
	if d.Histogram, err = r.ScoreHistogram(ctx, bins); err != nil {
		return nil, err
	}
	return &d, nil
}

// Render writes the dashboard to w as text tables.
func Render(w io.Writer, d *Dashboard) error {
	if d == nil {
		return errors.New("attempt to render nil dashboard")
	}

	sections := []struct {
		title  string
		header table.Row
		rows   []table.Row
		align  []text.Align
	}{
		{
			title:  "Acceptance Rates",
			header: table.Row{"Program", "Accepted", "Total", "Rate(%)"},
			rows:   acceptanceRows(d.AcceptanceRates),
			align:  []text.Align{text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight},
		},
		{
			title:  "Exam Score Distribution",
			header: table.Row{"Range", "Count"},
			rows:   histogramRows(d.Histogram),
			align:  []text.Align{text.AlignLeft, text.AlignRight},
		},
		{
			title:  "Gender Distribution",
			header: table.Row{"Gender", "Count", "Share(%)"},
			rows:   genderRows(d.Genders),
			align:  []text.Align{text.AlignLeft, text.AlignRight, text.AlignRight},
		},
		{
			title:  "Average Score by Program",
			header: table.Row{"Program", "Average"},
			rows:   averageRows(d.AverageScores),
			align:  []text.Align{text.AlignLeft, text.AlignRight},
		},
		{
			title:  "City & Gender",
			header: table.Row{"City", "Gender", "Count"},
			rows:   cityGenderRows(d.CityGender),
			align:  []text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight},
		},
		{
			title:  "Top Applicants",
			header: table.Row{"ID", "First Name", "Last Name", "Average"},
			rows:   applicantRows(d.TopApplicants),
			align:  []text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight},
		},
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return errors.Wrap(err, "writing dashboard")
			}
		}
		if _, err := fmt.Fprintln(w, s.title); err != nil {
			return errors.Wrap(err, "writing dashboard")
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(s.header)
		for _, row := range s.rows {
			t.AppendRow(row)
		}
		var configs []table.ColumnConfig
		for n, a := range s.align {
			configs = append(configs, table.ColumnConfig{Number: n + 1, Align: a})
		}
		t.SetColumnConfigs(configs)
		t.Render()
	}
	return nil
}

func displayName(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func acceptanceRows(in []AcceptanceRate) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, ar := range in {
		rows = append(rows, table.Row{displayName(ar.Program), ar.Accepted, ar.Total, fmt.Sprintf("%.2f", ar.Rate)})
	}
	return rows
}

func histogramRows(in []Bin) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, b := range in {
		rows = append(rows, table.Row{fmt.Sprintf("%.1f - %.1f", b.Low, b.High), b.Count})
	}
	return rows
}

func genderRows(in []GenderShare) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, g := range in {
		rows = append(rows, table.Row{displayName(g.Gender), g.Count, fmt.Sprintf("%.1f", g.Percent)})
	}
	return rows
}

func averageRows(in []ProgramAverage) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, pa := range in {
		rows = append(rows, table.Row{displayName(pa.Program), fmt.Sprintf("%.2f", pa.Average)})
	}
	return rows
}

func cityGenderRows(in []CityGenderCount) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, c := range in {
		rows = append(rows, table.Row{displayName(c.City), displayName(c.Gender), c.Count})
	}
	return rows
}

func applicantRows(in []Applicant) []table.Row {
	rows := make([]table.Row, 0, len(in))
	for _, a := range in {
		rows = append(rows, table.Row{a.ID, a.FirstName, a.LastName, fmt.Sprintf("%.2f", a.Average)})
	}
	return rows
}
