// Package report runs the read-only aggregate queries behind the admissions
// dashboard against the applicants, applications and exam_scores tables.
package report

import (
	"context"
	"database/sql"

	"github.com/darianmavgo/admitdb/database"
	"github.com/pkg/errors"
)

// Querier is the read surface the reports need. *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// AcceptanceRate is the share of accepted applications for one program.
// Applicants without an application are grouped under the empty program.
type AcceptanceRate struct {
	Program  string
	Accepted int64
	Total    int64
	Rate     float64 // Percent, zero when Total is zero
}

// GenderShare counts applicants of one gender.
type GenderShare struct {
	Gender  string
	Count   int64
	Percent float64
}

// ProgramAverage is the mean exam score of applicants to one program.
type ProgramAverage struct {
	Program string
	Average float64
}

// CityGenderCount counts applicants per city and gender.
type CityGenderCount struct {
	City   string
	Gender string
	Count  int64
}

// Applicant is one row of the top applicants ranking.
type Applicant struct {
	ID        string
	FirstName string
	LastName  string
	Average   float64
}

// Reporter runs the dashboard queries on one connection.
type Reporter struct {
	db      Querier
	dialect *database.Dialect
}

// New returns a Reporter. The dialect decides how row limits are written.
func New(db Querier, dialect *database.Dialect) *Reporter {
	return &Reporter{db: db, dialect: dialect}
}

const acceptanceQuery = `SELECT COALESCE(b.program, '') AS program,
	COUNT(CASE WHEN b.status = 'Accepted' THEN 1 END) AS accepted,
	COUNT(b.application_id) AS total,
	COUNT(CASE WHEN b.status = 'Accepted' THEN 1 END) * 100.0 / NULLIF(COUNT(b.application_id), 0) AS rate
FROM applicants a LEFT JOIN applications b ON a.applicant_id = b.applicant_id
GROUP BY b.program
ORDER BY program`

// AcceptanceRates reports accepted, total and percentage per program.
func (r *Reporter) AcceptanceRates(ctx context.Context) ([]AcceptanceRate, error) {
	rows, err := r.db.QueryContext(ctx, acceptanceQuery)
	if err != nil {
		return nil, errors.Wrap(err, "querying acceptance rates")
	}
	defer rows.Close()

	var out []AcceptanceRate
	for rows.Next() {
		var ar AcceptanceRate
		var rate sql.NullFloat64
		if err := rows.Scan(&ar.Program, &ar.Accepted, &ar.Total, &rate); err != nil {
			return nil, errors.Wrap(err, "scanning acceptance rate")
		}
		ar.Rate = rate.Float64
		out = append(out, ar)
	}
	return out, errors.Wrap(rows.Err(), "reading acceptance rates")
}

// GenderDistribution counts applicants per gender with each group's share.
// Applicants without a gender form the empty group, which counts zero.
func (r *Reporter) GenderDistribution(ctx context.Context) ([]GenderShare, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(gender, '') AS gender, COUNT(gender) AS total
FROM applicants GROUP BY gender ORDER BY gender`)
	if err != nil {
		return nil, errors.Wrap(err, "querying gender distribution")
	}
	defer rows.Close()

	var out []GenderShare
	var all int64
	for rows.Next() {
		var g GenderShare
		if err := rows.Scan(&g.Gender, &g.Count); err != nil {
			return nil, errors.Wrap(err, "scanning gender count")
		}
		all += g.Count
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading gender distribution")
	}
	if all == 0 {
		return out, nil
	}
	for i := range out {
		out[i].Percent = float64(out[i].Count) * 100 / float64(all)
	}
	return out, nil
}

// AverageScores reports the mean exam score per program. Scores of applicants
// without an application fall under the empty program.
func (r *Reporter) AverageScores(ctx context.Context) ([]ProgramAverage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(b.program, '') AS program, AVG(e.score * 1.0) AS avg_score
FROM exam_scores e LEFT JOIN applications b ON e.applicant_id = b.applicant_id
GROUP BY b.program
ORDER BY program`)
	if err != nil {
		return nil, errors.Wrap(err, "querying average scores")
	}
	defer rows.Close()

	var out []ProgramAverage
	for rows.Next() {
		var pa ProgramAverage
		var avg sql.NullFloat64
		if err := rows.Scan(&pa.Program, &avg); err != nil {
			return nil, errors.Wrap(err, "scanning average score")
		}
		pa.Average = avg.Float64
		out = append(out, pa)
	}
	return out, errors.Wrap(rows.Err(), "reading average scores")
}

// CityGender counts applicants per city and gender, ordered by city then gender.
func (r *Reporter) CityGender(ctx context.Context) ([]CityGenderCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(city, '') AS city, COALESCE(gender, '') AS gender, COUNT(*) AS total
FROM applicants GROUP BY city, gender ORDER BY city, gender`)
	if err != nil {
		return nil, errors.Wrap(err, "querying city and gender counts")
	}
	defer rows.Close()

	var out []CityGenderCount
	for rows.Next() {
		var c CityGenderCount
		if err := rows.Scan(&c.City, &c.Gender, &c.Count); err != nil {
			return nil, errors.Wrap(err, "scanning city and gender count")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "reading city and gender counts")
}

// TopApplicants ranks applicants by average exam score, best first.
func (r *Reporter) TopApplicants(ctx context.Context, n int) ([]Applicant, error) {
	if n < 1 {
		return nil, errors.Errorf("top applicants needs a positive count, got %d", n)
	}
	query := r.dialect.Limit(`SELECT a.applicant_id, a.first_name, a.last_name, AVG(e.score * 1.0) AS avg_score
FROM exam_scores e JOIN applicants a ON e.applicant_id = a.applicant_id
GROUP BY a.applicant_id, a.first_name, a.last_name
ORDER BY avg_score DESC, a.applicant_id`, n)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying top applicants")
	}
	defer rows.Close()

	var out []Applicant
	for rows.Next() {
		var a Applicant
		var first, last sql.NullString
		var avg sql.NullFloat64
		if err := rows.Scan(&a.ID, &first, &last, &avg); err != nil {
			return nil, errors.Wrap(err, "scanning applicant")
		}
		a.FirstName, a.LastName, a.Average = first.String, last.String, avg.Float64
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "reading top applicants")
}

// Scores returns every non-NULL exam score.
func (r *Reporter) Scores(ctx context.Context) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT score FROM exam_scores WHERE score IS NOT NULL")
	if err != nil {
		return nil, errors.Wrap(err, "querying exam scores")
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, errors.Wrap(err, "scanning exam score")
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "reading exam scores")
}

// ScoreHistogram bins all exam scores into the given number of equal-width bins.
func (r *Reporter) ScoreHistogram(ctx context.Context, bins int) ([]Bin, error) {
	if bins < 1 {
		return nil, errors.Errorf("histogram needs at least one bin, got %d", bins)
	}
	scores, err := r.Scores(ctx)
	if err != nil {
		return nil, err
	}
	return Histogram(scores, bins), nil
}
