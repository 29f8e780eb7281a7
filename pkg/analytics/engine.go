package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/epiwatch/epiwatch/pkg/apierr"
	"github.com/epiwatch/epiwatch/pkg/catalog"
)

// Engine executes aggregation queries against the covid_stats time series.
// It is read-only and safe for concurrent use; connection pooling belongs
// to the *sql.DB it wraps.
type Engine struct {
	db *sql.DB
}

// NewEngine creates an aggregation engine.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// RankedEntry is one country with its aggregated value.
type RankedEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// TrendPoint is the summed delta value for one calendar date.
type TrendPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// CountryRates carries the derived mortality and recovery percentages for
// one country's latest snapshot.
type CountryRates struct {
	Name         string  `json:"name"`
	MortalityPct float64 `json:"mortality_pct"`
	RecoveryPct  float64 `json:"recovery_pct"`
	Confirmed    int64   `json:"confirmed"`
	Deaths       int64   `json:"deaths"`
	Recovered    int64   `json:"recovered"`
}

// ValidationReport summarizes data consistency for one country. Found is
// false when the store holds no rows for the country; that is a normal
// result, not an error.
type ValidationReport struct {
	Found               bool   `json:"found"`
	Country             string `json:"country"`
	MaxCumulativeDeaths int64  `json:"max_cumulative_deaths"`
	SumNewDeaths        int64  `json:"sum_new_deaths"`
	DistinctDays        int64  `json:"days_count"`
	MaxConfirmed        int64  `json:"max_confirmed"`
	LooksValid          bool   `json:"data_looks_valid"`
}

// maxPlausibleDeaths bounds the cumulative death count a single country
// can plausibly report; anything above it is flagged as inconsistent.
const maxPlausibleDeaths = 2_000_000

// TopByCumulative returns up to limit countries ordered by the cumulative
// column of their latest snapshot, descending. Countries whose latest
// value is not positive are excluded. Ties break by country name ascending
// so results are deterministic.
func (e *Engine) TopByCumulative(ctx context.Context, col catalog.Column, limit int) ([]RankedEntry, error) {
	return e.snapshotTop(ctx, col, limit)
}

// TopByDelta returns up to limit countries ordered by the delta column of
// their latest snapshot, descending, excluding non-positive values.
func (e *Engine) TopByDelta(ctx context.Context, col catalog.Column, limit int) ([]RankedEntry, error) {
	return e.snapshotTop(ctx, col, limit)
}

// snapshotTop selects the latest row per country and ranks the column
// value. The column identifier comes from the catalog, never from request
// input; limit is bound as a parameter.
func (e *Engine) snapshotTop(ctx context.Context, col catalog.Column, limit int) ([]RankedEntry, error) {
	if col.IsZero() {
		return nil, fmt.Errorf("unresolved column")
	}

	query := fmt.Sprintf(`
		WITH latest AS (
			SELECT country, %[1]s AS value,
			       ROW_NUMBER() OVER (
			           PARTITION BY country
			           ORDER BY date_timestamp DESC
			       ) AS rn
			FROM covid_stats
			WHERE %[1]s > 0
		)
		SELECT country, CAST(value AS BIGINT) AS value
		FROM latest
		WHERE rn = 1
		ORDER BY value DESC, country ASC
		LIMIT $1
	`, col.Name())

	rows, err := e.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apierr.Store(err)
	}
	defer rows.Close()

	var entries []RankedEntry
	for rows.Next() {
		var entry RankedEntry
		var value sql.NullInt64
		if err := rows.Scan(&entry.Name, &value); err != nil {
			return nil, apierr.Store(err)
		}
		entry.Value = value.Int64
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Store(err)
	}
	return entries, nil
}

// Trend sums the delta column across all countries grouped by calendar
// date within the trailing window. Rows with non-positive timestamps or
// negative deltas are excluded; values are truncated to integers with
// NULL treated as zero.
func (e *Engine) Trend(ctx context.Context, col catalog.Column, days int) ([]TrendPoint, error) {
	if col.IsZero() {
		return nil, fmt.Errorf("unresolved column")
	}

	query := fmt.Sprintf(`
		SELECT TO_TIMESTAMP(date_timestamp / 1000)::date AS day,
		       CAST(TRUNC(COALESCE(SUM(%[1]s), 0)) AS BIGINT) AS value
		FROM covid_stats
		WHERE date_timestamp > 0
		  AND TO_TIMESTAMP(date_timestamp / 1000)::date > CURRENT_DATE - $1::integer
		  AND %[1]s >= 0
		GROUP BY day
		ORDER BY day ASC
	`, col.Name())

	rows, err := e.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, apierr.Store(err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var day time.Time
		var point TrendPoint
		if err := rows.Scan(&day, &point.Value); err != nil {
			return nil, apierr.Store(err)
		}
		point.Date = day.Format("2006-01-02")
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Store(err)
	}
	return points, nil
}

// Total sums all positive values of the delta column across the entire
// store. An empty store yields 0, never an error.
func (e *Engine) Total(ctx context.Context, col catalog.Column) (int64, error) {
	if col.IsZero() {
		return 0, fmt.Errorf("unresolved column")
	}

	query := fmt.Sprintf(`
		SELECT CAST(COALESCE(SUM(%[1]s), 0) AS BIGINT)
		FROM covid_stats
		WHERE %[1]s > 0
	`, col.Name())

	var total sql.NullInt64
	err := e.db.QueryRowContext(ctx, query).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, apierr.Store(err)
	}
	return total.Int64, nil
}

// MortalityRecovery returns derived mortality/recovery percentages for the
// latest snapshot of each country with at least 1000 confirmed cases,
// ordered by confirmed count descending. Percentages are clamped to
// [0, 100] and rounded to two decimals, so corrupted rows (deaths above
// confirmed) never yield a rate outside the valid range.
func (e *Engine) MortalityRecovery(ctx context.Context, limit int) ([]CountryRates, error) {
	query := `
		WITH latest AS (
			SELECT country, total_confirmed, total_deaths, total_recovered,
			       ROW_NUMBER() OVER (
			           PARTITION BY country
			           ORDER BY date_timestamp DESC
			       ) AS rn
			FROM covid_stats
			WHERE total_confirmed > 0
		)
		SELECT country,
		       CAST(COALESCE(total_confirmed, 0) AS BIGINT),
		       CAST(COALESCE(total_deaths, 0) AS BIGINT),
		       CAST(COALESCE(total_recovered, 0) AS BIGINT)
		FROM latest
		WHERE rn = 1 AND total_confirmed >= 1000
		ORDER BY total_confirmed DESC, country ASC
		LIMIT $1
	`

	rows, err := e.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apierr.Store(err)
	}
	defer rows.Close()

	var result []CountryRates
	for rows.Next() {
		var r CountryRates
		if err := rows.Scan(&r.Name, &r.Confirmed, &r.Deaths, &r.Recovered); err != nil {
			return nil, apierr.Store(err)
		}
		r.MortalityPct = ratePercent(r.Deaths, r.Confirmed)
		r.RecoveryPct = ratePercent(r.Recovered, r.Confirmed)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Store(err)
	}
	return result, nil
}

// Validate aggregates consistency figures for one country, matched
// case-insensitively. A country with no rows yields Found=false.
func (e *Engine) Validate(ctx context.Context, country string) (*ValidationReport, error) {
	query := `
		SELECT country,
		       CAST(COALESCE(MAX(total_deaths), 0) AS BIGINT),
		       CAST(COALESCE(SUM(new_deaths), 0) AS BIGINT),
		       COUNT(DISTINCT date_timestamp),
		       CAST(COALESCE(MAX(total_confirmed), 0) AS BIGINT)
		FROM covid_stats
		WHERE LOWER(country) = LOWER($1)
		GROUP BY country
	`

	report := &ValidationReport{Country: country}
	err := e.db.QueryRowContext(ctx, query, country).Scan(
		&report.Country,
		&report.MaxCumulativeDeaths,
		&report.SumNewDeaths,
		&report.DistinctDays,
		&report.MaxConfirmed,
	)
	if err == sql.ErrNoRows {
		return report, nil
	}
	if err != nil {
		return nil, apierr.Store(err)
	}

	report.Found = true
	report.LooksValid = report.MaxCumulativeDeaths < maxPlausibleDeaths &&
		report.MaxCumulativeDeaths <= report.MaxConfirmed
	return report, nil
}

// ratePercent computes 100*part/total clamped to [0, 100] and rounded to
// two decimals. A zero total yields 0; division is never attempted on it.
func ratePercent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := 100 * float64(part) / float64(total)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return math.Round(pct*100) / 100
}
