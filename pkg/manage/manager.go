// Package manage implements the country management capability: listing
// per-country totals and bulk-updating or removing a country's rows.
// Callers are expected to authorize through the access gate first; every
// mutation is audited with the acting username.
package manage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/epiwatch/epiwatch/pkg/apierr"
	"github.com/epiwatch/epiwatch/pkg/audit"
	"github.com/epiwatch/epiwatch/pkg/observability"
)

// CountryTotals is the latest cumulative snapshot for one country.
type CountryTotals struct {
	Name      string `json:"name"`
	Confirmed int64  `json:"confirmed"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
}

// Totals carries the replacement cumulative values for an update.
type Totals struct {
	Confirmed int64 `json:"confirmed"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
}

// Manager performs the management operations against the store.
type Manager struct {
	db     *sql.DB
	sink   audit.Sink
	logger *observability.Logger
}

// NewManager creates a Manager. sink and logger may be nil.
func NewManager(db *sql.DB, sink audit.Sink, logger *observability.Logger) *Manager {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Manager{db: db, sink: sink, logger: logger}
}

// ListCountryTotals returns the latest cumulative snapshot for every
// country, ordered by name.
func (m *Manager) ListCountryTotals(ctx context.Context, actor string) ([]CountryTotals, error) {
	query := `
		WITH latest AS (
			SELECT country, total_confirmed, total_deaths, total_recovered,
			       ROW_NUMBER() OVER (
			           PARTITION BY country
			           ORDER BY date_timestamp DESC
			       ) AS rn
			FROM covid_stats
		)
		SELECT country,
		       CAST(COALESCE(total_confirmed, 0) AS BIGINT),
		       CAST(COALESCE(total_deaths, 0) AS BIGINT),
		       CAST(COALESCE(total_recovered, 0) AS BIGINT)
		FROM latest
		WHERE rn = 1
		ORDER BY country ASC
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apierr.Store(err)
	}
	defer rows.Close()

	var totals []CountryTotals
	for rows.Next() {
		var ct CountryTotals
		if err := rows.Scan(&ct.Name, &ct.Confirmed, &ct.Deaths, &ct.Recovered); err != nil {
			return nil, apierr.Store(err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Store(err)
	}

	m.record(ctx, actor, audit.EventTypeManageList, "", fmt.Sprintf("listed totals for %d countries", len(totals)))
	return totals, nil
}

// SetCountryTotals replaces the cumulative totals on every row of one
// country, matched case-insensitively with dashes treated as spaces so
// URL slugs resolve. A country with no rows is NotFound.
func (m *Manager) SetCountryTotals(ctx context.Context, actor, country string, totals Totals) error {
	country = strings.TrimSpace(country)
	if country == "" {
		return apierr.BadRequest("country is required")
	}

	query := `
		UPDATE covid_stats
		SET total_confirmed = $2,
		    total_deaths = $3,
		    total_recovered = $4
		WHERE LOWER(country) = LOWER(REPLACE($1, '-', ' '))
	`

	result, err := m.db.ExecContext(ctx, query, country, totals.Confirmed, totals.Deaths, totals.Recovered)
	if err != nil {
		return apierr.Store(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierr.Store(err)
	}
	if affected == 0 {
		return apierr.New(apierr.KindNotFound, fmt.Sprintf("country %q not found", country))
	}

	m.record(ctx, actor, audit.EventTypeManageUpdate, country, fmt.Sprintf("updated totals on %d rows", affected))
	return nil
}

// RemoveCountry deletes every row for one country, matched the same way
// as SetCountryTotals. A country with no rows is NotFound.
func (m *Manager) RemoveCountry(ctx context.Context, actor, country string) error {
	country = strings.TrimSpace(country)
	if country == "" {
		return apierr.BadRequest("country is required")
	}

	query := `
		DELETE FROM covid_stats
		WHERE LOWER(country) = LOWER(REPLACE($1, '-', ' '))
	`

	result, err := m.db.ExecContext(ctx, query, country)
	if err != nil {
		return apierr.Store(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierr.Store(err)
	}
	if affected == 0 {
		return apierr.New(apierr.KindNotFound, fmt.Sprintf("country %q not found", country))
	}

	m.record(ctx, actor, audit.EventTypeManageDelete, country, fmt.Sprintf("removed %d rows", affected))
	return nil
}

func (m *Manager) record(ctx context.Context, actor string, eventType audit.EventType, entity, message string) {
	event := &audit.Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Status:    audit.EventStatusSuccess,
		Username:  actor,
		Entity:    entity,
		Message:   message,
	}
	if err := m.sink.Record(ctx, event); err != nil {
		m.logger.WithError(err).Warn("failed to record audit event")
	}
}
