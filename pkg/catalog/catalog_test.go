package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiwatch/epiwatch/pkg/apierr"
)

func TestDefaultResolvesStandardMetrics(t *testing.T) {
	c := Default()

	cases := map[string][2]string{
		"cases":     {"total_confirmed", "new_cases"},
		"deaths":    {"total_deaths", "new_deaths"},
		"recovered": {"total_recovered", "new_recovered"},
	}

	for name, cols := range cases {
		m, err := c.Resolve(name)
		require.NoError(t, err, "metric %s", name)
		assert.Equal(t, name, m.Name)
		assert.Equal(t, cols[0], m.Cumulative.Name())
		assert.Equal(t, cols[1], m.Delta.Name())
	}
}

func TestResolveUnknownFailsClosed(t *testing.T) {
	c := Default()

	_, err := c.Resolve("population")
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindUnknownMetric))
}

func TestResolveIsCaseSensitive(t *testing.T) {
	c := Default()

	_, err := c.Resolve("Cases")
	assert.Error(t, err, "lookup must be by exact string key")
}

func TestNewRejectsUnsafeIdentifiers(t *testing.T) {
	_, err := New([]Definition{
		{Name: "cases", CumulativeColumn: "total_confirmed; DROP TABLE users", DeltaColumn: "new_cases"},
	})
	assert.Error(t, err)

	_, err = New([]Definition{
		{Name: "cases", CumulativeColumn: "New cases", DeltaColumn: "new_cases"},
	})
	assert.Error(t, err, "quoted-identifier style column names are not allowed")
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Definition{
		{Name: "cases", CumulativeColumn: "total_confirmed", DeltaColumn: "new_cases"},
		{Name: "cases", CumulativeColumn: "total_confirmed", DeltaColumn: "new_cases"},
	})
	assert.Error(t, err)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestAlternateCatalog(t *testing.T) {
	c, err := New([]Definition{
		{Name: "hospitalized", CumulativeColumn: "total_hospitalized", DeltaColumn: "new_hospitalized"},
	})
	require.NoError(t, err)

	m, err := c.Resolve("hospitalized")
	require.NoError(t, err)
	assert.Equal(t, "total_hospitalized", m.Cumulative.Name())

	_, err = c.Resolve("cases")
	assert.Error(t, err, "alternate catalogs only expose their own metrics")
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"cases", "deaths", "recovered"}, Default().Names())
}
