// Package catalog maps public metric names to the store columns backing
// them. A metric name coming from a caller never reaches SQL directly:
// lookups fail closed, and the Column type can only be produced by this
// package, so every column identifier used in a query originates from a
// definition fixed at process start.
package catalog

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/epiwatch/epiwatch/pkg/apierr"
)

// identRe matches safe SQL column identifiers.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Column is an opaque, validated column identifier. The zero value is
// not usable; instances only come out of a Catalog.
type Column struct {
	name string
}

// Name returns the underlying column identifier.
func (c Column) Name() string { return c.name }

// IsZero reports whether the column was never resolved.
func (c Column) IsZero() bool { return c.name == "" }

// Metric pairs a public name with its cumulative and per-period columns.
type Metric struct {
	Name       string
	Cumulative Column
	Delta      Column
}

// Definition declares a metric for catalog construction. Definitions come
// from code or configuration, never from request input.
type Definition struct {
	Name             string
	CumulativeColumn string
	DeltaColumn      string
}

// Catalog is an immutable metric registry. Safe for concurrent use after
// construction.
type Catalog struct {
	metrics map[string]Metric
	names   []string
}

// New builds a catalog from definitions, rejecting duplicate names and
// identifiers that are not plain lower_snake_case column names.
func New(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog requires at least one metric definition")
	}

	metrics := make(map[string]Metric, len(defs))
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("metric definition has empty name")
		}
		if _, exists := metrics[def.Name]; exists {
			return nil, fmt.Errorf("duplicate metric definition %q", def.Name)
		}
		for _, col := range []string{def.CumulativeColumn, def.DeltaColumn} {
			if !identRe.MatchString(col) {
				return nil, fmt.Errorf("metric %q has unsafe column identifier %q", def.Name, col)
			}
		}
		metrics[def.Name] = Metric{
			Name:       def.Name,
			Cumulative: Column{name: def.CumulativeColumn},
			Delta:      Column{name: def.DeltaColumn},
		}
		names = append(names, def.Name)
	}
	sort.Strings(names)

	return &Catalog{metrics: metrics, names: names}, nil
}

// Default returns the standard epidemiological catalog.
func Default() *Catalog {
	c, err := New([]Definition{
		{Name: "cases", CumulativeColumn: "total_confirmed", DeltaColumn: "new_cases"},
		{Name: "deaths", CumulativeColumn: "total_deaths", DeltaColumn: "new_deaths"},
		{Name: "recovered", CumulativeColumn: "total_recovered", DeltaColumn: "new_recovered"},
	})
	if err != nil {
		// The built-in definitions are static; a failure here is a bug.
		panic(err)
	}
	return c
}

// Resolve looks up a metric by exact name. Unknown names fail closed.
func (c *Catalog) Resolve(name string) (Metric, error) {
	m, ok := c.metrics[name]
	if !ok {
		return Metric{}, apierr.UnknownMetric(name, c.names)
	}
	return m, nil
}

// Names returns the registered metric names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
