// Package analytics contains the aggregation core: the Engine, which turns
// the raw per-country time series into rankings, trends, totals, derived
// ratios and consistency reports, and the Service, which gates every
// operation behind admin authorization before any query runs.
//
// The engine distinguishes two aggregation modes and never mixes them for
// the same quantity: cumulative columns are read as the latest snapshot per
// country (the row with the maximum timestamp), while delta columns are
// summed over a window. Column identifiers only ever come from the metric
// catalog; every user-influenced value is bound as a query parameter.
package analytics
