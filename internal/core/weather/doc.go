// Package weather holds the domain vocabulary shared by the adapter, the
// ingestion engine and the aggregation engine: hourly samples, variable sets
// and summary records.
//
// Timestamps are naive local wall clock values carried as UTC time.Time.
// A missing measurement is NaN in memory and NULL in the database.
package weather
