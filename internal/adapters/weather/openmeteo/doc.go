// Package openmeteo fetches hourly history from the Open-Meteo archive API
//
// A Client turns a FetchRequest into one GET of /v1/archive with the
// variable set's hourly= list and unit params. Calls go through a circuit
// breaker and exponential retry, and the raw JSON can be cached on disk so a
// rerun over the same window does not hit the network. Upstream nulls become
// NaN in the returned batch, timestamps are the naive local wall clock the
// API reports for the requested timezone
package openmeteo
