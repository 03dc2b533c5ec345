package main

import "errors"

// KnownMetrics is the set of metric names exported by shc and the fake
// catalog server, plus recording rule names referenced in dashboards and
// alerts.
var KnownMetrics = map[string]bool{
	// Catalog API client metrics.
	"shc_api_request_duration_seconds": true,
	"shc_api_requests_total":           true,

	// Listing, mutation and session metrics.
	"shc_fetches_total":             true,
	"shc_fetch_superseded_total":    true,
	"shc_fetch_failures_total":      true,
	"shc_mutations_total":           true,
	"shc_session_transitions_total": true,

	// Fake catalog server metrics.
	"shc_mockapi_http_request_duration_seconds": true,
	"shc_mockapi_http_requests_total":           true,

	// Recording rules.
	"shc:api_requests:rate5m":      true,
	"shc:api_failures:rate5m":      true,
	"shc:fetches:rate5m":           true,
	"shc:fetch_superseded:rate5m":  true,
	"shc:mutation_failures:rate5m": true,
	"shc:mockapi_requests:rate5m":  true,
	"shc:mockapi_errors:rate5m":    true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
