package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

const apiDuration = "shc_api_request_duration_seconds"

// APIRequestRate shows catalog API calls per second by outcome.
func APIRequestRate() *timeseries.PanelBuilder {
	return trend("API Requests", "Catalog API requests per second by outcome", TSWidth,
		query{rateBy("shc_api_requests_total", `{job="shc"}`, "outcome"), "{{outcome}}"},
	).Unit("reqps")
}

// APILatency shows p95 catalog API latency per endpoint.
func APILatency() *timeseries.PanelBuilder {
	return trend("API Latency (p95)", "95th percentile catalog API request duration by endpoint", TSWidth,
		query{Quantile(0.95, apiDuration, ClientJob, "endpoint"), "{{endpoint}}"},
	).Unit("s")
}

// APIFailureRate shows the share of catalog API calls that did not succeed.
func APIFailureRate() *timeseries.PanelBuilder {
	return percentTrend("API Failure %",
		"Network, rejected and auth failures as a percentage of catalog API requests",
		FullWidth,
		query{percentOf("shc:api_failures:rate5m", "shc:api_requests:rate5m"), "failure %"},
		5, 20,
	)
}
