package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

const mockDuration = "shc_mockapi_http_request_duration_seconds"

// MockRequestRate shows requests served by the fake catalog server per route.
func MockRequestRate() *timeseries.PanelBuilder {
	return trend("Mock Server Requests", "Requests per second served by the fake catalog server by route", ThirdWidth,
		query{rateBy("shc_mockapi_http_requests_total", `{job="shc-mock-server"}`, "method", "path"), "{{method}} {{path}}"},
	).Unit("reqps")
}

// MockLatency shows p50, p95 and p99 latency of the fake catalog server.
func MockLatency() *timeseries.PanelBuilder {
	return trend("Mock Server Latency", "Fake catalog server request duration percentiles", ThirdWidth,
		query{Quantile(0.50, mockDuration, MockJob), "p50"},
		query{Quantile(0.95, mockDuration, MockJob), "p95"},
		query{Quantile(0.99, mockDuration, MockJob), "p99"},
	).Unit("s")
}

// MockErrorRate shows the fake catalog server's 5xx rate, injected faults
// included.
func MockErrorRate() *timeseries.PanelBuilder {
	return percentTrend("Mock Server Error %",
		"HTTP 5xx responses as a percentage of requests, injected faults included",
		ThirdWidth,
		query{percentOf("shc:mockapi_errors:rate5m", "shc:mockapi_requests:rate5m"), "error %"},
		1, 5,
	)
}
