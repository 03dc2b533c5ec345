package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// FetchRate shows page fetches dispatched per minute by scope.
func FetchRate() *timeseries.PanelBuilder {
	return trend("Page Fetches / min", "Listing page fetches dispatched per minute by scope", ThirdWidth,
		query{perMinute(rateBy("shc_fetches_total", "", "scope")), "{{scope}}"},
	)
}

// SupersededRatio shows how many page responses arrive after a newer fetch
// and are discarded.
func SupersededRatio() *timeseries.PanelBuilder {
	return percentTrend("Superseded Responses %",
		"Page responses discarded because a newer fetch was dispatched",
		ThirdWidth,
		query{percentOf("shc:fetch_superseded:rate5m", "shc:fetches:rate5m"), "superseded %"},
		10, 50,
	)
}

// FetchFailures shows failed page fetches per minute by scope.
func FetchFailures() *timeseries.PanelBuilder {
	return baseTrend("Fetch Failures / min", "Applied page fetches that failed, per minute by scope", ThirdWidth,
		query{perMinute(rateBy("shc_fetch_failures_total", "", "scope")), "{{scope}}"},
	).
		Thresholds(warnAt(0.1, 1)).
		ColorScheme(byThreshold())
}
