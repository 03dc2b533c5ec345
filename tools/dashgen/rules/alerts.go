package rules

// AlertRules returns a PrometheusRule CR containing alert rules for the
// shc client and its fake catalog server.
func AlertRules() PrometheusRule {
	return newPrometheusRule("shc-alerts", "shc-alerts",
		alert("ShcMockServerDown", `absent(up{job="shc-mock-server"})`, "2m", "critical",
			"Fake catalog server is down",
			"The shc-mock-server job has been absent for more than 2 minutes."),
		alert("ShcHighAPIFailureRate", `shc:api_failures:rate5m / shc:api_requests:rate5m > 0.2`, "5m", "warning",
			"High catalog API failure rate",
			"More than 20% of catalog API requests have failed over the last 5 minutes."),
		alert("ShcAuthRejections", `increase(shc_api_requests_total{outcome="auth"}[5m]) > 0`, "1m", "info",
			"Catalog API rejected the session token",
			"Protected requests were rejected; the watched session needs a new login."),
		alert("ShcFetchesSuperseded", `shc:fetch_superseded:rate5m / shc:fetches:rate5m > 0.5`, "10m", "warning",
			"Most page fetches are being superseded",
			"More than half of page responses arrive after a newer fetch; the refresh interval is likely shorter than API latency."),
		alert("ShcMutationFailures", `shc:mutation_failures:rate5m > 0`, "5m", "warning",
			"Listing mutations are failing",
			"Confirmed mutations have been failing for more than 5 minutes."),
		alert("ShcMockServerErrors", `shc:mockapi_errors:rate5m / shc:mockapi_requests:rate5m > 0.05`, "5m", "warning",
			"High 5xx rate on the fake catalog server",
			"More than 5% of fake catalog server responses are 5xx over the last 5 minutes."),
	)
}

func alert(name, expr, forDuration, severity, summary, description string) Rule {
	return Rule{
		Alert:  name,
		Expr:   expr,
		For:    forDuration,
		Labels: map[string]string{"severity": severity},
		Annotations: map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
}
