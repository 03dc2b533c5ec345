package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("shc-recording-rules", "shc-recording",
		record("shc:api_requests:rate5m", `sum(rate(shc_api_requests_total[5m]))`),
		record("shc:api_failures:rate5m", `sum(rate(shc_api_requests_total{outcome!="ok"}[5m]))`),
		record("shc:fetches:rate5m", `sum(rate(shc_fetches_total[5m]))`),
		record("shc:fetch_superseded:rate5m", `sum(rate(shc_fetch_superseded_total[5m]))`),
		record("shc:mutation_failures:rate5m", `sum(rate(shc_mutations_total{result=~"failed|auth_required"}[5m]))`),
		record("shc:mockapi_requests:rate5m", `sum(rate(shc_mockapi_http_requests_total[5m]))`),
		record("shc:mockapi_errors:rate5m", `sum(rate(shc_mockapi_http_requests_total{status=~"5.."}[5m]))`),
	)
}

func record(name, expr string) Rule {
	return Rule{Record: name, Expr: expr}
}
