package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// MutationResults shows confirmed mutations and publishes per minute by kind
// and result.
func MutationResults() *timeseries.PanelBuilder {
	return trend("Mutations", "Confirmed mutations and publishes per minute by kind and result", TSWidth,
		query{perMinute(rateBy("shc_mutations_total", "", "kind", "result")), "{{kind}} {{result}}"},
	)
}

// MutationFailures counts mutations the server rejected or never received
// over the last day.
func MutationFailures() *stat.PanelBuilder {
	return single("Mutation Failures (24h)",
		"Mutations the server rejected or that failed to reach it in the last 24 hours",
		TSWidth, TSHeight,
		`sum(increase(shc_mutations_total{result=~"failed|auth_required"}[24h]))`,
	).
		Thresholds(warnAt(1, 5)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
